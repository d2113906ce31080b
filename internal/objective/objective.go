// Package objective aggregates pointwise-loss contributions across a
// partitioned dataset into total loss, gradient and Hessian quantities.
//
// Capability composition is expressed through interfaces: every objective is
// a DiffFunction; Hessian-capable objectives additionally implement
// TwiceDiffFunction, and objectives that embed an L2 penalty implement
// L2Regularized. Which capabilities an objective has is fixed at
// construction; callers assert the richer interfaces where they need them.
package objective

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/glint-ml/glint/internal/data"
)

// DiffFunction is a differentiable objective over a partitioned dataset.
type DiffFunction interface {
	// Value computes the objective value at coef.
	Value(ctx context.Context, d *data.Dataset, coef []float64) (float64, error)
	// Compute evaluates value and gradient in one distributed pass.
	Compute(ctx context.Context, d *data.Dataset, coef []float64) (float64, []float64, error)
}

// TwiceDiffFunction is a DiffFunction that can also produce Hessian-vector
// products and the full Hessian matrix.
type TwiceDiffFunction interface {
	DiffFunction
	// HessianVector computes H(coef)·vec in one distributed pass.
	HessianVector(ctx context.Context, d *data.Dataset, coef, vec []float64) ([]float64, error)
	// Hessian computes the full DxD Hessian matrix at coef.
	Hessian(ctx context.Context, d *data.Dataset, coef []float64) (*mat.SymDense, error)
}

// L2Regularized is implemented by objectives that embed an L2 penalty term
// directly in their value, gradient and Hessian.
type L2Regularized interface {
	L2RegWeight() float64
	SetL2RegWeight(weight float64)
}

// Config configures a distributed GLM objective.
type Config struct {
	// TreeAggregateDepth bounds the fan-in depth of the distributed
	// reduction (default 2).
	TreeAggregateDepth int
	// L2Weight is the embedded L2 penalty weight (default 0).
	L2Weight float64
}

func (c Config) withDefaults() (Config, error) {
	if c.TreeAggregateDepth == 0 {
		c.TreeAggregateDepth = 2
	}
	if c.TreeAggregateDepth < 1 {
		return c, fmt.Errorf("objective: invalid tree aggregate depth %d", c.TreeAggregateDepth)
	}
	if c.L2Weight < 0 {
		return c, fmt.Errorf("objective: negative L2 weight %v", c.L2Weight)
	}
	return c, nil
}
