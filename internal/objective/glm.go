package objective

import (
	"context"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/glint-ml/glint/internal/data"
	"github.com/glint-ml/glint/internal/loss"
)

// GLMObjective sums a pointwise loss over a partitioned dataset, combining
// per-partition partials with a bounded-depth tree reduction. It implements
// DiffFunction and L2Regularized.
//
// The L2 penalty, when present, is applied driver-side on the aggregated
// result: 0.5·l2·‖coef‖² on the value, l2·coef on the gradient and l2·I on
// the Hessian.
type GLMObjective struct {
	loss  loss.PointwiseLoss
	depth int
	l2    float64
}

// NewGLMObjective builds a gradient-capable objective for the given
// pointwise loss. Use NewTwiceDiffGLMObjective when the loss has a second
// derivative and Hessian computation is required.
func NewGLMObjective(l loss.PointwiseLoss, cfg Config) (*GLMObjective, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &GLMObjective{loss: l, depth: cfg.TreeAggregateDepth, l2: cfg.L2Weight}, nil
}

// L2RegWeight returns the embedded L2 penalty weight.
func (o *GLMObjective) L2RegWeight() float64 { return o.l2 }

// SetL2RegWeight replaces the embedded L2 penalty weight.
func (o *GLMObjective) SetL2RegWeight(w float64) { o.l2 = w }

// lossGrad is the tree-aggregation accumulator for value and gradient.
// Element-wise addition is associative and commutative, as TreeAggregate
// requires.
type lossGrad struct {
	loss float64
	grad []float64
}

// Value computes the total loss at coef.
func (o *GLMObjective) Value(ctx context.Context, d *data.Dataset, coef []float64) (float64, error) {
	v, _, err := o.Compute(ctx, d, coef)
	return v, err
}

// Compute evaluates total loss and gradient in one pass over the dataset.
func (o *GLMObjective) Compute(ctx context.Context, d *data.Dataset, coef []float64) (float64, []float64, error) {
	dim := len(coef)
	acc, err := data.TreeAggregate(ctx, d,
		func() *lossGrad { return &lossGrad{grad: make([]float64, dim)} },
		func(acc *lossGrad, p data.LabeledPoint) *lossGrad {
			z := floats.Dot(p.Features, coef) + p.Offset
			acc.loss += p.Weight * o.loss.Loss(z, p.Label)
			floats.AddScaled(acc.grad, p.Weight*o.loss.D1(z, p.Label), p.Features)
			return acc
		},
		func(a, b *lossGrad) *lossGrad {
			a.loss += b.loss
			floats.Add(a.grad, b.grad)
			return a
		},
		o.depth)
	if err != nil {
		return 0, nil, err
	}
	if o.l2 > 0 {
		acc.loss += 0.5 * o.l2 * floats.Dot(coef, coef)
		floats.AddScaled(acc.grad, o.l2, coef)
	}
	return acc.loss, acc.grad, nil
}

// TwiceDiffGLMObjective is a GLMObjective over a twice-differentiable loss,
// adding Hessian-vector products and full Hessian assembly. It implements
// TwiceDiffFunction.
type TwiceDiffGLMObjective struct {
	GLMObjective
	loss2 loss.TwiceDiffLoss
}

// NewTwiceDiffGLMObjective builds a Hessian-capable objective for a
// twice-differentiable pointwise loss.
func NewTwiceDiffGLMObjective(l loss.TwiceDiffLoss, cfg Config) (*TwiceDiffGLMObjective, error) {
	base, err := NewGLMObjective(l, cfg)
	if err != nil {
		return nil, err
	}
	return &TwiceDiffGLMObjective{GLMObjective: *base, loss2: l}, nil
}

// HessianVector computes H(coef)·vec, where H is the Hessian of the total
// loss including any embedded L2 term.
func (o *TwiceDiffGLMObjective) HessianVector(ctx context.Context, d *data.Dataset, coef, vec []float64) ([]float64, error) {
	dim := len(coef)
	hv, err := data.TreeAggregate(ctx, d,
		func() []float64 { return make([]float64, dim) },
		func(acc []float64, p data.LabeledPoint) []float64 {
			z := floats.Dot(p.Features, coef) + p.Offset
			xv := floats.Dot(p.Features, vec)
			floats.AddScaled(acc, p.Weight*o.loss2.D2(z, p.Label)*xv, p.Features)
			return acc
		},
		func(a, b []float64) []float64 {
			floats.Add(a, b)
			return a
		},
		o.depth)
	if err != nil {
		return nil, err
	}
	if o.l2 > 0 {
		floats.AddScaled(hv, o.l2, vec)
	}
	return hv, nil
}

// Hessian assembles the full DxD Hessian Σ weight·d2·x·xᵀ (+ l2·I) by the
// same tree reduction as the gradient pass. This is O(D²) work per point and
// is intended for one post-convergence variance pass, not per-iteration use.
func (o *TwiceDiffGLMObjective) Hessian(ctx context.Context, d *data.Dataset, coef []float64) (*mat.SymDense, error) {
	dim := len(coef)
	h, err := data.TreeAggregate(ctx, d,
		func() *mat.SymDense { return mat.NewSymDense(dim, nil) },
		func(acc *mat.SymDense, p data.LabeledPoint) *mat.SymDense {
			z := floats.Dot(p.Features, coef) + p.Offset
			acc.SymRankOne(acc, p.Weight*o.loss2.D2(z, p.Label), mat.NewVecDense(dim, p.Features))
			return acc
		},
		func(a, b *mat.SymDense) *mat.SymDense {
			a.AddSym(a, b)
			return a
		},
		o.depth)
	if err != nil {
		return nil, err
	}
	if o.l2 > 0 {
		for i := 0; i < dim; i++ {
			h.SetSym(i, i, h.At(i, i)+o.l2)
		}
	}
	return h, nil
}
