// Package regularization defines the strategy that splits a single scalar
// regularization weight into effective L1 and L2 components under the NONE,
// L1, L2 and elastic-net policies.
package regularization

import "fmt"

// Type tags the regularization policy of a Context.
type Type int

const (
	None Type = iota
	L1
	L2
	ElasticNet
)

func (t Type) String() string {
	switch t {
	case None:
		return "NONE"
	case L1:
		return "L1"
	case L2:
		return "L2"
	case ElasticNet:
		return "ELASTIC_NET"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Context is an immutable regularization strategy: a policy type, a total
// weight, and (for elastic net) the L1/L2 mixing parameter alpha.
//
// The effective-weight functions are pure; the owning optimization problem
// uses them to route weight updates to the optimizer (L1, enforced
// orthant-wise) and the objective function (L2, embedded in the objective).
type Context struct {
	typ    Type
	weight float64
	alpha  float64
}

// NewContext builds a context for the None, L1 or L2 policies. Elastic net
// requires an alpha and uses NewElasticNetContext.
func NewContext(typ Type, weight float64) (Context, error) {
	if typ == ElasticNet {
		return Context{}, fmt.Errorf("regularization: elastic net requires an alpha, use NewElasticNetContext")
	}
	if weight < 0 {
		return Context{}, fmt.Errorf("regularization: negative weight %v", weight)
	}
	if typ == None && weight != 0 {
		return Context{}, fmt.Errorf("regularization: weight %v with NONE policy", weight)
	}
	return Context{typ: typ, weight: weight}, nil
}

// NewElasticNetContext builds an elastic-net context mixing
// L1 = weight·alpha and L2 = weight·(1-alpha), with alpha in [0, 1].
func NewElasticNetContext(weight, alpha float64) (Context, error) {
	if weight < 0 {
		return Context{}, fmt.Errorf("regularization: negative weight %v", weight)
	}
	if alpha < 0 || alpha > 1 {
		return Context{}, fmt.Errorf("regularization: alpha %v outside [0, 1]", alpha)
	}
	return Context{typ: ElasticNet, weight: weight, alpha: alpha}, nil
}

// RegType returns the policy tag.
func (c Context) RegType() Type { return c.typ }

// Weight returns the total regularization weight the context was built with.
func (c Context) Weight() float64 { return c.weight }

// Alpha returns the elastic-net mixing parameter (0 for other policies).
func (c Context) Alpha() float64 { return c.alpha }

// EffectiveL1Weight maps a total weight to the L1 component under this
// policy.
func (c Context) EffectiveL1Weight(total float64) float64 {
	switch c.typ {
	case L1:
		return total
	case ElasticNet:
		return total * c.alpha
	default:
		return 0
	}
}

// EffectiveL2Weight maps a total weight to the L2 component under this
// policy.
func (c Context) EffectiveL2Weight(total float64) float64 {
	switch c.typ {
	case L2:
		return total
	case ElasticNet:
		return total * (1 - c.alpha)
	default:
		return 0
	}
}
