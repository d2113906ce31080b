// Package loss provides the pointwise convex losses summed by the
// distributed objective functions. Each loss is a stateless function of the
// linear predictor z = features·coefficients + offset, with derivatives
// taken with respect to z.
package loss

import "math"

// PointwiseLoss is a convex per-example loss with a first derivative.
type PointwiseLoss interface {
	// Loss evaluates the loss at linear predictor z for the given label.
	Loss(z, label float64) float64
	// D1 is the first derivative of the loss with respect to z.
	D1(z, label float64) float64
}

// TwiceDiffLoss extends PointwiseLoss with a second derivative, enabling
// Hessian computation and variance estimation.
type TwiceDiffLoss interface {
	PointwiseLoss
	// D2 is the second derivative of the loss with respect to z.
	D2(z, label float64) float64
}

// margin maps a binary label (positive iff label > 0.5) to the ±1 sign used
// by the classification losses.
func margin(label float64) float64 {
	if label > 0.5 {
		return 1
	}
	return -1
}

// sigmoid is the numerically stable logistic function.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// Logistic is the binary logistic (log) loss, log(1 + exp(-y·z)) with
// y = ±1 derived from the label.
type Logistic struct{}

// Loss uses the log1p(exp(-|t|)) form to avoid overflow for large |z|.
func (Logistic) Loss(z, label float64) float64 {
	t := margin(label) * z
	if t >= 0 {
		return math.Log1p(math.Exp(-t))
	}
	return -t + math.Log1p(math.Exp(t))
}

func (Logistic) D1(z, label float64) float64 {
	y := margin(label)
	return -y * sigmoid(-y*z)
}

// D2 is sigmoid(z)·(1-sigmoid(z)), independent of the label.
func (Logistic) D2(z, _ float64) float64 {
	s := sigmoid(z)
	return s * (1 - s)
}

// SquaredError is the squared-error loss 0.5·(z - label)² used for linear
// regression.
type SquaredError struct{}

func (SquaredError) Loss(z, label float64) float64 {
	d := z - label
	return 0.5 * d * d
}

func (SquaredError) D1(z, label float64) float64 { return z - label }

func (SquaredError) D2(_, _ float64) float64 { return 1 }

// Poisson is the Poisson regression loss exp(z) - label·z (the negative
// log-likelihood up to a term constant in z).
type Poisson struct{}

func (Poisson) Loss(z, label float64) float64 { return math.Exp(z) - label*z }

func (Poisson) D1(z, label float64) float64 { return math.Exp(z) - label }

func (Poisson) D2(z, _ float64) float64 { return math.Exp(z) }

// SmoothedHinge is the smoothed hinge loss for soft-margin linear SVMs.
// With t = y·z it is 0.5 - t for t <= 0, 0.5·(1-t)² for 0 < t < 1, and 0
// for t >= 1. The smoothing makes it differentiable everywhere, but the
// second derivative is discontinuous at the interval boundaries, so it does
// not implement TwiceDiffLoss and variance estimation is unavailable for it.
type SmoothedHinge struct{}

func (SmoothedHinge) Loss(z, label float64) float64 {
	t := margin(label) * z
	switch {
	case t <= 0:
		return 0.5 - t
	case t < 1:
		d := 1 - t
		return 0.5 * d * d
	default:
		return 0
	}
}

func (SmoothedHinge) D1(z, label float64) float64 {
	y := margin(label)
	t := y * z
	switch {
	case t <= 0:
		return -y
	case t < 1:
		return y * (t - 1)
	default:
		return 0
	}
}
