// Package model defines the coefficient estimate produced by an
// optimization run and the minimal model surface the optimization core
// interacts with. Concrete model hierarchies stay outside the core: the
// problem builds models through an injected Factory and never looks past
// the coefficients a model was built from.
package model

import "gonum.org/v1/gonum/floats"

// Coefficients is the parameter estimate of a trained model: per-coefficient
// means and, when variance computation was enabled, the diagonal variance
// estimate. Variances is nil when not computed.
type Coefficients struct {
	Means     []float64
	Variances []float64
}

// Model is anything constructed from Coefficients.
type Model interface {
	Coefficients() Coefficients
}

// Factory builds a concrete model from trained coefficients. It is injected
// at problem construction, decoupling the optimization core from any model
// hierarchy.
type Factory func(Coefficients) Model

// GeneralizedLinearModel is the stock linear model: a score is the dot
// product of features and coefficient means plus the example offset.
type GeneralizedLinearModel struct {
	coefficients Coefficients
}

// NewGeneralizedLinearModel wraps coefficients in a linear model. It has the
// Factory signature.
func NewGeneralizedLinearModel(c Coefficients) Model {
	return &GeneralizedLinearModel{coefficients: c}
}

// Coefficients returns the coefficients the model was built from.
func (m *GeneralizedLinearModel) Coefficients() Coefficients {
	return m.coefficients
}

// Score computes the linear predictor features·means + offset.
func (m *GeneralizedLinearModel) Score(features []float64, offset float64) float64 {
	return floats.Dot(features, m.coefficients.Means) + offset
}
