// Copyright 2025 Glint ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package problem exposes the distributed optimization problem: the
// orchestrator binding an optimizer, an objective function, a
// regularization context and a model factory.
package problem

import (
	"github.com/glint-ml/glint/internal/loss"
	"github.com/glint-ml/glint/internal/model"
	"github.com/glint-ml/glint/internal/objective"
	"github.com/glint-ml/glint/internal/problem"
	"github.com/glint-ml/glint/internal/regularization"
	"github.com/glint-ml/glint/internal/solver"
)

// Problem orchestrates one distributed optimization problem.
type Problem = problem.Problem

// Config configures a Problem.
type Config = problem.Config

// Coefficients is the trained parameter estimate.
type Coefficients = model.Coefficients

// Model is anything constructed from Coefficients.
type Model = model.Model

// Factory builds a concrete model from trained coefficients.
type Factory = model.Factory

// GeneralizedLinearModel is the stock linear model.
type GeneralizedLinearModel = model.GeneralizedLinearModel

// RegularizationContext translates a scalar weight into effective L1/L2
// components.
type RegularizationContext = regularization.Context

// RegularizationType tags a regularization policy.
type RegularizationType = regularization.Type

// Regularization policies.
const (
	None       = regularization.None
	L1         = regularization.L1
	L2         = regularization.L2
	ElasticNet = regularization.ElasticNet
)

// DiffFunction is a differentiable distributed objective.
type DiffFunction = objective.DiffFunction

// TwiceDiffFunction is a Hessian-capable distributed objective.
type TwiceDiffFunction = objective.TwiceDiffFunction

// ObjectiveConfig configures a distributed GLM objective.
type ObjectiveConfig = objective.Config

// GLMObjective is the gradient-capable distributed objective.
type GLMObjective = objective.GLMObjective

// TwiceDiffGLMObjective is the Hessian-capable distributed objective.
type TwiceDiffGLMObjective = objective.TwiceDiffGLMObjective

// New binds the collaborators of an optimization problem.
func New(opt solver.Optimizer, obj DiffFunction, factory Factory, cfg Config) (*Problem, error) {
	return problem.New(opt, obj, factory, cfg)
}

// NewGLMObjective builds a gradient-capable objective for a pointwise loss.
func NewGLMObjective(l loss.PointwiseLoss, cfg ObjectiveConfig) (*GLMObjective, error) {
	return objective.NewGLMObjective(l, cfg)
}

// NewTwiceDiffGLMObjective builds a Hessian-capable objective for a
// twice-differentiable pointwise loss.
func NewTwiceDiffGLMObjective(l loss.TwiceDiffLoss, cfg ObjectiveConfig) (*TwiceDiffGLMObjective, error) {
	return objective.NewTwiceDiffGLMObjective(l, cfg)
}

// NewRegularizationContext builds a None/L1/L2 context.
func NewRegularizationContext(typ RegularizationType, weight float64) (RegularizationContext, error) {
	return regularization.NewContext(typ, weight)
}

// NewElasticNetContext builds an elastic-net context with mixing parameter
// alpha in [0, 1].
func NewElasticNetContext(weight, alpha float64) (RegularizationContext, error) {
	return regularization.NewElasticNetContext(weight, alpha)
}

// NewGeneralizedLinearModel wraps coefficients in a linear model; it has the
// Factory signature.
func NewGeneralizedLinearModel(c Coefficients) Model {
	return model.NewGeneralizedLinearModel(c)
}
