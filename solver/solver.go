// Copyright 2025 Glint ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package solver exposes the iterative optimizers: LBFGS for smooth
// objectives and OWLQN, the orthant-wise variant enforcing an L1 penalty.
package solver

import "github.com/glint-ml/glint/internal/solver"

// Optimizer is a generic iterative solver over a distributed objective.
type Optimizer = solver.Optimizer

// L1Regularized is implemented by optimizers that enforce an L1 penalty
// themselves rather than through the objective function.
type L1Regularized = solver.L1Regularized

// Config holds solver tolerances and limits.
type Config = solver.Config

// Status is the lifecycle state of an optimizer.
type Status = solver.Status

// Lifecycle states.
const (
	NotStarted           = solver.NotStarted
	Iterating            = solver.Iterating
	Converged            = solver.Converged
	MaxIterationsReached = solver.MaxIterationsReached
	Failed               = solver.Failed
)

// State is one immutable per-iteration snapshot.
type State = solver.State

// Tracker is the ordered history of solver states.
type Tracker = solver.Tracker

// LBFGS is the limited-memory quasi-Newton solver.
type LBFGS = solver.LBFGS

// OWLQN is the orthant-wise L1-aware solver.
type OWLQN = solver.OWLQN

// Failure classes surfaced by Optimize.
var (
	ErrNonFiniteObjective = solver.ErrNonFiniteObjective
	ErrLineSearchFailed   = solver.ErrLineSearchFailed
)

// NewLBFGS creates an LBFGS solver with defaults applied to cfg.
func NewLBFGS(cfg Config) *LBFGS {
	return solver.NewLBFGS(cfg)
}

// NewOWLQN creates an OWLQN solver with the given L1 weight.
func NewOWLQN(cfg Config, l1Weight float64) (*OWLQN, error) {
	return solver.NewOWLQN(cfg, l1Weight)
}
