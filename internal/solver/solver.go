// Package solver implements the iterative optimizers that drive coefficient
// estimation: a limited-memory BFGS solver for smooth objectives and an
// orthant-wise variant (OWL-QN) that enforces an L1 penalty. Both consume a
// distributed objective function and a dataset handle, issuing one blocking
// distributed evaluation per iteration and computing the descent step
// locally on the aggregated result.
package solver

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/glint-ml/glint/internal/data"
	"github.com/glint-ml/glint/internal/objective"
)

// Status is the lifecycle state of an optimizer.
type Status int

const (
	NotStarted Status = iota
	Iterating
	Converged
	MaxIterationsReached
	Failed
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case Iterating:
		return "ITERATING"
	case Converged:
		return "CONVERGED"
	case MaxIterationsReached:
		return "MAX_ITERATIONS_REACHED"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Failure classes surfaced by Optimize. Non-finite numerics indicate a
// misconfigured objective and are never retried.
var (
	ErrNonFiniteObjective = errors.New("solver: non-finite objective or gradient value")
	ErrLineSearchFailed   = errors.New("solver: line search could not find an acceptable step")
)

// State is one immutable snapshot of the solver per iteration. The ordered
// sequence of states forms the optimization trace; it is consumed for
// diagnostics only and never fed back into the solver.
type State struct {
	Iterate   []float64
	Iteration int
	Gradient  []float64
	Value     float64
	Elapsed   time.Duration
}

// Tracker is the ordered history of solver states.
type Tracker struct {
	states []State
}

// Append adds a state to the history.
func (t *Tracker) Append(s State) { t.states = append(t.states, s) }

// States returns the recorded history in iteration order.
func (t *Tracker) States() []State { return t.states }

// Len returns the number of recorded states.
func (t *Tracker) Len() int { return len(t.states) }

// Config holds the solver tolerances and limits shared by LBFGS and OWLQN.
type Config struct {
	// Tolerance is the relative objective-change convergence threshold
	// (default 1e-6).
	Tolerance float64
	// GradientTolerance terminates when ‖g‖ <= GradientTolerance·max(1, ‖x‖)
	// (default 1e-6).
	GradientTolerance float64
	// MaxIterations caps the iteration count (default 80).
	MaxIterations int
	// MemorySize is the number of curvature corrections kept for the
	// inverse-Hessian approximation (default 10).
	MemorySize int
	// MaxLineSearchEvals caps objective evaluations per line search
	// (default 25).
	MaxLineSearchEvals int
	// TrackStates enables the per-iteration state trace.
	TrackStates bool
	// Logger receives per-iteration Debug events. Defaults to a no-op
	// logger.
	Logger *zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.Tolerance == 0 {
		c.Tolerance = 1e-6
	}
	if c.GradientTolerance == 0 {
		c.GradientTolerance = 1e-6
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 80
	}
	if c.MemorySize == 0 {
		c.MemorySize = 10
	}
	if c.MaxLineSearchEvals == 0 {
		c.MaxLineSearchEvals = 25
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	return c
}

// Optimizer is a generic iterative solver. Optimize runs to convergence (or
// failure) from init and returns the final iterate plus the state trace when
// tracking is enabled (nil otherwise).
type Optimizer interface {
	Optimize(ctx context.Context, obj objective.DiffFunction, d *data.Dataset, init []float64) ([]float64, *Tracker, error)
	Status() Status
}

// L1Regularized is implemented by optimizers that enforce an L1 penalty
// themselves (orthant-wise logic) rather than through the objective.
type L1Regularized interface {
	L1RegWeight() float64
	SetL1RegWeight(weight float64)
}
