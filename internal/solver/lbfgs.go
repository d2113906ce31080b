package solver

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/glint-ml/glint/internal/data"
	"github.com/glint-ml/glint/internal/objective"
)

// LBFGS is a limited-memory quasi-Newton solver with a backtracking Armijo
// line search. The inverse Hessian is approximated from the last
// MemorySize curvature pairs via the standard two-loop recursion.
type LBFGS struct {
	cfg    Config
	status Status
}

// NewLBFGS creates a solver with defaults applied to cfg.
func NewLBFGS(cfg Config) *LBFGS {
	return &LBFGS{cfg: cfg.withDefaults(), status: NotStarted}
}

// Status returns the lifecycle state of the last (or current) run.
func (s *LBFGS) Status() Status { return s.status }

// Optimize minimizes obj over the dataset starting from init.
func (s *LBFGS) Optimize(ctx context.Context, obj objective.DiffFunction, d *data.Dataset, init []float64) ([]float64, *Tracker, error) {
	drv := &driver{cfg: s.cfg, status: &s.status}
	return drv.run(ctx, init, func(ctx context.Context, x []float64) (float64, []float64, error) {
		return obj.Compute(ctx, d, x)
	})
}

// correction is one curvature pair of the limited-memory history.
type correction struct {
	s, y []float64
	rho  float64
}

// evalFunc produces the raw objective value and gradient at x.
type evalFunc func(ctx context.Context, x []float64) (float64, []float64, error)

// driver is the shared iteration loop behind LBFGS and OWLQN. The nil hooks
// default to smooth quasi-Newton behavior; OWLQN overrides them with its
// orthant-wise logic.
type driver struct {
	cfg    Config
	status *Status

	// adjust maps the raw objective value and gradient at x to the value
	// and steering gradient that drive descent and convergence checks
	// (OWLQN: adds the L1 term and substitutes the pseudo-gradient).
	adjust func(x []float64, f float64, g []float64) (float64, []float64)
	// fixDirection constrains the search direction against the steering
	// gradient (OWLQN: zeroes coordinates not aligned with descent).
	fixDirection func(dir, sg []float64)
	// project maps a line-search trial point back to the feasible region
	// given the previous iterate and steering gradient (OWLQN: orthant
	// projection).
	project func(trial, x, sg []float64)
}

const armijoC1 = 1e-4

func (drv *driver) run(ctx context.Context, init []float64, eval evalFunc) ([]float64, *Tracker, error) {
	cfg := drv.cfg
	log := cfg.Logger
	start := time.Now()

	if drv.adjust == nil {
		drv.adjust = func(_ []float64, f float64, g []float64) (float64, []float64) { return f, g }
	}

	fail := func(err error) ([]float64, *Tracker, error) {
		*drv.status = Failed
		return nil, nil, err
	}

	*drv.status = Iterating
	x := append([]float64(nil), init...)

	f, g, err := eval(ctx, x)
	if err != nil {
		return fail(fmt.Errorf("solver: initial evaluation: %w", err))
	}
	if !allFinite(f, g) {
		return fail(ErrNonFiniteObjective)
	}
	fAdj, sg := drv.adjust(x, f, g)

	var tracker *Tracker
	if cfg.TrackStates {
		tracker = &Tracker{}
		tracker.Append(snapshot(x, 0, sg, fAdj, start))
	}

	// The initial point may already be stationary (e.g. a zero vector under
	// a dominating L1 penalty).
	if floats.Norm(sg, 2) <= cfg.GradientTolerance*math.Max(1, floats.Norm(x, 2)) {
		*drv.status = Converged
		return x, tracker, nil
	}

	var hist []correction
	trial := make([]float64, len(x))

	for iter := 1; iter <= cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("solver: %w", err))
		}

		dir := twoLoopDirection(sg, hist)
		if drv.fixDirection != nil {
			drv.fixDirection(dir, sg)
		}
		gd := floats.Dot(sg, dir)
		if gd >= 0 {
			// Stale curvature can produce an ascent direction; restart
			// from steepest descent before giving up.
			hist = hist[:0]
			for i := range dir {
				dir[i] = -sg[i]
			}
			if drv.fixDirection != nil {
				drv.fixDirection(dir, sg)
			}
			if gd = floats.Dot(sg, dir); gd >= 0 {
				return fail(ErrLineSearchFailed)
			}
		}

		// First iteration starts with a step scaled to the direction norm,
		// later iterations try the full quasi-Newton step first.
		step := 1.0
		if len(hist) == 0 {
			if n := floats.Norm(dir, 2); n > 0 {
				step = math.Min(1, 1/n)
			}
		}

		var (
			fTrial, fTrialAdj float64
			gTrial, sgTrial   []float64
			accepted          bool
		)
		for evals := 0; evals < cfg.MaxLineSearchEvals; evals++ {
			floats.AddScaledTo(trial, x, step, dir)
			if drv.project != nil {
				drv.project(trial, x, sg)
			}
			fTrial, gTrial, err = eval(ctx, trial)
			if err != nil {
				return fail(fmt.Errorf("solver: iteration %d: %w", iter, err))
			}
			if !allFinite(fTrial, gTrial) {
				return fail(ErrNonFiniteObjective)
			}
			fTrialAdj, sgTrial = drv.adjust(trial, fTrial, gTrial)
			// Armijo sufficient decrease along the realized displacement
			// (which may differ from step*dir after projection).
			decrease := 0.0
			for i := range trial {
				decrease += sg[i] * (trial[i] - x[i])
			}
			if fTrialAdj <= fAdj+armijoC1*decrease {
				accepted = true
				break
			}
			step *= 0.5
		}
		if !accepted {
			return fail(ErrLineSearchFailed)
		}

		// Curvature pair from the raw gradients; skip the update when the
		// curvature condition fails so the approximation stays positive
		// definite.
		sVec := make([]float64, len(x))
		yVec := make([]float64, len(x))
		floats.SubTo(sVec, trial, x)
		floats.SubTo(yVec, gTrial, g)
		if sy := floats.Dot(sVec, yVec); sy > 1e-10 {
			hist = append(hist, correction{s: sVec, y: yVec, rho: 1 / sy})
			if len(hist) > cfg.MemorySize {
				hist = hist[1:]
			}
		}

		prevAdj := fAdj
		copy(x, trial)
		f, g = fTrial, gTrial
		fAdj, sg = fTrialAdj, sgTrial

		gNorm := floats.Norm(sg, 2)
		log.Debug().
			Int("iteration", iter).
			Float64("value", fAdj).
			Float64("gradientNorm", gNorm).
			Float64("step", step).
			Msg("solver iteration")
		if tracker != nil {
			tracker.Append(snapshot(x, iter, sg, fAdj, start))
		}

		if converged(prevAdj, fAdj, gNorm, x, cfg) {
			*drv.status = Converged
			return x, tracker, nil
		}
	}

	*drv.status = MaxIterationsReached
	return x, tracker, nil
}

func snapshot(x []float64, iter int, sg []float64, value float64, start time.Time) State {
	return State{
		Iterate:   append([]float64(nil), x...),
		Iteration: iter,
		Gradient:  append([]float64(nil), sg...),
		Value:     value,
		Elapsed:   time.Since(start),
	}
}

func converged(prev, cur, gNorm float64, x []float64, cfg Config) bool {
	if gNorm <= cfg.GradientTolerance*math.Max(1, floats.Norm(x, 2)) {
		return true
	}
	change := math.Abs(prev - cur)
	scale := math.Max(math.Max(math.Abs(prev), math.Abs(cur)), 1)
	return change <= cfg.Tolerance*scale
}

// twoLoopDirection computes -H·g, where H is the inverse-Hessian
// approximation defined by the curvature history.
func twoLoopDirection(g []float64, hist []correction) []float64 {
	q := append([]float64(nil), g...)
	alphas := make([]float64, len(hist))
	for i := len(hist) - 1; i >= 0; i-- {
		c := hist[i]
		alphas[i] = c.rho * floats.Dot(c.s, q)
		floats.AddScaled(q, -alphas[i], c.y)
	}
	if n := len(hist); n > 0 {
		c := hist[n-1]
		if yy := floats.Dot(c.y, c.y); yy > 0 {
			floats.Scale(floats.Dot(c.s, c.y)/yy, q)
		}
	}
	for i, c := range hist {
		beta := c.rho * floats.Dot(c.y, q)
		floats.AddScaled(q, alphas[i]-beta, c.s)
	}
	floats.Scale(-1, q)
	return q
}

func allFinite(f float64, g []float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	for _, v := range g {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

var _ Optimizer = (*LBFGS)(nil)
