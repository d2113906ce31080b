// Package problem implements the optimization-problem orchestrator: it
// binds an optimizer, a distributed objective function, a regularization
// context, a model factory and an optional down-sampler, and exposes the
// run / regularization-update / variance operations of the engine.
package problem

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/glint-ml/glint/internal/data"
	"github.com/glint-ml/glint/internal/model"
	"github.com/glint-ml/glint/internal/objective"
	"github.com/glint-ml/glint/internal/regularization"
	"github.com/glint-ml/glint/internal/solver"
)

// Config configures a Problem.
type Config struct {
	// Regularization is the immutable regularization policy of the
	// problem. UpdateRegularizationWeight changes the weight but never the
	// policy type.
	Regularization regularization.Context
	// ComputeVariances enables the post-convergence coefficient-variance
	// pass. It is gated because variance estimation costs O(D²) per point
	// plus an O(D³) inversion, far more than a gradient pass.
	ComputeVariances bool
	// Sampler optionally down-samples the training data before each
	// operation that touches it.
	Sampler *data.DownSampler
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Problem couples an optimizer with a distributed objective function and
// owns every Coefficients and State produced by its runs. Instances are not
// safe for concurrent use; invocations are expected to be sequential per
// problem, and shared collaborators are mutated only through
// UpdateRegularizationWeight.
type Problem struct {
	optimizer solver.Optimizer
	obj       objective.DiffFunction
	factory   model.Factory
	cfg       Config
	log       *zerolog.Logger

	regWeight float64
	tracker   *solver.Tracker
}

// New binds the collaborators of an optimization problem. The factory is
// required; the optimizer/objective capabilities needed by the
// regularization policy are checked here rather than at run time.
func New(opt solver.Optimizer, obj objective.DiffFunction, factory model.Factory, cfg Config) (*Problem, error) {
	if opt == nil || obj == nil || factory == nil {
		return nil, fmt.Errorf("problem: optimizer, objective and factory are all required")
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
	p := &Problem{
		optimizer: opt,
		obj:       obj,
		factory:   factory,
		cfg:       cfg,
		log:       cfg.Logger,
		regWeight: cfg.Regularization.Weight(),
	}
	if err := p.applyRegularizationWeight(p.regWeight); err != nil {
		return nil, err
	}
	return p, nil
}

// RegularizationWeight returns the current total regularization weight.
func (p *Problem) RegularizationWeight() float64 { return p.regWeight }

// UpdateRegularizationWeight re-splits a new total weight across the bound
// collaborators in place: the optimizer takes the effective L1 component
// (orthant-wise enforcement) and the objective the effective L2 component
// (embedded penalty). Under NONE this is a no-op.
func (p *Problem) UpdateRegularizationWeight(weight float64) error {
	if weight < 0 {
		return fmt.Errorf("problem: negative regularization weight %v", weight)
	}
	if err := p.applyRegularizationWeight(weight); err != nil {
		return err
	}
	p.regWeight = weight
	return nil
}

func (p *Problem) applyRegularizationWeight(weight float64) error {
	reg := p.cfg.Regularization
	switch reg.RegType() {
	case regularization.None:
		return nil
	case regularization.L1, regularization.L2, regularization.ElasticNet:
	default:
		return fmt.Errorf("problem: unknown regularization type %v", reg.RegType())
	}
	if l1 := reg.EffectiveL1Weight(weight); reg.RegType() == regularization.L1 || reg.RegType() == regularization.ElasticNet {
		opt, ok := p.optimizer.(solver.L1Regularized)
		if !ok {
			return fmt.Errorf("problem: %v regularization requires an L1-capable optimizer", reg.RegType())
		}
		opt.SetL1RegWeight(l1)
	}
	if l2 := reg.EffectiveL2Weight(weight); reg.RegType() == regularization.L2 || reg.RegType() == regularization.ElasticNet {
		obj, ok := p.obj.(objective.L2Regularized)
		if !ok {
			return fmt.Errorf("problem: %v regularization requires an L2-embedding objective", reg.RegType())
		}
		obj.SetL2RegWeight(l2)
	}
	return nil
}

// Run trains on the dataset starting from the initial model's coefficients
// (or a zero vector when initial is nil) and returns the trained model built
// by the injected factory. When state tracking is enabled on the optimizer,
// the trace is retained and ModelTracker can reconstruct the intermediate
// models.
func (p *Problem) Run(ctx context.Context, d *data.Dataset, initial model.Model) (model.Model, error) {
	training := p.sampled(d)

	init := make([]float64, training.Dim())
	if initial != nil {
		prior := initial.Coefficients().Means
		if len(prior) != len(init) {
			return nil, fmt.Errorf("problem: initial model has %d coefficients, data has dimension %d", len(prior), len(init))
		}
		copy(init, prior)
	}

	means, tracker, err := p.optimizer.Optimize(ctx, p.obj, training, init)
	if err != nil {
		return nil, fmt.Errorf("problem: optimization failed: %w", err)
	}
	p.tracker = tracker

	coef := model.Coefficients{Means: means}
	if p.cfg.ComputeVariances {
		variances, err := p.ComputeVariances(ctx, d, means)
		if err != nil {
			return nil, err
		}
		coef.Variances = variances
	}

	p.log.Info().
		Stringer("status", p.optimizer.Status()).
		Int("dimension", len(means)).
		Int("points", training.NumPoints()).
		Bool("variances", coef.Variances != nil).
		Msg("optimization run finished")
	return p.factory(coef), nil
}

// ModelTracker lazily materializes one model per tracked optimizer state
// via the injected factory, in iteration order. It returns nil when the
// last run did not track states.
func (p *Problem) ModelTracker() []model.Model {
	if p.tracker == nil {
		return nil
	}
	models := make([]model.Model, 0, p.tracker.Len())
	for _, s := range p.tracker.States() {
		models = append(models, p.factory(model.Coefficients{Means: s.Iterate}))
	}
	return models
}

// States returns the raw optimizer trace of the last run, or nil.
func (p *Problem) States() []solver.State {
	if p.tracker == nil {
		return nil
	}
	return p.tracker.States()
}

func (p *Problem) sampled(d *data.Dataset) *data.Dataset {
	if p.cfg.Sampler == nil {
		return d
	}
	return p.cfg.Sampler.Sample(d)
}
