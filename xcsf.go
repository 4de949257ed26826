// Package xcsf wires the rng, config, population, and engine packages into
// the trial driver of the design: the single entry point external
// callers use to learn from and query the classifier system.
package xcsf

import (
	"fmt"

	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/engine"
	"github.com/rpreen/xcsf/rng"
	"github.com/rpreen/xcsf/xerrors"
)

// XCSF is the top-level handle a caller holds: one configuration, one
// population, one RNG stream, one logical clock.
type XCSF struct {
	cfg config.Config
	eng *engine.Engine
	rng *rng.Source
}

// New validates cfg and returns a fresh XCSF instance seeded from
// cfg.Seed.
func New(cfg config.Config) (*XCSF, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := rng.New(cfg.Seed)
	return &XCSF{cfg: cfg, eng: engine.New(cfg, r), rng: r}, nil
}

// Engine exposes the underlying engine, for persistence and telemetry.
func (x *XCSF) Engine() *engine.Engine { return x.eng }

// Config returns the process-wide configuration.
func (x *XCSF) Config() config.Config { return x.cfg }

// RNG exposes the live RNG stream, chiefly so persistence.Save can record
// its current seed/draw-count snapshot.
func (x *XCSF) RNG() *rng.Source { return x.rng }

// Replace swaps in an engine and RNG loaded by persistence.Load, e.g. after
// a restore-from-disk request. The caller is responsible for serializing
// this against concurrent Learn/Predict calls.
func (x *XCSF) Replace(eng *engine.Engine, r *rng.Source) {
	x.eng = eng
	x.rng = r
}

// Learn runs one learning trial (the design): form M (covering as
// needed), emit the aggregate prediction, update M against y, possibly run
// the EA, and advance the logical clock. It returns the aggregate
// prediction and its loss against y under the configured LossFunc (MSE or
// RMSE, see config.Config.Compute).
func (x *XCSF) Learn(xIn, y []float64) ([]float64, float64, error) {
	if len(xIn) != x.cfg.NumXVars || len(y) != x.cfg.NumYVars {
		return nil, 0, fmt.Errorf("xcsf: learn: %w: expected x of length %d and y of length %d",
			xerrors.ErrInvariant, x.cfg.NumXVars, x.cfg.NumYVars)
	}

	m, err := x.eng.BuildMatchSet(xIn)
	if err != nil {
		return nil, 0, err
	}
	yhat := x.eng.Aggregate(xIn, m)
	x.eng.Update(m, xIn, y)
	x.eng.MaybeRunEA(m)

	return yhat, x.cfg.Compute(yhat, y), nil
}

// Predict runs one prediction-only trial: form M without covering, emit
// the aggregate prediction, and perform no updates. A match set empty of
// existing classifiers yields a neutral (zero) prediction rather than
// triggering covering, per the design.
func (x *XCSF) Predict(xIn []float64) ([]float64, error) {
	if len(xIn) != x.cfg.NumXVars {
		return nil, fmt.Errorf("xcsf: predict: %w: expected x of length %d", xerrors.ErrInvariant, x.cfg.NumXVars)
	}
	m, empty := x.eng.MatchWithoutCovering(xIn)
	if empty {
		return make([]float64, x.cfg.NumYVars), nil
	}
	return x.eng.Aggregate(xIn, m), nil
}
