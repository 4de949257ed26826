// Package samadapt implements the self-adaptive mutation-rate machinery of
// the design. Each condition/prediction variant carries a short
// vector of mutation-rate parameters (mu); before a variant's Mutate reads
// any rate it calls Vector.Adapt, which independently re-draws or perturbs
// each slot according to the rule declared for it at registration. This
// lets mutation rates co-evolve with the classifiers that use them,
// instead of being tuned once as a global constant.
package samadapt

import "github.com/rpreen/xcsf/rng"

// Rule is the per-slot adaptation method declared by a variant.
type Rule int

const (
	// RuleDiscrete replaces the slot with a value drawn uniformly from a
	// fixed candidate set (the design).
	RuleDiscrete Rule = iota
	// RuleLogNormal perturbs the slot multiplicatively by exp(N(0,sigma^2))
	// and clamps into [Min,Max] (the design).
	RuleLogNormal
)

// Slot describes one self-adaptive parameter: its adaptation rule, the
// bounds or candidates that rule draws from, and the value used to seed a
// freshly-covered classifier.
type Slot struct {
	Rule       Rule
	Candidates []float64 // used when Rule == RuleDiscrete
	Sigma      float64   // used when Rule == RuleLogNormal
	Min, Max   float64   // used when Rule == RuleLogNormal
	Init       float64
}

// Spec is the ordered list of slot descriptors a variant registers for its
// mu vector. Its length is the "bounded-length real sequence" of
// the design's classifier data model.
type Spec []Slot

// NewVector returns the initial mu vector for a freshly covered classifier.
func (s Spec) NewVector() Vector {
	if len(s) == 0 {
		return nil
	}
	v := make(Vector, len(s))
	for i, slot := range s {
		v[i] = slot.Init
	}
	return v
}

// Vector is a classifier's evolvable mutation-rate payload.
type Vector []float64

// Copy returns an independent copy of v.
func (v Vector) Copy() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Adapt mutates v in place according to spec, one slot at a time. A
// variant with NUM_SAM == 0 (an empty Spec) has nothing to adapt, mirroring
// cond_rect_mutate's "if(xcsf->NUM_SAM > 0)" guard in the original XCSF
// source -- skipping adaptation rather than treating it as an error.
func (v Vector) Adapt(r *rng.Source, spec Spec) {
	for i := range v {
		if i >= len(spec) {
			break
		}
		slot := spec[i]
		switch slot.Rule {
		case RuleDiscrete:
			v[i] = r.LogUniformChoice(slot.Candidates)
		case RuleLogNormal:
			v[i] = r.LogNormalPerturb(v[i], slot.Sigma, slot.Min, slot.Max)
		}
	}
}
