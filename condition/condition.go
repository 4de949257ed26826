// Package condition defines the condition-variant contract of the design
// section 4.2 and its reference implementation, the real-interval
// hyperrectangle of section 4.2's "Hyperrectangle condition" subsection.
//
// Variants are tagged: a classifier carries a Condition interface value,
// and the interface's Kind method supplies the discriminant used for
// dispatch and serialization. New variants call Register to add a Factory
// to the package-level dispatch table rather than the classifier switching
// on a type
// -- "a registered table entry", per the design's design notes, not
// inheritance.
package condition

import (
	"fmt"
	"io"

	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/rng"
)

// Condition is the contract every condition variant implements.
type Condition interface {
	// Kind returns the registered discriminant for this variant.
	Kind() string
	// Copy returns a deep, independently-owned duplicate.
	Copy() Condition
	// Cover mutates the receiver into an instance guaranteed to match x.
	Cover(r *rng.Source, x []float64)
	// Match reports whether the condition matches x.
	Match(x []float64) bool
	// Mutate perturbs the condition in place, returning true iff anything
	// changed.
	Mutate(r *rng.Source) bool
	// Crossover recombines the receiver and other in place, returning true
	// iff either was changed.
	Crossover(r *rng.Source, other Condition) bool
	// Subsumes reports whether the receiver is more-general-or-equal to
	// other, i.e. every input other matches is also matched by the
	// receiver.
	Subsumes(other Condition) bool
	// MoreGeneral reports whether the receiver covers a broader region of
	// the input space than other, by the variant's own generality metric.
	MoreGeneral(other Condition) bool
	// Size returns an integer complexity measure (e.g. dimensionality).
	Size() int
	// String renders a human-readable summary, for diagnostics.
	String() string
	// Serialize writes the variant's payload (not including the
	// discriminant tag, which the caller has already written).
	Serialize(w io.Writer) error
}

// Factory constructs a zero-value instance of a condition variant, sized
// for a d-dimensional input and parameterized by the process-wide,
// immutable-after-load Config (the design), ready to be populated
// by Cover or Rand.
type Factory func(sizeHint int, cfg config.Config) Condition

// Decoder reads a variant's payload back from a stream previously written
// by Condition.Serialize. cfg re-attaches the process-wide parameters
// (bounds, base rates) that are not themselves part of the serialized
// per-classifier state.
type Decoder func(r io.Reader, sizeHint int, cfg config.Config) (Condition, error)

var (
	factories = map[string]Factory{}
	decoders  = map[string]Decoder{}
)

// Register adds a variant to the dispatch table. Variants call this from
// an init() function so registration happens exactly once at program
// start, before any configuration is validated.
func Register(kind string, f Factory, d Decoder) {
	factories[kind] = f
	decoders[kind] = d
}

// New constructs a fresh instance of the named variant.
func New(kind string, sizeHint int, cfg config.Config) (Condition, error) {
	f, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("condition: unknown variant %q", kind)
	}
	return f(sizeHint, cfg), nil
}

// Decode reads a variant's payload for the named discriminant.
func Decode(kind string, r io.Reader, sizeHint int, cfg config.Config) (Condition, error) {
	d, ok := decoders[kind]
	if !ok {
		return nil, fmt.Errorf("condition: unknown variant %q", kind)
	}
	return d(r, sizeHint, cfg)
}
