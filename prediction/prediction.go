// Package prediction defines the prediction-variant contract of the design
// section 4.2 and its reference implementation, the trainable multi-layer
// network of section 4.2's "Neural-network prediction" subsection.
//
// As with package condition, variants are tagged rather than inherited:
// a classifier holds a Prediction interface value whose Kind supplies the
// discriminant, and new variants register a Factory instead of the
// classifier switching on a concrete type.
package prediction

import (
	"fmt"
	"io"

	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/rng"
)

// Prediction is the contract every prediction variant implements.
type Prediction interface {
	// Kind returns the registered discriminant for this variant.
	Kind() string
	// Copy returns a deep, independently-owned duplicate.
	Copy() Prediction
	// Predict writes the variant's output for x into out (caller-owned,
	// length k).
	Predict(x []float64, out []float64)
	// Update performs one online adaptation step toward yTarget. A
	// no-op for non-trainable variants.
	Update(x, yTarget []float64)
	// Mutate perturbs the variant in place, returning true iff anything
	// changed.
	Mutate(r *rng.Source) bool
	// Crossover recombines the receiver and other in place, returning
	// true iff either was changed.
	Crossover(r *rng.Source, other Prediction) bool
	// Size returns an integer complexity measure (e.g. weight count).
	Size() int
	// String renders a human-readable summary, for diagnostics.
	String() string
	// Serialize writes the variant's payload.
	Serialize(w io.Writer) error
}

// Factory constructs a zero-value instance of a prediction variant, sized
// for a d-dimensional input and k-dimensional output, parameterized by
// the process-wide Config.
type Factory func(d, k int, cfg config.Config) Prediction

// Decoder reads a variant's payload back from a stream previously written
// by Prediction.Serialize.
type Decoder func(r io.Reader, d, k int, cfg config.Config) (Prediction, error)

var (
	factories = map[string]Factory{}
	decoders  = map[string]Decoder{}
)

// Register adds a variant to the dispatch table.
func Register(kind string, f Factory, d Decoder) {
	factories[kind] = f
	decoders[kind] = d
}

// New constructs a fresh instance of the named variant.
func New(kind string, d, k int, cfg config.Config) (Prediction, error) {
	f, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("prediction: unknown variant %q", kind)
	}
	return f(d, k, cfg), nil
}

// Decode reads a variant's payload for the named discriminant.
func Decode(kind string, r io.Reader, d, k int, cfg config.Config) (Prediction, error) {
	dec, ok := decoders[kind]
	if !ok {
		return nil, fmt.Errorf("prediction: unknown variant %q", kind)
	}
	return dec(r, d, k, cfg)
}
