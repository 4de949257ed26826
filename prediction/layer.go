package prediction

import (
	"encoding/binary"
	"io"

	"github.com/rpreen/xcsf/rng"
)

// Layer is the per-layer contract the design's network variant
// names: forward, backward, update, mutate, resize, copy, serialize.
// Resize is realized as a constructor argument rather than a method,
// since this implementation does not support topology mutation -- layer
// width is fixed at construction.
type Layer interface {
	// Forward computes this layer's output for in, retaining whatever
	// internal state Backward needs.
	Forward(in []float64) []float64
	// Backward consumes the gradient of the loss w.r.t. this layer's
	// output and returns the gradient w.r.t. its input, accumulating its
	// own pending weight/bias gradients for the next Update call.
	Backward(dOut []float64) []float64
	// Update applies accumulated gradients with momentum and weight
	// decay, then clears them.
	Update(eta, momentum, decay float64)
	// Mutate perturbs weights by Gaussian noise gated by rate, returning
	// true iff anything changed.
	Mutate(r *rng.Source, rate float64) bool
	// Copy returns a deep, independent duplicate.
	Copy() Layer
	NumInputs() int
	NumOutputs() int
	Serialize(w io.Writer) error
}

func writeMatrix(w io.Writer, m [][]float64) error {
	for _, row := range m {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	return nil
}

func readMatrix(r io.Reader, rows, cols int) ([][]float64, error) {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		if err := binary.Read(r, binary.LittleEndian, m[i]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func copyMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
