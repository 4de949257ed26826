package prediction

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rpreen/xcsf/rng"
)

// DenseLayer is a fully connected layer with weights[out][in], per-output
// biases, an activation kind, and momentum velocity for both, grounded on
// the original source's neural_layer_connected -- weight update is plain
// gradient descent with momentum and optional decay, not Adam or any other
// optimizer the pack doesn't show a precedent for.
type DenseLayer struct {
	nIn, nOut int
	act       activation
	weights   [][]float64
	bias      []float64

	wVelocity [][]float64
	bVelocity []float64

	// forward-pass cache, consumed by the next Backward call.
	lastInput []float64
	lastOut   []float64

	// pending gradients, accumulated by Backward and flushed by Update.
	dWeights [][]float64
	dBias    []float64
}

// NewDense builds a zero-initialized dense layer; callers typically follow
// with InitRandom or rely on Mutate to introduce variation.
func NewDense(nIn, nOut int, act activation) *DenseLayer {
	l := &DenseLayer{
		nIn: nIn, nOut: nOut, act: act,
		weights:   make([][]float64, nOut),
		bias:      make([]float64, nOut),
		wVelocity: make([][]float64, nOut),
		bVelocity: make([]float64, nOut),
		dWeights:  make([][]float64, nOut),
		dBias:     make([]float64, nOut),
	}
	for i := range l.weights {
		l.weights[i] = make([]float64, nIn)
		l.wVelocity[i] = make([]float64, nIn)
		l.dWeights[i] = make([]float64, nIn)
	}
	return l
}

// InitRandom seeds weights uniformly in [-1,1) and leaves biases as they
// are (zero after NewDense), matching the original source's
// xcalloc/rand_uniform layer initialization.
func (l *DenseLayer) InitRandom(r *rng.Source) {
	for i := range l.weights {
		for j := range l.weights[i] {
			l.weights[i][j] = r.Uniform(-1, 1)
		}
	}
}

// Forward implements Layer.
func (l *DenseLayer) Forward(in []float64) []float64 {
	l.lastInput = append(l.lastInput[:0], in...)
	out := make([]float64, l.nOut)
	for i := range l.weights {
		sum := l.bias[i]
		for j, w := range l.weights[i] {
			sum += w * in[j]
		}
		out[i] = activate(l.act, sum)
	}
	l.lastOut = out
	return out
}

// Backward implements Layer.
func (l *DenseLayer) Backward(dOut []float64) []float64 {
	dIn := make([]float64, l.nIn)
	for i := range l.weights {
		delta := dOut[i] * gradient(l.act, l.lastOut[i])
		l.dBias[i] += delta
		for j := range l.weights[i] {
			l.dWeights[i][j] += delta * l.lastInput[j]
			dIn[j] += delta * l.weights[i][j]
		}
	}
	return dIn
}

// Update implements Layer: momentum gradient descent with weight decay,
// then clears accumulated gradients.
func (l *DenseLayer) Update(eta, momentum, decay float64) {
	for i := range l.weights {
		for j := range l.weights[i] {
			l.wVelocity[i][j] = momentum*l.wVelocity[i][j] + eta*l.dWeights[i][j]
			l.weights[i][j] += l.wVelocity[i][j] - decay*l.weights[i][j]
			l.dWeights[i][j] = 0
		}
		l.bVelocity[i] = momentum*l.bVelocity[i] + eta*l.dBias[i]
		l.bias[i] += l.bVelocity[i]
		l.dBias[i] = 0
	}
}

// Mutate implements Layer: each weight and bias independently perturbed by
// N(0,rate) with probability rate, per the original source's
// neural_layer_connected mutation.
func (l *DenseLayer) Mutate(r *rng.Source, rate float64) bool {
	if rate <= 0 {
		return false
	}
	mod := false
	for i := range l.weights {
		for j := range l.weights[i] {
			if r.Bool(rate) {
				l.weights[i][j] += r.Normal(0, rate)
				mod = true
			}
		}
		if r.Bool(rate) {
			l.bias[i] += r.Normal(0, rate)
			mod = true
		}
	}
	return mod
}

// Copy implements Layer.
func (l *DenseLayer) Copy() Layer {
	return &DenseLayer{
		nIn: l.nIn, nOut: l.nOut, act: l.act,
		weights:   copyMatrix(l.weights),
		bias:      append([]float64(nil), l.bias...),
		wVelocity: copyMatrix(l.wVelocity),
		bVelocity: append([]float64(nil), l.bVelocity...),
		dWeights:  copyMatrix(l.dWeights),
		dBias:     append([]float64(nil), l.dBias...),
	}
}

func (l *DenseLayer) NumInputs() int  { return l.nIn }
func (l *DenseLayer) NumOutputs() int { return l.nOut }

// Serialize implements Layer: dims, activation tag, weights, bias.
func (l *DenseLayer) Serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int64(l.nIn)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int64(l.nOut)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int64(l.act)); err != nil {
		return err
	}
	if err := writeMatrix(w, l.weights); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, l.bias)
}

// DecodeDense reads a payload previously written by DenseLayer.Serialize.
func DecodeDense(r io.Reader) (*DenseLayer, error) {
	var nIn, nOut, act int64
	if err := binary.Read(r, binary.LittleEndian, &nIn); err != nil {
		return nil, fmt.Errorf("prediction: decode dense nIn: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &nOut); err != nil {
		return nil, fmt.Errorf("prediction: decode dense nOut: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &act); err != nil {
		return nil, fmt.Errorf("prediction: decode dense act: %w", err)
	}
	l := NewDense(int(nIn), int(nOut), activation(act))
	weights, err := readMatrix(r, int(nOut), int(nIn))
	if err != nil {
		return nil, fmt.Errorf("prediction: decode dense weights: %w", err)
	}
	l.weights = weights
	if err := binary.Read(r, binary.LittleEndian, l.bias); err != nil {
		return nil, fmt.Errorf("prediction: decode dense bias: %w", err)
	}
	return l, nil
}
