package prediction

import "github.com/rpreen/xcsf/rng"

// RecurrentLayer is the Elman-style recurrent layer of the design section
// 4.2's "Neural-network prediction" subsection, scenario 3: hidden state
// feeds back into itself across successive Forward calls within an
// episode, reset by NewEpisode. It is composed of three dense sublayers
// rather than a single monolithic weight matrix, following the original
// source's neural_layer_recurrent split into an input projection, a
// self-recurrent projection, and an output readout.
type RecurrentLayer struct {
	input  *DenseLayer // d -> n, identity; summed with self, then logistic
	self   *DenseLayer // n -> n, identity; summed with input, then logistic
	output *DenseLayer // n -> k, identity

	n       int
	hidden  []float64
	lastIn  []float64
	prevHid []float64
}

// NewRecurrentLayer builds a zero-weight recurrent layer with n hidden
// units, d inputs, and k outputs.
func NewRecurrentLayer(d, n, k int) *RecurrentLayer {
	return &RecurrentLayer{
		input:   NewDense(d, n, activationIdentity),
		self:    NewDense(n, n, activationIdentity),
		output:  NewDense(n, k, activationIdentity),
		n:       n,
		hidden:  make([]float64, n),
		prevHid: make([]float64, n),
	}
}

// InitRandom seeds all three sublayers.
func (l *RecurrentLayer) InitRandom(r *rng.Source) {
	l.input.InitRandom(r)
	l.self.InitRandom(r)
	l.output.InitRandom(r)
}

// NewEpisode zeros the hidden state, as the original source's
// neural_layer_recurrent does at the start of a trial.
func (l *RecurrentLayer) NewEpisode() {
	for i := range l.hidden {
		l.hidden[i] = 0
	}
}

// Forward computes hidden_t = logistic(W_in*x + W_self*hidden_{t-1}) and
// output_t = W_out*hidden_t, matching the design scenario 3.
func (l *RecurrentLayer) Forward(x []float64) []float64 {
	copy(l.prevHid, l.hidden)

	fromInput := l.input.Forward(x)
	fromSelf := l.self.Forward(l.prevHid)

	l.lastIn = append(l.lastIn[:0], x...)
	for i := range l.hidden {
		l.hidden[i] = activate(activationLogistic, fromInput[i]+fromSelf[i])
	}

	return l.output.Forward(l.hidden)
}

// Backward propagates the output gradient back through the output
// readout and the input/self projections for the current step only --
// truncated (one-step) backpropagation through time, since the original
// source likewise does not unroll the full episode.
func (l *RecurrentLayer) Backward(dOut []float64) []float64 {
	dHiddenFromOut := l.output.Backward(dOut)

	dPreAct := make([]float64, l.n)
	for i := range dPreAct {
		dPreAct[i] = dHiddenFromOut[i] * gradient(activationLogistic, l.hidden[i])
	}

	dIn := l.input.Backward(dPreAct)
	l.self.Backward(dPreAct)
	return dIn
}

// Update applies the accumulated gradients to all three sublayers.
func (l *RecurrentLayer) Update(eta, momentum, decay float64) {
	l.input.Update(eta, momentum, decay)
	l.self.Update(eta, momentum, decay)
	l.output.Update(eta, momentum, decay)
}

// Mutate perturbs all three sublayers with a shared rate.
func (l *RecurrentLayer) Mutate(r *rng.Source, rate float64) bool {
	a := l.input.Mutate(r, rate)
	b := l.self.Mutate(r, rate)
	c := l.output.Mutate(r, rate)
	return a || b || c
}

// Copy returns a deep, independent duplicate.
func (l *RecurrentLayer) Copy() *RecurrentLayer {
	return &RecurrentLayer{
		input:   l.input.Copy().(*DenseLayer),
		self:    l.self.Copy().(*DenseLayer),
		output:  l.output.Copy().(*DenseLayer),
		n:       l.n,
		hidden:  append([]float64(nil), l.hidden...),
		prevHid: append([]float64(nil), l.prevHid...),
	}
}

func (l *RecurrentLayer) NumInputs() int  { return l.input.nIn }
func (l *RecurrentLayer) NumOutputs() int { return l.output.nOut }
