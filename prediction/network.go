package prediction

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/rng"
	"github.com/rpreen/xcsf/samadapt"
)

// KindNetwork is the registered discriminant for Network.
const KindNetwork = "network"

func init() {
	Register(KindNetwork, newNetwork, decodeNetwork)
}

func networkSAM(cfg config.Config) samadapt.Spec {
	return samadapt.Spec{
		{Rule: samadapt.RuleLogNormal, Sigma: 0.1, Min: 1e-6, Max: 1, Init: cfg.PMutation},
	}
}

// Network is the reference prediction variant of the design: a
// feed-forward stack of dense layers, trained online by backpropagation
// (Widrow-Hoff is the single-layer special case). Hidden topology comes
// from config.NetworkHidden; the final layer always has k outputs with an
// identity activation, matching the original source's regression-style
// readout.
type Network struct {
	d, k       int
	layers     []*DenseLayer
	eta        float64
	momentum   float64
	decay      float64
	pCrossover float64
	sam        samadapt.Spec
	mu         samadapt.Vector
}

func newNetwork(d, k int, cfg config.Config) Prediction {
	hidden := cfg.NetworkHidden
	sizes := append(append([]int{d}, hidden...), k)
	n := &Network{
		d: d, k: k,
		eta:        cfg.NetworkEta,
		momentum:   cfg.NetworkMomentum,
		decay:      cfg.NetworkDecay,
		pCrossover: cfg.PCrossover,
		sam:        networkSAM(cfg),
		mu:         networkSAM(cfg).NewVector(),
	}
	for i := 0; i+1 < len(sizes); i++ {
		act := activationLogistic
		if i == len(sizes)-2 {
			act = activationIdentity
		}
		layer := NewDense(sizes[i], sizes[i+1], act)
		n.layers = append(n.layers, layer)
	}
	return n
}

// InitRandom seeds every layer's weights, used by covering.
func (n *Network) InitRandom(r *rng.Source) {
	for _, l := range n.layers {
		l.InitRandom(r)
	}
}

// Kind implements Prediction.
func (n *Network) Kind() string { return KindNetwork }

// Copy implements Prediction.
func (n *Network) Copy() Prediction {
	out := &Network{
		d: n.d, k: n.k,
		eta: n.eta, momentum: n.momentum, decay: n.decay,
		pCrossover: n.pCrossover,
		sam:        n.sam,
		mu:         n.mu.Copy(),
	}
	for _, l := range n.layers {
		out.layers = append(out.layers, l.Copy().(*DenseLayer))
	}
	return out
}

// Predict implements Prediction: a forward pass through every layer.
func (n *Network) Predict(x []float64, out []float64) {
	in := x
	for _, l := range n.layers {
		in = l.Forward(in)
	}
	copy(out, in)
}

// Update implements Prediction: a forward pass (to populate Backward's
// cache), then backpropagation of the output error, then a weight update
// per layer, per the design's Widrow-Hoff generalization.
func (n *Network) Update(x, yTarget []float64) {
	pred := make([]float64, n.k)
	n.Predict(x, pred)

	grad := make([]float64, n.k)
	for i := range grad {
		grad[i] = yTarget[i] - pred[i]
	}
	for i := len(n.layers) - 1; i >= 0; i-- {
		grad = n.layers[i].Backward(grad)
	}
	for _, l := range n.layers {
		l.Update(n.eta, n.momentum, n.decay)
	}
}

// Mutate implements Prediction: self-adapts the shared mutation rate, then
// mutates every layer with it.
func (n *Network) Mutate(r *rng.Source) bool {
	rate := n.eta
	if len(n.mu) > 0 {
		n.mu.Adapt(r, n.sam)
		rate = n.mu[0]
	}
	mod := false
	for _, l := range n.layers {
		if l.Mutate(r, rate) {
			mod = true
		}
	}
	return mod
}

// Crossover implements Prediction: each layer pair trades weights/biases
// per matching position with probability P_CROSSOVER, mirroring the
// rectangle condition's uniform-swap spirit since the original source does
// not define a network crossover operator.
func (n *Network) Crossover(r *rng.Source, other Prediction) bool {
	o, ok := other.(*Network)
	if !ok || len(o.layers) != len(n.layers) {
		return false
	}
	for li := range n.layers {
		if n.layers[li].nIn != o.layers[li].nIn || n.layers[li].nOut != o.layers[li].nOut {
			return false
		}
	}
	if !r.Bool(n.pCrossover) {
		return false
	}
	changed := false
	for li := range n.layers {
		a, b := n.layers[li], o.layers[li]
		for i := range a.weights {
			for j := range a.weights[i] {
				if r.Bool(0.5) && a.weights[i][j] != b.weights[i][j] {
					a.weights[i][j], b.weights[i][j] = b.weights[i][j], a.weights[i][j]
					changed = true
				}
			}
			if r.Bool(0.5) && a.bias[i] != b.bias[i] {
				a.bias[i], b.bias[i] = b.bias[i], a.bias[i]
				changed = true
			}
		}
	}
	return changed
}

// Size implements Prediction: total weight+bias count across all layers.
func (n *Network) Size() int {
	total := 0
	for _, l := range n.layers {
		total += l.nIn*l.nOut + l.nOut
	}
	return total
}

// String implements Prediction.
func (n *Network) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "network: %d layers,", len(n.layers))
	for _, l := range n.layers {
		fmt.Fprintf(&b, " %dx%d", l.nIn, l.nOut)
	}
	return b.String()
}

// Serialize implements Prediction.
func (n *Network) Serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int64(len(n.layers))); err != nil {
		return err
	}
	for _, l := range n.layers {
		if err := l.Serialize(w); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, int64(len(n.mu))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, []float64(n.mu))
}

func decodeNetwork(r io.Reader, d, k int, cfg config.Config) (Prediction, error) {
	var nLayers int64
	if err := binary.Read(r, binary.LittleEndian, &nLayers); err != nil {
		return nil, fmt.Errorf("prediction: decode network layer count: %w", err)
	}
	n := &Network{
		d: d, k: k,
		eta: cfg.NetworkEta, momentum: cfg.NetworkMomentum, decay: cfg.NetworkDecay,
		pCrossover: cfg.PCrossover,
		sam:        networkSAM(cfg),
	}
	for i := int64(0); i < nLayers; i++ {
		l, err := DecodeDense(r)
		if err != nil {
			return nil, fmt.Errorf("prediction: decode network layer %d: %w", i, err)
		}
		n.layers = append(n.layers, l)
	}
	var samLen int64
	if err := binary.Read(r, binary.LittleEndian, &samLen); err != nil {
		return nil, fmt.Errorf("prediction: decode network mu len: %w", err)
	}
	mu := make(samadapt.Vector, samLen)
	if err := binary.Read(r, binary.LittleEndian, []float64(mu)); err != nil {
		return nil, fmt.Errorf("prediction: decode network mu: %w", err)
	}
	n.mu = mu
	return n, nil
}

// Rand returns a Network with every layer's weights drawn uniformly at
// random, for the prediction contract's covering path.
func Rand(r *rng.Source, d, k int, cfg config.Config) *Network {
	n := newNetwork(d, k, cfg).(*Network)
	n.InitRandom(r)
	return n
}
