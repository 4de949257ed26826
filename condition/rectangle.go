package condition

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/rng"
	"github.com/rpreen/xcsf/samadapt"
)

// KindRectangle is the registered discriminant for Rectangle.
const KindRectangle = "rectangle"

func init() {
	Register(KindRectangle, newRectangle, decodeRectangle)
}

// rectangleSAM declares the self-adaptive mutation-rate layout for
// Rectangle: slot 0 perturbs the per-endpoint mutation probability, slot 1
// perturbs the mutation step size, both log-normally as in
// cond_rect_mutate's sam_adapt call in the original XCSF source.
func rectangleSAM(cfg config.Config) samadapt.Spec {
	return samadapt.Spec{
		{Rule: samadapt.RuleLogNormal, Sigma: 0.1, Min: 1e-6, Max: 1, Init: cfg.PMutation},
		{Rule: samadapt.RuleLogNormal, Sigma: 0.1, Min: 1e-6, Max: cfg.CondMax - cfg.CondMin, Init: cfg.SMutation},
	}
}

// Rectangle is the hyperrectangle condition of the design: for
// each input dimension i, a [lower_i, upper_i] interval. Match(x) is true
// iff x falls inside every interval.
type Rectangle struct {
	lower, upper []float64
	min, max     float64
	sMutation    float64
	pMutation    float64
	pCrossover   float64
	sam          samadapt.Spec
	mu           samadapt.Vector
	matched      bool
}

func newRectangle(d int, cfg config.Config) Condition {
	return &Rectangle{
		lower:      make([]float64, d),
		upper:      make([]float64, d),
		min:        cfg.CondMin,
		max:        cfg.CondMax,
		sMutation:  cfg.SMutation,
		pMutation:  cfg.PMutation,
		pCrossover: cfg.PCrossover,
		sam:        rectangleSAM(cfg),
		mu:         rectangleSAM(cfg).NewVector(),
	}
}

// Kind implements Condition.
func (c *Rectangle) Kind() string { return KindRectangle }

// Copy implements Condition.
func (c *Rectangle) Copy() Condition {
	out := &Rectangle{
		lower:      append([]float64(nil), c.lower...),
		upper:      append([]float64(nil), c.upper...),
		min:        c.min,
		max:        c.max,
		sMutation:  c.sMutation,
		pMutation:  c.pMutation,
		pCrossover: c.pCrossover,
		sam:        c.sam,
		mu:         c.mu.Copy(),
	}
	return out
}

// bounds clamps a and b into [min,max] and reorders so a <= b, exactly as
// cond_rect_bounds does in the original source, shared by Cover and
// Mutate rather than duplicated inline.
func (c *Rectangle) bounds(a, b *float64) {
	if *a < c.min {
		*a = c.min
	} else if *a > c.max {
		*a = c.max
	}
	if *b < c.min {
		*b = c.min
	} else if *b > c.max {
		*b = c.max
	}
	if *a > *b {
		*a, *b = *b, *a
	}
}

// Cover implements Condition. Per the design, lower_i =
// x_i - U(0,s_mut), upper_i = x_i + U(0,s_mut), clamped and reordered.
func (c *Rectangle) Cover(r *rng.Source, x []float64) {
	for i := range c.lower {
		c.lower[i] = x[i] - r.Uniform(0, c.sMutation)
		c.upper[i] = x[i] + r.Uniform(0, c.sMutation)
		c.bounds(&c.lower[i], &c.upper[i])
	}
	c.matched = true
}

// Match implements Condition, caching the result on the receiver for
// cheap re-query (the design).
func (c *Rectangle) Match(x []float64) bool {
	for i := range c.lower {
		if x[i] < c.lower[i] || x[i] > c.upper[i] {
			c.matched = false
			return false
		}
	}
	c.matched = true
	return true
}

// Mutate implements Condition: independently, with probability P_MUT,
// perturb each endpoint by U(-step,step), then re-clamp and reorder.
func (c *Rectangle) Mutate(r *rng.Source) bool {
	pMut := c.pMutation
	step := c.sMutation
	if len(c.mu) > 0 {
		c.mu.Adapt(r, c.sam)
		pMut = c.mu[0]
		if len(c.mu) > 1 {
			step = c.mu[1]
		}
	}

	mod := false
	for i := range c.lower {
		if r.Bool(pMut) {
			c.lower[i] += r.Signed(step)
			mod = true
		}
		if r.Bool(pMut) {
			c.upper[i] += r.Signed(step)
			mod = true
		}
		c.bounds(&c.lower[i], &c.upper[i])
	}
	return mod
}

// Crossover implements Condition via two-point crossover over the
// flattened [lower_0,upper_0,lower_1,upper_1,...] sequence, per the design
// section 4.2. Unlike the original C source, the swap is committed
// unconditionally once decided -- the dead "copy pre-swap values back"
// branch flagged in the design is not reproduced.
func (c *Rectangle) Crossover(r *rng.Source, other Condition) bool {
	o, ok := other.(*Rectangle)
	if !ok {
		return false
	}
	if !r.Bool(c.pCrossover) {
		return false
	}

	flat1 := interleave(c.lower, c.upper)
	flat2 := interleave(o.lower, o.upper)
	length := len(flat1)

	p1 := r.Intn(length)
	p2 := r.Intn(length) + 1
	if p1 > p2 {
		p1, p2 = p2, p1
	} else if p1 == p2 {
		p2++
	}
	if p2 > length {
		p2 = length
	}

	changed := false
	for i := p1; i < p2; i++ {
		if flat1[i] != flat2[i] {
			flat1[i], flat2[i] = flat2[i], flat1[i]
			changed = true
		}
	}
	if changed {
		deinterleave(flat1, c.lower, c.upper)
		deinterleave(flat2, o.lower, o.upper)
		for i := range c.lower {
			c.bounds(&c.lower[i], &c.upper[i])
			o.bounds(&o.lower[i], &o.upper[i])
		}
	}
	return changed
}

func interleave(lower, upper []float64) []float64 {
	out := make([]float64, 0, 2*len(lower))
	for i := range lower {
		out = append(out, lower[i], upper[i])
	}
	return out
}

func deinterleave(flat []float64, lower, upper []float64) {
	for i := range lower {
		lower[i] = flat[2*i]
		upper[i] = flat[2*i+1]
	}
}

// Subsumes implements Condition: c subsumes other iff c contains other in
// every dimension.
func (c *Rectangle) Subsumes(other Condition) bool {
	o, ok := other.(*Rectangle)
	if !ok {
		return false
	}
	for i := range c.lower {
		if c.lower[i] > o.lower[i] || c.upper[i] < o.upper[i] {
			return false
		}
	}
	return true
}

// MoreGeneral implements Condition by comparing summed interval widths
// against the maximum possible width, per the design. The
// original source's "+1.0 per dimension" additive offset
// (the design) is deliberately not reproduced -- see DESIGN.md.
func (c *Rectangle) MoreGeneral(other Condition) bool {
	o, ok := other.(*Rectangle)
	if !ok {
		return false
	}
	maxWidth := float64(len(c.lower)) * (c.max - c.min)
	if maxWidth <= 0 {
		return false
	}
	var w1, w2 float64
	for i := range c.lower {
		w1 += c.upper[i] - c.lower[i]
		w2 += o.upper[i] - o.lower[i]
	}
	return w1/maxWidth > w2/maxWidth
}

// Size implements Condition.
func (c *Rectangle) Size() int { return len(c.lower) }

// String implements Condition.
func (c *Rectangle) String() string {
	var b strings.Builder
	b.WriteString("intervals:")
	for i := range c.lower {
		fmt.Fprintf(&b, " (%.5f, %.5f)", c.lower[i], c.upper[i])
	}
	return b.String()
}

// Serialize implements Condition: the dimension count, then lower/upper
// pairs, then the mu vector.
func (c *Rectangle) Serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int64(len(c.lower))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, c.lower); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, c.upper); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int64(len(c.mu))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, []float64(c.mu))
}

func decodeRectangle(r io.Reader, _ int, cfg config.Config) (Condition, error) {
	var d int64
	if err := binary.Read(r, binary.LittleEndian, &d); err != nil {
		return nil, fmt.Errorf("condition: decode rectangle dim: %w", err)
	}
	lower := make([]float64, d)
	if err := binary.Read(r, binary.LittleEndian, lower); err != nil {
		return nil, fmt.Errorf("condition: decode rectangle lower: %w", err)
	}
	upper := make([]float64, d)
	if err := binary.Read(r, binary.LittleEndian, upper); err != nil {
		return nil, fmt.Errorf("condition: decode rectangle upper: %w", err)
	}
	var samLen int64
	if err := binary.Read(r, binary.LittleEndian, &samLen); err != nil {
		return nil, fmt.Errorf("condition: decode rectangle mu len: %w", err)
	}
	mu := make(samadapt.Vector, samLen)
	if err := binary.Read(r, binary.LittleEndian, []float64(mu)); err != nil {
		return nil, fmt.Errorf("condition: decode rectangle mu: %w", err)
	}
	return &Rectangle{
		lower:      lower,
		upper:      upper,
		mu:         mu,
		min:        cfg.CondMin,
		max:        cfg.CondMax,
		sMutation:  cfg.SMutation,
		pMutation:  cfg.PMutation,
		pCrossover: cfg.PCrossover,
		sam:        rectangleSAM(cfg),
	}, nil
}

// Rand returns a uniformly random valid Rectangle instance, per the
// condition contract's "rand" operation in the design.
func Rand(r *rng.Source, d int, cfg config.Config) *Rectangle {
	rect := newRectangle(d, cfg).(*Rectangle)
	for i := 0; i < d; i++ {
		rect.lower[i] = r.Uniform(cfg.CondMin, cfg.CondMax)
		rect.upper[i] = r.Uniform(cfg.CondMin, cfg.CondMax)
		rect.bounds(&rect.lower[i], &rect.upper[i])
	}
	return rect
}
