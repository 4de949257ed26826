// Package classifier holds the single classifier entity of the design section
// 4.1: a condition/prediction pair plus the bookkeeping the evolutionary
// algorithm and the update rule both read and write (error, fitness,
// numerosity, experience, time of last EA invocation, action-set-size
// estimate).
package classifier

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rpreen/xcsf/condition"
	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/prediction"
	"github.com/rpreen/xcsf/rng"
)

// Classifier is a single condition/prediction pair plus its evolutionary
// bookkeeping. It carries no identity of its own -- the population package
// is responsible for assigning and tracking handles.
type Classifier struct {
	Cond condition.Condition
	Pred prediction.Prediction

	Error      float64
	Fitness    float64
	Numerosity int
	Experience int
	// Time is the system timestep at which this classifier last underwent
	// the evolutionary algorithm (its own birth, initially).
	Time int
	// ActionSetSize is a running estimate of the size of the action sets
	// this classifier has occupied, used by deletion vote and the EA's
	// subsumption/offspring accounting.
	ActionSetSize float64

	cfg config.Config
}

// Init builds a new classifier covering x at system time t, per the design
// section 4.3's covering operation: numerosity 1, experience 0, error and
// fitness at their initial defaults, action-set-size estimate 1.
func Init(r *rng.Source, cfg config.Config, x []float64, t int) (*Classifier, error) {
	cond, err := condition.New(string(cfg.Condition), len(x), cfg)
	if err != nil {
		return nil, fmt.Errorf("classifier: init condition: %w", err)
	}
	cond.Cover(r, x)

	pred, err := prediction.New(string(cfg.Prediction), len(x), cfg.NumYVars, cfg)
	if err != nil {
		return nil, fmt.Errorf("classifier: init prediction: %w", err)
	}
	if rp, ok := pred.(interface{ InitRandom(*rng.Source) }); ok {
		rp.InitRandom(r)
	}

	return &Classifier{
		Cond:          cond,
		Pred:          pred,
		Error:         0,
		Fitness:       1,
		Numerosity:    1,
		Experience:    0,
		Time:          t,
		ActionSetSize: 1,
		cfg:           cfg,
	}, nil
}

// Copy returns a deep, independently-owned duplicate with numerosity reset
// to 1 and experience reset to 0, as the original source does for EA
// offspring (ea_init_offspring / classifier_copy semantics).
func (c *Classifier) Copy() *Classifier {
	return &Classifier{
		Cond:          c.Cond.Copy(),
		Pred:          c.Pred.Copy(),
		Error:         c.Error,
		Fitness:       c.Fitness,
		Numerosity:    1,
		Experience:    0,
		Time:          c.Time,
		ActionSetSize: c.ActionSetSize,
		cfg:           c.cfg,
	}
}

// Match reports whether x falls inside this classifier's condition.
func (c *Classifier) Match(x []float64) bool {
	return c.Cond.Match(x)
}

// Predict writes this classifier's prediction for x into out.
func (c *Classifier) Predict(x []float64, out []float64) {
	c.Pred.Predict(x, out)
}

// IsSubsumer reports whether this classifier is experienced and accurate
// enough to subsume others, per the design: experience at least
// ThetaSub and error below Eps0.
func (c *Classifier) IsSubsumer() bool {
	return c.Experience >= c.cfg.ThetaSub && c.Error < c.cfg.Eps0
}

// MoreGeneral reports whether this classifier's condition is more general
// than other's, delegating to the condition variant.
func (c *Classifier) MoreGeneral(other *Classifier) bool {
	return c.Cond.MoreGeneral(other.Cond)
}

// Subsumes reports whether this classifier can subsume other: it must be a
// subsumer, and its condition must be general enough to cover other's.
func (c *Classifier) Subsumes(other *Classifier) bool {
	return c.IsSubsumer() && c.Cond.Subsumes(other.Cond)
}

// Mutate mutates both the condition and the prediction, returning true iff
// either changed.
func (c *Classifier) Mutate(r *rng.Source) bool {
	a := c.Cond.Mutate(r)
	b := c.Pred.Mutate(r)
	return a || b
}

// Crossover recombines c and other's conditions and predictions in place.
func (c *Classifier) Crossover(r *rng.Source, other *Classifier) bool {
	a := c.Cond.Crossover(r, other.Cond)
	b := c.Pred.Crossover(r, other.Pred)
	return a || b
}

// String renders a diagnostic summary.
func (c *Classifier) String() string {
	return fmt.Sprintf("num=%d exp=%d err=%.5f fit=%.5f as=%.3f | %s | %s",
		c.Numerosity, c.Experience, c.Error, c.Fitness, c.ActionSetSize,
		c.Cond.String(), c.Pred.String())
}

// Serialize writes the classifier's scalar bookkeeping followed by its
// condition and prediction payloads, each preceded by its discriminant so
// Deserialize can dispatch back to the right variant.
func (c *Classifier) Serialize(w io.Writer) error {
	fields := []float64{c.Error, c.Fitness, c.ActionSetSize}
	if err := binary.Write(w, binary.LittleEndian, fields); err != nil {
		return err
	}
	ints := []int64{int64(c.Numerosity), int64(c.Experience), int64(c.Time)}
	if err := binary.Write(w, binary.LittleEndian, ints); err != nil {
		return err
	}
	if err := writeTag(w, c.Cond.Kind()); err != nil {
		return err
	}
	if err := c.Cond.Serialize(w); err != nil {
		return err
	}
	if err := writeTag(w, c.Pred.Kind()); err != nil {
		return err
	}
	return c.Pred.Serialize(w)
}

// Deserialize reads back a payload written by Serialize. dim and k are the
// condition/prediction's input and output dimensionality, which are not
// self-describing in every variant's wire format and so must be supplied
// by the caller (the population header records them once, globally).
func Deserialize(r io.Reader, cfg config.Config, dim, k int) (*Classifier, error) {
	fields := make([]float64, 3)
	if err := binary.Read(r, binary.LittleEndian, fields); err != nil {
		return nil, fmt.Errorf("classifier: deserialize scalars: %w", err)
	}
	ints := make([]int64, 3)
	if err := binary.Read(r, binary.LittleEndian, ints); err != nil {
		return nil, fmt.Errorf("classifier: deserialize ints: %w", err)
	}

	condKind, err := readTag(r)
	if err != nil {
		return nil, fmt.Errorf("classifier: deserialize cond tag: %w", err)
	}
	cond, err := condition.Decode(condKind, r, dim, cfg)
	if err != nil {
		return nil, fmt.Errorf("classifier: deserialize condition: %w", err)
	}

	predKind, err := readTag(r)
	if err != nil {
		return nil, fmt.Errorf("classifier: deserialize pred tag: %w", err)
	}
	pred, err := prediction.Decode(predKind, r, dim, k, cfg)
	if err != nil {
		return nil, fmt.Errorf("classifier: deserialize prediction: %w", err)
	}

	return &Classifier{
		Cond: cond, Pred: pred,
		Error: fields[0], Fitness: fields[1], ActionSetSize: fields[2],
		Numerosity: int(ints[0]), Experience: int(ints[1]), Time: int(ints[2]),
		cfg: cfg,
	}, nil
}

func writeTag(w io.Writer, tag string) error {
	b := []byte(tag)
	if err := binary.Write(w, binary.LittleEndian, int64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readTag(r io.Reader) (string, error) {
	var n int64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
