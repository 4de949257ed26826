package condition

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/rng"
)

func testCfg() config.Config {
	cfg := config.Default()
	cfg.CondMin, cfg.CondMax = 0, 1
	return cfg
}

func rectFrom(center, spread []float64, cfg config.Config) *Rectangle {
	r := newRectangle(len(center), cfg).(*Rectangle)
	for i := range center {
		r.lower[i] = center[i] - spread[i]
		r.upper[i] = center[i] + spread[i]
	}
	return r
}

func TestRectangleMatch(t *testing.T) {
	Convey("Given the worked rectangle match scenario", t, func() {
		cfg := testCfg()
		x := []float64{0.8455, 0.7566, 0.3125, 0.3449, 0.3678}

		Convey("a rectangle containing x matches", func() {
			r := rectFrom(
				[]float64{0.6918, 0.7276, 0.2457, 0.2705, 0.0},
				[]float64{0.5881, 0.8586, 0.2310, 0.5802, 0.9674},
				cfg)
			So(r.Match(x), ShouldBeTrue)
		})

		Convey("a rectangle excluding x does not match", func() {
			r := rectFrom(
				[]float64{0.8992, 0.5588, 0.6347, 0.0464, 0.4214},
				[]float64{0.9659, 0.7107, 0.7049, 0.1036, 0.4501},
				cfg)
			So(r.Match(x), ShouldBeFalse)
		})
	})
}

func TestMoreGeneral(t *testing.T) {
	Convey("Given the worked generality scenario", t, func() {
		cfg := testCfg()
		a := rectFrom(
			[]float64{0.6918, 0.7276, 0.2457, 0.2705, 0.0},
			[]float64{0.5881, 0.8586, 0.2310, 0.5802, 0.9674},
			cfg)
		b := rectFrom(
			[]float64{0.6, 0.7, 0.2, 0.3, 0.0},
			[]float64{0.1, 0.1, 0.1, 0.1, 0.1},
			cfg)

		So(a.MoreGeneral(b), ShouldBeTrue)
		So(b.MoreGeneral(a), ShouldBeFalse)
	})
}

func TestCoverCorrectness(t *testing.T) {
	Convey("Immediately after Cover(x), Match(x) is true", t, func() {
		cfg := testCfg()
		r := rng.New(7)
		x := []float64{0.1, 0.9, 0.5}
		c := newRectangle(3, cfg).(*Rectangle)
		c.Cover(r, x)
		So(c.Match(x), ShouldBeTrue)
		for i := range c.lower {
			So(c.lower[i], ShouldBeLessThanOrEqualTo, c.upper[i])
		}
	})
}

func TestCopyIndependence(t *testing.T) {
	Convey("Mutating a copy does not change the original", t, func() {
		cfg := testCfg()
		r := rng.New(3)
		orig := newRectangle(4, cfg).(*Rectangle)
		orig.Cover(r, []float64{0.2, 0.3, 0.4, 0.5})
		snapshot := append([]float64(nil), orig.lower...)

		dup := orig.Copy().(*Rectangle)
		dup.pMutation = 1
		for dup.Mutate(r) == false {
		}

		So(orig.lower, ShouldResemble, snapshot)
	})
}

func TestMutationMonotonicity(t *testing.T) {
	Convey("With P_MUTATION=0, mutate leaves the payload unchanged", t, func() {
		cfg := testCfg()
		cfg.PMutation = 0
		r := rng.New(9)
		c := newRectangle(3, cfg).(*Rectangle)
		c.Cover(r, []float64{0.2, 0.5, 0.8})
		c.sam = nil // disable self-adaptation so pMutation=0 is honored
		before := append([]float64(nil), c.lower...)
		mod := c.Mutate(r)
		So(mod, ShouldBeFalse)
		So(c.lower, ShouldResemble, before)
	})

	Convey("With P_MUTATION=1, mutate changes at least one component", t, func() {
		cfg := testCfg()
		cfg.PMutation = 1
		r := rng.New(11)
		c := newRectangle(3, cfg).(*Rectangle)
		c.Cover(r, []float64{0.2, 0.5, 0.8})
		c.sam = nil
		mod := c.Mutate(r)
		So(mod, ShouldBeTrue)
	})
}

func TestRectangleCrossoverSymmetry(t *testing.T) {
	Convey("Swapping the two parents and replaying the same seed swaps the resulting children", t, func() {
		cfg := testCfg()
		cfg.PCrossover = 1 // force the crossover decision so the swap is exercised

		lowerA, upperA := []float64{0.1, 0.2, 0.3}, []float64{0.4, 0.5, 0.6}
		lowerB, upperB := []float64{0.15, 0.25, 0.35}, []float64{0.45, 0.55, 0.65}

		mkRect := func(lower, upper []float64) *Rectangle {
			r := newRectangle(len(lower), cfg).(*Rectangle)
			copy(r.lower, lower)
			copy(r.upper, upper)
			return r
		}

		a1 := mkRect(lowerA, upperA)
		b1 := mkRect(lowerB, upperB)
		changed1 := a1.Crossover(rng.New(42), b1)

		// Same seed, parents swapped: a2 starts where b1 started, b2 starts
		// where a1 started.
		a2 := mkRect(lowerB, upperB)
		b2 := mkRect(lowerA, upperA)
		changed2 := a2.Crossover(rng.New(42), b2)

		So(changed2, ShouldEqual, changed1)
		So(a2.lower, ShouldResemble, b1.lower)
		So(a2.upper, ShouldResemble, b1.upper)
		So(b2.lower, ShouldResemble, a1.lower)
		So(b2.upper, ShouldResemble, a1.upper)
	})
}

func TestRectangleSerializationRoundTrip(t *testing.T) {
	Convey("Serialize/Decode round-trips the payload", t, func() {
		cfg := testCfg()
		r := rng.New(42)
		c := newRectangle(3, cfg).(*Rectangle)
		c.Cover(r, []float64{0.1, 0.2, 0.3})

		var buf bytes.Buffer
		So(c.Serialize(&buf), ShouldBeNil)

		decoded, err := decodeRectangle(&buf, 3, cfg)
		So(err, ShouldBeNil)
		d := decoded.(*Rectangle)
		So(d.lower, ShouldResemble, c.lower)
		So(d.upper, ShouldResemble, c.upper)
	})
}

func TestSubsumesReflexive(t *testing.T) {
	Convey("subsumes(a,a) is true", t, func() {
		cfg := testCfg()
		r := rng.New(5)
		a := newRectangle(3, cfg).(*Rectangle)
		a.Cover(r, []float64{0.3, 0.3, 0.3})
		So(a.Subsumes(a), ShouldBeTrue)
	})
}
