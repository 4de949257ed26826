package engine

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rpreen/xcsf/classifier"
	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/population"
	"github.com/rpreen/xcsf/rng"
)

func testCfg() config.Config {
	cfg := config.Default()
	cfg.NumXVars = 2
	cfg.NumYVars = 1
	cfg.N = 200
	cfg.ThetaMNA = 1
	return cfg
}

func TestBuildMatchSetCoversWhenEmpty(t *testing.T) {
	Convey("Covering on an empty population produces a match set of size theta_mna", t, func() {
		cfg := testCfg()
		cfg.ThetaMNA = 3
		e := New(cfg, rng.New(1))

		m, err := e.BuildMatchSet([]float64{0.2, 0.4})
		So(err, ShouldBeNil)
		So(m.Len(), ShouldEqual, 3)
		So(e.Population().Count(), ShouldEqual, 3)
	})
}

func TestAggregateIsFitnessWeighted(t *testing.T) {
	Convey("Aggregate weights each member's prediction by fitness", t, func() {
		cfg := testCfg()
		cfg.ThetaMNA = 2
		e := New(cfg, rng.New(2))
		x := []float64{0.5, 0.5}

		m, err := e.BuildMatchSet(x)
		So(err, ShouldBeNil)

		var weighted, fitSum float64
		buf := make([]float64, 1)
		fit := 1.0
		m.Each(func(_ population.Handle, cl *classifier.Classifier) {
			cl.Fitness = fit
			cl.Predict(x, buf)
			weighted += fit * buf[0]
			fitSum += fit
			fit += 2
		})

		out := e.Aggregate(x, m)
		So(out, ShouldHaveLength, 1)
		So(out[0], ShouldAlmostEqual, weighted/fitSum, 1e-9)
	})
}

func TestUpdateIncrementsExperience(t *testing.T) {
	Convey("Update increments experience for every member of M", t, func() {
		cfg := testCfg()
		e := New(cfg, rng.New(3))
		x := []float64{0.1, 0.9}
		y := []float64{0.5}

		m, err := e.BuildMatchSet(x)
		So(err, ShouldBeNil)
		e.Aggregate(x, m)
		e.Update(m, x, y)

		m.Each(func(_ population.Handle, cl *classifier.Classifier) {
			So(cl.Experience, ShouldEqual, 1)
		})
	})
}

func TestTrialDriverReducesErrorOverTime(t *testing.T) {
	Convey("Repeated learning trials on a fixed mapping reduce prediction error", t, func() {
		cfg := testCfg()
		cfg.N = 100
		cfg.ThetaMNA = 5
		r := rng.New(4)
		e := New(cfg, r)

		x := []float64{0.3, 0.7}
		y := []float64{0.6}

		errAt := func() float64 {
			m, empty := e.MatchWithoutCovering(x)
			if empty {
				return 1
			}
			out := e.Aggregate(x, m)
			d := out[0] - y[0]
			if d < 0 {
				d = -d
			}
			return d
		}

		for i := 0; i < 5; i++ {
			m, err := e.BuildMatchSet(x)
			So(err, ShouldBeNil)
			e.Aggregate(x, m)
			e.Update(m, x, y)
			e.MaybeRunEA(m)
		}
		before := errAt()

		for i := 0; i < 300; i++ {
			m, err := e.BuildMatchSet(x)
			So(err, ShouldBeNil)
			e.Aggregate(x, m)
			e.Update(m, x, y)
			e.MaybeRunEA(m)
		}
		after := errAt()

		So(after, ShouldBeLessThan, before)
	})
}
