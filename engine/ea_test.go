package engine

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rpreen/xcsf/classifier"
	"github.com/rpreen/xcsf/population"
	"github.com/rpreen/xcsf/rng"
)

func TestEATriggerBoundary(t *testing.T) {
	Convey("Given theta_EA=50 and every classifier in M at time=100", t, func() {
		cfg := testCfg()
		cfg.N = 50
		cfg.ThetaEA = 50
		e := New(cfg, rng.New(5))
		x := []float64{0.2, 0.8}

		m, err := e.BuildMatchSet(x)
		So(err, ShouldBeNil)
		m.SetTime(100)
		e.SetTime(149)

		Convey("t=150 must not trigger", func() {
			e.MaybeRunEA(m)
			So(e.Time(), ShouldEqual, 150)
			m.Each(func(_ population.Handle, cl *classifier.Classifier) {
				So(cl.Time, ShouldEqual, 100)
			})

			Convey("t=151 must trigger exactly once and stamp every member's time to 151", func() {
				e.MaybeRunEA(m)
				So(e.Time(), ShouldEqual, 151)
				m.Each(func(_ population.Handle, cl *classifier.Classifier) {
					So(cl.Time, ShouldEqual, 151)
				})
			})
		})
	})
}
