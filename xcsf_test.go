package xcsf

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rpreen/xcsf/config"
)

func testCfg() config.Config {
	cfg := config.Default()
	cfg.N = 100
	cfg.NumXVars = 2
	cfg.NumYVars = 1
	cfg.ThetaMNA = 5
	cfg.Seed = 11
	return cfg
}

func TestNewRejectsBadConfig(t *testing.T) {
	Convey("New rejects an invalid configuration before touching the population", t, func() {
		cfg := testCfg()
		cfg.Condition = "not-a-real-kind"
		_, err := New(cfg)
		So(err, ShouldNotBeNil)
	})
}

func TestLearnRejectsWrongDimensions(t *testing.T) {
	Convey("Learn rejects input/target vectors of the wrong length", t, func() {
		x, err := New(testCfg())
		So(err, ShouldBeNil)
		_, _, learnErr := x.Learn([]float64{0.1}, []float64{0.2})
		So(learnErr, ShouldNotBeNil)
	})
}

func TestPredictOnEmptyPopulationIsNeutral(t *testing.T) {
	Convey("Predict on an empty population returns a neutral output without covering", t, func() {
		x, err := New(testCfg())
		So(err, ShouldBeNil)
		out, predErr := x.Predict([]float64{0.5, 0.5})
		So(predErr, ShouldBeNil)
		So(out, ShouldResemble, []float64{0})
		So(x.Engine().Population().Count(), ShouldEqual, 0)
	})
}

func TestLearnPopulatesPredictablePopulation(t *testing.T) {
	Convey("After learning, Predict on the same input returns a same-shaped, finite output", t, func() {
		x, err := New(testCfg())
		So(err, ShouldBeNil)
		in := []float64{0.4, 0.6}
		yhat, lossVal, learnErr := x.Learn(in, []float64{0.7})
		So(learnErr, ShouldBeNil)
		So(yhat, ShouldHaveLength, 1)
		So(lossVal, ShouldBeGreaterThanOrEqualTo, 0)

		predicted, predErr := x.Predict(in)
		So(predErr, ShouldBeNil)
		So(predicted, ShouldHaveLength, 1)
		So(x.Engine().Population().Count(), ShouldBeGreaterThanOrEqualTo, testCfg().ThetaMNA)
	})
}
