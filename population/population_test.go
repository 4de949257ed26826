package population

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rpreen/xcsf/classifier"
	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/rng"
)

func testCfg() config.Config {
	cfg := config.Default()
	cfg.NumXVars = 2
	cfg.NumYVars = 1
	cfg.N = 10
	return cfg
}

func TestInsertGetRemove(t *testing.T) {
	Convey("Insert returns a handle that Get resolves until Remove", t, func() {
		cfg := testCfg()
		r := rng.New(1)
		p := New(cfg)
		cl, err := classifier.Init(r, cfg, []float64{0.1, 0.2}, 0)
		So(err, ShouldBeNil)

		h := p.Insert(cl)
		got, ok := p.Get(h)
		So(ok, ShouldBeTrue)
		So(got, ShouldEqual, cl)

		p.Remove(h)
		_, ok = p.Get(h)
		So(ok, ShouldBeFalse)
	})
}

func TestNumerositySumMatchesMembers(t *testing.T) {
	Convey("NumerositySum tracks Σnum across inserts and removals", t, func() {
		cfg := testCfg()
		r := rng.New(2)
		p := New(cfg)
		var handles []Handle
		for i := 0; i < 5; i++ {
			cl, _ := classifier.Init(r, cfg, []float64{0.1, 0.1}, 0)
			handles = append(handles, p.Insert(cl))
		}
		So(p.NumerositySum(), ShouldEqual, 5)

		p.Remove(handles[0])
		So(p.NumerositySum(), ShouldEqual, 4)
	})
}

func TestEachSupportsRemovalDuringIteration(t *testing.T) {
	Convey("Each allows the callback to remove the current element", t, func() {
		cfg := testCfg()
		r := rng.New(3)
		p := New(cfg)
		for i := 0; i < 4; i++ {
			cl, _ := classifier.Init(r, cfg, []float64{0.2, 0.2}, 0)
			p.Insert(cl)
		}

		visited := 0
		p.Each(func(h Handle, cl *classifier.Classifier) {
			visited++
			if cl.Error == 0 {
				p.Remove(h)
			}
		})
		So(visited, ShouldEqual, 4)
		So(p.Count(), ShouldEqual, 0)
	})
}

func TestEnforceCapReducesNumerositySum(t *testing.T) {
	Convey("EnforceCap deletes until the numerosity sum is at most N", t, func() {
		cfg := testCfg()
		cfg.N = 3
		r := rng.New(4)
		p := New(cfg)
		for i := 0; i < 6; i++ {
			cl, _ := classifier.Init(r, cfg, []float64{0.3, 0.3}, 0)
			p.Insert(cl)
		}
		So(p.NumerositySum(), ShouldEqual, 6)

		p.EnforceCap(r)
		So(p.NumerositySum(), ShouldBeLessThanOrEqualTo, 3)
	})
}

func TestIncrementNumerosityKeepsFitnessMeanConsistent(t *testing.T) {
	Convey("Incrementing numerosity does not corrupt MeanFitness", t, func() {
		cfg := testCfg()
		r := rng.New(5)
		p := New(cfg)
		cl, _ := classifier.Init(r, cfg, []float64{0.5, 0.5}, 0)
		cl.Fitness = 2.0
		h := p.Insert(cl)

		before := p.MeanFitness()
		p.IncrementNumerosity(h)
		after := p.MeanFitness()

		// one record, same fitness/newNumerosity contribution: mean changes
		// predictably rather than diverging.
		So(after, ShouldAlmostEqual, cl.Fitness/float64(cl.Numerosity), 1e-9)
		_ = before
	})
}
