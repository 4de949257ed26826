package persistence

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/engine"
	"github.com/rpreen/xcsf/rng"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	Convey("Given a trained engine, save then load reproduces identical predictions", t, func() {
		cfg := config.Default()
		cfg.N = 50
		cfg.NumXVars = 2
		cfg.NumYVars = 1
		cfg.Seed = 7

		r := rng.New(cfg.Seed)
		eng := engine.New(cfg, r)

		for i := 0; i < 30; i++ {
			x := []float64{r.Float64(), r.Float64()}
			y := []float64{r.Float64()}
			m, err := eng.BuildMatchSet(x)
			So(err, ShouldBeNil)
			eng.Aggregate(x, m)
			eng.Update(m, x, y)
			eng.MaybeRunEA(m)
		}

		probes := [][]float64{{0.1, 0.2}, {0.5, 0.5}, {0.9, 0.1}}
		want := make([][]float64, len(probes))
		for i, p := range probes {
			m, empty := eng.MatchWithoutCovering(p)
			if empty {
				want[i] = make([]float64, cfg.NumYVars)
			} else {
				want[i] = eng.Aggregate(p, m)
			}
		}

		dir := t.TempDir()
		path := filepath.Join(dir, "pop.bin")
		So(Save(path, eng, r), ShouldBeNil)

		reloaded, _, err := Load(path, cfg)
		So(err, ShouldBeNil)
		So(reloaded.Population().Count(), ShouldEqual, eng.Population().Count())

		for i, p := range probes {
			m, empty := reloaded.MatchWithoutCovering(p)
			var got []float64
			if empty {
				got = make([]float64, cfg.NumYVars)
			} else {
				got = reloaded.Aggregate(p, m)
			}
			So(got, ShouldResemble, want[i])
		}
	})
}

func TestLoadRejectsDimensionMismatch(t *testing.T) {
	Convey("Loading with a config of different dimensionality fails as a serialization mismatch", t, func() {
		cfg := config.Default()
		cfg.NumXVars, cfg.NumYVars = 2, 1
		eng := engine.New(cfg, rng.New(1))

		dir := t.TempDir()
		path := filepath.Join(dir, "pop.bin")
		So(Save(path, eng, rng.New(1)), ShouldBeNil)

		wrongCfg := cfg
		wrongCfg.NumXVars = 3
		_, _, err := Load(path, wrongCfg)
		So(err, ShouldNotBeNil)
	})
}

func TestLoadMissingFile(t *testing.T) {
	Convey("Loading a nonexistent file returns an error", t, func() {
		_, _, err := Load(filepath.Join(os.TempDir(), "does-not-exist.bin"), config.Default())
		So(err, ShouldNotBeNil)
	})
}
