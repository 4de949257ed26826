package prediction

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/rng"
)

func testPredCfg() config.Config {
	cfg := config.Default()
	cfg.NetworkHidden = []int{4}
	cfg.NetworkEta = 0.2
	cfg.NetworkMomentum = 0.8
	return cfg
}

func TestNetworkPredictShape(t *testing.T) {
	Convey("Predict fills an output vector of length k", t, func() {
		cfg := testPredCfg()
		r := rng.New(1)
		n := Rand(r, 3, 2, cfg)
		out := make([]float64, 2)
		n.Predict([]float64{0.1, 0.2, 0.3}, out)
		So(out, ShouldHaveLength, 2)
	})
}

func TestNetworkUpdateReducesError(t *testing.T) {
	Convey("Repeated updates toward a fixed target reduce squared error", t, func() {
		cfg := testPredCfg()
		r := rng.New(2)
		n := Rand(r, 2, 1, cfg)
		x := []float64{0.4, 0.6}
		y := []float64{0.9}

		errAt := func() float64 {
			out := make([]float64, 1)
			n.Predict(x, out)
			d := out[0] - y[0]
			return d * d
		}

		before := errAt()
		for i := 0; i < 200; i++ {
			n.Update(x, y)
		}
		after := errAt()
		So(after, ShouldBeLessThan, before)
	})
}

func TestNetworkCopyIndependence(t *testing.T) {
	Convey("Mutating a copy leaves the original's weights untouched", t, func() {
		cfg := testPredCfg()
		r := rng.New(3)
		orig := Rand(r, 3, 2, cfg).(*Network)
		dup := orig.Copy().(*Network)

		for !dup.layers[0].Mutate(r, 1) {
		}

		So(dup.layers[0].weights[0][0], ShouldNotEqual, orig.layers[0].weights[0][0])
	})
}

func TestNetworkSerializationRoundTrip(t *testing.T) {
	Convey("Serialize/Decode round-trips layer weights", t, func() {
		cfg := testPredCfg()
		r := rng.New(4)
		n := Rand(r, 3, 2, cfg).(*Network)

		var buf bytes.Buffer
		So(n.Serialize(&buf), ShouldBeNil)

		decoded, err := decodeNetwork(&buf, 3, 2, cfg)
		So(err, ShouldBeNil)
		d := decoded.(*Network)
		So(d.layers, ShouldHaveLength, len(n.layers))
		So(d.layers[0].weights, ShouldResemble, n.layers[0].weights)
	})
}

func TestNetworkCrossoverOnlySwapsSameShape(t *testing.T) {
	Convey("Crossover between mismatched networks is a no-op", t, func() {
		cfg := testPredCfg()
		r := rng.New(5)
		a := Rand(r, 3, 2, cfg).(*Network)
		cfg2 := testPredCfg()
		cfg2.NetworkHidden = []int{6}
		b := Rand(r, 3, 2, cfg2).(*Network)

		So(a.Crossover(r, b), ShouldBeFalse)
	})
}
