package prediction

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// wireRecurrentScenario builds a 1-input/1-hidden/1-output recurrent layer
// with fixed weights matching the design scenario 3, bypassing
// InitRandom so the forward-pass values are exactly reproducible.
func wireRecurrentScenario() *RecurrentLayer {
	l := NewRecurrentLayer(1, 1, 1)
	l.input.weights[0][0] = -0.0735234
	l.self.weights[0][0] = -1
	l.output.weights[0][0] = 1
	return l
}

func TestRecurrentLayerForwardScenario(t *testing.T) {
	Convey("Given the worked recurrent forward-pass scenario", t, func() {
		l := wireRecurrentScenario()
		x := []float64{0.90598097}

		out1 := l.Forward(x)
		So(out1[0], ShouldAlmostEqual, 0.48335, 0.00005)

		out2 := l.Forward(x)
		So(out2[0], ShouldAlmostEqual, 0.36587, 0.00005)

		out3 := l.Forward(x)
		So(out3[0], ShouldAlmostEqual, 0.39353, 0.00005)
	})
}

func TestRecurrentLayerNewEpisodeResetsState(t *testing.T) {
	Convey("NewEpisode zeros hidden state so a repeated scenario replays identically", t, func() {
		l := wireRecurrentScenario()
		x := []float64{0.90598097}

		first := l.Forward(x)
		l.Forward(x)
		l.Forward(x)

		l.NewEpisode()
		replay := l.Forward(x)

		So(replay[0], ShouldAlmostEqual, first[0], 1e-9)
	})
}

func TestRecurrentLayerConvergesTowardTarget(t *testing.T) {
	Convey("Given the worked recurrent forward-pass scenario continued into training", t, func() {
		l := wireRecurrentScenario()
		x := []float64{0.90598097}
		target := 0.946146918

		l.Forward(x)
		l.Forward(x)
		out3 := l.Forward(x)[0]
		So(out3, ShouldAlmostEqual, 0.39353, 0.00005)

		Convey("one backward pass and update toward the target moves the next output to ~0.39887", func() {
			l.Backward([]float64{target - out3})
			l.Update(0.1, 0.9, 0)

			out4 := l.Forward(x)[0]
			So(out4, ShouldAlmostEqual, 0.39887, 0.0005)

			Convey("400 such train iterations on the same (x, y) converge output to ~y", func() {
				out := out4
				for i := 0; i < 399; i++ {
					l.Backward([]float64{target - out})
					l.Update(0.1, 0.9, 0)
					out = l.Forward(x)[0]
				}
				So(out, ShouldAlmostEqual, target, 0.01)
			})
		})
	})
}
