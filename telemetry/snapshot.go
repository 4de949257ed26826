package telemetry

import (
	"context"
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"github.com/rpreen/xcsf/classifier"
	"github.com/rpreen/xcsf/engine"
	"github.com/rpreen/xcsf/population"
)

// Snapshot is the raw DataModel read off the engine each poll tick.
type Snapshot struct {
	Time              int
	Count             int
	NumerositySum     int
	MeanFitness       float64
	SampleNumerosity  []int
	SampleError       []float64
	SampleFitness     []float64
}

// PopulationView is the JSON-facing ViewModel derived from a Snapshot.
type PopulationView struct {
	Time          int     `json:"time"`
	Count         int     `json:"count"`
	NumerositySum int     `json:"numerositySum"`
	MeanFitness   float64 `json:"meanFitness"`
}

// ToPopulationView is the Pipeline conversion function for the population
// summary sink.
func ToPopulationView(s Snapshot) PopulationView {
	return PopulationView{
		Time:          s.Time,
		Count:         s.Count,
		NumerositySum: s.NumerositySum,
		MeanFitness:   s.MeanFitness,
	}
}

// Poll reads eng's aggregate statistics once.
func Poll(eng *engine.Engine) Snapshot {
	pop := eng.Population()
	s := Snapshot{
		Time:          eng.Time(),
		Count:         pop.Count(),
		NumerositySum: pop.NumerositySum(),
		MeanFitness:   pop.MeanFitness(),
	}
	pop.Each(func(_ population.Handle, cl *classifier.Classifier) {
		s.SampleNumerosity = append(s.SampleNumerosity, cl.Numerosity)
		s.SampleError = append(s.SampleError, cl.Error)
		s.SampleFitness = append(s.SampleFitness, cl.Fitness)
	})
	return s
}

// StreamSnapshots polls eng on a fixed interval using
// channerics.NewTicker, matching the ping/pong liveness ticker pattern
// niceyeti-tabular's websocket server uses, and emits one Snapshot per tick
// until ctx is cancelled.
func StreamSnapshots(ctx context.Context, eng *engine.Engine, interval time.Duration) <-chan Snapshot {
	out := make(chan Snapshot)
	ticks := channerics.NewTicker(ctx.Done(), interval)
	go func() {
		defer close(out)
		for range ticks {
			select {
			case out <- Poll(eng):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
