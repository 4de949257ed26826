// Package telemetry turns engine snapshots into JSON streams for the api
// package's websocket endpoint. Pipeline mirrors fastview.ViewBuilder's
// source-to-viewmodel-to-fanned-out-views shape, stripped of html/template
// since there is no markup to render here, every sink instead emitting
// structured JSON.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"

	channerics "github.com/niceyeti/channerics/channels"
)

// Sink consumes a stream of view models and exposes its own derived
// output stream; each concrete sink decides what subset or shape of the
// view model it cares about (e.g. population summary vs. per-classifier
// detail).
type Sink interface {
	// Updates returns JSON-encoded frames for this sink's view of the data.
	Updates() <-chan []byte
}

// SinkFunc builds one Sink from a done channel and its fanned-out view
// model stream, mirroring fastview.ViewBuilderFunc.
type SinkFunc[ViewModel any] func(<-chan struct{}, <-chan ViewModel) Sink

// Pipeline wires a DataModel source through a ViewModel conversion to N
// independently-consuming sinks.
type Pipeline[DataModel any, ViewModel any] struct {
	source   <-chan DataModel
	convert  func(DataModel) ViewModel
	sinkFns  []SinkFunc[ViewModel]
	done     <-chan struct{}
}

// NewPipeline returns an empty pipeline for the given data/view model pair.
func NewPipeline[DataModel any, ViewModel any]() *Pipeline[DataModel, ViewModel] {
	return &Pipeline[DataModel, ViewModel]{}
}

// WithSource sets the input stream and the conversion from raw data model
// to view model.
func (p *Pipeline[DataModel, ViewModel]) WithSource(
	input <-chan DataModel,
	convert func(DataModel) ViewModel,
) *Pipeline[DataModel, ViewModel] {
	p.source = input
	p.convert = convert
	return p
}

// WithSink registers one more consumer of the pipeline's view model stream.
func (p *Pipeline[DataModel, ViewModel]) WithSink(fn SinkFunc[ViewModel]) *Pipeline[DataModel, ViewModel] {
	p.sinkFns = append(p.sinkFns, fn)
	return p
}

// WithContext ensures every fanned-out channel closes when ctx is done.
func (p *Pipeline[DataModel, ViewModel]) WithContext(ctx context.Context) *Pipeline[DataModel, ViewModel] {
	p.done = ctx.Done()
	return p
}

// ErrNoSinks is returned by Build if no sink was registered.
var ErrNoSinks = errors.New("telemetry: no sinks registered: WithSink must be called")

// ErrNoSource is returned by Build if WithSource was never called.
var ErrNoSource = errors.New("telemetry: no source registered: WithSource must be called")

// Build connects the source through the conversion function and fans the
// result out to every registered sink.
func (p *Pipeline[DataModel, ViewModel]) Build() ([]Sink, error) {
	if len(p.sinkFns) == 0 {
		return nil, ErrNoSinks
	}
	if p.convert == nil {
		return nil, ErrNoSource
	}
	vmChan := channerics.Convert(p.done, p.source, p.convert)
	vmChans := channerics.Broadcast(p.done, vmChan, len(p.sinkFns))

	sinks := make([]Sink, len(p.sinkFns))
	for i, build := range p.sinkFns {
		sinks[i] = build(p.done, vmChans[i])
	}
	return sinks, nil
}

// jsonSink marshals each incoming view model to JSON on its Updates
// channel, dropping (rather than blocking) a frame when the consumer is
// slower than the producer -- telemetry is best-effort, per the design's
// framing of observability as an ambient, non-authoritative concern.
type jsonSink[ViewModel any] struct {
	updates chan []byte
}

// NewJSONSink returns a SinkFunc that simply marshals every view model it
// receives to JSON.
func NewJSONSink[ViewModel any]() SinkFunc[ViewModel] {
	return func(done <-chan struct{}, in <-chan ViewModel) Sink {
		s := &jsonSink[ViewModel]{updates: make(chan []byte, 8)}
		go func() {
			defer close(s.updates)
			for {
				select {
				case vm, ok := <-in:
					if !ok {
						return
					}
					b, err := json.Marshal(vm)
					if err != nil {
						continue
					}
					select {
					case s.updates <- b:
					default:
						// Slow consumer: drop this frame rather than block the pipeline.
					}
				case <-done:
					return
				}
			}
		}()
		return s
	}
}

func (s *jsonSink[ViewModel]) Updates() <-chan []byte { return s.updates }
