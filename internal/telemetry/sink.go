// Package telemetry carries dashboard samples out of the control loop.
//
// Every [Sink] is fire-and-forget: Publish never blocks the caller and never
// reports failure.
package telemetry

import (
	"log/slog"
	"sync"

	"github.com/san-kum/swervesim/internal/sim"
)

type Sink interface {
	Publish(label string, value float64)
}

// Multi fans every sample out to each sink in order.
type Multi []Sink

func (m Multi) Publish(label string, value float64) {
	for _, s := range m {
		s.Publish(label, value)
	}
}

// Recorder keeps the latest value per label.
type Recorder struct {
	mu     sync.RWMutex
	latest map[string]float64
	count  int
}

func NewRecorder() *Recorder {
	return &Recorder{latest: make(map[string]float64)}
}

func (r *Recorder) Publish(label string, value float64) {
	r.mu.Lock()
	r.latest[label] = value
	r.count++
	r.mu.Unlock()
}

func (r *Recorder) Latest(label string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.latest[label]
	return v, ok
}

func (r *Recorder) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// LogSink writes samples at debug level.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(label string, value float64) {
	s.log.Debug("telemetry", "label", label, "value", value)
}

// SampleObserver republishes what the loop commanded each tick, alongside the
// controller's own heading sample. Duty and target are scaled like heading.
type SampleObserver struct {
	Sink Sink
}

func (o SampleObserver) OnStep(s sim.Sample) {
	o.Sink.Publish("duty", float64(int(1000*s.Duty)))
	if s.HasTarget {
		o.Sink.Publish("target", float64(int(1000*s.Target)))
	}
	if s.Fault != "" {
		o.Sink.Publish("fault", s.Time)
	}
}
