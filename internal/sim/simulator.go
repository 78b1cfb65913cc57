package sim

import (
	"context"
	"fmt"
	"time"
)

type Simulator struct {
	plant     Plant
	ticker    Ticker
	metrics   []Metric
	observers []Observer
}

func New(plant Plant, ticker Ticker) *Simulator {
	return &Simulator{
		plant:     plant,
		ticker:    ticker,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run steps the loop in simulated time as fast as possible.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	result := s.begin(steps)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return s.finish(result), ctx.Err()
		default:
		}

		if err := s.step(result, i, cfg.Period); err != nil {
			return s.finish(result), err
		}
	}

	return s.finish(result), nil
}

// RunRealtime paces ticks with a wall-clock ticker at cfg.Period. Simulated
// time still advances by exactly one period per tick.
func (s *Simulator) RunRealtime(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	result := s.begin(steps)

	ticker := time.NewTicker(time.Duration(cfg.Period * float64(time.Second)))
	defer ticker.Stop()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return s.finish(result), ctx.Err()
		case <-ticker.C:
		}

		if err := s.step(result, i, cfg.Period); err != nil {
			return s.finish(result), err
		}
	}

	return s.finish(result), nil
}

func (s *Simulator) begin(steps int) *Result {
	for _, m := range s.metrics {
		m.Reset()
	}
	return &Result{
		Samples: make([]Sample, 0, steps),
		Metrics: make(map[string]float64),
	}
}

func (s *Simulator) step(result *Result, i int, dt float64) error {
	t := float64(i) * dt

	sample, err := s.ticker.Tick(t)
	sample.Time = t
	if err != nil {
		result.Faults++
		if sample.Fault == "" {
			sample.Fault = err.Error()
		}
	}

	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, obs := range s.observers {
		obs.OnStep(sample)
	}
	result.Samples = append(result.Samples, sample)

	if err := s.plant.Advance(dt); err != nil {
		return SimError{Time: t, Step: i, Message: err.Error()}
	}
	return nil
}

func (s *Simulator) finish(result *Result) *Result {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = s.plant.State()
	return result
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Period <= 0 {
		return fmt.Errorf("period must be positive, got %f", cfg.Period)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
