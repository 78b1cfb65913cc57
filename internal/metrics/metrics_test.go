package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/swervesim/internal/sim"
)

var run = []sim.Sample{
	{Time: 0, Heading: 0.30, Target: 0.10, HasTarget: true, Duty: -0.04, Mode: "seeking"},
	{Time: 0.02, Heading: 0.20, Target: 0.10, HasTarget: true, Duty: -0.02, Mode: "seeking"},
	{Time: 0.04, Heading: 0.1005, Target: 0.10, HasTarget: true, Mode: "seeking", Arrived: true},
	{Time: 0.06, Heading: 0.10, Duty: 0.3, Mode: "manual"},
	{Time: 0.08, Mode: "manual", Fault: "robot: tick fault"},
	{Time: 0.10, Heading: 0.95, Target: 0.05, HasTarget: true, Duty: 0.02, Mode: "seeking"},
}

func observeAll(m sim.Metric) float64 {
	for _, s := range run {
		m.Observe(s)
	}
	return m.Value()
}

func TestMetrics(t *testing.T) {
	tests := []struct {
		metric   sim.Metric
		name     string
		expected float64
	}{
		{NewControlEffort(), "control_effort", (0.04 + 0.02 + 0.3 + 0.02) / 6},
		{NewPeakDuty(), "peak_duty", 0.3},
		{NewTrackingError(), "tracking_error", (0.2 + 0.1 + 0.0005 + 0.1) / 4},
		{NewArrivals(), "arrivals", 1},
		{NewFirstArrival(), "first_arrival", 0.04},
		{NewFaults(), "faults", 1},
	}

	for _, tt := range tests {
		if tt.metric.Name() != tt.name {
			t.Errorf("expected name %s, got %s", tt.name, tt.metric.Name())
		}
		if got := observeAll(tt.metric); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.expected, got)
		}
	}
}

func TestMetricsEmpty(t *testing.T) {
	tests := []struct {
		metric   sim.Metric
		expected float64
	}{
		{NewControlEffort(), 0},
		{NewPeakDuty(), 0},
		{NewTrackingError(), 0},
		{NewArrivals(), 0},
		{NewFirstArrival(), -1},
		{NewFaults(), 0},
	}

	for _, tt := range tests {
		if got := tt.metric.Value(); got != tt.expected {
			t.Errorf("%s: expected %f before any sample, got %f", tt.metric.Name(), tt.expected, got)
		}
	}
}

func TestMetricsReset(t *testing.T) {
	for _, m := range Standard() {
		fresh := m.Value()
		observeAll(m)
		m.Reset()
		if m.Value() != fresh {
			t.Errorf("%s: expected %f after reset, got %f", m.Name(), fresh, m.Value())
		}
	}
}

func TestStandardNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Standard() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
