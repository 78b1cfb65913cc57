package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/swervesim/internal/heading"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Module.SteeringCANID != 5 || cfg.Module.EncoderChannel != 1 {
		t.Errorf("unexpected module ids %+v", cfg.Module)
	}
	hc, err := cfg.HeadingConfig()
	if err != nil {
		t.Fatal(err)
	}
	if hc != heading.DefaultConfig() {
		t.Errorf("heading defaults drifted: %+v", hc)
	}
	if cfg.SimConfig().Steps() != 500 {
		t.Errorf("expected 500 steps, got %d", cfg.SimConfig().Steps())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	doc := `
module:
  steering_can_id: 12
heading:
  arrival_check: wrapped
loop:
  duration: 3
can:
  interface: vcan0
  write_timeout: 25ms
script:
  - {t0: 0, t1: 0.5, right_x: -0.4}
  - {t0: 1, t1: 1.1, target: 0.75}
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Module.SteeringCANID != 12 || cfg.Module.EncoderChannel != 1 {
		t.Errorf("expected file value over default, got %+v", cfg.Module)
	}
	if cfg.Loop.Period != DefaultPeriod || cfg.Loop.Duration != 3 {
		t.Errorf("unexpected loop %+v", cfg.Loop)
	}
	if cfg.CAN.Interface != "vcan0" || cfg.CAN.WriteTimeout != 25*time.Millisecond {
		t.Errorf("unexpected can %+v", cfg.CAN)
	}
	hc, _ := cfg.HeadingConfig()
	if hc.Arrival != heading.ArrivalWrapped {
		t.Error("expected wrapped arrival check")
	}

	segs := cfg.Segments()
	if len(segs) != 2 || segs[0].RightX != -0.4 || segs[1].Target == nil || *segs[1].Target != 0.75 {
		t.Errorf("unexpected segments %+v", segs)
	}
	if segs[0].Target != nil {
		t.Error("segment without target should carry none")
	}
}

func TestLoadOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	os.WriteFile(path, []byte("plant:\n  initial_heading: 0.6\n"), 0644)

	base := GetPreset("wrap")
	cfg, err := LoadOver(path, base)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Plant.InitialHeading != 0.6 {
		t.Errorf("expected file value 0.6, got %f", cfg.Plant.InitialHeading)
	}
	if len(cfg.Script) != 1 || *cfg.Script[0].Target != 0.05 {
		t.Errorf("preset script should survive, got %+v", cfg.Script)
	}
	if base.Plant.InitialHeading != 0.95 {
		t.Error("LoadOver must not modify base")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("loop: [1, 2"), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("loop:\n  period: 0\n"), 0644)
	if _, err := Load(invalid); err == nil || !strings.Contains(err.Error(), "period") {
		t.Errorf("expected period validation error, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("retarget")

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Script) != len(cfg.Script) || *got.Script[1].Target != 0.8 {
		t.Errorf("script lost in round trip: %+v", got.Script)
	}
	if got.CAN.WriteTimeout != cfg.CAN.WriteTimeout {
		t.Errorf("write timeout lost: %s", got.CAN.WriteTimeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"can id too large", func(c *Config) { c.Module.SteeringCANID = 64 }},
		{"negative encoder", func(c *Config) { c.Module.EncoderChannel = -1 }},
		{"zero auto speed", func(c *Config) { c.Heading.MaxAutoTurnSpeed = 0 }},
		{"manual speed above 1", func(c *Config) { c.Heading.MaxManualTurnSpeed = 1.5 }},
		{"zero tolerance", func(c *Config) { c.Heading.ArrivalTolerance = 0 }},
		{"unknown arrival", func(c *Config) { c.Heading.ArrivalCheck = "closest" }},
		{"negative duration", func(c *Config) { c.Loop.Duration = -1 }},
		{"unknown integrator", func(c *Config) { c.Loop.Integrator = "verlet" }},
		{"zero free speed", func(c *Config) { c.Plant.FreeSpeed = 0 }},
		{"negative noise", func(c *Config) { c.Plant.SensorNoise = -0.1 }},
		{"negative timeout", func(c *Config) { c.CAN.WriteTimeout = -time.Second }},
		{"backwards segment", func(c *Config) { c.Script = []Segment{{T0: 2, T1: 1}} }},
		{"stick out of range", func(c *Config) { c.Script = []Segment{{T0: 0, T1: 1, RightX: 2}} }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestValidateNaNTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Script = []Segment{{T0: 0, T1: 1, Target: target(math.NaN())}}

	if err := cfg.Validate(); !errors.Is(err, heading.ErrInvalidHeading) {
		t.Errorf("expected ErrInvalidHeading, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("wrap")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Plant.InitialHeading != 0.95 {
		t.Errorf("expected initial heading 0.95, got %f", cfg.Plant.InitialHeading)
	}

	cfg.Script[0].RightX = 1
	if GetPreset("wrap").Script[0].RightX != 0 {
		t.Error("presets must not share state between calls")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestClone(t *testing.T) {
	cfg := GetPreset("noisy")
	cp := cfg.Clone()

	*cp.Script[0].Target = 0.9
	cp.Plant.Seed = 7
	if *cfg.Script[0].Target != 0.25 || cfg.Plant.Seed != 42 {
		t.Error("clone shares state with the original")
	}
}
