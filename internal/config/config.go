package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/swervesim/internal/canbus"
	"github.com/san-kum/swervesim/internal/heading"
	"github.com/san-kum/swervesim/internal/integrators"
	"github.com/san-kum/swervesim/internal/plant"
	"github.com/san-kum/swervesim/internal/robot"
	"github.com/san-kum/swervesim/internal/sim"
)

const (
	DefaultSteeringCANID  = 5
	DefaultEncoderChannel = 1
	DefaultPeriod         = 0.02
	DefaultDuration       = 10.0
	DefaultIntegrator     = "rk4"
)

type Config struct {
	Module  ModuleConfig  `yaml:"module"`
	Heading HeadingConfig `yaml:"heading"`
	Loop    LoopConfig    `yaml:"loop"`
	Plant   PlantConfig   `yaml:"plant"`
	CAN     CANConfig     `yaml:"can"`
	Script  []Segment     `yaml:"script,omitempty"`
	Logging LoggingConfig `yaml:"logging"`
}

type ModuleConfig struct {
	SteeringCANID  int `yaml:"steering_can_id"`
	EncoderChannel int `yaml:"encoder_channel"`
}

type HeadingConfig struct {
	MaxAutoTurnSpeed   float64 `yaml:"max_auto_turn_speed"`
	MaxManualTurnSpeed float64 `yaml:"max_manual_turn_speed"`
	ArrivalTolerance   float64 `yaml:"arrival_tolerance"`
	ArrivalCheck       string  `yaml:"arrival_check"`
}

type LoopConfig struct {
	Period     float64 `yaml:"period"`
	Duration   float64 `yaml:"duration"`
	Integrator string  `yaml:"integrator"`
}

type PlantConfig struct {
	FreeSpeed      float64 `yaml:"free_speed"`
	TimeConstant   float64 `yaml:"time_constant"`
	InitialHeading float64 `yaml:"initial_heading"`
	SensorOffset   float64 `yaml:"sensor_offset"`
	SensorNoise    float64 `yaml:"sensor_noise"`
	Seed           int64   `yaml:"seed"`
}

// CANConfig enables the hardware motor path. An empty interface keeps the
// loop on the simulated rig only.
type CANConfig struct {
	Interface    string        `yaml:"interface"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Segment is one scripted stretch of operator input over [t0, t1).
type Segment struct {
	T0     float64  `yaml:"t0"`
	T1     float64  `yaml:"t1"`
	RightX float64  `yaml:"right_x,omitempty"`
	A      bool     `yaml:"a,omitempty"`
	B      bool     `yaml:"b,omitempty"`
	Target *float64 `yaml:"target,omitempty"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Module: ModuleConfig{
			SteeringCANID:  DefaultSteeringCANID,
			EncoderChannel: DefaultEncoderChannel,
		},
		Heading: HeadingConfig{
			MaxAutoTurnSpeed:   heading.DefaultMaxAutoTurnSpeed,
			MaxManualTurnSpeed: heading.DefaultMaxManualTurnSpeed,
			ArrivalTolerance:   heading.DefaultArrivalTolerance,
			ArrivalCheck:       heading.ArrivalUnwrapped.String(),
		},
		Loop: LoopConfig{
			Period:     DefaultPeriod,
			Duration:   DefaultDuration,
			Integrator: DefaultIntegrator,
		},
		Plant: PlantConfig{
			FreeSpeed:    plant.DefaultFreeSpeed,
			TimeConstant: plant.DefaultTimeConstant,
		},
		CAN: CANConfig{
			WriteTimeout: canbus.DefaultWriteTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML file on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file on top of a copy of base, such as a preset.
// Keys absent from the file keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Module.SteeringCANID < 0 || c.Module.SteeringCANID > canbus.MaxDeviceID {
		return fmt.Errorf("config: steering_can_id must be in [0, %d], got %d", canbus.MaxDeviceID, c.Module.SteeringCANID)
	}
	if c.Module.EncoderChannel < 0 {
		return fmt.Errorf("config: encoder_channel must be non-negative, got %d", c.Module.EncoderChannel)
	}
	hc, err := c.HeadingConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := hc.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Loop.Period <= 0 {
		return fmt.Errorf("config: loop period must be positive, got %f", c.Loop.Period)
	}
	if c.Loop.Duration <= 0 {
		return fmt.Errorf("config: loop duration must be positive, got %f", c.Loop.Duration)
	}
	if _, err := integrators.ByName(c.Loop.Integrator); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.PlantConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.CAN.WriteTimeout < 0 {
		return fmt.Errorf("config: can write_timeout must be non-negative, got %s", c.CAN.WriteTimeout)
	}
	for i, seg := range c.Script {
		if seg.T1 <= seg.T0 {
			return fmt.Errorf("config: script segment %d ends before it starts", i)
		}
		if seg.RightX < -1 || seg.RightX > 1 {
			return fmt.Errorf("config: script segment %d right_x must be in [-1, 1], got %f", i, seg.RightX)
		}
		if seg.Target != nil && (math.IsNaN(*seg.Target) || math.IsInf(*seg.Target, 0)) {
			return fmt.Errorf("config: script segment %d: %w", i, &heading.InvalidHeadingError{Value: *seg.Target})
		}
	}
	return nil
}

func (c *Config) HeadingConfig() (heading.Config, error) {
	arrival, err := heading.ParseArrivalCheck(c.Heading.ArrivalCheck)
	if err != nil {
		return heading.Config{}, err
	}
	return heading.Config{
		MaxAutoTurnSpeed:   c.Heading.MaxAutoTurnSpeed,
		MaxManualTurnSpeed: c.Heading.MaxManualTurnSpeed,
		ArrivalTolerance:   c.Heading.ArrivalTolerance,
		Arrival:            arrival,
	}, nil
}

func (c *Config) PlantConfig() plant.Config {
	return plant.Config{
		FreeSpeed:      c.Plant.FreeSpeed,
		TimeConstant:   c.Plant.TimeConstant,
		InitialHeading: c.Plant.InitialHeading,
		SensorOffset:   c.Plant.SensorOffset,
		SensorNoise:    c.Plant.SensorNoise,
		Seed:           c.Plant.Seed,
	}
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{Period: c.Loop.Period, Duration: c.Loop.Duration}
}

func (c *Config) ModuleConfig() robot.ModuleConfig {
	return robot.ModuleConfig{
		SteeringCANID:  c.Module.SteeringCANID,
		EncoderChannel: c.Module.EncoderChannel,
	}
}

func (c *Config) Segments() []robot.Segment {
	segs := make([]robot.Segment, len(c.Script))
	for i, s := range c.Script {
		segs[i] = robot.Segment{T0: s.T0, T1: s.T1, RightX: s.RightX, A: s.A, B: s.B, Target: s.Target}
	}
	return segs
}

// Clone returns a deep copy; presets hand out clones so callers may edit them.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Script = make([]Segment, len(c.Script))
	for i, s := range c.Script {
		cp.Script[i] = s
		if s.Target != nil {
			v := *s.Target
			cp.Script[i].Target = &v
		}
	}
	return &cp
}
