package config

import "sort"

func target(v float64) *float64 { return &v }

// Presets are bench scenarios layered over DefaultConfig.
var Presets = map[string]func(c *Config){
	// A held briefly from 0.4; the module homes to 0 the short way.
	"home": func(c *Config) {
		c.Loop.Duration = 8
		c.Plant.InitialHeading = 0.4
		c.Script = []Segment{{T0: 0, T1: 0.1, A: true}}
	},
	// Seek from 0.95 to 0.05 through the 0/1 seam.
	"wrap": func(c *Config) {
		c.Loop.Duration = 6
		c.Plant.InitialHeading = 0.95
		c.Script = []Segment{{T0: 0, T1: 0.1, Target: target(0.05)}}
	},
	// Seek to the antipode; the tie at diff 0.5 turns in the decreasing direction.
	"antipode": func(c *Config) {
		c.Loop.Duration = 8
		c.Script = []Segment{{T0: 0, T1: 0.1, Target: target(0.5)}}
	},
	"manual": func(c *Config) {
		c.Loop.Duration = 4
		c.Plant.InitialHeading = 0.25
		c.Script = []Segment{
			{T0: 0, T1: 1, RightX: 1},
			{T0: 1, T1: 2, RightX: -0.5},
			{T0: 3, T1: 3.5, RightX: 0.25},
		}
	},
	// Retarget mid-seek, then cancel with B before the second target is reached.
	"retarget": func(c *Config) {
		c.Loop.Duration = 6
		c.Plant.InitialHeading = 0.1
		c.Script = []Segment{
			{T0: 0, T1: 0.1, Target: target(0.3)},
			{T0: 1, T1: 1.1, Target: target(0.8)},
			{T0: 1.5, T1: 1.52, B: true},
		}
	},
	// Homing onto 0 from just below the seam needs the wrapped arrival check.
	"seam": func(c *Config) {
		c.Loop.Duration = 6
		c.Heading.ArrivalCheck = "wrapped"
		c.Plant.InitialHeading = 0.9
		c.Script = []Segment{{T0: 0, T1: 0.1, A: true}}
	},
	"noisy": func(c *Config) {
		c.Loop.Duration = 8
		c.Heading.ArrivalCheck = "wrapped"
		c.Plant.SensorNoise = 0.0003
		c.Plant.Seed = 42
		c.Script = []Segment{{T0: 0, T1: 0.1, Target: target(0.25)}}
	},
}

// GetPreset returns a fresh config for the named scenario, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
