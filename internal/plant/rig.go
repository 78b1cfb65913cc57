package plant

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/san-kum/swervesim/internal/heading"
	"github.com/san-kum/swervesim/internal/sim"
)

var ErrInvalidState = errors.New("plant: invalid state (NaN or Inf detected)")

const (
	DefaultFreeSpeed    = 7.4
	DefaultTimeConstant = 0.05
)

type Config struct {
	FreeSpeed      float64
	TimeConstant   float64
	InitialHeading float64
	SensorOffset   float64
	SensorNoise    float64
	Seed           int64
}

func DefaultConfig() Config {
	return Config{
		FreeSpeed:    DefaultFreeSpeed,
		TimeConstant: DefaultTimeConstant,
	}
}

func (c Config) Validate() error {
	if c.FreeSpeed <= 0 {
		return fmt.Errorf("plant: free speed must be positive, got %f", c.FreeSpeed)
	}
	if c.TimeConstant <= 0 {
		return fmt.Errorf("plant: time constant must be positive, got %f", c.TimeConstant)
	}
	if c.SensorNoise < 0 {
		return fmt.Errorf("plant: sensor noise must be non-negative, got %f", c.SensorNoise)
	}
	return nil
}

// Rig is a bench steering module: the actuator dynamics plus the motor
// driver and absolute encoder that the heading controller talks to.
type Rig struct {
	mu      sync.Mutex
	dyn     *Steering
	integ   sim.Integrator
	x       sim.State
	duty    float64
	t       float64
	offset  float64
	noise   float64
	rng     *rand.Rand
	readErr error
}

func NewRig(cfg Config, integ sim.Integrator) (*Rig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Rig{
		dyn:    NewSteering(cfg.FreeSpeed, cfg.TimeConstant),
		integ:  integ,
		x:      sim.State{cfg.InitialHeading - cfg.SensorOffset, 0},
		offset: cfg.SensorOffset,
		noise:  cfg.SensorNoise,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Set latches a duty cycle, clamped to [-1, 1], until the next call.
func (r *Rig) Set(duty float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duty = clampDuty(duty)
	return nil
}

// Read returns the encoder's absolute position in [0, 1).
func (r *Rig) Read() (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return 0, r.readErr
	}
	pos := r.x[0] + r.offset
	if r.noise > 0 {
		pos += r.noise * r.rng.NormFloat64()
	}
	return heading.Wrap(pos), nil
}

// InjectReadFault makes every Read fail with err until cleared with nil.
func (r *Rig) InjectReadFault(err error) {
	r.mu.Lock()
	r.readErr = err
	r.mu.Unlock()
}

func (r *Rig) Advance(dt float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.integ.Step(r.dyn, r.x, sim.Control{r.duty}, r.t, dt)
	if !next.IsValid() {
		return ErrInvalidState
	}
	r.x = next
	r.t += dt
	return nil
}

func (r *Rig) State() sim.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.x.Clone()
}

func (r *Rig) Duty() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duty
}
