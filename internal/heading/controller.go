package heading

import (
	"fmt"
	"math"
	"sync"
)

const (
	DefaultMaxAutoTurnSpeed   = 0.2
	DefaultMaxManualTurnSpeed = 0.3
	DefaultArrivalTolerance   = 0.001

	// TelemetryLabel is the dashboard key for the current heading, published
	// as int(1000*heading).
	TelemetryLabel = "heading"
)

// MotorDriver accepts a signed duty cycle in [-1.0, 1.0].
type MotorDriver interface {
	Set(duty float64) error
}

// PositionSensor returns an absolute position normalized to [0.0, 1.0).
type PositionSensor interface {
	Read() (float64, error)
}

// TelemetrySink is fire-and-forget; it must not block.
type TelemetrySink interface {
	Publish(label string, value float64)
}

// ArrivalCheck selects how Execute decides that the target was reached.
type ArrivalCheck int

const (
	// ArrivalUnwrapped compares |target - curr| without wraparound. It never
	// fires when curr and target sit on opposite sides of the 0/1 seam.
	ArrivalUnwrapped ArrivalCheck = iota
	// ArrivalWrapped compares the shorter angular distance.
	ArrivalWrapped
)

func (a ArrivalCheck) String() string {
	switch a {
	case ArrivalUnwrapped:
		return "unwrapped"
	case ArrivalWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

// ParseArrivalCheck accepts "unwrapped" (or "") and "wrapped".
func ParseArrivalCheck(s string) (ArrivalCheck, error) {
	switch s {
	case "", "unwrapped":
		return ArrivalUnwrapped, nil
	case "wrapped":
		return ArrivalWrapped, nil
	}
	return ArrivalUnwrapped, fmt.Errorf("heading: unknown arrival check %q", s)
}

// Config holds the tuning constants; it is fixed once New returns.
type Config struct {
	MaxAutoTurnSpeed   float64
	MaxManualTurnSpeed float64
	ArrivalTolerance   float64
	Arrival            ArrivalCheck
}

func DefaultConfig() Config {
	return Config{
		MaxAutoTurnSpeed:   DefaultMaxAutoTurnSpeed,
		MaxManualTurnSpeed: DefaultMaxManualTurnSpeed,
		ArrivalTolerance:   DefaultArrivalTolerance,
		Arrival:            ArrivalUnwrapped,
	}
}

func (c Config) Validate() error {
	if c.MaxAutoTurnSpeed <= 0 || c.MaxAutoTurnSpeed > 1 {
		return fmt.Errorf("heading: max auto turn speed must be in (0, 1], got %f", c.MaxAutoTurnSpeed)
	}
	if c.MaxManualTurnSpeed <= 0 || c.MaxManualTurnSpeed > 1 {
		return fmt.Errorf("heading: max manual turn speed must be in (0, 1], got %f", c.MaxManualTurnSpeed)
	}
	if c.ArrivalTolerance <= 0 {
		return fmt.Errorf("heading: arrival tolerance must be positive, got %f", c.ArrivalTolerance)
	}
	if c.Arrival != ArrivalUnwrapped && c.Arrival != ArrivalWrapped {
		return fmt.Errorf("heading: unknown arrival check %d", c.Arrival)
	}
	return nil
}

// Mode reports whether the controller is steering manually or seeking.
type Mode int

const (
	ModeManual Mode = iota
	ModeSeeking
)

func (m Mode) String() string {
	if m == ModeSeeking {
		return "seeking"
	}
	return "manual"
}

// Command describes what one Execute call sent to the motor.
type Command struct {
	Heading float64
	Duty    float64
	// Mode is the mode the tick ran in; an arriving tick reports ModeSeeking.
	Mode    Mode
	Target  float64
	Diff    float64
	Arrived bool
}

// Controller steers one module's heading. Its methods are safe for
// concurrent use.
type Controller struct {
	cfg   Config
	motor MotorDriver
	enc   PositionSensor
	sink  TelemetrySink

	mu        sync.Mutex
	manual    float64
	target    float64
	hasTarget bool
}

// New builds a controller in manual mode with zero steering intensity. A nil
// sink discards telemetry.
func New(cfg Config, motor MotorDriver, enc PositionSensor, sink TelemetrySink) *Controller {
	if sink == nil {
		sink = discard{}
	}
	return &Controller{
		cfg:   cfg,
		motor: motor,
		enc:   enc,
		sink:  sink,
	}
}

func (c *Controller) Config() Config { return c.cfg }

// SetTargetHeading starts auto-seek toward v, reduced modulo 1.0 into
// [0.0, 1.0). NaN and infinities are rejected with *InvalidHeadingError.
func (c *Controller) SetTargetHeading(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &InvalidHeadingError{Value: v}
	}
	if v < 0 || v >= 1 {
		v = Wrap(v)
	}

	c.mu.Lock()
	c.target = v
	c.hasTarget = true
	c.mu.Unlock()
	return nil
}

func (c *Controller) CancelTargetHeading() {
	c.mu.Lock()
	c.target = 0
	c.hasTarget = false
	c.mu.Unlock()
}

// Steer stores the manual intensity verbatim. It is ignored while seeking.
func (c *Controller) Steer(intensity float64) {
	c.mu.Lock()
	c.manual = intensity
	c.mu.Unlock()
}

// Heading reads the sensor; nothing is cached.
func (c *Controller) Heading() (float64, error) {
	v, err := c.enc.Read()
	if err != nil {
		return 0, fmt.Errorf("heading: read sensor: %w", err)
	}
	return v, nil
}

func (c *Controller) TargetHeading() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target, c.hasTarget
}

func (c *Controller) ManualIntensity() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manual
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasTarget {
		return ModeSeeking
	}
	return ModeManual
}

// Execute runs one control tick. Sensor and motor failures are returned
// unhandled; a failed read writes nothing to the motor.
func (c *Controller) Execute() (Command, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	curr, err := c.Heading()
	if err != nil {
		return Command{}, err
	}
	c.sink.Publish(TelemetryLabel, float64(int(1000*curr)))

	cmd := Command{Heading: curr, Mode: ModeManual}

	if !c.hasTarget {
		cmd.Duty = c.manual * c.cfg.MaxManualTurnSpeed
		return cmd, c.set(cmd.Duty)
	}

	cmd.Mode = ModeSeeking
	cmd.Target = c.target
	cmd.Diff = Wrap(curr - c.target)

	if c.arrived(curr, cmd.Diff) {
		c.target = 0
		c.hasTarget = false
		cmd.Arrived = true
		return cmd, c.set(0)
	}

	cmd.Duty = Shape(cmd.Diff, c.cfg.MaxAutoTurnSpeed)
	return cmd, c.set(cmd.Duty)
}

func (c *Controller) arrived(curr, diff float64) bool {
	if c.cfg.Arrival == ArrivalWrapped {
		return math.Min(diff, 1.0-diff) < c.cfg.ArrivalTolerance
	}
	return math.Abs(c.target-curr) < c.cfg.ArrivalTolerance
}

func (c *Controller) set(duty float64) error {
	if err := c.motor.Set(duty); err != nil {
		return fmt.Errorf("heading: set motor: %w", err)
	}
	return nil
}

type discard struct{}

func (discard) Publish(string, float64) {}
