// Package robot is the periodic shell around the heading controller: it maps
// operator input onto controller calls once per tick and keeps the loop alive
// when a tick fails.
package robot

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/san-kum/swervesim/internal/heading"
	"github.com/san-kum/swervesim/internal/sim"
)

// ModuleConfig identifies the swerve module's hardware channels.
type ModuleConfig struct {
	SteeringCANID  int
	EncoderChannel int
}

// TickError is returned for a tick that failed or panicked. The motor has
// already been commanded to zero when it is returned.
type TickError struct {
	Time float64
	Err  error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("robot: tick fault at t=%.3fs: %v", e.Time, e.Err)
}

func (e *TickError) Unwrap() error { return e.Err }

// Robot implements sim.Ticker.
type Robot struct {
	ctrl  *heading.Controller
	motor heading.MotorDriver
	in    Input
	log   *slog.Logger

	faults   int
	rejected int
	lastMode heading.Mode
}

// New wires a controller to its input. motor must be the same driver the
// controller writes to; it receives the fail-safe zero after a fault.
func New(ctrl *heading.Controller, motor heading.MotorDriver, in Input, log *slog.Logger) *Robot {
	if log == nil {
		log = slog.Default()
	}
	return &Robot{
		ctrl:  ctrl,
		motor: motor,
		in:    in,
		log:   log,
	}
}

func (r *Robot) Controller() *heading.Controller { return r.ctrl }

func (r *Robot) Faults() int { return r.faults }

// Rejected counts target requests refused as invalid headings.
func (r *Robot) Rejected() int { return r.rejected }

func (r *Robot) Tick(t float64) (s sim.Sample, err error) {
	s.Time = t
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		if err != nil {
			err = &TickError{Time: t, Err: err}
			r.failSafe(err)
			s.Duty = 0
			s.Mode = r.ctrl.Mode().String()
			s.Fault = err.Error()
		}
	}()

	if c, ok := r.in.(Clocked); ok {
		c.Seek(t)
	}
	if err := r.teleop(t); err != nil {
		return s, err
	}

	cmd, err := r.ctrl.Execute()
	if err != nil {
		return s, err
	}

	s.Heading = cmd.Heading
	s.Duty = cmd.Duty
	s.Mode = cmd.Mode.String()
	s.Arrived = cmd.Arrived
	if cmd.Mode == heading.ModeSeeking {
		s.Target, s.HasTarget = cmd.Target, true
	}
	r.trackMode(t, cmd)
	return s, nil
}

// teleop applies operator input. A refused target leaves the controller in
// its prior mode and the tick carries on to Execute.
func (r *Robot) teleop(t float64) error {
	if r.in.AButton() {
		if err := r.setTarget(t, 0); err != nil {
			return err
		}
	} else {
		r.ctrl.Steer(r.in.RightX())
	}
	if r.in.BButton() {
		r.ctrl.CancelTargetHeading()
	}
	if ts, ok := r.in.(TargetSource); ok {
		if v, ok := ts.PendingTarget(); ok {
			if err := r.setTarget(t, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Robot) setTarget(t, v float64) error {
	err := r.ctrl.SetTargetHeading(v)
	if errors.Is(err, heading.ErrInvalidHeading) {
		r.rejected++
		r.log.Warn("target rejected", "t", t, "err", err, "mode", r.ctrl.Mode().String())
		return nil
	}
	return err
}

func (r *Robot) trackMode(t float64, cmd heading.Command) {
	if cmd.Arrived {
		r.log.Debug("target reached", "t", t, "target", cmd.Target, "heading", cmd.Heading)
	}
	mode := cmd.Mode
	if cmd.Arrived {
		mode = heading.ModeManual
	}
	if mode != r.lastMode {
		r.log.Debug("mode change", "t", t, "from", r.lastMode.String(), "to", mode.String())
		r.lastMode = mode
	}
}

func (r *Robot) failSafe(err error) {
	r.faults++
	r.log.Warn("tick fault", "err", err, "faults", r.faults)
	if serr := r.motor.Set(0); serr != nil {
		r.log.Error("fail-safe motor stop failed", "err", serr)
	}
}

// MotorFanout mirrors every command to each driver. All drivers are written
// even when an earlier one fails.
type MotorFanout []heading.MotorDriver

func (f MotorFanout) Set(duty float64) error {
	var errs []error
	for _, m := range f {
		if err := m.Set(duty); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
