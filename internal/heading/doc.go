// Package heading implements closed-loop heading control for the steering
// actuator of a single swerve module.
//
// A [Controller] is invoked once per control tick. It either passes manual
// steering input through to the motor, scaled by the manual speed cap, or
// seeks a stored target heading along the shorter path around the unit
// circle:
//
//   - [Controller.Steer]: record the operator's steering intensity
//   - [Controller.SetTargetHeading]: start or retarget auto-seek
//   - [Controller.CancelTargetHeading]: return to manual steering
//   - [Controller.Execute]: read the sensor and command the motor
//
// Headings are normalized to [0.0, 1.0), where 1.0 wraps to 0.0. A positive
// duty cycle is expected to increase the sensor reading.
//
// # Usage
//
//	ctrl := heading.New(heading.DefaultConfig(), motor, encoder, dashboard)
//	_ = ctrl.SetTargetHeading(0.25)
//	cmd, err := ctrl.Execute() // once per tick
//
// # Thread Safety
//
// All Controller methods may be called concurrently. A single mutex guards the
// manual intensity and the target and is held for the whole of Execute.
package heading
