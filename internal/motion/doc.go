// Package motion moves wire on and off a spool.
//
// A [Controller] validates a requested wire position, asks a
// [profile.Generator] for a velocity profile, converts it into cumulative
// rotation commands through the spool [geometry.Model] and hands them to an
// [actuator.Actuator].
//
// Two execution paths share the same planning:
//
//   - [Controller.MoveTo] / [Controller.MoveRelative] dispatch the whole
//     command sequence and return once the actuator has it.
//   - [Controller.Run] / [Controller.RunRelative] step an
//     [actuator.Stepper] one command per sample, report phase changes to
//     registered [Observer]s and stop the actuator when the context is
//     canceled.
//
// Every validation failure is reported as an [ErrorCode]; nothing panics.
//
// # Thread Safety
//
// Controller methods are safe for concurrent use. Only one move may be in
// flight; a second move, or a parameter change during a staged move, is
// rejected with [MotorBusy].
package motion
