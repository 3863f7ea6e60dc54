// Package actuator defines the rotation backend a motion controller drives
// and a deterministic simulated implementation.
package actuator

// Actuator executes absolute rotation command sequences (degrees). The
// controller uses an Actuator but does not own it.
type Actuator interface {
	// ExecuteRotationProfile applies seq; an empty sequence is a no-op.
	ExecuteRotationProfile(seq []float64)
	// Stop halts execution and keeps the last applied rotation.
	Stop()
	CurrentRotation() float64
	IsRunning() bool
	// ResetPosition zeroes the current rotation.
	ResetPosition()
}

// Stepper is an Actuator that can apply a loaded sequence one command at a
// time.
type Stepper interface {
	Actuator
	LoadProfile(seq []float64)
	StartExecution()
	Step()
}
