package motion

import (
	"fmt"
	"strings"

	"github.com/san-kum/wirespool/internal/profile"
)

const (
	MinVelocity          = profile.MinVelocity
	MaxVelocity          = profile.MaxVelocity
	DefaultMaxWireLength = 5.0

	// PositionTolerance is the distance, in meters, below which a move is
	// considered already complete.
	PositionTolerance = 1e-6
)

// ErrorCode is the result of every controller operation.
type ErrorCode int

const (
	Success ErrorCode = iota
	InvalidMotorPointer
	InvalidWireThickness
	InvalidInnerRadius
	InvalidAccelerationTime
	InvalidDecelerationTime
	InvalidVelocity
	InvalidMaxLength
	OutOfRange
	MotorBusy
	ProfileUnavailable
)

var codeNames = map[ErrorCode]string{
	Success:                 "success",
	InvalidMotorPointer:     "invalid motor pointer",
	InvalidWireThickness:    "invalid wire thickness",
	InvalidInnerRadius:      "invalid inner radius",
	InvalidAccelerationTime: "invalid acceleration time",
	InvalidDecelerationTime: "invalid deceleration time",
	InvalidVelocity:         "invalid velocity",
	InvalidMaxLength:        "invalid max length",
	OutOfRange:              "out of range",
	MotorBusy:               "motor busy",
	ProfileUnavailable:      "profile unavailable",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("error code %d", int(c))
}

// Error lets a non-success code travel as an error.
func (c ErrorCode) Error() string {
	return "motion: " + c.String()
}

// Err returns nil for Success and the code itself otherwise.
func (c ErrorCode) Err() error {
	if c == Success {
		return nil
	}
	return c
}

// MotionState is the phase a controller is in.
type MotionState int

const (
	Stopped MotionState = iota
	Accelerating
	ConstantVelocity
	Decelerating
)

func (s MotionState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Accelerating:
		return "accelerating"
	case ConstantVelocity:
		return "constant_velocity"
	case Decelerating:
		return "decelerating"
	default:
		return "unknown"
	}
}

func (s MotionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ProfileType selects the velocity profile shape. Its String form is the
// profile registry name.
type ProfileType int

const (
	Trapezoid ProfileType = iota
	SCurve
)

func (p ProfileType) String() string {
	switch p {
	case Trapezoid:
		return "trapezoid"
	case SCurve:
		return "s_curve"
	default:
		return "unknown"
	}
}

func ParseProfileType(name string) (ProfileType, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "_")) {
	case "trapezoid", "":
		return Trapezoid, nil
	case "s_curve", "scurve":
		return SCurve, nil
	default:
		return Trapezoid, fmt.Errorf("unknown profile type: %s", name)
	}
}

func stateFor(ph profile.Phase) (MotionState, bool) {
	switch ph {
	case profile.PhaseAccel:
		return Accelerating, true
	case profile.PhaseCruise:
		return ConstantVelocity, true
	case profile.PhaseDecel:
		return Decelerating, true
	default:
		return Stopped, false
	}
}
