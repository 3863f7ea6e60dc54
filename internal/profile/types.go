package profile

import (
	"fmt"
	"math"
)

// SampleInterval is the fixed spacing of velocity samples, in seconds.
const SampleInterval = 0.001

const (
	MinVelocity = 0.01
	MaxVelocity = 1.0
)

// Params are the motion limits of a move. Times are in seconds, velocity in
// meters per second.
type Params struct {
	AccelerationTime float64 `yaml:"acceleration_time" json:"acceleration_time"`
	DecelerationTime float64 `yaml:"deceleration_time" json:"deceleration_time"`
	ConstantVelocity float64 `yaml:"constant_velocity" json:"constant_velocity"`
}

func DefaultParams() Params {
	return Params{
		AccelerationTime: 0.5,
		DecelerationTime: 0.5,
		ConstantVelocity: 0.5,
	}
}

func (p Params) Validate() error {
	if !(p.AccelerationTime > 0) || math.IsInf(p.AccelerationTime, 0) {
		return fmt.Errorf("%w: acceleration time %g", ErrInvalidParams, p.AccelerationTime)
	}
	if !(p.DecelerationTime > 0) || math.IsInf(p.DecelerationTime, 0) {
		return fmt.Errorf("%w: deceleration time %g", ErrInvalidParams, p.DecelerationTime)
	}
	if !(p.ConstantVelocity > 0) || math.IsInf(p.ConstantVelocity, 0) {
		return fmt.Errorf("%w: constant velocity %g", ErrInvalidParams, p.ConstantVelocity)
	}
	return nil
}

// AccelDistance is the distance covered while ramping to cruise velocity.
func (p Params) AccelDistance() float64 { return 0.5 * p.ConstantVelocity * p.AccelerationTime }

// DecelDistance is the distance covered while ramping down from cruise.
func (p Params) DecelDistance() float64 { return 0.5 * p.ConstantVelocity * p.DecelerationTime }

type Shape int

const (
	ShapeTrapezoid Shape = iota
	ShapeTriangle
)

func (s Shape) String() string {
	switch s {
	case ShapeTrapezoid:
		return "trapezoid"
	case ShapeTriangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// Phase identifies which part of a profile a sample belongs to.
type Phase int

const (
	PhaseAccel Phase = iota
	PhaseCruise
	PhaseDecel
	PhaseRest
)

func (p Phase) String() string {
	switch p {
	case PhaseAccel:
		return "accel"
	case PhaseCruise:
		return "cruise"
	case PhaseDecel:
		return "decel"
	case PhaseRest:
		return "rest"
	default:
		return "unknown"
	}
}

// Profile is a velocity sequence plus the bookkeeping needed to attribute
// each sample to its phase.
type Profile struct {
	Samples     []float64
	Shape       Shape
	Peak        float64
	AccelSteps  int
	CruiseSteps int
	DecelSteps  int
}

// PhaseAt reports the phase of sample i. Indices past the ramp-down,
// including the trailing zero, are PhaseRest.
func (p *Profile) PhaseAt(i int) Phase {
	switch {
	case i < p.AccelSteps:
		return PhaseAccel
	case i < p.AccelSteps+p.CruiseSteps:
		return PhaseCruise
	case i < p.AccelSteps+p.CruiseSteps+p.DecelSteps:
		return PhaseDecel
	default:
		return PhaseRest
	}
}

// Duration is the profile length in seconds.
func (p *Profile) Duration() float64 {
	return float64(len(p.Samples)) * SampleInterval
}

// Distance integrates the samples with a rectangle rule, which is exactly
// what a consumer stepping at SampleInterval travels.
func (p *Profile) Distance() float64 {
	sum := 0.0
	for _, v := range p.Samples {
		sum += v * SampleInterval
	}
	return sum
}

// Generator produces a profile for a non-negative travel distance.
type Generator interface {
	Name() string
	Generate(distance float64, p Params) (*Profile, error)
}
