package geometry

import (
	"fmt"
	"math"
)

const mmPerMeter = 1000.0

// Model is the wire geometry of one spool. WireThickness is fixed for the
// lifetime of the model; InnerRadius may be changed through SetInnerRadius.
type Model struct {
	wireThickness float64
	innerRadius   float64
}

func New(wireThickness, innerRadius float64) (*Model, error) {
	if !positive(wireThickness) {
		return nil, fmt.Errorf("%w: wire thickness must be positive, got %g", ErrInvalidArgument, wireThickness)
	}
	if !positive(innerRadius) {
		return nil, fmt.Errorf("%w: inner radius must be positive, got %g", ErrInvalidArgument, innerRadius)
	}
	return &Model{wireThickness: wireThickness, innerRadius: innerRadius}, nil
}

func (m *Model) WireThickness() float64 { return m.wireThickness }
func (m *Model) InnerRadius() float64   { return m.innerRadius }

// SetInnerRadius replaces the core radius. A rejected value leaves the
// previous radius in place.
func (m *Model) SetInnerRadius(radius float64) error {
	if !positive(radius) {
		return fmt.Errorf("%w: inner radius must be positive, got %g", ErrInvalidArgument, radius)
	}
	m.innerRadius = radius
	return nil
}

// LengthToRotation returns the rotation in degrees that spools length
// meters of wire starting from an empty core.
func (m *Model) LengthToRotation(length float64) (float64, error) {
	if length < 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return 0, fmt.Errorf("%w: length must be non-negative, got %g", ErrInvalidArgument, length)
	}
	if length == 0 {
		return 0, nil
	}

	// (thickness/720)·θ² + innerRadius·θ - lengthMm·(180/π) = 0
	a := m.wireThickness / 720.0
	b := m.innerRadius
	c := -length * mmPerMeter * (180.0 / math.Pi)

	disc := b*b - 4*a*c

	// Positive root, rationalised: (-b+√D)/(2a) == -2c/(b+√D).
	return -2 * c / (b + math.Sqrt(disc)), nil
}

// RotationToLength returns the wire length in meters spooled by rotation
// degrees starting from an empty core.
func (m *Model) RotationToLength(rotation float64) (float64, error) {
	if rotation < 0 || math.IsNaN(rotation) || math.IsInf(rotation, 0) {
		return 0, fmt.Errorf("%w: rotation must be non-negative, got %g", ErrInvalidArgument, rotation)
	}
	if rotation == 0 {
		return 0, nil
	}
	return m.lengthMm(rotation) / mmPerMeter, nil
}

func (m *Model) lengthMm(theta float64) float64 {
	return (2 * math.Pi / 360.0) * (m.innerRadius*theta + m.wireThickness*theta*theta/720.0)
}

// RadiusAt is the effective radius in millimeters after rotation degrees.
// Negative rotations are treated as the bare core.
func (m *Model) RadiusAt(rotation float64) float64 {
	if rotation < 0 {
		rotation = 0
	}
	return m.innerRadius + (rotation/360.0)*m.wireThickness
}

// RotationDelta converts a small length ds (meters) into degrees using the
// instantaneous radius at the given rotation.
func (m *Model) RotationDelta(ds, atRotation float64) float64 {
	circumference := 2 * math.Pi * m.RadiusAt(atRotation) / mmPerMeter
	return ds / circumference * 360.0
}

// LengthDelta is the inverse of RotationDelta.
func (m *Model) LengthDelta(dTheta, atRotation float64) float64 {
	circumference := 2 * math.Pi * m.RadiusAt(atRotation) / mmPerMeter
	return dTheta / 360.0 * circumference
}

// WrapLength returns the length in meters taken by the n-th full wrap,
// counting from 1.
func (m *Model) WrapLength(n int) (float64, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: wrap index must be at least 1, got %d", ErrInvalidArgument, n)
	}
	hi := m.lengthMm(360.0 * float64(n))
	lo := m.lengthMm(360.0 * float64(n-1))
	return (hi - lo) / mmPerMeter, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
