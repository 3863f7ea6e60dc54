// Package geometry converts between wire length and roll rotation for a
// spool whose effective radius grows as wire accumulates.
//
// The model is continuous rather than per-wrap: the radius under the wire
// after a rotation of θ degrees is
//
//	r(θ) = innerRadius + (θ/360)·wireThickness
//
// and the wire length for a rotation is the integral of the instantaneous
// circumference over that rotation:
//
//	L(θ) = (2π/360)·[innerRadius·θ + wireThickness·θ²/720]
//
// Radius and thickness are in millimeters, lengths in meters, rotations in
// degrees.
//
// # Example
//
//	m, err := geometry.New(1.0, 50.0)
//	if err != nil {
//		return err
//	}
//	deg, _ := m.LengthToRotation(1.0) // degrees needed to spool 1 m
package geometry
