// Package profile generates time-sampled velocity profiles for a move of a
// given length under bounded acceleration and deceleration.
//
// Profiles are sampled every [SampleInterval] seconds, start and end at
// zero velocity and never exceed the configured cruise velocity:
//
//   - [Trapezoid]: ramp up, cruise, ramp down; degrades to a triangle when
//     the distance is too short to reach cruise velocity
//   - [SCurve]: reserved shape, not implemented
//
// Generators are looked up by name through a [Registry].
package profile
