package profile

import (
	"fmt"
	"math"
)

// Trapezoid is the bounded-acceleration generator. Moves too short to
// reach cruise velocity get a triangle with a reduced peak.
type Trapezoid struct{}

func NewTrapezoid() *Trapezoid { return &Trapezoid{} }

func (g *Trapezoid) Name() string { return "trapezoid" }

func (g *Trapezoid) Generate(distance float64, p Params) (*Profile, error) {
	if distance < 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidDistance, distance)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if distance == 0 {
		return &Profile{Samples: []float64{0}, Shape: ShapeTriangle}, nil
	}

	v := p.ConstantVelocity
	if distance >= p.AccelDistance()+p.DecelDistance() {
		cruiseTime := (distance - p.AccelDistance() - p.DecelDistance()) / v
		return build(ShapeTrapezoid, v, p.AccelerationTime, cruiseTime, p.DecelerationTime), nil
	}

	// accDist + decDist = vPeak·(Ta'+Td')/2 with Ta' = Ta·vPeak/V
	peak := math.Sqrt(2 * distance * v / (p.AccelerationTime + p.DecelerationTime))
	scale := peak / v
	return build(ShapeTriangle, peak, p.AccelerationTime*scale, 0, p.DecelerationTime*scale), nil
}

func build(shape Shape, peak, accelTime, cruiseTime, decelTime float64) *Profile {
	accelSteps := stepsFor(accelTime)
	cruiseSteps := stepsFor(cruiseTime)
	decelSteps := stepsFor(decelTime)
	if accelSteps == 0 && cruiseSteps+decelSteps > 0 {
		// keep the leading zero when the ramp-up rounds away
		accelSteps = 1
	}

	samples := make([]float64, 0, accelSteps+cruiseSteps+decelSteps+1)
	samples = ramp(samples, accelSteps, accelTime, 0, peak)
	for i := 0; i < cruiseSteps; i++ {
		samples = append(samples, peak)
	}
	samples = ramp(samples, decelSteps, decelTime, peak, 0)
	samples = append(samples, 0)

	return &Profile{
		Samples:     samples,
		Shape:       shape,
		Peak:        peak,
		AccelSteps:  accelSteps,
		CruiseSteps: cruiseSteps,
		DecelSteps:  decelSteps,
	}
}

// ramp appends steps samples interpolated from `from` toward `to`. The
// first sample is exactly `from`; the caller supplies the closing boundary.
func ramp(dst []float64, steps int, duration, from, to float64) []float64 {
	for i := 0; i < steps; i++ {
		t := float64(i) * SampleInterval
		dst = append(dst, from+(to-from)*(t/duration))
	}
	return dst
}

func stepsFor(duration float64) int {
	if duration <= 0 {
		return 0
	}
	return int(math.Round(duration / SampleInterval))
}
