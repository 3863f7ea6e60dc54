package motion

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/wirespool/internal/actuator"
	"github.com/san-kum/wirespool/internal/geometry"
	"github.com/san-kum/wirespool/internal/logging"
	"github.com/san-kum/wirespool/internal/profile"
)

// Move is a planned move: the velocity profile and the rotation commands
// derived from it.
type Move struct {
	Start         float64
	Target        float64
	Retracting    bool
	StartRotation float64
	Profile       *profile.Profile
	Rotations     []float64
}

// Distance is the unsigned travel of the move in meters.
func (m *Move) Distance() float64 { return math.Abs(m.Target - m.Start) }

type Option func(*Controller)

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStepInterval paces staged moves; zero runs them unpaced.
func WithStepInterval(d time.Duration) Option {
	return func(c *Controller) { c.stepInterval = d }
}

// WithRegistry replaces the profile generator registry.
func WithRegistry(r *profile.Registry) Option {
	return func(c *Controller) {
		if r != nil {
			c.registry = r
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.AddObserver(o) }
}

type Controller struct {
	mu sync.Mutex

	geom         *geometry.Model
	act          actuator.Actuator
	registry     *profile.Registry
	logger       *log.Logger
	stepInterval time.Duration
	observers    []Observer

	position    float64
	state       MotionState
	maxLength   float64
	params      profile.Params
	profileType ProfileType
	busy        bool

	last *Move
}

// New builds a controller for a spool with the given wire thickness and
// core radius (millimeters) driving act. The controller does not own act.
func New(wireThickness, innerRadius float64, act actuator.Actuator, opts ...Option) (*Controller, ErrorCode) {
	if act == nil {
		return nil, InvalidMotorPointer
	}
	if !validDimension(wireThickness) {
		return nil, InvalidWireThickness
	}
	if !validDimension(innerRadius) {
		return nil, InvalidInnerRadius
	}

	geom, err := geometry.New(wireThickness, innerRadius)
	if err != nil {
		return nil, InvalidWireThickness
	}

	c := &Controller{
		geom:        geom,
		act:         act,
		registry:    profile.NewRegistry(),
		logger:      logging.Discard(),
		state:       Stopped,
		maxLength:   DefaultMaxWireLength,
		params:      profile.DefaultParams(),
		profileType: Trapezoid,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, Success
}

func (c *Controller) AddObserver(o Observer) {
	if o == nil {
		return
	}
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// RemoveObserver unregisters o. Observers are matched by identity, so o must
// be comparable; pointer observers such as *ChanObserver are. A staged move
// already in flight keeps notifying the observers it started with.
func (c *Controller) RemoveObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.observers {
		if existing == o {
			c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
			return
		}
	}
}

func (c *Controller) CurrentPosition() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *Controller) CurrentState() MotionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) IsMoving() bool {
	return c.CurrentState() != Stopped
}

func (c *Controller) MaxWireLength() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxLength
}

func (c *Controller) Params() profile.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

func (c *Controller) ProfileType() ProfileType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profileType
}

// Geometry returns a snapshot of the spool geometry.
func (c *Controller) Geometry() geometry.Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.geom
}

func (c *Controller) SetAccelerationTime(t float64) ErrorCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return MotorBusy
	}
	if !validDimension(t) {
		return InvalidAccelerationTime
	}
	c.params.AccelerationTime = t
	return Success
}

func (c *Controller) SetDecelerationTime(t float64) ErrorCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return MotorBusy
	}
	if !validDimension(t) {
		return InvalidDecelerationTime
	}
	c.params.DecelerationTime = t
	return Success
}

func (c *Controller) SetConstantVelocity(v float64) ErrorCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return MotorBusy
	}
	if !(v >= MinVelocity && v <= MaxVelocity) {
		return InvalidVelocity
	}
	c.params.ConstantVelocity = v
	return Success
}

// SetMaxWireLength sets the extension limit. A limit below the current
// position is rejected so the position always stays within range.
func (c *Controller) SetMaxWireLength(length float64) ErrorCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return MotorBusy
	}
	if !validDimension(length) || length < c.position {
		return InvalidMaxLength
	}
	c.maxLength = length
	return Success
}

func (c *Controller) SetInnerRadius(radius float64) ErrorCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return MotorBusy
	}
	if err := c.geom.SetInnerRadius(radius); err != nil {
		return InvalidInnerRadius
	}
	return Success
}

// SetVelocityProfile stores the profile shape used by subsequent moves.
func (c *Controller) SetVelocityProfile(pt ProfileType) ErrorCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return MotorBusy
	}
	if pt != Trapezoid && pt != SCurve {
		return ProfileUnavailable
	}
	c.profileType = pt
	return Success
}

// LastMove returns the most recently planned move.
func (c *Controller) LastMove() (Move, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Move{}, false
	}
	return *c.last, true
}

// LastVelocityProfile returns a copy of the velocity samples of the most
// recently planned move. It is diagnostic only.
func (c *Controller) LastVelocityProfile() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	return append([]float64(nil), c.last.Profile.Samples...)
}

func (c *Controller) LastRotationProfile() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	return append([]float64(nil), c.last.Rotations...)
}

// MoveTo moves the wire to target meters and returns once the actuator has
// been given the full rotation sequence.
func (c *Controller) MoveTo(target float64) ErrorCode {
	c.mu.Lock()
	defer c.mu.Unlock()

	mv, code := c.plan(target)
	if code != Success || mv == nil {
		return code
	}

	c.act.ExecuteRotationProfile(mv.Rotations)
	c.position = target

	c.logger.Debug("move dispatched",
		"from", mv.Start,
		"to", mv.Target,
		"samples", len(mv.Rotations),
		"rotation", c.act.CurrentRotation(),
	)
	return Success
}

func (c *Controller) MoveRelative(distance float64) ErrorCode {
	return c.MoveTo(c.CurrentPosition() + distance)
}

// plan validates target and builds the move. A nil move with Success means
// no motion is needed. Callers must hold mu.
func (c *Controller) plan(target float64) (*Move, ErrorCode) {
	if c.busy {
		c.logger.Warn("move rejected", "target", target, "code", MotorBusy)
		return nil, MotorBusy
	}
	if math.IsNaN(target) || target < 0 || target > c.maxLength {
		c.logger.Warn("move rejected", "target", target, "max", c.maxLength, "code", OutOfRange)
		return nil, OutOfRange
	}

	distance := target - c.position
	if math.Abs(distance) < PositionTolerance {
		return nil, Success
	}

	gen, err := c.registry.Get(c.profileType.String())
	if err != nil {
		c.logger.Warn("move rejected", "profile", c.profileType, "err", err)
		return nil, ProfileUnavailable
	}
	prof, err := gen.Generate(math.Abs(distance), c.params)
	if err != nil {
		c.logger.Warn("move rejected", "profile", c.profileType, "err", err)
		return nil, ProfileUnavailable
	}

	mv := &Move{
		Start:         c.position,
		Target:        target,
		Retracting:    distance < 0,
		StartRotation: c.act.CurrentRotation(),
		Profile:       prof,
	}
	mv.Rotations = c.toRotations(prof.Samples, mv.StartRotation, mv.Retracting)
	c.last = mv
	return mv, Success
}

// toRotations integrates velocity samples into absolute rotation commands
// using the radius at the rotation the move starts from.
func (c *Controller) toRotations(samples []float64, start float64, retracting bool) []float64 {
	rotations := make([]float64, 0, len(samples))
	rot := start
	for _, v := range samples {
		d := c.geom.RotationDelta(v*profile.SampleInterval, start)
		if retracting {
			rot -= d
		} else {
			rot += d
		}
		rotations = append(rotations, rot)
	}
	return rotations
}

// positionAt translates an actuator rotation reached during mv back into a
// wire position, clamped to the valid range.
func (c *Controller) positionAt(mv *Move, rotation float64) float64 {
	travelled := c.geom.LengthDelta(math.Abs(rotation-mv.StartRotation), mv.StartRotation)
	pos := mv.Start + travelled
	if mv.Retracting {
		pos = mv.Start - travelled
	}
	return math.Max(0, math.Min(pos, c.maxLength))
}

func validDimension(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
