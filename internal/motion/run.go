package motion

import (
	"context"
	"errors"
	"time"

	"github.com/san-kum/wirespool/internal/actuator"
	"github.com/san-kum/wirespool/internal/profile"
)

// ErrInterrupted is returned by Run when the actuator stops before the
// sequence is complete without the context being canceled.
var ErrInterrupted = errors.New("motion: actuator stopped before move completed")

// Run moves to target like MoveTo but steps the actuator one command per
// velocity sample, updating CurrentState and notifying observers on every
// phase change.
//
// Validation failures are returned as a code with a nil error. If ctx is
// canceled or the actuator stops early the actuator is stopped, the
// position is set from the last applied rotation and the error is
// returned alongside Success.
func (c *Controller) Run(ctx context.Context, target float64) (ErrorCode, error) {
	c.mu.Lock()
	mv, code := c.plan(target)
	if code != Success || mv == nil {
		c.mu.Unlock()
		return code, nil
	}
	c.busy = true
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	err := c.execute(ctx, mv, observers)

	c.mu.Lock()
	rotation := c.act.CurrentRotation()
	if err == nil {
		c.position = mv.Target
	} else {
		c.position = c.positionAt(mv, rotation)
		c.logger.Info("move interrupted", "target", mv.Target, "position", c.position, "err", err)
	}
	c.state = Stopped
	c.busy = false
	final := PhaseEvent{
		State:    Stopped,
		Sample:   len(mv.Rotations),
		Time:     float64(len(mv.Rotations)) * profile.SampleInterval,
		Position: c.position,
		Rotation: rotation,
		Target:   mv.Target,
	}
	c.mu.Unlock()

	notify(observers, final)
	return Success, err
}

// RunRelative is Run with a target relative to the current position.
func (c *Controller) RunRelative(ctx context.Context, distance float64) (ErrorCode, error) {
	return c.Run(ctx, c.CurrentPosition()+distance)
}

func (c *Controller) execute(ctx context.Context, mv *Move, observers []Observer) error {
	stepper, ok := c.act.(actuator.Stepper)
	if !ok {
		return c.dispatch(ctx, mv, observers)
	}

	stepper.LoadProfile(mv.Rotations)
	stepper.StartExecution()

	var tick <-chan time.Time
	if c.stepInterval > 0 {
		ticker := time.NewTicker(c.stepInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	c.logger.Debug("staged move started", "from", mv.Start, "to", mv.Target, "samples", len(mv.Rotations))

	for i := range mv.Rotations {
		if err := wait(ctx, tick); err != nil {
			stepper.Stop()
			return err
		}
		if !stepper.IsRunning() {
			return ErrInterrupted
		}
		c.enterPhase(mv, i, observers)
		stepper.Step()
	}
	return nil
}

// dispatch hands the whole sequence to an actuator that cannot single-step
// and reports each phase as it is passed.
func (c *Controller) dispatch(ctx context.Context, mv *Move, observers []Observer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i := range mv.Rotations {
		c.enterPhase(mv, i, observers)
	}
	c.act.ExecuteRotationProfile(mv.Rotations)
	return nil
}

// enterPhase updates the controller state for sample i and notifies
// observers if the state changed.
func (c *Controller) enterPhase(mv *Move, i int, observers []Observer) {
	st, ok := stateFor(mv.Profile.PhaseAt(i))
	if !ok {
		return
	}

	c.mu.Lock()
	if c.state == st {
		c.mu.Unlock()
		return
	}
	c.state = st
	rotation := c.act.CurrentRotation()
	ev := PhaseEvent{
		State:    st,
		Sample:   i,
		Time:     float64(i) * profile.SampleInterval,
		Position: c.positionAt(mv, rotation),
		Rotation: rotation,
		Target:   mv.Target,
	}
	c.mu.Unlock()

	c.logger.Debug("phase", "state", st, "sample", i)
	notify(observers, ev)
}

func wait(ctx context.Context, tick <-chan time.Time) error {
	if tick == nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tick:
		return nil
	}
}

func notify(observers []Observer, ev PhaseEvent) {
	for _, o := range observers {
		o.OnPhase(ev)
	}
}
