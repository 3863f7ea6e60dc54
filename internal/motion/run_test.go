package motion_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/wirespool/internal/actuator"
	"github.com/san-kum/wirespool/internal/geometry"
	"github.com/san-kum/wirespool/internal/motion"
)

// recorder collects phase events and can run a hook on each one.
type recorder struct {
	mu     sync.Mutex
	events []motion.PhaseEvent
	hook   func(motion.PhaseEvent)
}

func (r *recorder) OnPhase(ev motion.PhaseEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	hook := r.hook
	r.mu.Unlock()
	if hook != nil {
		hook(ev)
	}
}

func (r *recorder) states() []motion.MotionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]motion.MotionState, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.State
	}
	return out
}

// oneShot implements only the base contract, so the controller must hand
// it the whole sequence.
type oneShot struct {
	sim *actuator.Sim
}

func (o *oneShot) ExecuteRotationProfile(seq []float64) { o.sim.ExecuteRotationProfile(seq) }
func (o *oneShot) Stop()                                { o.sim.Stop() }
func (o *oneShot) CurrentRotation() float64             { return o.sim.CurrentRotation() }
func (o *oneShot) IsRunning() bool                      { return o.sim.IsRunning() }
func (o *oneShot) ResetPosition()                       { o.sim.ResetPosition() }

// stalling stops itself after limit steps, like a driver that faults.
type stalling struct {
	*actuator.Sim
	limit, steps int
}

func (s *stalling) Step() {
	s.steps++
	if s.steps > s.limit {
		s.Sim.Stop()
		return
	}
	s.Sim.Step()
}

var _ = Describe("Run", func() {
	var (
		c   *motion.Controller
		sim *actuator.Sim
		rec *recorder
	)

	BeforeEach(func() {
		rec = &recorder{}
		c, sim = newController(motion.WithObserver(rec))
		fastParams(c, 0.1, 0.5, 0.1)
	})

	It("reports every phase of a trapezoid move", func() {
		code, err := c.Run(context.Background(), 0.2)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(motion.Success))

		Expect(rec.states()).To(Equal([]motion.MotionState{
			motion.Accelerating,
			motion.ConstantVelocity,
			motion.Decelerating,
			motion.Stopped,
		}))
		Expect(rec.events[1].Sample).To(Equal(100))
		Expect(rec.events[1].Time).To(BeNumerically("~", 0.1, 1e-9))
		Expect(rec.events[3].Position).To(Equal(0.2))

		Expect(c.CurrentPosition()).To(Equal(0.2))
		Expect(c.CurrentState()).To(Equal(motion.Stopped))
		Expect(sim.Remaining()).To(Equal(0))
		Expect(sim.IsRunning()).To(BeFalse())

		rotations := c.LastRotationProfile()
		Expect(sim.CurrentRotation()).To(Equal(rotations[len(rotations)-1]))
	})

	It("skips the cruise phase for a triangle move", func() {
		code, err := c.Run(context.Background(), 0.02)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(motion.Success))
		Expect(rec.states()).To(Equal([]motion.MotionState{
			motion.Accelerating,
			motion.Decelerating,
			motion.Stopped,
		}))
	})

	It("ends at the same rotation as a synchronous move", func() {
		_, err := c.Run(context.Background(), 0.3)
		Expect(err).NotTo(HaveOccurred())
		staged := sim.CurrentRotation()

		other, otherSim := newController()
		fastParams(other, 0.1, 0.5, 0.1)
		Expect(other.MoveTo(0.3)).To(Equal(motion.Success))
		Expect(otherSim.CurrentRotation()).To(Equal(staged))
	})

	It("rejects invalid targets without emitting events", func() {
		code, err := c.Run(context.Background(), 6.0)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(motion.OutOfRange))

		code, err = c.RunRelative(context.Background(), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(motion.Success))
		Expect(rec.states()).To(BeEmpty())
	})

	It("rejects concurrent moves and parameter changes while in flight", func() {
		var (
			moveCode, velCode motion.ErrorCode
			moving            bool
			once              sync.Once
		)
		rec.hook = func(ev motion.PhaseEvent) {
			if ev.State != motion.Accelerating {
				return
			}
			once.Do(func() {
				moveCode = c.MoveTo(1.0)
				velCode = c.SetConstantVelocity(0.2)
				moving = c.IsMoving()
			})
		}

		code, err := c.Run(context.Background(), 0.2)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(motion.Success))
		Expect(moveCode).To(Equal(motion.MotorBusy))
		Expect(velCode).To(Equal(motion.MotorBusy))
		Expect(moving).To(BeTrue())

		Expect(c.Params().ConstantVelocity).To(Equal(0.5))
		Expect(c.MoveTo(1.0)).To(Equal(motion.Success))
	})

	It("stops the actuator and keeps the reached position when canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		rec.hook = func(ev motion.PhaseEvent) {
			if ev.State == motion.ConstantVelocity {
				cancel()
			}
		}

		code, err := c.Run(ctx, 0.2)
		Expect(code).To(Equal(motion.Success))
		Expect(err).To(MatchError(context.Canceled))

		Expect(sim.IsRunning()).To(BeFalse())
		Expect(sim.Remaining()).To(BeNumerically(">", 0))
		Expect(c.CurrentState()).To(Equal(motion.Stopped))
		Expect(rec.states()).To(Equal([]motion.MotionState{
			motion.Accelerating,
			motion.ConstantVelocity,
			motion.Stopped,
		}))

		g, gerr := geometry.New(1.0, 50.0)
		Expect(gerr).NotTo(HaveOccurred())
		want := g.LengthDelta(sim.CurrentRotation(), 0)

		pos := c.CurrentPosition()
		Expect(pos).To(BeNumerically("~", want, 1e-12))
		Expect(pos).To(BeNumerically(">", 0.02))
		Expect(pos).To(BeNumerically("<", 0.2))

		// the next move plans from where the spool actually is
		Expect(c.MoveTo(0.2)).To(Equal(motion.Success))
		mv, _ := c.LastMove()
		Expect(mv.Start).To(Equal(pos))
	})

	It("does not move when the context is already canceled", func() {
		paced, pacedSim := newController(motion.WithStepInterval(time.Microsecond))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		code, err := paced.Run(ctx, 0.5)
		Expect(code).To(Equal(motion.Success))
		Expect(err).To(MatchError(context.Canceled))
		Expect(paced.CurrentPosition()).To(Equal(0.0))
		Expect(pacedSim.CurrentRotation()).To(Equal(0.0))
	})

	It("paces steps with the configured interval", func() {
		paced, pacedSim := newController(motion.WithStepInterval(time.Microsecond))
		fastParams(paced, 0.01, 0.5, 0.01)

		code, err := paced.Run(context.Background(), 0.01)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(motion.Success))
		Expect(paced.CurrentPosition()).To(Equal(0.01))
		Expect(pacedSim.Remaining()).To(Equal(0))
	})

	It("reports an actuator that stops on its own", func() {
		stall := &stalling{Sim: actuator.NewSim(), limit: 50}
		sc, code := motion.New(1.0, 50.0, stall)
		Expect(code).To(Equal(motion.Success))
		fastParams(sc, 0.1, 0.5, 0.1)

		code, err := sc.Run(context.Background(), 0.2)
		Expect(code).To(Equal(motion.Success))
		Expect(err).To(MatchError(motion.ErrInterrupted))
		Expect(sc.CurrentPosition()).To(BeNumerically(">", 0))
		Expect(sc.CurrentPosition()).To(BeNumerically("<", 0.02))
	})

	It("dispatches whole sequences to actuators that cannot step", func() {
		one := &oneShot{sim: actuator.NewSim()}
		r := &recorder{}
		oc, code := motion.New(1.0, 50.0, one, motion.WithObserver(r))
		Expect(code).To(Equal(motion.Success))
		fastParams(oc, 0.1, 0.5, 0.1)

		code, err := oc.Run(context.Background(), 0.2)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(motion.Success))
		Expect(oc.CurrentPosition()).To(Equal(0.2))
		Expect(r.states()).To(HaveLen(4))

		rotations := oc.LastRotationProfile()
		Expect(one.CurrentRotation()).To(Equal(rotations[len(rotations)-1]))
	})
})

var _ = Describe("RemoveObserver", func() {
	It("stops notifying a removed observer and keeps the others", func() {
		kept, removed := &recorder{}, &recorder{}
		c, _ := newController(motion.WithObserver(kept), motion.WithObserver(removed))
		fastParams(c, 0.1, 0.5, 0.1)

		c.RemoveObserver(removed)
		c.RemoveObserver(removed)
		c.RemoveObserver(motion.NewChanObserver(1))

		_, err := c.Run(context.Background(), 0.2)
		Expect(err).NotTo(HaveOccurred())
		Expect(kept.states()).To(HaveLen(4))
		Expect(removed.states()).To(BeEmpty())
	})
})

var _ = Describe("ChanObserver", func() {
	It("drops events instead of blocking when full", func() {
		o := motion.NewChanObserver(1)
		o.OnPhase(motion.PhaseEvent{State: motion.Accelerating})
		o.OnPhase(motion.PhaseEvent{State: motion.Decelerating})

		Expect(o.C).To(HaveLen(1))
		Expect((<-o.C).State).To(Equal(motion.Accelerating))
	})
})
