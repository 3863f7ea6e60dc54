package motion_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/wirespool/internal/actuator"
	"github.com/san-kum/wirespool/internal/geometry"
	"github.com/san-kum/wirespool/internal/motion"
	"github.com/san-kum/wirespool/internal/profile"
)

var _ = Describe("Controller", func() {
	Describe("construction", func() {
		DescribeTable("rejects invalid arguments",
			func(thickness, radius float64, withActuator bool, want motion.ErrorCode) {
				var act actuator.Actuator
				if withActuator {
					act = actuator.NewSim()
				}
				c, code := motion.New(thickness, radius, act)
				Expect(code).To(Equal(want))
				Expect(c).To(BeNil())
			},
			Entry("missing actuator", 1.0, 50.0, false, motion.InvalidMotorPointer),
			Entry("zero thickness", 0.0, 50.0, true, motion.InvalidWireThickness),
			Entry("negative thickness", -1.0, 50.0, true, motion.InvalidWireThickness),
			Entry("zero radius", 1.0, 0.0, true, motion.InvalidInnerRadius),
			Entry("negative radius", 1.0, -50.0, true, motion.InvalidInnerRadius),
		)

		It("starts stopped at position zero with defaults", func() {
			c, _ := newController()
			Expect(c.CurrentPosition()).To(Equal(0.0))
			Expect(c.CurrentState()).To(Equal(motion.Stopped))
			Expect(c.IsMoving()).To(BeFalse())
			Expect(c.MaxWireLength()).To(Equal(5.0))
			Expect(c.ProfileType()).To(Equal(motion.Trapezoid))
			Expect(c.Params()).To(Equal(profile.DefaultParams()))
			Expect(c.LastVelocityProfile()).To(BeNil())

			g := c.Geometry()
			Expect(g.WireThickness()).To(Equal(1.0))
			Expect(g.InnerRadius()).To(Equal(50.0))
		})
	})

	Describe("parameter setters", func() {
		var c *motion.Controller

		BeforeEach(func() {
			c, _ = newController()
		})

		It("accepts valid motion parameters", func() {
			fastParams(c, 0.2, 0.4, 0.3)
			Expect(c.Params()).To(Equal(profile.Params{
				AccelerationTime: 0.2,
				ConstantVelocity: 0.4,
				DecelerationTime: 0.3,
			}))
		})

		It("rejects non-positive ramp times and keeps the previous value", func() {
			Expect(c.SetAccelerationTime(0.25)).To(Equal(motion.Success))
			Expect(c.SetAccelerationTime(0)).To(Equal(motion.InvalidAccelerationTime))
			Expect(c.SetAccelerationTime(-0.5)).To(Equal(motion.InvalidAccelerationTime))
			Expect(c.Params().AccelerationTime).To(Equal(0.25))

			Expect(c.SetDecelerationTime(0.35)).To(Equal(motion.Success))
			Expect(c.SetDecelerationTime(0)).To(Equal(motion.InvalidDecelerationTime))
			Expect(c.SetDecelerationTime(-0.5)).To(Equal(motion.InvalidDecelerationTime))
			Expect(c.Params().DecelerationTime).To(Equal(0.35))
		})

		DescribeTable("bounds the cruise velocity",
			func(v float64, want motion.ErrorCode) {
				Expect(c.SetConstantVelocity(v)).To(Equal(want))
			},
			Entry("below minimum", 0.005, motion.InvalidVelocity),
			Entry("zero", 0.0, motion.InvalidVelocity),
			Entry("minimum", motion.MinVelocity, motion.Success),
			Entry("maximum", motion.MaxVelocity, motion.Success),
			Entry("above maximum", 1.5, motion.InvalidVelocity),
			Entry("far above maximum", 2.0, motion.InvalidVelocity),
			Entry("nan", math.NaN(), motion.InvalidVelocity),
		)

		It("keeps the previous velocity when rejecting", func() {
			Expect(c.SetConstantVelocity(0.3)).To(Equal(motion.Success))
			Expect(c.SetConstantVelocity(1.5)).To(Equal(motion.InvalidVelocity))
			Expect(c.Params().ConstantVelocity).To(Equal(0.3))
		})

		It("validates max wire length", func() {
			Expect(c.SetMaxWireLength(10.0)).To(Equal(motion.Success))
			Expect(c.SetMaxWireLength(0)).To(Equal(motion.InvalidMaxLength))
			Expect(c.SetMaxWireLength(-5.0)).To(Equal(motion.InvalidMaxLength))
			Expect(c.MaxWireLength()).To(Equal(10.0))
		})

		It("validates inner radius through the geometry model", func() {
			Expect(c.SetInnerRadius(100.0)).To(Equal(motion.Success))
			Expect(c.SetInnerRadius(0)).To(Equal(motion.InvalidInnerRadius))
			Expect(c.SetInnerRadius(-50.0)).To(Equal(motion.InvalidInnerRadius))
			g := c.Geometry()
			Expect(g.InnerRadius()).To(Equal(100.0))
		})

		It("stores the profile type", func() {
			Expect(c.SetVelocityProfile(motion.SCurve)).To(Equal(motion.Success))
			Expect(c.ProfileType()).To(Equal(motion.SCurve))
			Expect(c.SetVelocityProfile(motion.Trapezoid)).To(Equal(motion.Success))
			Expect(c.ProfileType()).To(Equal(motion.Trapezoid))
			Expect(c.SetVelocityProfile(motion.ProfileType(7))).To(Equal(motion.ProfileUnavailable))
			Expect(c.ProfileType()).To(Equal(motion.Trapezoid))
		})
	})

	Describe("MoveTo", func() {
		var (
			c   *motion.Controller
			sim *actuator.Sim
		)

		BeforeEach(func() {
			c, sim = newController()
			fastParams(c, 0.1, 0.5, 0.1)
		})

		It("enforces the wire range", func() {
			Expect(c.MoveTo(5.1)).To(Equal(motion.OutOfRange))
			Expect(c.MoveTo(-1.0)).To(Equal(motion.OutOfRange))
			Expect(c.MoveTo(math.NaN())).To(Equal(motion.OutOfRange))
			Expect(c.CurrentPosition()).To(Equal(0.0))
			Expect(c.CurrentState()).To(Equal(motion.Stopped))
			Expect(sim.LastProfile()).To(BeNil())

			Expect(c.MoveTo(5.0)).To(Equal(motion.Success))
			Expect(c.CurrentPosition()).To(Equal(5.0))
		})

		It("accepts zero as a target", func() {
			Expect(c.MoveTo(0.0)).To(Equal(motion.Success))
		})

		It("does nothing for moves below the position tolerance", func() {
			Expect(c.MoveTo(5e-7)).To(Equal(motion.Success))
			Expect(c.MoveRelative(0)).To(Equal(motion.Success))
			Expect(c.CurrentPosition()).To(Equal(0.0))
			Expect(c.LastVelocityProfile()).To(BeNil())
			Expect(sim.LastProfile()).To(BeNil())
		})

		It("dispatches a monotonic rotation sequence when extending", func() {
			Expect(c.MoveTo(0.2)).To(Equal(motion.Success))
			Expect(c.CurrentPosition()).To(Equal(0.2))
			Expect(c.CurrentState()).To(Equal(motion.Stopped))

			rotations := c.LastRotationProfile()
			velocity := c.LastVelocityProfile()
			Expect(rotations).To(HaveLen(len(velocity)))
			Expect(sim.LastProfile()).To(Equal(rotations))
			Expect(sim.CurrentRotation()).To(Equal(rotations[len(rotations)-1]))

			for i := 1; i < len(rotations); i++ {
				Expect(rotations[i]).To(BeNumerically(">=", rotations[i-1]))
			}
		})

		It("converts travel with the radius at the start of the move", func() {
			Expect(c.MoveTo(0.2)).To(Equal(motion.Success))

			mv, ok := c.LastMove()
			Expect(ok).To(BeTrue())
			Expect(mv.Retracting).To(BeFalse())
			Expect(mv.StartRotation).To(Equal(0.0))

			g, err := geometry.New(1.0, 50.0)
			Expect(err).NotTo(HaveOccurred())
			want := g.RotationDelta(mv.Profile.Distance(), 0)
			Expect(sim.CurrentRotation()).To(BeNumerically("~", want, 1e-6))

			// 0.2 m on a 50 mm core is a little under two thirds of a turn
			Expect(sim.CurrentRotation()).To(BeNumerically("~", 0.2/(2*math.Pi*0.05)*360, 0.5))
		})

		It("winds back with a decreasing sequence when retracting", func() {
			Expect(c.MoveTo(1.0)).To(Equal(motion.Success))
			top := sim.CurrentRotation()

			Expect(c.MoveTo(0.5)).To(Equal(motion.Success))
			Expect(c.CurrentPosition()).To(Equal(0.5))

			mv, _ := c.LastMove()
			Expect(mv.Retracting).To(BeTrue())
			Expect(mv.StartRotation).To(Equal(top))

			rotations := c.LastRotationProfile()
			for i := 1; i < len(rotations); i++ {
				Expect(rotations[i]).To(BeNumerically("<=", rotations[i-1]))
			}
			Expect(sim.CurrentRotation()).To(BeNumerically("<", top))
			Expect(sim.CurrentRotation()).To(BeNumerically(">", 0))
		})

		It("keeps the velocity profile within the cruise limit", func() {
			fastParams(c, 0.1, 0.1, 0.1)
			Expect(c.MoveRelative(0.01)).To(Equal(motion.Success))

			velocity := c.LastVelocityProfile()
			Expect(velocity).NotTo(BeEmpty())
			Expect(velocity[0]).To(Equal(0.0))
			Expect(velocity[len(velocity)-1]).To(BeNumerically("~", 0, 0.001))
			for _, v := range velocity {
				Expect(v).To(BeNumerically("<=", 0.1))
			}
		})

		It("moves relative to the current position", func() {
			Expect(c.MoveRelative(2.5)).To(Equal(motion.Success))
			Expect(c.CurrentPosition()).To(Equal(2.5))
			Expect(c.MoveRelative(-1.0)).To(Equal(motion.Success))
			Expect(c.CurrentPosition()).To(BeNumerically("~", 1.5, 1e-12))
			Expect(c.MoveRelative(6.0)).To(Equal(motion.OutOfRange))
			Expect(c.MoveRelative(-2.0)).To(Equal(motion.OutOfRange))
			Expect(c.CurrentPosition()).To(BeNumerically("~", 1.5, 1e-12))
		})

		It("refuses a max wire length below the current position", func() {
			Expect(c.MoveTo(4.0)).To(Equal(motion.Success))
			Expect(c.SetMaxWireLength(1.0)).To(Equal(motion.InvalidMaxLength))
			Expect(c.MaxWireLength()).To(Equal(motion.DefaultMaxWireLength))
			Expect(c.MoveRelative(0)).To(Equal(motion.Success))

			Expect(c.SetMaxWireLength(4.0)).To(Equal(motion.Success))
			Expect(c.MoveTo(1.0)).To(Equal(motion.Success))
			Expect(c.SetMaxWireLength(1.0)).To(Equal(motion.Success))
		})

		It("reports an unavailable profile shape without moving", func() {
			Expect(c.SetVelocityProfile(motion.SCurve)).To(Equal(motion.Success))
			Expect(c.MoveTo(1.0)).To(Equal(motion.ProfileUnavailable))
			Expect(c.CurrentPosition()).To(Equal(0.0))
			Expect(sim.LastProfile()).To(BeNil())
		})
	})

	Describe("ErrorCode", func() {
		It("is usable as an error", func() {
			Expect(motion.Success.Err()).To(BeNil())
			Expect(motion.OutOfRange.Err()).To(MatchError(motion.OutOfRange))
			Expect(motion.OutOfRange.Error()).To(Equal("motion: out of range"))
			Expect(motion.MotorBusy.String()).To(Equal("motor busy"))
			Expect(motion.ErrorCode(42).String()).To(Equal("error code 42"))
		})
	})

	Describe("ParseProfileType", func() {
		It("parses registry names", func() {
			Expect(motion.ParseProfileType("trapezoid")).To(Equal(motion.Trapezoid))
			Expect(motion.ParseProfileType("S-Curve")).To(Equal(motion.SCurve))
			_, err := motion.ParseProfileType("bezier")
			Expect(err).To(HaveOccurred())
		})
	})
})
