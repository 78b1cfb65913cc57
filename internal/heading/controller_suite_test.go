package heading_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swervesim/internal/heading"
)

var _ = Describe("Controller", func() {
	var (
		motor  *fakeMotor
		sensor *fakeSensor
		sink   *fakeSink
		ctrl   *heading.Controller
	)

	BeforeEach(func() {
		motor = &fakeMotor{}
		sensor = &fakeSensor{}
		sink = &fakeSink{}
		ctrl = heading.New(heading.DefaultConfig(), motor, sensor, sink)
	})

	It("starts in manual mode with zero intensity", func() {
		Expect(ctrl.Mode()).To(Equal(heading.ModeManual))
		Expect(ctrl.ManualIntensity()).To(BeZero())

		_, err := ctrl.Execute()
		Expect(err).NotTo(HaveOccurred())
		Expect(motor.last()).To(BeZero())
	})

	Describe("SetTargetHeading", func() {
		DescribeTable("normalizes into [0, 1)",
			func(in, want float64) {
				Expect(ctrl.SetTargetHeading(in)).To(Succeed())
				got, ok := ctrl.TargetHeading()
				Expect(ok).To(BeTrue())
				Expect(got).To(BeNumerically("~", want, 1e-9))
			},
			Entry("negative fraction", -0.8, 0.2),
			Entry("above one", 4.2, 0.2),
			Entry("exactly one", 1.0, 0.0),
			Entry("in range", 0.3, 0.3),
		)

		It("retargets while seeking", func() {
			Expect(ctrl.SetTargetHeading(0.3)).To(Succeed())
			Expect(ctrl.SetTargetHeading(0.7)).To(Succeed())
			got, _ := ctrl.TargetHeading()
			Expect(got).To(Equal(0.7))
			Expect(ctrl.Mode()).To(Equal(heading.ModeSeeking))
		})

		It("rejects NaN and leaves state unchanged", func() {
			err := ctrl.SetTargetHeading(math.NaN())
			Expect(err).To(MatchError(heading.ErrInvalidHeading))
			Expect(ctrl.Mode()).To(Equal(heading.ModeManual))
		})
	})

	Describe("CancelTargetHeading", func() {
		It("returns to manual mode regardless of the target", func() {
			for _, v := range []float64{0, 0.5, -12.25, 99.9} {
				Expect(ctrl.SetTargetHeading(v)).To(Succeed())
				ctrl.CancelTargetHeading()
				Expect(ctrl.Mode()).To(Equal(heading.ModeManual))
			}
		})

		It("follows manual input on the next tick", func() {
			sensor.pos = 0.6
			ctrl.Steer(-0.5)
			Expect(ctrl.SetTargetHeading(0.4)).To(Succeed())

			_, err := ctrl.Execute()
			Expect(err).NotTo(HaveOccurred())
			Expect(motor.last()).To(BeNumerically("~", -0.04, 1e-9))

			ctrl.CancelTargetHeading()
			_, err = ctrl.Execute()
			Expect(err).NotTo(HaveOccurred())
			Expect(motor.last()).To(Equal(-0.5 * heading.DefaultMaxManualTurnSpeed))
		})

		It("is a no-op in manual mode", func() {
			ctrl.CancelTargetHeading()
			Expect(ctrl.Mode()).To(Equal(heading.ModeManual))
		})
	})

	Describe("Steer", func() {
		It("stores out-of-range values verbatim", func() {
			ctrl.Steer(3.5)
			Expect(ctrl.ManualIntensity()).To(Equal(3.5))
			_, err := ctrl.Execute()
			Expect(err).NotTo(HaveOccurred())
			Expect(motor.last()).To(BeNumerically("~", 1.05, 1e-9))
		})

		It("is ignored while seeking", func() {
			sensor.pos = 0.25
			Expect(ctrl.SetTargetHeading(0.75)).To(Succeed())
			ctrl.Steer(1)

			cmd, err := ctrl.Execute()
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Mode).To(Equal(heading.ModeSeeking))
			Expect(math.Abs(cmd.Duty)).To(BeNumerically("<=", heading.DefaultMaxAutoTurnSpeed))
		})
	})

	Describe("Execute while seeking", func() {
		It("arrives and clears the target within one call", func() {
			sensor.pos = 0.5
			Expect(ctrl.SetTargetHeading(0.5005)).To(Succeed())

			cmd, err := ctrl.Execute()
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Arrived).To(BeTrue())
			Expect(motor.last()).To(BeZero())
			Expect(ctrl.Mode()).To(Equal(heading.ModeManual))
		})

		It("accepts either sign at the antipode", func() {
			sensor.pos = 0.75
			Expect(ctrl.SetTargetHeading(0.25)).To(Succeed())

			cmd, err := ctrl.Execute()
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Diff).To(BeNumerically("~", 0.5, 1e-12))
			Expect(math.Abs(cmd.Duty)).To(BeNumerically("~", heading.DefaultMaxAutoTurnSpeed*0.5, 1e-12))
		})

		It("never exceeds the auto speed cap", func() {
			Expect(ctrl.SetTargetHeading(0.123)).To(Succeed())
			for i := 0; i < 1000; i++ {
				sensor.pos = float64(i) / 1000
				_, err := ctrl.Execute()
				Expect(err).NotTo(HaveOccurred())
				Expect(math.Abs(motor.last())).To(BeNumerically("<=", heading.DefaultMaxAutoTurnSpeed))
				if ctrl.Mode() == heading.ModeManual {
					Expect(ctrl.SetTargetHeading(0.123)).To(Succeed())
				}
			}
		})

		It("publishes one heading sample per tick", func() {
			sensor.pos = 0.9876
			for i := 0; i < 3; i++ {
				_, err := ctrl.Execute()
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(sink.samples).To(HaveLen(3))
			Expect(sink.samples[0].value).To(Equal(987.0))
		})
	})

	Describe("collaborator failures", func() {
		It("propagates sensor errors without commanding the motor", func() {
			sensor.err = errSensor
			_, err := ctrl.Execute()
			Expect(err).To(MatchError(errSensor))
			Expect(motor.duties).To(BeEmpty())
			Expect(sink.samples).To(BeEmpty())
		})
	})
})
