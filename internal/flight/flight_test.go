package flight

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rocketsim/internal/dynamo"
	"github.com/san-kum/rocketsim/internal/rocket"
	"github.com/san-kum/rocketsim/internal/telemetry"
)

var _ = Describe("Flight", func() {
	var (
		f   *Flight
		res *Result
	)

	Context("with drogue at apogee and main at 300 m", func() {
		BeforeEach(func() {
			f = defaultBuild().flight()
			var err error
			res, err = f.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
		})

		It("ends on impact", func() {
			Expect(res.Terminated).To(Equal(EventImpact))
			impact, ok := res.Event(EventImpact)
			Expect(ok).To(BeTrue())
			Expect(math.Abs(impact.Z)).To(BeNumerically("<", 1e-3))
		})

		It("registers events in flight order", func() {
			order := []string{
				EventOutOfRail, EventBurnOut, EventApogee,
				TriggeredEvent("drogue"), DeployedEvent("drogue"),
				TriggeredEvent("main"), DeployedEvent("main"),
				EventImpact,
			}
			last := -1.0
			for _, name := range order {
				ev, ok := res.Event(name)
				Expect(ok).To(BeTrue(), "missing event %s", name)
				Expect(ev.Time).To(BeNumerically(">=", last), "event %s out of order", name)
				last = ev.Time
			}
		})

		It("leaves the rail after the effective rail length", func() {
			// upper button 0.9 m above the nozzle
			Expect(f.EffectiveRailLength()).To(BeNumerically("~", 4.3, 1e-12))

			ev, _ := res.Event(EventOutOfRail)
			travelled := math.Sqrt(ev.X*ev.X + ev.Y*ev.Y + ev.Z*ev.Z)
			Expect(travelled).To(BeNumerically("~", 4.3, 1e-3))
			Expect(ev.Speed).To(BeNumerically(">", 10))
			Expect(res.Summary.OutOfRail.Reached).To(BeTrue())
		})

		It("burns out on schedule", func() {
			ev, _ := res.Event(EventBurnOut)
			Expect(ev.Time).To(BeNumerically("~", f.Rocket.Motor.BurnOutTime(), 1e-9))
			// flat 1 kN motor
			Expect(res.Summary.AverageThrust).To(BeNumerically("~", 1000, 10))
		})

		It("locates apogee where vertical speed vanishes", func() {
			ev, _ := res.Event(EventApogee)
			Expect(math.Abs(ev.Vz)).To(BeNumerically("<", 1e-3))
			Expect(res.Summary.Apogee.Z).To(BeNumerically("~", ev.Z, 1e-9))
			Expect(res.Summary.Max["apogee"].Value).To(BeNumerically("~", ev.Z, 0.01))
			Expect(ev.Z).To(BeNumerically(">", 500))
		})

		It("deploys each parachute one lag after its trigger", func() {
			for _, name := range []string{"drogue", "main"} {
				trig, _ := res.Event(TriggeredEvent(name))
				dep, _ := res.Event(DeployedEvent(name))
				Expect(dep.Time - trig.Time).To(BeNumerically("~", 1.5, 1e-9))
			}
			main, _ := res.Event(TriggeredEvent("main"))
			Expect(main.Z).To(BeNumerically("<", 310))
			Expect(main.Z).To(BeNumerically(">", 250))
		})

		It("summarizes parachutes in deployment order", func() {
			Expect(res.Summary.Parachutes).To(HaveLen(2))
			Expect(res.Summary.Parachutes[0].Name).To(Equal("drogue"))
			Expect(res.Summary.Parachutes[1].Name).To(Equal("main"))
			// the main canopy descends slower than the drogue
			Expect(math.Abs(res.Summary.Parachutes[1].DescentVelocity)).To(
				BeNumerically("<", math.Abs(res.Summary.Parachutes[0].DescentVelocity)))
		})

		It("records telemetry for every step", func() {
			Expect(res.Samples).To(HaveLen(res.Steps + 1))
			Expect(res.Samples[0].Phase).To(Equal(telemetry.PhaseRail))
			Expect(res.Samples[len(res.Samples)-1].Phase).To(Equal(telemetry.PhaseParachute))

			var railForce, freeForce float64
			for _, s := range res.Samples {
				if s.Phase == telemetry.PhaseRail {
					railForce = math.Max(railForce, math.Abs(s.UpperButtonNormal))
				} else {
					freeForce = math.Max(freeForce, math.Abs(s.UpperButtonNormal))
				}
			}
			Expect(railForce).To(BeNumerically(">", 0))
			Expect(freeForce).To(BeZero())
		})

		It("reports maxima during the burn", func() {
			maxSpeed := res.Summary.Max["speed"]
			Expect(maxSpeed.Time).To(BeNumerically("~", f.Rocket.Motor.BurnOutTime(), 0.05))
			Expect(res.Summary.Max["mach"].Value).To(BeNumerically("~", maxSpeed.Value/340, 0.05))
			Expect(res.Summary.Max["dynamic_pressure"].Value).To(BeNumerically(">", 0))
		})
	})

	It("replays identically for the same seed", func() {
		a, err := defaultBuild().flight().Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		b, err := defaultBuild().flight().Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Events).To(Equal(b.Events))
		Expect(a.Steps).To(Equal(b.Steps))
		last, other := a.Samples[len(a.Samples)-1], b.Samples[len(b.Samples)-1]
		Expect([]float64{last.Time, last.X, last.Y, last.Vz}).To(Equal([]float64{other.Time, other.X, other.Y, other.Vz}))
	})

	It("flies straight up with a vertical rail and calm air", func() {
		b := defaultBuild()
		b.inclineDeg = 90
		res, err := b.flight().Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		impact, _ := res.Event(EventImpact)
		Expect(math.Abs(impact.X)).To(BeNumerically("<", 1e-3))
		Expect(math.Abs(impact.Y)).To(BeNumerically("<", 1e-3))
	})

	It("drifts downwind under canopy", func() {
		f := defaultBuild().flight()
		f.WindOffset = [2]float64{5, 0}
		res, err := f.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Summary.Impact.X).To(BeNumerically(">", 100))
		Expect(res.Summary.SurfaceWindFrom).To(BeNumerically("~", 270, 1e-9))
	})

	It("stays on the rail when thrust cannot lift the rocket", func() {
		b := defaultBuild()
		b.thrust = "W 100 600 P 3 6 Test\n0 20\n2 20\n"
		f := b.flight()
		f.MaxTime = 3
		res, err := f.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Terminated).To(Equal("max time"))
		_, left := res.Event(EventOutOfRail)
		Expect(left).To(BeFalse())
		for _, s := range res.Samples {
			Expect(s.Z).To(BeZero())
		}
	})

	It("starts in free flight with no effective rail", func() {
		b := defaultBuild()
		b.railLength = 0.5
		res, err := b.flight().Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		ev, ok := res.Event(EventOutOfRail)
		Expect(ok).To(BeTrue())
		Expect(ev.Time).To(BeZero())
	})

	DescribeTable("integrators agree on apogee",
		func(name string, tolerance float64) {
			ref, err := defaultBuild().flight().Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			f := defaultBuild().flight()
			f.Integrator = name
			res, err := f.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Summary.Apogee.Z).To(BeNumerically("~", ref.Summary.Apogee.Z, tolerance*ref.Summary.Apogee.Z))
		},
		Entry("rk45", "rk45", 0.01),
		Entry("euler", "euler", 0.05),
	)

	Describe("validation", func() {
		It("rejects a rail inclination outside (0, 90]", func() {
			f := defaultBuild().flight()
			f.Inclination = 0
			_, err := f.Run(context.Background())
			Expect(errors.Is(err, ErrInvalidFlight)).To(BeTrue())
		})

		It("requires a motor", func() {
			f := defaultBuild().flight()
			f.Rocket.Motor = nil
			_, err := f.Run(context.Background())
			Expect(errors.Is(err, rocket.ErrNoMotor)).To(BeTrue())
		})

		It("rejects an unknown integrator", func() {
			f := defaultBuild().flight()
			f.Integrator = "leapfrog"
			_, err := f.Run(context.Background())
			Expect(err).To(HaveOccurred())
		})

		It("stops on a canceled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := defaultBuild().flight().Run(ctx)
			Expect(errors.Is(err, dynamo.ErrContextCanceled)).To(BeTrue())
		})
	})
})

var _ = Describe("Dispersion", func() {
	It("reduces independent runs to landing statistics", func() {
		base := *defaultBuild().flight()
		cfg := DispersionConfig{Runs: 4, Workers: 2, WindSigma: 2}

		res, err := Dispersion(context.Background(), base, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Runs).To(HaveLen(4))
		Expect(res.Failed).To(BeZero())
		Expect(res.Unlanded).To(BeZero())
		Expect(res.SemiMajor).To(BeNumerically(">=", res.SemiMinor))
		Expect(res.ApogeeMean).To(BeNumerically(">", 0))
		for i, r := range res.Runs {
			Expect(r.Seed).To(Equal(base.Seed + uint64(i)))
		}

		again, err := Dispersion(context.Background(), base, DispersionConfig{Runs: 4, Workers: 1, WindSigma: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(again.ImpactMean).To(Equal(res.ImpactMean))
	})

	It("keeps flights stopped by max time out of the landing statistics", func() {
		base := *defaultBuild().flight()
		base.MaxTime = 5

		res, err := Dispersion(context.Background(), base, DispersionConfig{Runs: 3, Workers: 3, WindSigma: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Failed).To(BeZero())
		Expect(res.Unlanded).To(Equal(3))
		for _, r := range res.Runs {
			Expect(r.Landed).To(BeFalse())
		}
		Expect(res.ImpactMean).To(Equal([2]float64{}))
		Expect(res.SemiMajor).To(BeZero())
		Expect(res.FlightTimeMean).To(BeZero())
		Expect(res.MaxMachMean).To(BeNumerically(">", 0))
	})

	It("needs at least one run", func() {
		_, err := Dispersion(context.Background(), *defaultBuild().flight(), DispersionConfig{})
		Expect(errors.Is(err, ErrInvalidFlight)).To(BeTrue())
	})
})
