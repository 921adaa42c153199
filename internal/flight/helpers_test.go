package flight

import (
	"strings"

	"github.com/san-kum/rocketsim/internal/atmosphere"
	"github.com/san-kum/rocketsim/internal/curve"
	"github.com/san-kum/rocketsim/internal/motor"
	"github.com/san-kum/rocketsim/internal/rocket"
)

const flatEng = `; flat 1 kN for 2 s
F1000 100 600 P 3 6 Test
0 1000
2 1000
`

type build struct {
	thrust     string
	inclineDeg float64
	railLength float64
	chutes     bool
}

func defaultBuild() build {
	return build{thrust: flatEng, inclineDeg: 85, railLength: 5.2, chutes: true}
}

func (b build) flight() *Flight {
	tc, err := motor.ReadEng(strings.NewReader(b.thrust))
	if err != nil {
		panic(err)
	}
	m, err := motor.NewSolidMotor(motor.Config{
		Thrust:                  tc,
		DryMass:                 2,
		DryInertia:              [3]float64{0.2, 0.2, 0.002},
		NozzleRadius:            0.02,
		ThroatRadius:            0.01,
		GrainNumber:             1,
		GrainDensity:            1800,
		GrainOuterRadius:        0.04,
		GrainInitialInnerRadius: 0.015,
		GrainInitialHeight:      0.4,
		GrainsCenterOfMass:      0.2,
		CenterOfDryMass:         0.25,
		Orientation:             motor.NozzleToChamber,
	})
	if err != nil {
		panic(err)
	}

	drag, _ := curve.New([]float64{0, 0.8, 1.2, 3}, []float64{0.45, 0.5, 0.7, 0.5})
	r, err := rocket.New(rocket.Config{
		Radius:                   0.05,
		Mass:                     5,
		Inertia:                  [3]float64{2, 2, 0.01},
		PowerOffDrag:             drag,
		PowerOnDrag:              drag.Scale(0.9),
		CenterOfMassWithoutMotor: 1.0,
		Orientation:              rocket.TailToNose,
	})
	if err != nil {
		panic(err)
	}
	r.AddMotor(m, 0)
	if _, err := r.SetRailButtons(0.9, 0.2, 45); err != nil {
		panic(err)
	}
	if _, err := r.AddNose(0.4, "von karman", 2.0); err != nil {
		panic(err)
	}
	if _, err := r.AddTrapezoidalFins(rocket.FinSet{N: 4, RootChord: 0.15, TipChord: 0.07, Span: 0.1, Position: 0.15}); err != nil {
		panic(err)
	}
	if b.chutes {
		noise := rocket.Noise{Mean: 0, Std: 8.3, Correlation: 0.5}
		if _, err := r.AddParachute("main", 10, rocket.Altitude(300), 105, 1.5, noise); err != nil {
			panic(err)
		}
		if _, err := r.AddParachute("drogue", 1, rocket.Apogee(), 105, 1.5, noise); err != nil {
			panic(err)
		}
	}

	env, err := atmosphere.New(28.562106, 80.577180, 3)
	if err != nil {
		panic(err)
	}
	env.SetDate(2026, 10, 19, 12)

	return &Flight{
		Rocket:      r,
		Environment: env,
		RailLength:  b.railLength,
		Inclination: b.inclineDeg,
		Heading:     0,
		MaxTime:     600,
		Dt:          0.01,
		Integrator:  "rk4",
		Seed:        42,
	}
}
