package motor

import (
	"math"

	"github.com/san-kum/rocketsim/internal/curve"
	"github.com/san-kum/rocketsim/internal/dynamo"
	"github.com/san-kum/rocketsim/internal/integrators"
)

// grainBurn is the BATES regression ODE with state [inner radius, height].
// Each grain burns on its bore and on both ends.
type grainBurn struct {
	m *SolidMotor
}

func (g *grainBurn) StateDim() int { return 2 }

func (g *grainBurn) Derive(x dynamo.State, t float64) dynamo.State {
	cfg := g.m.cfg
	r, h := x[0], x[1]
	ro := cfg.GrainOuterRadius
	if r >= ro || h <= 0 {
		return dynamo.State{0, 0}
	}

	area := 2*math.Pi*r*h + 2*math.Pi*(ro*ro-r*r)
	if area <= 0 {
		return dynamo.State{0, 0}
	}
	mdot := g.m.MassFlowRate(t)
	drdt := -mdot / (cfg.GrainDensity * float64(cfg.GrainNumber) * area)
	return dynamo.State{drdt, -2 * drdt}
}

// Regression is the tabulated grain geometry over the burn.
type Regression struct {
	Radius *curve.Table
	Height *curve.Table
}

func (r *Regression) At(t float64) (innerRadius, height float64) {
	return r.Radius.At(t), r.Height.At(t)
}

func (m *SolidMotor) regress(dt float64) (*Regression, error) {
	sys := &grainBurn{m: m}
	rk4 := integrators.NewRK4()
	ro := m.cfg.GrainOuterRadius

	x := dynamo.State{m.cfg.GrainInitialInnerRadius, m.cfg.GrainInitialHeight}
	ts := []float64{m.burnStart}
	rs := []float64{x[0]}
	hs := []float64{x[1]}

	for t := m.burnStart; t < m.burnOut-1e-12; {
		h := math.Min(dt, m.burnOut-t)
		x = rk4.Step(sys, x, t, h)
		t += h

		x[0] = math.Min(x[0], ro)
		x[1] = math.Max(x[1], 0)
		ts = append(ts, t)
		rs = append(rs, x[0])
		hs = append(hs, x[1])
		if x[0] >= ro || x[1] <= 0 {
			break
		}
	}
	if len(ts) < 2 {
		ts = append(ts, m.burnOut)
		rs = append(rs, x[0])
		hs = append(hs, x[1])
	}

	radius, err := curve.New(ts, rs)
	if err != nil {
		return nil, err
	}
	height, err := curve.New(ts, hs)
	if err != nil {
		return nil, err
	}
	return &Regression{Radius: radius, Height: height}, nil
}
