// Package motor models a solid rocket motor: thrust curve, propellant mass
// depletion, BATES grain regression and the resulting mass properties.
package motor

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rocketsim/internal/curve"
)

var ErrInvalidGeometry = errors.New("motor: invalid geometry")

const (
	NozzleToChamber = "nozzle_to_combustion_chamber"
	ChamberToNozzle = "combustion_chamber_to_nozzle"
)

// Config holds the motor as it is described on a data sheet. Positions are in
// motor coordinates along the axis given by Orientation.
type Config struct {
	Thrust                  *ThrustCurve
	DryMass                 float64
	DryInertia              [3]float64
	NozzleRadius            float64
	ThroatRadius            float64
	GrainNumber             int
	GrainDensity            float64
	GrainOuterRadius        float64
	GrainInitialInnerRadius float64
	GrainInitialHeight      float64
	GrainSeparation         float64
	GrainsCenterOfMass      float64
	CenterOfDryMass         float64
	NozzlePosition          float64
	BurnTime                [2]float64
	Orientation             string
}

type SolidMotor struct {
	cfg Config

	thrust    *curve.Table
	impulse   *curve.Table
	burnStart float64
	burnOut   float64

	totalImpulse float64
	propMass     float64
	ve           float64

	grains *Regression
}

func NewSolidMotor(cfg Config) (*SolidMotor, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	thrust := cfg.Thrust.Table
	lo, hi := thrust.Domain()
	start, end := cfg.BurnTime[0], cfg.BurnTime[1]
	if end <= 0 {
		start, end = lo, hi
	}
	if start < lo {
		start = lo
	}
	if end > hi {
		end = hi
	}
	if !(end > start) {
		return nil, fmt.Errorf("%w: burn time (%g, %g) is empty", ErrInvalidGeometry, start, end)
	}
	clipped, err := thrust.Clip(start, end)
	if err != nil {
		return nil, err
	}

	m := &SolidMotor{
		cfg:       cfg,
		thrust:    clipped,
		impulse:   clipped.Cumulative(),
		burnStart: start,
		burnOut:   end,
	}
	m.totalImpulse = clipped.Integral()
	if m.totalImpulse <= 0 {
		return nil, ErrEmptyThrust
	}

	ro, ri, h := cfg.GrainOuterRadius, cfg.GrainInitialInnerRadius, cfg.GrainInitialHeight
	m.propMass = float64(cfg.GrainNumber) * cfg.GrainDensity * math.Pi * (ro*ro - ri*ri) * h
	m.ve = m.totalImpulse / m.propMass

	m.grains, err = m.regress(0.005)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func validate(cfg Config) error {
	switch {
	case cfg.Thrust == nil || cfg.Thrust.Table == nil:
		return ErrEmptyThrust
	case cfg.DryMass < 0:
		return fmt.Errorf("%w: dry mass %g", ErrInvalidGeometry, cfg.DryMass)
	case cfg.GrainNumber < 1:
		return fmt.Errorf("%w: grain number %d", ErrInvalidGeometry, cfg.GrainNumber)
	case cfg.GrainDensity <= 0:
		return fmt.Errorf("%w: grain density %g", ErrInvalidGeometry, cfg.GrainDensity)
	case cfg.GrainOuterRadius <= 0 || cfg.GrainInitialHeight <= 0:
		return fmt.Errorf("%w: grain outer radius and height must be positive", ErrInvalidGeometry)
	case cfg.GrainInitialInnerRadius < 0 || cfg.GrainInitialInnerRadius >= cfg.GrainOuterRadius:
		return fmt.Errorf("%w: inner radius %g must lie in [0, %g)", ErrInvalidGeometry, cfg.GrainInitialInnerRadius, cfg.GrainOuterRadius)
	case cfg.GrainSeparation < 0:
		return fmt.Errorf("%w: grain separation %g", ErrInvalidGeometry, cfg.GrainSeparation)
	case cfg.NozzleRadius <= 0 || cfg.ThroatRadius <= 0:
		return fmt.Errorf("%w: nozzle and throat radius must be positive", ErrInvalidGeometry)
	case cfg.ThroatRadius > cfg.NozzleRadius:
		return fmt.Errorf("%w: throat radius %g exceeds nozzle radius %g", ErrInvalidGeometry, cfg.ThroatRadius, cfg.NozzleRadius)
	}
	switch cfg.Orientation {
	case "", NozzleToChamber, ChamberToNozzle:
	default:
		return fmt.Errorf("%w: orientation %q", ErrInvalidGeometry, cfg.Orientation)
	}
	return nil
}

func (m *SolidMotor) Config() Config { return m.cfg }

// Thrust is zero outside the burn.
func (m *SolidMotor) Thrust(t float64) float64 {
	if t < m.burnStart || t > m.burnOut {
		return 0
	}
	return m.thrust.At(t)
}

func (m *SolidMotor) ThrustCurve() *curve.Table { return m.thrust }

func (m *SolidMotor) TotalImpulse() float64 { return m.totalImpulse }

func (m *SolidMotor) BurnStart() float64 { return m.burnStart }

func (m *SolidMotor) BurnOutTime() float64 { return m.burnOut }

func (m *SolidMotor) BurnDuration() float64 { return m.burnOut - m.burnStart }

func (m *SolidMotor) AverageThrust() float64 { return m.totalImpulse / m.BurnDuration() }

// MaxThrust returns the peak thrust and its time.
func (m *SolidMotor) MaxThrust() (float64, float64) {
	t, f := m.thrust.Max()
	return f, t
}

func (m *SolidMotor) ExhaustVelocity() float64 { return m.ve }

// SpecificImpulse in seconds.
func (m *SolidMotor) SpecificImpulse() float64 { return m.ve / 9.80665 }

func (m *SolidMotor) PropellantInitialMass() float64 { return m.propMass }

// MassFlowRate is negative while burning.
func (m *SolidMotor) MassFlowRate(t float64) float64 {
	return -m.Thrust(t) / m.ve
}

func (m *SolidMotor) PropellantMass(t float64) float64 {
	switch {
	case t <= m.burnStart:
		return m.propMass
	case t >= m.burnOut:
		return 0
	}
	burnt := m.impulse.At(t) / m.totalImpulse
	return m.propMass * math.Max(0, 1-burnt)
}

func (m *SolidMotor) DryMass() float64 { return m.cfg.DryMass }

func (m *SolidMotor) TotalMass(t float64) float64 {
	return m.cfg.DryMass + m.PropellantMass(t)
}

// NozzleExpansionRatio is exit area over throat area.
func (m *SolidMotor) NozzleExpansionRatio() float64 {
	r := m.cfg.NozzleRadius / m.cfg.ThroatRadius
	return r * r
}

func (m *SolidMotor) NozzleArea() float64 {
	return math.Pi * m.cfg.NozzleRadius * m.cfg.NozzleRadius
}

func (m *SolidMotor) ThroatArea() float64 {
	return math.Pi * m.cfg.ThroatRadius * m.cfg.ThroatRadius
}

// Sign is +1 when motor coordinates grow from the nozzle towards the
// combustion chamber and -1 otherwise.
func (m *SolidMotor) Sign() float64 {
	if m.cfg.Orientation == ChamberToNozzle {
		return -1
	}
	return 1
}

func (m *SolidMotor) NozzlePosition() float64 { return m.cfg.NozzlePosition }

// CenterOfMass in motor coordinates.
func (m *SolidMotor) CenterOfMass(t float64) float64 {
	mp := m.PropellantMass(t)
	total := m.cfg.DryMass + mp
	if total == 0 {
		return m.cfg.CenterOfDryMass
	}
	return (m.cfg.DryMass*m.cfg.CenterOfDryMass + mp*m.cfg.GrainsCenterOfMass) / total
}

// PropellantInertia is the inertia of all grains about the grains' centre of
// mass, from the regressed grain geometry at t.
func (m *SolidMotor) PropellantInertia(t float64) *mat.SymDense {
	mp := m.PropellantMass(t)
	out := mat.NewSymDense(3, nil)
	if mp <= 0 {
		return out
	}

	n := m.cfg.GrainNumber
	ri, h := m.grains.At(t)
	ro := m.cfg.GrainOuterRadius
	mg := mp / float64(n)

	izz := 0.5 * mg * (ro*ro + ri*ri)
	ixx := mg / 12 * (3*(ro*ro+ri*ri) + h*h)
	grain := Inertia(ixx, ixx, izz)

	pitch := m.cfg.GrainInitialHeight + m.cfg.GrainSeparation
	for i := 0; i < n; i++ {
		offset := (float64(i) - float64(n-1)/2) * pitch
		out = AddInertia(out, ParallelAxis(grain, mg, [3]float64{0, 0, offset}))
	}
	return out
}

// Inertia is the motor inertia tensor about its own centre of mass at t.
func (m *SolidMotor) Inertia(t float64) *mat.SymDense {
	com := m.CenterOfMass(t)
	dry := Inertia(m.cfg.DryInertia[0], m.cfg.DryInertia[1], m.cfg.DryInertia[2])
	dry = ParallelAxis(dry, m.cfg.DryMass, [3]float64{0, 0, m.cfg.CenterOfDryMass - com})

	mp := m.PropellantMass(t)
	prop := ParallelAxis(m.PropellantInertia(t), mp, [3]float64{0, 0, m.cfg.GrainsCenterOfMass - com})
	return AddInertia(dry, prop)
}

// GrainGeometry returns the inner radius and height of one grain at t.
func (m *SolidMotor) GrainGeometry(t float64) (innerRadius, height float64) {
	return m.grains.At(t)
}

func (m *SolidMotor) Regression() *Regression { return m.grains }
