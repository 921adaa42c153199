package aero

import (
	"fmt"
	"math"

	"github.com/san-kum/rocketsim/internal/curve"
)

// TrapezoidalFins is a set of N identical fins. Position is the leading edge
// of the root chord; the fins extend aft from it.
type TrapezoidalFins struct {
	N           int
	RootChord   float64
	TipChord    float64
	Span        float64
	Position    float64
	CantAngle   float64 // degrees
	SweepLength float64
	Radius      float64 // body radius at the fin root
	Dir         float64
	Airfoil     *Airfoil
}

func NewTrapezoidalFins(n int, root, tip, span, position, cant, sweep, radius, dir float64, airfoil *Airfoil) (*TrapezoidalFins, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: fin count %d", ErrInvalidSize, n)
	}
	if root <= 0 || tip < 0 || span <= 0 || radius <= 0 {
		return nil, fmt.Errorf("%w: fins (root %g, tip %g, span %g)", ErrInvalidSize, root, tip, span)
	}
	if sweep == 0 {
		sweep = root - tip
	}
	return &TrapezoidalFins{
		N: n, RootChord: root, TipChord: tip, Span: span, Position: position,
		CantAngle: cant, SweepLength: sweep, Radius: radius, Dir: dir, Airfoil: airfoil,
	}, nil
}

func (f *TrapezoidalFins) Name() string { return "fins" }

// MidChordLength is the length of the line joining the midpoints of the root
// and tip chords.
func (f *TrapezoidalFins) MidChordLength() float64 {
	dx := f.SweepLength + f.TipChord/2 - f.RootChord/2
	return math.Hypot(f.Span, dx)
}

func (f *TrapezoidalFins) Area() float64 {
	return (f.RootChord + f.TipChord) * f.Span / 2
}

func (f *TrapezoidalFins) AspectRatio() float64 {
	return 2 * f.Span * f.Span / f.Area()
}

// CNalpha applies the Barrowman fin formula with body interference,
// compressibility and the airfoil lift-slope correction.
func (f *TrapezoidalFins) CNalpha(mach, refRadius float64) float64 {
	d := 2 * refRadius
	s := f.Span / d
	ratio := 2 * f.MidChordLength() / (f.RootChord + f.TipChord)
	cn := 4 * float64(f.N) * s * s / (1 + math.Sqrt(1+ratio*ratio))

	interference := 1 + f.Radius/(f.Span+f.Radius)
	cn *= interference * compressibility(mach)
	if f.Airfoil != nil {
		cn *= f.Airfoil.LiftSlope() / (2 * math.Pi)
	}
	return cn
}

func (f *TrapezoidalFins) CP() float64 {
	cr, ct := f.RootChord, f.TipChord
	xt := f.SweepLength
	x := xt/3*(cr+2*ct)/(cr+ct) + (cr+ct-cr*ct/(cr+ct))/6
	return f.Position - f.Dir*x
}

// RollForcing is the roll forcing coefficient from the cant angle, zero for
// straight fins. It is reported, not flown: the flight model has no roll.
func (f *TrapezoidalFins) RollForcing(mach, refRadius float64) float64 {
	if f.CantAngle == 0 {
		return 0
	}
	ymac := f.Radius + f.Span/3*(f.RootChord+2*f.TipChord)/(f.RootChord+f.TipChord)
	cn1 := f.CNalpha(mach, refRadius) / float64(f.N)
	return float64(f.N) * ymac * cn1 * f.CantAngle * math.Pi / 180 / (2 * refRadius)
}

// Airfoil is a lift curve cl(alpha) with alpha in radians.
type Airfoil struct {
	Source string
	Lift   *curve.Table
}

// NewAirfoil converts the table's angles to radians when unit is "degrees".
func NewAirfoil(source string, table *curve.Table, unit string) (*Airfoil, error) {
	switch unit {
	case "", "radians":
	case "degrees":
		xs := table.X()
		for i := range xs {
			xs[i] *= math.Pi / 180
		}
		t, err := curve.New(xs, table.Y())
		if err != nil {
			return nil, err
		}
		table = t
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAngles, unit)
	}
	return &Airfoil{Source: source, Lift: table}, nil
}

// LiftSlope is dcl/dalpha near zero angle of attack. Tables that do not cover
// zero fall back to thin-airfoil theory.
func (a *Airfoil) LiftSlope() float64 {
	lo, hi := a.Lift.Domain()
	if lo > 0 || hi < 0 {
		return 2 * math.Pi
	}
	slope := a.Lift.Slope(0)
	if slope <= 0 {
		return 2 * math.Pi
	}
	return slope
}
