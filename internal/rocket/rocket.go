// Package rocket assembles an airframe, a motor and aerodynamic surfaces into
// a rocket and answers mass, stability and drag questions about it over time.
package rocket

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rocketsim/internal/aero"
	"github.com/san-kum/rocketsim/internal/curve"
	"github.com/san-kum/rocketsim/internal/motor"
)

var (
	ErrNoMotor      = errors.New("rocket: no motor attached")
	ErrRailButtons  = errors.New("rocket: upper rail button must be above the lower one")
	ErrInvalidFrame = errors.New("rocket: invalid airframe")
)

const (
	TailToNose = "tail_to_nose"
	NoseToTail = "nose_to_tail"
)

type Config struct {
	Radius                   float64
	Mass                     float64
	Inertia                  [3]float64
	PowerOffDrag             *curve.Table
	PowerOnDrag              *curve.Table
	CenterOfMassWithoutMotor float64
	Orientation              string
}

type Rocket struct {
	Radius                   float64
	Mass                     float64
	Inertia                  [3]float64
	PowerOffDrag             *curve.Table
	PowerOnDrag              *curve.Table
	CenterOfMassWithoutMotor float64
	Orientation              string

	Motor         *motor.SolidMotor
	MotorPosition float64

	Nose        *aero.NoseCone
	Fins        []*aero.TrapezoidalFins
	Tails       []*aero.Tail
	RailButtons *RailButtons
	Parachutes  []*Parachute

	surfaces []aero.Surface
	dir      float64
}

func New(cfg Config) (*Rocket, error) {
	if cfg.Radius <= 0 {
		return nil, fmt.Errorf("%w: radius %g", ErrInvalidFrame, cfg.Radius)
	}
	if cfg.Mass < 0 {
		return nil, fmt.Errorf("%w: mass %g", ErrInvalidFrame, cfg.Mass)
	}
	if cfg.PowerOffDrag == nil || cfg.PowerOnDrag == nil {
		return nil, fmt.Errorf("%w: power-off and power-on drag curves are required", ErrInvalidFrame)
	}

	r := &Rocket{
		Radius:                   cfg.Radius,
		Mass:                     cfg.Mass,
		Inertia:                  cfg.Inertia,
		PowerOffDrag:             cfg.PowerOffDrag,
		PowerOnDrag:              cfg.PowerOnDrag,
		CenterOfMassWithoutMotor: cfg.CenterOfMassWithoutMotor,
		Orientation:              cfg.Orientation,
	}
	switch cfg.Orientation {
	case "", TailToNose:
		r.Orientation = TailToNose
		r.dir = 1
	case NoseToTail:
		r.dir = -1
	default:
		return nil, fmt.Errorf("%w: orientation %q", ErrInvalidFrame, cfg.Orientation)
	}
	return r, nil
}

// Dir is +1 when rocket coordinates grow towards the nose.
func (r *Rocket) Dir() float64 { return r.dir }

func (r *Rocket) AddMotor(m *motor.SolidMotor, position float64) *motor.SolidMotor {
	r.Motor = m
	r.MotorPosition = position
	return m
}

func (r *Rocket) SetRailButtons(upper, lower, angularPosition float64) (*RailButtons, error) {
	if r.dir*(upper-lower) <= 0 {
		return nil, fmt.Errorf("%w: upper %g, lower %g", ErrRailButtons, upper, lower)
	}
	r.RailButtons = &RailButtons{Upper: upper, Lower: lower, AngularPosition: angularPosition}
	return r.RailButtons, nil
}

func (r *Rocket) AddNose(length float64, kind string, position float64) (*aero.NoseCone, error) {
	n, err := aero.NewNoseCone(length, kind, position, r.dir)
	if err != nil {
		return nil, err
	}
	r.Nose = n
	r.surfaces = append(r.surfaces, n)
	return n, nil
}

type FinSet struct {
	N           int
	RootChord   float64
	TipChord    float64
	Span        float64
	Position    float64
	CantAngle   float64
	SweepLength float64
	Airfoil     *aero.Airfoil
}

func (r *Rocket) AddTrapezoidalFins(fs FinSet) (*aero.TrapezoidalFins, error) {
	f, err := aero.NewTrapezoidalFins(fs.N, fs.RootChord, fs.TipChord, fs.Span, fs.Position,
		fs.CantAngle, fs.SweepLength, r.Radius, r.dir, fs.Airfoil)
	if err != nil {
		return nil, err
	}
	r.Fins = append(r.Fins, f)
	r.surfaces = append(r.surfaces, f)
	return f, nil
}

func (r *Rocket) AddTail(topRadius, bottomRadius, length, position float64) (*aero.Tail, error) {
	t, err := aero.NewTail(topRadius, bottomRadius, length, position, r.dir)
	if err != nil {
		return nil, err
	}
	r.Tails = append(r.Tails, t)
	r.surfaces = append(r.surfaces, t)
	return t, nil
}

func (r *Rocket) Surfaces() []aero.Surface { return r.surfaces }

// Validate checks that the rocket can fly.
func (r *Rocket) Validate() error {
	if r.Motor == nil {
		return ErrNoMotor
	}
	if len(r.surfaces) == 0 {
		return fmt.Errorf("%w: no aerodynamic surfaces", ErrInvalidFrame)
	}
	return nil
}

func (r *Rocket) ReferenceArea() float64 {
	return math.Pi * r.Radius * r.Radius
}

// MotorToRocket converts a motor coordinate to a rocket coordinate.
func (r *Rocket) MotorToRocket(p float64) float64 {
	return r.MotorPosition + r.dir*r.Motor.Sign()*p
}

// NozzlePosition in rocket coordinates.
func (r *Rocket) NozzlePosition() float64 {
	if r.Motor == nil {
		return 0
	}
	return r.MotorToRocket(r.Motor.NozzlePosition())
}

func (r *Rocket) TotalMass(t float64) float64 {
	if r.Motor == nil {
		return r.Mass
	}
	return r.Mass + r.Motor.TotalMass(t)
}

func (r *Rocket) DryMass() float64 {
	if r.Motor == nil {
		return r.Mass
	}
	return r.Mass + r.Motor.DryMass()
}

func (r *Rocket) CenterOfMass(t float64) float64 {
	if r.Motor == nil {
		return r.CenterOfMassWithoutMotor
	}
	mm := r.Motor.TotalMass(t)
	total := r.Mass + mm
	if total == 0 {
		return r.CenterOfMassWithoutMotor
	}
	return (r.Mass*r.CenterOfMassWithoutMotor + mm*r.MotorToRocket(r.Motor.CenterOfMass(t))) / total
}

// InertiaTensor about the rocket's centre of mass at t.
func (r *Rocket) InertiaTensor(t float64) *mat.SymDense {
	com := r.CenterOfMass(t)
	frame := motor.ParallelAxis(motor.Inertia(r.Inertia[0], r.Inertia[1], r.Inertia[2]), r.Mass,
		[3]float64{0, 0, r.CenterOfMassWithoutMotor - com})
	if r.Motor == nil {
		return frame
	}
	engine := motor.ParallelAxis(r.Motor.Inertia(t), r.Motor.TotalMass(t),
		[3]float64{0, 0, r.MotorToRocket(r.Motor.CenterOfMass(t)) - com})
	return motor.AddInertia(frame, engine)
}

// CNalpha is the total normal-force slope per radian.
func (r *Rocket) CNalpha(mach float64) float64 {
	sum := 0.0
	for _, s := range r.surfaces {
		sum += s.CNalpha(mach, r.Radius)
	}
	return sum
}

// CenterOfPressure is the CNalpha-weighted mean of the surface centres of
// pressure.
func (r *Rocket) CenterOfPressure(mach float64) float64 {
	num, den := 0.0, 0.0
	for _, s := range r.surfaces {
		cn := s.CNalpha(mach, r.Radius)
		num += cn * s.CP()
		den += cn
	}
	if den == 0 {
		return r.CenterOfMassWithoutMotor
	}
	return num / den
}

// StabilityMargin in calibers at the given Mach number and time.
func (r *Rocket) StabilityMargin(mach, t float64) float64 {
	return r.dir * (r.CenterOfMass(t) - r.CenterOfPressure(mach)) / (2 * r.Radius)
}

// StaticMargin is the stability margin at Mach 0.
func (r *Rocket) StaticMargin(t float64) float64 {
	return r.StabilityMargin(0, t)
}

// StaticMarginCurve samples the static margin over the motor burn.
func (r *Rocket) StaticMarginCurve(n int) (times, margins []float64) {
	if n < 2 {
		n = 2
	}
	end := 0.0
	if r.Motor != nil {
		end = r.Motor.BurnOutTime()
	}
	for i := 0; i < n; i++ {
		t := end * float64(i) / float64(n-1)
		times = append(times, t)
		margins = append(margins, r.StaticMargin(t))
	}
	return times, margins
}

func (r *Rocket) ThrustToWeight(t, g float64) float64 {
	if r.Motor == nil {
		return 0
	}
	return r.Motor.Thrust(t) / (r.TotalMass(t) * g)
}

// DragCoefficient picks the power-on curve while the motor burns.
func (r *Rocket) DragCoefficient(mach float64, powered bool) float64 {
	if powered {
		return r.PowerOnDrag.At(mach)
	}
	return r.PowerOffDrag.At(mach)
}

// Length spans the nose tip to the aftmost surface or nozzle.
func (r *Rocket) Length() float64 {
	if r.Nose == nil {
		return 0
	}
	aft := r.Nose.Position
	lowest := func(p float64) {
		if r.dir*(p-aft) < 0 {
			aft = p
		}
	}
	for _, f := range r.Fins {
		lowest(f.Position - r.dir*f.RootChord)
	}
	for _, t := range r.Tails {
		lowest(t.Position - r.dir*t.Length)
	}
	if r.Motor != nil {
		lowest(r.NozzlePosition())
	}
	return math.Abs(r.Nose.Position - aft)
}
