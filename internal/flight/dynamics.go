package flight

import (
	"math"

	"github.com/san-kum/rocketsim/internal/atmosphere"
	"github.com/san-kum/rocketsim/internal/dynamo"
	"github.com/san-kum/rocketsim/internal/rocket"
	"github.com/san-kum/rocketsim/internal/telemetry"
)

type phase int

const (
	onRail phase = iota
	free
	descent
)

type vec [3]float64

func (a vec) dot(b vec) float64   { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func (a vec) norm() float64       { return math.Sqrt(a.dot(a)) }
func (a vec) scale(k float64) vec { return vec{a[0] * k, a[1] * k, a[2] * k} }
func (a vec) add(b vec) vec       { return vec{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a vec) sub(b vec) vec       { return vec{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func (a vec) unit(fallback vec) vec {
	n := a.norm()
	if n < 1e-9 {
		return fallback
	}
	return a.scale(1 / n)
}

// dynamics is the point-mass equation of motion with state
// [x east, y north, z up, vx, vy, vz]. The rocket's axis follows the relative
// wind once it has left the rail.
type dynamics struct {
	rocket *rocket.Rocket
	env    *atmosphere.Environment
	rail   vec
	effLen float64
	wind   [2]float64

	phase phase
	chute *rocket.Parachute
}

func (d *dynamics) StateDim() int { return 6 }

func (d *dynamics) Derive(x dynamo.State, t float64) dynamo.State {
	l := d.loads(x, t)
	return dynamo.State{x[3], x[4], x[5], l.acc[0], l.acc[1], l.acc[2]}
}

// loads holds everything evaluated for one state, shared by the equations of
// motion and the telemetry.
type loads struct {
	h        float64
	pressure float64
	density  float64
	sound    float64
	mu       float64
	windU    float64
	windV    float64

	vel      vec
	air      vec // velocity relative to the air
	airspeed float64
	mach     float64
	axis     vec

	mass    float64
	gravity float64
	thrust  float64
	cd      float64
	drag    float64
	dragVec vec
	acc     vec
	powered bool
}

func (d *dynamics) loads(x dynamo.State, t float64) loads {
	var l loads
	l.h = x[2] + d.env.Elevation
	l.pressure = d.env.Pressure(l.h)
	l.density = d.env.Density(l.h)
	l.sound = d.env.SpeedOfSound(l.h)
	l.mu = d.env.DynamicViscosity(l.h)
	l.windU, l.windV = d.env.Wind(l.h)
	l.windU += d.wind[0]
	l.windV += d.wind[1]

	l.vel = vec{x[3], x[4], x[5]}
	l.air = l.vel.sub(vec{l.windU, l.windV, 0})
	l.airspeed = l.air.norm()
	l.mach = l.airspeed / l.sound

	m := d.rocket.Motor
	l.mass = d.rocket.TotalMass(t)
	l.gravity = d.env.Gravity(l.h)
	l.powered = t >= m.BurnStart() && t < m.BurnOutTime()
	q := 0.5 * l.density * l.airspeed * l.airspeed
	gravity := vec{0, 0, -l.gravity}

	switch d.phase {
	case onRail:
		l.axis = d.rail
		l.thrust = m.Thrust(t)
		l.cd = d.rocket.DragCoefficient(l.mach, l.powered)
		l.drag = q * l.cd * d.rocket.ReferenceArea()
		l.dragVec = l.air.unit(d.rail).scale(-l.drag)

		along := (l.thrust+l.dragVec.dot(d.rail))/l.mass - l.gravity*d.rail[2]
		if l.vel.dot(d.rail) <= 0 && along < 0 {
			along = 0
		}
		l.acc = d.rail.scale(along)
	case free:
		l.axis = l.air.unit(d.rail)
		l.thrust = m.Thrust(t)
		l.cd = d.rocket.DragCoefficient(l.mach, l.powered)
		l.drag = q * l.cd * d.rocket.ReferenceArea()
		l.dragVec = l.air.unit(l.axis).scale(-l.drag)
		l.acc = l.axis.scale(l.thrust).add(l.dragVec).scale(1 / l.mass).add(gravity)
	case descent:
		l.axis = l.air.unit(vec{0, 0, -1})
		l.thrust = m.Thrust(t)
		l.drag = q * d.chute.CdS
		l.cd = d.chute.CdS / d.rocket.ReferenceArea()
		l.dragVec = l.air.unit(l.axis).scale(-l.drag)
		l.acc = l.axis.scale(l.thrust).add(l.dragVec).scale(1 / l.mass).add(gravity)
	}
	return l
}

func (d *dynamics) phaseName(powered bool) string {
	switch d.phase {
	case onRail:
		return telemetry.PhaseRail
	case descent:
		return telemetry.PhaseParachute
	}
	if powered {
		return telemetry.PhasePowered
	}
	return telemetry.PhaseCoast
}

// sample builds the telemetry record for an accepted state.
func (d *dynamics) sample(x dynamo.State, t float64) telemetry.Sample {
	l := d.loads(x, t)
	r := d.rocket

	s := telemetry.Sample{
		Time:  t,
		Phase: d.phaseName(l.powered),
		X:     x[0], Y: x[1], Z: x[2],
		Vx: x[3], Vy: x[4], Vz: x[5],
		Ax: l.acc[0], Ay: l.acc[1], Az: l.acc[2],

		Altitude:        l.h,
		Speed:           l.vel.norm(),
		FreestreamSpeed: l.airspeed,
		Mach:            l.mach,
		Reynolds:        l.density * l.airspeed * 2 * r.Radius / l.mu,
		DynamicPressure: 0.5 * l.density * l.airspeed * l.airspeed,
		Pressure:        l.pressure,
		Density:         l.density,
		WindU:           l.windU,
		WindV:           l.windV,

		Drag:   l.drag,
		Thrust: l.thrust,
		Mass:   l.mass,

		StaticMargin:    r.StaticMargin(t),
		StabilityMargin: r.StabilityMargin(l.mach, t),

		PathAngle:       elevation(l.vel),
		Heading:         azimuth(l.vel),
		AttitudeAngle:   elevation(l.axis),
		AttitudeHeading: azimuth(l.axis),
		AngleOfAttack:   angleBetween(l.vel, l.axis),

		KineticEnergy:   0.5 * l.mass * l.vel.dot(l.vel),
		PotentialEnergy: l.mass * l.gravity * x[2],
		ThrustPower:     l.thrust * l.axis.dot(l.vel),
		DragPower:       l.dragVec.dot(l.vel),
	}
	s.TotalEnergy = s.KineticEnergy + s.PotentialEnergy

	if d.phase == onRail && r.RailButtons != nil {
		s.UpperButtonNormal, s.UpperButtonShear, s.LowerButtonNormal, s.LowerButtonShear = d.buttonForces(l, t)
	}
	return s
}

// buttonForces splits the weight component normal to the rail between the
// two buttons by the lever rule, then into normal and shear components by
// the buttons' angular position.
func (d *dynamics) buttonForces(l loads, t float64) (upperN, upperS, lowerN, lowerS float64) {
	b := d.rocket.RailButtons
	cosInc := math.Hypot(d.rail[0], d.rail[1])
	n := l.mass * l.gravity * cosInc

	span := b.Upper - b.Lower
	com := d.rocket.CenterOfMass(t)
	upper := n * (com - b.Lower) / span
	lower := n * (b.Upper - com) / span

	ang := b.AngularPosition * math.Pi / 180
	c, s := math.Cos(ang), math.Sin(ang)
	return upper * c, upper * s, lower * c, lower * s
}

func elevation(v vec) float64 {
	if v.norm() < 1e-9 {
		return 0
	}
	return math.Atan2(v[2], math.Hypot(v[0], v[1])) * 180 / math.Pi
}

func azimuth(v vec) float64 {
	if math.Hypot(v[0], v[1]) < 1e-9 {
		return 0
	}
	deg := math.Atan2(v[0], v[1]) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

func angleBetween(a, b vec) float64 {
	na, nb := a.norm(), b.norm()
	if na < 1e-9 || nb < 1e-9 {
		return 0
	}
	c := a.dot(b) / (na * nb)
	return math.Acos(math.Max(-1, math.Min(1, c))) * 180 / math.Pi
}

// railDirection is the unit vector along the rail for an inclination from
// horizontal and a heading clockwise from north, both in degrees.
func railDirection(inclination, heading float64) vec {
	inc := inclination * math.Pi / 180
	hd := heading * math.Pi / 180
	return vec{math.Cos(inc) * math.Sin(hd), math.Cos(inc) * math.Cos(hd), math.Sin(inc)}
}
