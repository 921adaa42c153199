package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/san-kum/rocketsim/internal/aero"
	"github.com/san-kum/rocketsim/internal/atmosphere"
	"github.com/san-kum/rocketsim/internal/curve"
	"github.com/san-kum/rocketsim/internal/flight"
	"github.com/san-kum/rocketsim/internal/motor"
	"github.com/san-kum/rocketsim/internal/rocket"
)

// Setup is a mission turned into simulation objects.
type Setup struct {
	Mission     *Mission
	Environment *atmosphere.Environment
	Motor       *motor.SolidMotor
	Rocket      *rocket.Rocket
	Flight      *flight.Flight
}

// Build constructs the environment, motor, rocket and flight in that order.
// now resolves relative launch dates.
func (m *Mission) Build(now time.Time) (*Setup, error) {
	env, err := m.buildEnvironment(now)
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	mot, err := m.buildMotor()
	if err != nil {
		return nil, fmt.Errorf("motor: %w", err)
	}
	r, err := m.buildRocket(mot)
	if err != nil {
		return nil, fmt.Errorf("rocket: %w", err)
	}

	fc := m.Flight
	f := &flight.Flight{
		Rocket:      r,
		Environment: env,
		RailLength:  fc.RailLength,
		Inclination: fc.Inclination,
		Heading:     fc.Heading,
		MaxTime:     fc.MaxTime,
		Dt:          fc.Dt,
		Integrator:  fc.Integrator,
		Seed:        fc.Seed,
	}
	return &Setup{Mission: m, Environment: env, Motor: mot, Rocket: r, Flight: f}, nil
}

// LaunchDate resolves the date field against now, at the configured hour UTC.
func (m *Mission) LaunchDate(now time.Time) (time.Time, bool, error) {
	ec := m.Environment
	now = now.UTC()
	var day time.Time
	switch strings.ToLower(ec.Date) {
	case "":
		return time.Time{}, false, nil
	case "today":
		day = now
	case "tomorrow":
		day = now.AddDate(0, 0, 1)
	default:
		d, err := time.Parse("2006-01-02", ec.Date)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: date %q", ErrInvalidMission, ec.Date)
		}
		day = d
	}
	if ec.Hour < 0 || ec.Hour > 23 {
		return time.Time{}, false, fmt.Errorf("%w: hour %d", ErrInvalidMission, ec.Hour)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), ec.Hour, 0, 0, 0, time.UTC), true, nil
}

func (m *Mission) buildEnvironment(now time.Time) (*atmosphere.Environment, error) {
	ec := m.Environment
	env, err := atmosphere.New(ec.Latitude, ec.Longitude, ec.Elevation)
	if err != nil {
		return nil, err
	}
	date, ok, err := m.LaunchDate(now)
	if err != nil {
		return nil, err
	}
	if ok {
		env.SetDate(date.Year(), int(date.Month()), date.Day(), date.Hour())
	}

	ac := ec.Atmosphere
	model := atmosphere.Model{Type: ac.Type, File: ac.File}
	if model.Pressure, err = pairs(ac.Pressure); err != nil {
		return nil, fmt.Errorf("pressure: %w", err)
	}
	if model.Temperature, err = pairs(ac.Temperature); err != nil {
		return nil, fmt.Errorf("temperature: %w", err)
	}
	if len(ac.Wind) > 0 {
		h := make([]float64, len(ac.Wind))
		u := make([]float64, len(ac.Wind))
		v := make([]float64, len(ac.Wind))
		for i, row := range ac.Wind {
			h[i], u[i], v[i] = row[0], row[1], row[2]
		}
		if model.WindU, err = curve.New(h, u); err != nil {
			return nil, fmt.Errorf("wind: %w", err)
		}
		if model.WindV, err = curve.New(h, v); err != nil {
			return nil, fmt.Errorf("wind: %w", err)
		}
	}
	if strings.EqualFold(ac.Type, atmosphere.Sounding) && ac.File != "" {
		f, err := m.open(ac.File)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		prof, err := atmosphere.ReadSounding(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ac.File, err)
		}
		model.Type = atmosphere.Sounding
		model.Pressure, model.Temperature = prof.Pressure, prof.Temperature
		model.WindU, model.WindV = prof.WindU, prof.WindV
	}
	if err := env.SetAtmosphericModel(model); err != nil {
		return nil, err
	}
	return env, nil
}

func pairs(rows [][2]float64) (*curve.Table, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, r := range rows {
		xs[i], ys[i] = r[0], r[1]
	}
	return curve.New(xs, ys)
}

func (m *Mission) buildMotor() (*motor.SolidMotor, error) {
	mc := m.Motor
	f, err := m.open(mc.ThrustSource)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tc, err := motor.ReadThrust(f, mc.ThrustSource)
	if err != nil {
		return nil, err
	}

	return motor.NewSolidMotor(motor.Config{
		Thrust:                  tc,
		DryMass:                 mc.DryMass,
		DryInertia:              mc.DryInertia,
		NozzleRadius:            mc.NozzleRadius,
		ThroatRadius:            mc.ThroatRadius,
		GrainNumber:             mc.GrainNumber,
		GrainDensity:            mc.GrainDensity,
		GrainOuterRadius:        mc.GrainOuterRadius,
		GrainInitialInnerRadius: mc.GrainInitialInnerRadius,
		GrainInitialHeight:      mc.GrainInitialHeight,
		GrainSeparation:         mc.GrainSeparation,
		GrainsCenterOfMass:      mc.GrainsCenterOfMass,
		CenterOfDryMass:         mc.CenterOfDryMass,
		NozzlePosition:          mc.NozzlePosition,
		BurnTime:                mc.BurnTime,
		Orientation:             mc.Orientation,
	})
}

func (m *Mission) table(name string) (*curve.Table, error) {
	f, err := m.open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := curve.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

func (m *Mission) buildRocket(mot *motor.SolidMotor) (*rocket.Rocket, error) {
	rc := m.Rocket
	off, err := m.table(rc.PowerOffDrag)
	if err != nil {
		return nil, fmt.Errorf("power off drag: %w", err)
	}
	on := off
	if rc.PowerOnDrag != "" {
		if on, err = m.table(rc.PowerOnDrag); err != nil {
			return nil, fmt.Errorf("power on drag: %w", err)
		}
	}

	r, err := rocket.New(rocket.Config{
		Radius:                   rc.Radius,
		Mass:                     rc.Mass,
		Inertia:                  rc.Inertia,
		PowerOffDrag:             off,
		PowerOnDrag:              on,
		CenterOfMassWithoutMotor: rc.CenterOfMassWithoutMotor,
		Orientation:              rc.Orientation,
	})
	if err != nil {
		return nil, err
	}
	r.AddMotor(mot, rc.MotorPosition)

	if b := rc.RailButtons; b != nil {
		if _, err := r.SetRailButtons(b.Upper, b.Lower, b.AngularPosition); err != nil {
			return nil, err
		}
	}
	if n := rc.Nose; n != nil {
		if _, err := r.AddNose(n.Length, n.Kind, n.Position); err != nil {
			return nil, err
		}
	}
	for i, fc := range rc.Fins {
		fins := rocket.FinSet{
			N: fc.N, RootChord: fc.RootChord, TipChord: fc.TipChord, Span: fc.Span,
			Position: fc.Position, CantAngle: fc.CantAngle, SweepLength: fc.Sweep,
		}
		if fc.Airfoil != nil {
			if fins.Airfoil, err = m.airfoil(fc.Airfoil); err != nil {
				return nil, fmt.Errorf("fin set %d airfoil: %w", i, err)
			}
		}
		if _, err := r.AddTrapezoidalFins(fins); err != nil {
			return nil, fmt.Errorf("fin set %d: %w", i, err)
		}
	}
	for i, tc := range rc.Tails {
		if _, err := r.AddTail(tc.TopRadius, tc.BottomRadius, tc.Length, tc.Position); err != nil {
			return nil, fmt.Errorf("tail %d: %w", i, err)
		}
	}
	for _, pc := range rc.Parachutes {
		trigger, err := rocket.ParseTrigger(string(pc.Trigger))
		if err != nil {
			return nil, fmt.Errorf("parachute %s: %w", pc.Name, err)
		}
		noise := rocket.Noise{Mean: pc.Noise[0], Std: pc.Noise[1], Correlation: pc.Noise[2]}
		if _, err := r.AddParachute(pc.Name, pc.CdS, trigger, pc.SamplingRate, pc.Lag, noise); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (m *Mission) airfoil(ac *AirfoilConfig) (*aero.Airfoil, error) {
	t, err := m.table(ac.File)
	if err != nil {
		return nil, err
	}
	return aero.NewAirfoil(ac.File, t, ac.Unit)
}
