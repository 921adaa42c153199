// Package flight integrates a rocket's trajectory from the launch rail to
// impact and reduces it to the reports printed after a launch.
package flight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/rocketsim/internal/atmosphere"
	"github.com/san-kum/rocketsim/internal/dynamo"
	"github.com/san-kum/rocketsim/internal/integrators"
	"github.com/san-kum/rocketsim/internal/rocket"
	"github.com/san-kum/rocketsim/internal/telemetry"
)

var ErrInvalidFlight = errors.New("flight: invalid flight parameters")

const (
	EventOutOfRail = "out of rail"
	EventBurnOut   = "burn out"
	EventApogee    = "apogee"
	EventImpact    = "impact"
)

// TriggeredEvent and DeployedEvent name the parachute events.
func TriggeredEvent(chute string) string { return chute + " triggered" }
func DeployedEvent(chute string) string  { return chute + " deployed" }

type Flight struct {
	Rocket      *rocket.Rocket
	Environment *atmosphere.Environment
	RailLength  float64
	Inclination float64 // degrees from horizontal
	Heading     float64 // degrees clockwise from north
	MaxTime     float64
	Dt          float64
	Integrator  string
	Seed        uint64

	// WindOffset is added to the environment's (u, v) wind at every height.
	WindOffset [2]float64

	Logger *slog.Logger
}

// Event is a located flight event with the state right after it.
type Event struct {
	Name     string
	Time     float64
	X, Y, Z  float64
	Altitude float64
	Speed    float64
	Vz       float64
}

type Result struct {
	Samples    []telemetry.Sample
	Events     []Event
	Summary    Summary
	Terminated string
	Steps      int
}

// Event returns the first event with the given name.
func (r *Result) Event(name string) (Event, bool) {
	for _, ev := range r.Events {
		if ev.Name == name {
			return ev, true
		}
	}
	return Event{}, false
}

func (f *Flight) withDefaults() Flight {
	out := *f
	if out.MaxTime <= 0 {
		out.MaxTime = 600
	}
	if out.Dt <= 0 {
		out.Dt = 0.01
	}
	if out.Integrator == "" {
		out.Integrator = "rk4"
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.DiscardHandler)
	}
	return out
}

func (f *Flight) validate() error {
	if f.Rocket == nil || f.Environment == nil {
		return fmt.Errorf("%w: rocket and environment are required", ErrInvalidFlight)
	}
	if err := f.Rocket.Validate(); err != nil {
		return err
	}
	if f.RailLength < 0 {
		return fmt.Errorf("%w: rail length %g", ErrInvalidFlight, f.RailLength)
	}
	if f.Inclination <= 0 || f.Inclination > 90 {
		return fmt.Errorf("%w: inclination %g must be in (0, 90]", ErrInvalidFlight, f.Inclination)
	}
	return nil
}

// EffectiveRailLength is how far the rocket travels before the upper rail
// button leaves the rail.
func (f *Flight) EffectiveRailLength() float64 {
	if f.Rocket == nil || f.Rocket.RailButtons == nil || f.Rocket.Motor == nil {
		return f.RailLength
	}
	d := math.Abs(f.Rocket.RailButtons.Upper - f.Rocket.NozzlePosition())
	return math.Max(0, f.RailLength-d)
}

func (f *Flight) Run(ctx context.Context) (*Result, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	fl := f.withDefaults()
	log := fl.Logger.With("seed", fl.Seed)

	integ, err := integrators.Lookup(fl.Integrator)
	if err != nil {
		return nil, err
	}

	dyn := &dynamics{
		rocket: fl.Rocket,
		env:    fl.Environment,
		rail:   railDirection(fl.Inclination, fl.Heading),
		effLen: fl.EffectiveRailLength(),
		wind:   fl.WindOffset,
	}
	sim := dynamo.New(dyn, integ)

	var baros []*barometer
	for i, chute := range fl.Rocket.Parachutes {
		baros = append(baros, newBarometer(chute, fl.Environment, fl.Seed, i))
	}
	leaveRail := func(x dynamo.State, t float64) dynamo.State {
		dyn.phase = free
		for _, b := range baros {
			b.arm(t)
		}
		return x
	}

	if dyn.effLen > 0 {
		sim.AddEvent(&dynamo.Event{
			Name: EventOutOfRail,
			Func: func(x dynamo.State, t float64) float64 {
				return vec{x[0], x[1], x[2]}.dot(dyn.rail) - dyn.effLen
			},
			Direction: 1,
			Once:      true,
			Action:    leaveRail,
		})
	} else {
		sim.Schedule(0, EventOutOfRail, leaveRail)
	}

	if bo := fl.Rocket.Motor.BurnOutTime(); bo < fl.MaxTime {
		sim.Schedule(bo, EventBurnOut, nil)
	}
	sim.AddEvent(&dynamo.Event{
		Name:      EventApogee,
		Func:      func(x dynamo.State, t float64) float64 { return x[5] },
		Direction: -1,
		Once:      true,
	})
	sim.AddEvent(&dynamo.Event{
		Name:      EventImpact,
		Func:      func(x dynamo.State, t float64) float64 { return x[2] },
		Direction: -1,
		Terminal:  true,
	})

	samples := make([]telemetry.Sample, 0, int(60/fl.Dt))
	sim.AddObserver(dynamo.ObserverFunc(func(x dynamo.State, t float64) {
		samples = append(samples, dyn.sample(x, t))
		if dyn.phase == onRail {
			return
		}
		for _, b := range baros {
			if !b.poll(x[2], x[5], t) {
				continue
			}
			chute := b.chute
			sim.Record(TriggeredEvent(chute.Name), x, t)
			log.Debug("parachute triggered", "chute", chute.Name, "t", t, "z", x[2])
			sim.Schedule(t+chute.Lag, DeployedEvent(chute.Name), func(x dynamo.State, t float64) dynamo.State {
				dyn.phase = descent
				dyn.chute = chute
				return x
			})
		}
	}))

	cfg := dynamo.DefaultConfig()
	cfg.Dt = fl.Dt
	cfg.MaxTime = fl.MaxTime
	cfg.Adaptive = integrators.IsAdaptive(fl.Integrator)
	cfg.MaxDt = math.Max(fl.Dt, 0.05)
	cfg.MinDt = 1e-9

	log.Debug("flight started", "integrator", fl.Integrator, "dt", fl.Dt, "rail", dyn.effLen)
	res, err := sim.Run(ctx, make(dynamo.State, 6), cfg)
	if err != nil {
		return nil, fmt.Errorf("flight: %w", err)
	}

	out := &Result{
		Samples:    samples,
		Terminated: res.Terminated,
		Steps:      res.StepsTaken,
	}
	fillAngularRate(out.Samples)
	for _, rec := range res.Events {
		out.Events = append(out.Events, Event{
			Name:     rec.Name,
			Time:     rec.Time,
			X:        rec.State[0],
			Y:        rec.State[1],
			Z:        rec.State[2],
			Altitude: rec.State[2] + fl.Environment.Elevation,
			Speed:    vec{rec.State[3], rec.State[4], rec.State[5]}.norm(),
			Vz:       rec.State[5],
		})
		log.Debug("event", "name", rec.Name, "t", rec.Time, "z", rec.State[2])
	}
	out.Summary = summarize(&fl, out)

	log.Info("flight complete",
		"terminated", out.Terminated,
		"apogee", out.Summary.Apogee.Z,
		"flight_time", out.Summary.FlightTime,
		"steps", out.Steps)
	return out, nil
}

// fillAngularRate differentiates the body-axis direction between samples.
func fillAngularRate(samples []telemetry.Sample) {
	axis := func(s telemetry.Sample) vec {
		el := s.AttitudeAngle * math.Pi / 180
		az := s.AttitudeHeading * math.Pi / 180
		return vec{math.Cos(el) * math.Sin(az), math.Cos(el) * math.Cos(az), math.Sin(el)}
	}
	for i := 1; i < len(samples); i++ {
		dt := samples[i].Time - samples[i-1].Time
		if dt <= 0 {
			samples[i].AngularRate = samples[i-1].AngularRate
			continue
		}
		samples[i].AngularRate = angleBetween(axis(samples[i-1]), axis(samples[i])) / dt
	}
}
