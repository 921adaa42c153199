package flight

import (
	"math"
	"sort"

	"github.com/san-kum/rocketsim/internal/metrics"
	"github.com/san-kum/rocketsim/internal/telemetry"
)

// Point is the flight state at a notable instant. Reached is false when the
// flight ended before it.
type Point struct {
	Reached         bool
	Time            float64
	X, Y, Z         float64
	Altitude        float64
	Speed           float64
	Vz              float64
	FreestreamSpeed float64
	Mach            float64
	StaticMargin    float64
	StabilityMargin float64
	Acceleration    float64
}

type Extreme struct {
	Value float64
	Time  float64
}

type ParachuteEvent struct {
	Name            string
	Triggered       float64
	Deployed        float64
	WasDeployed     bool
	DeployAltitude  float64
	DeploySpeed     float64
	DescentVelocity float64
}

type Summary struct {
	LaunchElevation     float64
	RailLength          float64
	EffectiveRailLength float64
	Inclination         float64
	Heading             float64

	Initial          Point
	InitialMass      float64
	SurfaceWindSpeed float64
	SurfaceWindFrom  float64
	HeadWind         float64
	CrossWind        float64

	OutOfRail Point
	BurnOut   Point
	Apogee    Point
	Impact    Point

	// AverageThrust is the time-weighted mean thrust up to burn out.
	AverageThrust float64

	Max        map[string]Extreme
	Parachutes []ParachuteEvent
	Events     []Event

	FlightTime float64
	Terminated string
}

func pointAt(samples []telemetry.Sample, t float64) Point {
	i := sort.Search(len(samples), func(i int) bool { return samples[i].Time >= t-1e-12 })
	if i >= len(samples) {
		return Point{}
	}
	s := samples[i]
	return Point{
		Reached:         true,
		Time:            s.Time,
		X:               s.X,
		Y:               s.Y,
		Z:               s.Z,
		Altitude:        s.Altitude,
		Speed:           s.Speed,
		Vz:              s.Vz,
		FreestreamSpeed: s.FreestreamSpeed,
		Mach:            s.Mach,
		StaticMargin:    s.StaticMargin,
		StabilityMargin: s.StabilityMargin,
		Acceleration:    metrics.AccelerationMagnitude(s),
	}
}

func summarize(f *Flight, res *Result) Summary {
	env := f.Environment
	sum := Summary{
		LaunchElevation:     env.Elevation,
		RailLength:          f.RailLength,
		EffectiveRailLength: f.EffectiveRailLength(),
		Inclination:         f.Inclination,
		Heading:             f.Heading,
		InitialMass:         f.Rocket.TotalMass(0),
		Events:              res.Events,
		Terminated:          res.Terminated,
		Max:                 make(map[string]Extreme),
	}

	u, v := env.Wind(env.Elevation)
	u += f.WindOffset[0]
	v += f.WindOffset[1]
	sum.SurfaceWindSpeed = math.Hypot(u, v)
	sum.SurfaceWindFrom = math.Mod(azimuth(vec{-u, -v, 0})+360, 360)
	hd := f.Heading * math.Pi / 180
	sum.HeadWind = -(u*math.Sin(hd) + v*math.Cos(hd))
	sum.CrossWind = u*math.Cos(hd) - v*math.Sin(hd)

	if len(res.Samples) == 0 {
		return sum
	}
	sum.Initial = pointAt(res.Samples, 0)
	sum.FlightTime = res.Samples[len(res.Samples)-1].Time

	for _, named := range []struct {
		name string
		dst  *Point
	}{
		{EventOutOfRail, &sum.OutOfRail},
		{EventBurnOut, &sum.BurnOut},
		{EventApogee, &sum.Apogee},
		{EventImpact, &sum.Impact},
	} {
		if ev, ok := res.Event(named.name); ok {
			*named.dst = pointAt(res.Samples, ev.Time)
		}
	}

	ms := metrics.Flight()
	metrics.Apply(res.Samples, ms...)
	for _, m := range ms {
		sum.Max[m.Name()] = Extreme{Value: m.Value(), Time: m.At()}
	}
	thrust := metrics.NewMean("thrust", func(s telemetry.Sample) float64 { return s.Thrust })
	bo := f.Rocket.Motor.BurnOutTime()
	for _, s := range res.Samples {
		if s.Time > bo {
			break
		}
		thrust.Observe(s)
	}
	sum.AverageThrust = thrust.Value()

	if !sum.Apogee.Reached {
		// flights cut off by max time still report their highest point
		ap := sum.Max["apogee"]
		sum.Apogee = pointAt(res.Samples, ap.Time)
		sum.Apogee.Reached = false
	}

	for _, chute := range f.Rocket.Parachutes {
		pe := ParachuteEvent{Name: chute.Name, Triggered: math.NaN(), Deployed: math.NaN()}
		if ev, ok := res.Event(TriggeredEvent(chute.Name)); ok {
			pe.Triggered = ev.Time
		}
		if ev, ok := res.Event(DeployedEvent(chute.Name)); ok {
			pe.Deployed = ev.Time
			pe.WasDeployed = true
			pe.DeployAltitude = ev.Z
			pe.DeploySpeed = ev.Speed
		}
		if !math.IsNaN(pe.Triggered) {
			sum.Parachutes = append(sum.Parachutes, pe)
		}
	}
	sort.SliceStable(sum.Parachutes, func(i, j int) bool { return sum.Parachutes[i].Triggered < sum.Parachutes[j].Triggered })

	// terminal descent rate under each canopy, taken just before the next
	// canopy or impact
	for i := range sum.Parachutes {
		pe := &sum.Parachutes[i]
		if !pe.WasDeployed {
			continue
		}
		end := sum.FlightTime
		if i+1 < len(sum.Parachutes) && sum.Parachutes[i+1].WasDeployed {
			end = sum.Parachutes[i+1].Deployed
		}
		pe.DescentVelocity = pointAt(res.Samples, math.Max(pe.Deployed, end-1)).Vz
	}
	return sum
}
