package report

import (
	"io"
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/san-kum/rocketsim/internal/flight"
)

const earthRadius = 6371008.8

func InitialConditions(w io.Writer, f *flight.Flight, res *flight.Result) error {
	s := res.Summary
	p := newPrinter(w)
	p.header("Initial Conditions")
	p.line("Position - x: %.2f m | y: %.2f m | altitude: %.2f m (ASL)", s.Initial.X, s.Initial.Y, s.Initial.Altitude)
	p.line("Speed: %.2f m/s", s.Initial.Speed)
	p.line("Attitude - Inclination: %.2f° | Heading: %.2f°", s.Inclination, s.Heading)
	p.line("Initial Mass: %.3f kg", s.InitialMass)
	p.line("Initial Static Margin: %.3f c", s.Initial.StaticMargin)
	return p.err
}

func SurfaceWind(w io.Writer, f *flight.Flight, res *flight.Result) error {
	s := res.Summary
	p := newPrinter(w)
	p.header("Surface Wind Conditions")
	p.line("Frontal Surface Wind Speed: %.2f m/s", s.HeadWind)
	p.line("Lateral Surface Wind Speed: %.2f m/s", s.CrossWind)
	p.line("Surface Wind Speed: %.2f m/s from %.2f°", s.SurfaceWindSpeed, s.SurfaceWindFrom)
	return p.err
}

func LaunchRail(w io.Writer, f *flight.Flight, res *flight.Result) error {
	s := res.Summary
	p := newPrinter(w)
	p.header("Launch Rail")
	p.line("Launch Rail Length: %.2f m", s.RailLength)
	p.line("Effective Rail Length: %.2f m", s.EffectiveRailLength)
	p.line("Launch Rail Inclination: %.2f°", s.Inclination)
	p.line("Launch Rail Heading: %.2f°", s.Heading)
	return p.err
}

func OutOfRail(w io.Writer, f *flight.Flight, res *flight.Result) error {
	pt := res.Summary.OutOfRail
	p := newPrinter(w)
	p.header("Rail Departure State")
	if !pt.Reached {
		p.note("the rocket never left the rail")
		return p.err
	}
	g := f.Environment.Gravity(pt.Altitude)
	p.line("Rail Departure Time: %.3f s", pt.Time)
	p.line("Rail Departure Velocity: %.3f m/s", pt.Speed)
	p.line("Rail Departure Stability Margin: %.3f c", pt.StabilityMargin)
	p.line("Rail Departure Thrust-Weight Ratio: %.3f", f.Rocket.ThrustToWeight(pt.Time, g))
	p.line("Rail Departure Mach Number: %.3f", pt.Mach)
	return p.err
}

func BurnOut(w io.Writer, f *flight.Flight, res *flight.Result) error {
	pt := res.Summary.BurnOut
	p := newPrinter(w)
	p.header("Burn out State")
	p.line("Burn out time: %.3f s", f.Rocket.Motor.BurnOutTime())
	p.line("Average thrust during burn: %.3f N", res.Summary.AverageThrust)
	p.line("Altitude at burn out: %s", or(pt.Reached, "%.3f m (ASL)", pt.Altitude))
	p.line("Rocket speed at burn out: %s", or(pt.Reached, "%.3f m/s", pt.Speed))
	p.line("Freestream velocity at burn out: %s", or(pt.Reached, "%.3f m/s", pt.FreestreamSpeed))
	p.line("Mach Number at burn out: %s", or(pt.Reached, "%.3f", pt.Mach))
	return p.err
}

func Apogee(w io.Writer, f *flight.Flight, res *flight.Result) error {
	pt := res.Summary.Apogee
	p := newPrinter(w)
	p.header("Apogee State")
	if !pt.Reached {
		p.note("apogee not reached before the end of the simulation; highest point shown")
	}
	p.line("Apogee Time: %.3f s", pt.Time)
	p.line("Apogee Altitude: %.3f m (ASL) | %.3f m (AGL)", pt.Altitude, pt.Z)
	p.line("Apogee Freestream Speed: %.3f m/s", pt.FreestreamSpeed)
	p.line("Apogee X position: %.3f m | Y position: %.3f m", pt.X, pt.Y)
	return p.err
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// Events prints the registered flight events and each parachute's
// trigger and deployment.
func Events(w io.Writer, f *flight.Flight, res *flight.Result) error {
	s := res.Summary
	p := newPrinter(w)
	p.header("Parachute Events")
	if len(s.Parachutes) == 0 {
		p.line("No Parachute Events Were Triggered.")
	}
	for _, c := range s.Parachutes {
		name := capitalize(c.Name)
		p.line("%s Ejection Triggered at: %.3f s", name, c.Triggered)
		if !c.WasDeployed {
			p.line("%s not deployed before the end of the simulation", name)
			continue
		}
		p.line("%s Parachute Inflated at: %.3f s", name, c.Deployed)
		p.line("%s Parachute Inflated with Freestream Speed of: %.3f m/s", name, c.DeploySpeed)
		p.line("%s Parachute Inflated at Height of: %.3f m (AGL)", name, c.DeployAltitude)
		p.line("%s Descent Velocity: %.3f m/s", name, math.Abs(c.DescentVelocity))
	}

	p.header("Events Registered")
	for _, ev := range s.Events {
		p.line("%8.3f s  %-20s z %9.2f m  speed %8.2f m/s", ev.Time, ev.Name, ev.Z, ev.Speed)
	}
	return p.err
}

func Impact(w io.Writer, f *flight.Flight, res *flight.Result) error {
	pt := res.Summary.Impact
	p := newPrinter(w)
	p.header("Impact Conditions")
	if !pt.Reached {
		p.note("no impact: simulation ended by " + res.Terminated)
		return p.err
	}
	lat, lon := offsetLatLon(f.Environment.Latitude, f.Environment.Longitude, pt.X, pt.Y)
	p.line("X Impact: %.3f m", pt.X)
	p.line("Y Impact: %.3f m", pt.Y)
	p.line("Latitude: %.7f° | Longitude: %.7f°", lat, lon)
	p.line("Time of Impact: %.3f s", pt.Time)
	p.line("Velocity at Impact: %.3f m/s", pt.Vz)
	return p.err
}

// MaxValues prints the flight maxima in the order they are usually read.
func MaxValues(w io.Writer, f *flight.Flight, res *flight.Result) error {
	mx := res.Summary.Max
	p := newPrinter(w)
	p.header("Maximum Values")
	rows := []struct{ label, key, unit string }{
		{"Maximum Speed", "speed", "m/s"},
		{"Maximum Mach Number", "mach", ""},
		{"Maximum Reynolds Number", "reynolds", ""},
		{"Maximum Dynamic Pressure", "dynamic_pressure", "Pa"},
		{"Maximum Acceleration", "acceleration", "m/s²"},
		{"Maximum Upper Rail Button Normal Force", "upper_button_normal", "N"},
		{"Maximum Upper Rail Button Shear Force", "upper_button_shear", "N"},
		{"Maximum Lower Rail Button Normal Force", "lower_button_normal", "N"},
		{"Maximum Lower Rail Button Shear Force", "lower_button_shear", "N"},
	}
	for _, r := range rows {
		e, ok := mx[r.key]
		if !ok {
			continue
		}
		if r.key == "reynolds" {
			p.line("%s: %.3e at %.2f s", r.label, e.Value, e.Time)
			continue
		}
		p.line("%s: %.3f %s at %.2f s", r.label, e.Value, r.unit, e.Time)
	}
	return p.err
}

// All prints every flight section in order.
func All(w io.Writer, f *flight.Flight, res *flight.Result) error {
	for _, fn := range []func(io.Writer, *flight.Flight, *flight.Result) error{
		InitialConditions, SurfaceWind, LaunchRail, OutOfRail, BurnOut, Apogee, Events, Impact, MaxValues,
	} {
		if err := fn(w, f, res); err != nil {
			return err
		}
	}
	return nil
}

// offsetLatLon moves a point by east/north metres on a spherical Earth.
func offsetLatLon(lat, lon, east, north float64) (float64, float64) {
	phi := lat * math.Pi / 180
	dLat := north / earthRadius
	dLon := east / (earthRadius * math.Cos(phi))
	return lat + deg(dLat), lon + deg(dLon)
}
