package report

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rocketsim/internal/atmosphere"
	"github.com/san-kum/rocketsim/internal/motor"
	"github.com/san-kum/rocketsim/internal/rocket"
)

// Environment prints the launch site, the atmospheric model, the surface
// conditions and a profile up to profileHeight above the site.
func Environment(w io.Writer, env *atmosphere.Environment, profileHeight float64) error {
	info := env.Info(profileHeight, 11)
	p := newPrinter(w)

	p.title("Environment")
	p.header("Launch Site Details")
	if info.Date.IsZero() {
		p.line("Launch Date: not set")
	} else {
		p.line("Launch Date: %s UTC | Julian Date: %.4f", info.Date.Format("2006-01-02 15:04:05"), info.JulianDate)
	}
	p.line("Launch Site Latitude: %.5f°", info.Latitude)
	p.line("Launch Site Longitude: %.5f°", info.Longitude)
	p.line("Launch Site Surface Elevation: %.1f m", info.Elevation)
	p.line("Surface Gravity: %.4f m/s²", info.SurfaceGravity)

	p.header("Atmospheric Model Details")
	p.line("Atmospheric Model Type: %s", info.Model)
	if info.Source != "" {
		p.line("Atmospheric Model Source: %s", info.Source)
	}

	s := info.Surface
	p.header("Surface Atmospheric Conditions")
	p.line("Surface Wind Speed: %.2f m/s", s.WindSpeed)
	p.line("Surface Wind Direction: %.2f°", env.WindDirection(info.Elevation))
	p.line("Surface Wind Heading: %.2f°", s.WindHeading)
	p.line("Surface Pressure: %.2f hPa", s.Pressure/100)
	p.line("Surface Temperature: %.2f K", s.Temperature)
	p.line("Surface Air Density: %.3f kg/m³", s.Density)
	p.line("Surface Speed of Sound: %.2f m/s", s.SpeedOfSound)

	p.header("Atmospheric Profile")
	rows := make([]string, 0, len(info.Profile))
	for _, c := range info.Profile {
		rows = append(rows, fmt.Sprintf("%.0f\t%.2f\t%.2f\t%.4f\t%.2f\t%.2f\t",
			c.Height-info.Elevation, c.Pressure/100, c.Temperature, c.Density, c.SpeedOfSound, c.WindSpeed))
	}
	p.table("AGL (m)\tP (hPa)\tT (K)\tρ (kg/m³)\ta (m/s)\twind (m/s)\t", rows)
	return p.err
}

// Motor prints the nozzle, grain and performance data and a thrust chart.
func Motor(w io.Writer, m *motor.SolidMotor) error {
	info := m.Info()
	p := newPrinter(w)

	p.title("Motor")
	if info.Name != "" {
		p.line("%s (%s)", info.Name, info.Maker)
	}

	p.header("Nozzle Details")
	p.line("Nozzle Radius: %.4f m", info.NozzleRadius)
	p.line("Nozzle Throat Radius: %.4f m", info.ThroatRadius)
	p.line("Nozzle Expansion Ratio: %.3f", info.NozzleExpansionRatio)

	p.header("Grain Details")
	p.line("Number of Grains: %d", info.GrainNumber)
	p.line("Grain Density: %.1f kg/m³", info.GrainDensity)
	p.line("Grain Outer Radius: %.4f m", info.GrainOuterRadius)
	p.line("Grain Inner Radius: %.4f m", info.GrainInnerRadius)
	p.line("Grain Height: %.4f m", info.GrainHeight)
	p.line("Grain Volume: %.6f m³", info.GrainVolume)
	p.line("Grain Mass: %.3f kg", info.GrainMass)
	p.line("Final Grain Inner Radius: %.4f m | Final Grain Height: %.4f m", info.FinalInnerRadius, info.FinalHeight)

	p.header("Motor Details")
	if info.Source != "" {
		p.line("Thrust Source: %s", info.Source)
	}
	p.line("Total Burning Time: %.3f s (%.3f s to %.3f s)", info.BurnOut-info.BurnStart, info.BurnStart, info.BurnOut)
	p.line("Dry Mass: %.3f kg", info.DryMass)
	p.line("Total Propellant Mass: %.3f kg", info.PropellantMass)
	p.line("Total Motor Mass: %.3f kg", info.TotalMass)
	p.line("Average Propellant Exhaust Velocity: %.2f m/s", info.ExhaustVelocity)
	p.line("Average Thrust: %.2f N", info.AverageThrust)
	p.line("Maximum Thrust: %.2f N at %.3f s after ignition", info.MaxThrust, info.MaxThrustTime)
	p.line("Total Impulse: %.2f Ns", info.TotalImpulse)
	p.line("Specific Impulse: %.2f s", info.SpecificImpulse)

	_, thrust := m.ThrustCurve().Sample(60)
	p.printf("\n%s\n", asciigraph.Plot(thrust,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Caption("thrust (N) vs time"),
	))
	return p.err
}

// Rocket prints the mass, inertia, geometry, aerodynamic and recovery data
// of a rocket with its motor.
func Rocket(w io.Writer, r *rocket.Rocket) error {
	info, err := r.Info()
	if err != nil {
		return err
	}
	p := newPrinter(w)

	p.title("Rocket")
	p.header("Inertia Details")
	p.line("Rocket Mass: %.3f kg (without motor)", info.Mass)
	p.line("Rocket Dry Mass: %.3f kg (with unloaded motor)", info.DryMass)
	p.line("Rocket Loaded Mass: %.3f kg", info.TotalMass)
	p.line("Rocket Inertia (without motor) 11: %.3f kg*m2 | 22: %.3f kg*m2 | 33: %.4f kg*m2",
		info.Inertia[0], info.Inertia[1], info.Inertia[2])
	p.line("Rocket Inertia at lift-off 11: %.3f kg*m2 | 22: %.3f kg*m2 | 33: %.4f kg*m2",
		info.InertiaAtLiftoff[0], info.InertiaAtLiftoff[1], info.InertiaAtLiftoff[2])

	p.header("Geometrical Parameters")
	p.line("Rocket Maximum Radius: %.4f m", info.Radius)
	p.line("Rocket Frontal Area: %.6f m²", info.ReferenceArea)
	p.line("Rocket Length: %.3f m", info.Length)
	p.line("Coordinate System: %s", info.Orientation)
	p.line("Motor Position: %.3f m | Nozzle Position: %.3f m", info.MotorPosition, info.NozzlePosition)
	p.line("Center of Mass without Motor: %.3f m", info.CenterOfMassWithoutMotor)
	p.line("Center of Mass at lift-off: %.3f m | at burn out: %.3f m", info.CenterOfMass, info.CenterOfMassBurnout)
	if b := info.RailButtons; b != nil {
		p.line("Rail Buttons: upper %.3f m, lower %.3f m, %.1f m apart at %.1f°",
			b.Upper, b.Lower, b.Distance(), b.AngularPosition)
	}

	p.header("Aerodynamics Lift Coefficient Derivatives")
	rows := make([]string, 0, len(info.Surfaces))
	for _, s := range info.Surfaces {
		rows = append(rows, fmt.Sprintf("%s\t%.4f\t%.4f\t", s.Name, s.CNalpha, s.CP))
	}
	p.table("surface\tCNα (1/rad)\tCP (m)\t", rows)
	p.line("Total CNα: %.4f /rad | Center of Pressure: %.3f m", info.CNalpha, info.CenterOfPressure)
	p.line("Maximum Power Off Drag Coefficient: %.3f", info.PowerOffDragMax)
	p.line("Maximum Power On Drag Coefficient: %.3f", info.PowerOnDragMax)

	p.header("Stability")
	p.line("Initial Static Margin: %.3f c", info.StaticMarginInitial)
	p.line("Final Static Margin: %.3f c", info.StaticMarginFinal)
	p.line("Static Margin Range: %.3f c to %.3f c", info.StaticMarginMin, info.StaticMarginMax)
	if info.StaticMarginInitial < 0 {
		p.note("center of pressure is ahead of the center of mass at lift-off")
	}

	if len(info.Parachutes) > 0 {
		p.header("Parachutes")
		for _, c := range info.Parachutes {
			p.line("%s: CdS %.2f m² | trigger %s | sampling %.1f Hz | lag %.2f s | noise (%.2f, %.2f, %.2f) Pa",
				c.Name, c.CdS, c.Trigger, c.SamplingRate, c.Lag, c.Noise.Mean, c.Noise.Std, c.Noise.Correlation)
		}
	}
	return p.err
}
