// Package plots renders stored flight telemetry as terminal charts, PNG
// figures and an SVG trajectory.
package plots

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rocketsim/internal/telemetry"
)

var (
	ErrUnknownPlot = errors.New("plots: unknown plot group")
	ErrNoSamples   = errors.New("plots: not enough samples")
)

// downrange is the horizontal distance from the launch point. It is not a
// telemetry column, so series() derives it.
const downrange = "downrange"

type panel struct {
	title string
	x     string
	ys    []string
}

type group struct {
	name   string
	title  string
	panels []panel
	// window narrows the samples before plotting; nil keeps all of them.
	window func([]telemetry.Sample) []telemetry.Sample
}

func timePanel(title string, ys ...string) panel {
	return panel{title: title, x: "time", ys: ys}
}

var groups = []group{
	{
		name:  "static_margin",
		title: "Static Margin",
		panels: []panel{
			timePanel("Static and stability margin", "static_margin", "stability_margin"),
		},
		window: untilBurnOut,
	},
	{
		name:  "trajectory",
		title: "Flight Trajectory",
		panels: []panel{
			{title: "Ground track", x: "x", ys: []string{"y"}},
			{title: "Altitude profile", x: downrange, ys: []string{"z"}},
		},
	},
	{
		name:  "linear_kinematics",
		title: "Linear Kinematics",
		panels: []panel{
			timePanel("Position", "x", "y", "z"),
			timePanel("Velocity", "vx", "vy", "vz"),
			timePanel("Acceleration", "ax", "ay", "az"),
			timePanel("Speed", "speed", "freestream_speed"),
		},
	},
	{
		name:  "flight_path_angle",
		title: "Flight Path and Attitude Angle",
		panels: []panel{
			timePanel("Elevation", "path_angle", "attitude_angle"),
			timePanel("Heading", "heading", "attitude_heading"),
		},
	},
	{
		name:  "attitude",
		title: "Attitude",
		panels: []panel{
			timePanel("Attitude angle", "attitude_angle"),
			timePanel("Attitude heading", "attitude_heading"),
			timePanel("Angle of attack", "angle_of_attack"),
		},
	},
	{
		name:  "angular_kinematics",
		title: "Angular Kinematics",
		panels: []panel{
			timePanel("Angular rate", "angular_rate"),
		},
	},
	{
		name:  "aerodynamic_forces",
		title: "Aerodynamic Forces",
		panels: []panel{
			timePanel("Drag", "drag"),
			timePanel("Thrust", "thrust"),
			timePanel("Dynamic pressure", "dynamic_pressure"),
		},
	},
	{
		name:  "rail_buttons_forces",
		title: "Rail Buttons Forces",
		panels: []panel{
			timePanel("Normal force", "upper_button_normal", "lower_button_normal"),
			timePanel("Shear force", "upper_button_shear", "lower_button_shear"),
		},
		window: onRail,
	},
	{
		name:  "energy",
		title: "Energy",
		panels: []panel{
			timePanel("Mechanical energy", "kinetic_energy", "potential_energy", "total_energy"),
			timePanel("Power", "thrust_power", "drag_power"),
		},
	},
	{
		name:  "fluid_mechanics",
		title: "Fluid Mechanics",
		panels: []panel{
			timePanel("Mach number", "mach"),
			timePanel("Reynolds number", "reynolds"),
			timePanel("Dynamic pressure", "dynamic_pressure"),
			timePanel("Air pressure", "pressure"),
		},
	},
	{
		name:  "stability_and_control",
		title: "Stability and Control",
		panels: []panel{
			timePanel("Stability margin", "static_margin", "stability_margin"),
			timePanel("Angle of attack", "angle_of_attack"),
		},
	},
}

// Groups lists the plot group names in display order.
func Groups() []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.name
	}
	return names
}

func lookup(name string) (*group, error) {
	for i := range groups {
		if groups[i].name == name {
			return &groups[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPlot, name)
}

func (g *group) samples(all []telemetry.Sample) ([]telemetry.Sample, error) {
	s := all
	if g.window != nil {
		s = g.window(all)
	}
	if len(s) < 2 {
		return nil, fmt.Errorf("%w for %s: %d", ErrNoSamples, g.name, len(s))
	}
	return s, nil
}

// untilBurnOut keeps the rail and powered phases plus the first coasting
// sample.
func untilBurnOut(s []telemetry.Sample) []telemetry.Sample {
	return leading(s, func(p string) bool {
		return p == telemetry.PhaseRail || p == telemetry.PhasePowered
	})
}

// onRail keeps the rail phase plus the lift-off sample.
func onRail(s []telemetry.Sample) []telemetry.Sample {
	return leading(s, func(p string) bool { return p == telemetry.PhaseRail })
}

func leading(s []telemetry.Sample, keep func(phase string) bool) []telemetry.Sample {
	n := 0
	for n < len(s) && keep(s[n].Phase) {
		n++
	}
	if n < len(s) {
		n++
	}
	return s[:n]
}

func series(samples []telemetry.Sample, name string) ([]float64, error) {
	if name != downrange {
		return telemetry.Series(samples, name)
	}
	out := make([]float64, len(samples))
	for i := range samples {
		out[i] = math.Hypot(samples[i].X, samples[i].Y)
	}
	return out, nil
}

func label(name string) string {
	if name == downrange {
		return "downrange (m)"
	}
	if u := telemetry.Unit(name); u != "" {
		return fmt.Sprintf("%s (%s)", name, u)
	}
	return name
}
