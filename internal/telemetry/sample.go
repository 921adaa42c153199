// Package telemetry defines the per-step flight record shared by the flight
// model, storage, plots and the live viewer.
package telemetry

import (
	"errors"
	"fmt"
)

var ErrUnknownColumn = errors.New("telemetry: unknown column")

const (
	PhaseRail      = "rail"
	PhasePowered   = "powered"
	PhaseCoast     = "coast"
	PhaseParachute = "parachute"
)

// Sample is the flight state at one accepted step. Positions are east, north
// and up above ground level in metres; angles are degrees.
type Sample struct {
	Time  float64
	Phase string

	X, Y, Z    float64
	Vx, Vy, Vz float64
	Ax, Ay, Az float64

	Altitude        float64 // above sea level
	Speed           float64
	FreestreamSpeed float64
	Mach            float64
	Reynolds        float64
	DynamicPressure float64
	Pressure        float64
	Density         float64
	WindU, WindV    float64

	Drag   float64
	Thrust float64
	Mass   float64

	StaticMargin    float64
	StabilityMargin float64

	PathAngle       float64
	Heading         float64
	AttitudeAngle   float64
	AttitudeHeading float64
	AngleOfAttack   float64
	AngularRate     float64 // deg/s

	KineticEnergy   float64
	PotentialEnergy float64
	TotalEnergy     float64
	ThrustPower     float64
	DragPower       float64

	UpperButtonNormal float64
	UpperButtonShear  float64
	LowerButtonNormal float64
	LowerButtonShear  float64
}

type column struct {
	name string
	unit string
	get  func(s *Sample) *float64
}

var columns = []column{
	{"time", "s", func(s *Sample) *float64 { return &s.Time }},
	{"x", "m", func(s *Sample) *float64 { return &s.X }},
	{"y", "m", func(s *Sample) *float64 { return &s.Y }},
	{"z", "m", func(s *Sample) *float64 { return &s.Z }},
	{"vx", "m/s", func(s *Sample) *float64 { return &s.Vx }},
	{"vy", "m/s", func(s *Sample) *float64 { return &s.Vy }},
	{"vz", "m/s", func(s *Sample) *float64 { return &s.Vz }},
	{"ax", "m/s^2", func(s *Sample) *float64 { return &s.Ax }},
	{"ay", "m/s^2", func(s *Sample) *float64 { return &s.Ay }},
	{"az", "m/s^2", func(s *Sample) *float64 { return &s.Az }},
	{"altitude", "m", func(s *Sample) *float64 { return &s.Altitude }},
	{"speed", "m/s", func(s *Sample) *float64 { return &s.Speed }},
	{"freestream_speed", "m/s", func(s *Sample) *float64 { return &s.FreestreamSpeed }},
	{"mach", "", func(s *Sample) *float64 { return &s.Mach }},
	{"reynolds", "", func(s *Sample) *float64 { return &s.Reynolds }},
	{"dynamic_pressure", "Pa", func(s *Sample) *float64 { return &s.DynamicPressure }},
	{"pressure", "Pa", func(s *Sample) *float64 { return &s.Pressure }},
	{"density", "kg/m^3", func(s *Sample) *float64 { return &s.Density }},
	{"wind_u", "m/s", func(s *Sample) *float64 { return &s.WindU }},
	{"wind_v", "m/s", func(s *Sample) *float64 { return &s.WindV }},
	{"drag", "N", func(s *Sample) *float64 { return &s.Drag }},
	{"thrust", "N", func(s *Sample) *float64 { return &s.Thrust }},
	{"mass", "kg", func(s *Sample) *float64 { return &s.Mass }},
	{"static_margin", "cal", func(s *Sample) *float64 { return &s.StaticMargin }},
	{"stability_margin", "cal", func(s *Sample) *float64 { return &s.StabilityMargin }},
	{"path_angle", "deg", func(s *Sample) *float64 { return &s.PathAngle }},
	{"heading", "deg", func(s *Sample) *float64 { return &s.Heading }},
	{"attitude_angle", "deg", func(s *Sample) *float64 { return &s.AttitudeAngle }},
	{"attitude_heading", "deg", func(s *Sample) *float64 { return &s.AttitudeHeading }},
	{"angle_of_attack", "deg", func(s *Sample) *float64 { return &s.AngleOfAttack }},
	{"angular_rate", "deg/s", func(s *Sample) *float64 { return &s.AngularRate }},
	{"kinetic_energy", "J", func(s *Sample) *float64 { return &s.KineticEnergy }},
	{"potential_energy", "J", func(s *Sample) *float64 { return &s.PotentialEnergy }},
	{"total_energy", "J", func(s *Sample) *float64 { return &s.TotalEnergy }},
	{"thrust_power", "W", func(s *Sample) *float64 { return &s.ThrustPower }},
	{"drag_power", "W", func(s *Sample) *float64 { return &s.DragPower }},
	{"upper_button_normal", "N", func(s *Sample) *float64 { return &s.UpperButtonNormal }},
	{"upper_button_shear", "N", func(s *Sample) *float64 { return &s.UpperButtonShear }},
	{"lower_button_normal", "N", func(s *Sample) *float64 { return &s.LowerButtonNormal }},
	{"lower_button_shear", "N", func(s *Sample) *float64 { return &s.LowerButtonShear }},
}

var byName = func() map[string]int {
	m := make(map[string]int, len(columns))
	for i, c := range columns {
		m[c.name] = i
	}
	return m
}()

// Columns lists the numeric column names in CSV order.
func Columns() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

// Unit returns the unit label of a column.
func Unit(name string) string {
	if i, ok := byName[name]; ok {
		return columns[i].unit
	}
	return ""
}

// Get returns one column of a sample.
func (s *Sample) Get(name string) (float64, error) {
	i, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	return *columns[i].get(s), nil
}

// Series extracts a column across samples.
func Series(samples []Sample, name string) ([]float64, error) {
	i, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	out := make([]float64, len(samples))
	for k := range samples {
		out[k] = *columns[i].get(&samples[k])
	}
	return out, nil
}

// MustSeries is Series for column names known at compile time.
func MustSeries(samples []Sample, name string) []float64 {
	out, err := Series(samples, name)
	if err != nil {
		panic(err)
	}
	return out
}
