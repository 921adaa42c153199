// Package metrics reduces a stream of flight samples to scalar values.
package metrics

import (
	"math"

	"github.com/san-kum/rocketsim/internal/telemetry"
)

type Metric interface {
	Name() string
	Observe(s telemetry.Sample)
	Value() float64
	Reset()
}

// Field reads one quantity from a sample.
type Field func(s telemetry.Sample) float64

// MaxValue tracks the largest observed value of a field and when it occurred.
type MaxValue struct {
	name  string
	field Field
	max   float64
	at    float64
	seen  bool
}

func NewMaxValue(name string, field Field) *MaxValue {
	return &MaxValue{name: name, field: field}
}

func (m *MaxValue) Name() string { return m.name }

func (m *MaxValue) Observe(s telemetry.Sample) {
	v := m.field(s)
	if math.IsNaN(v) {
		return
	}
	if !m.seen || v > m.max {
		m.max = v
		m.at = s.Time
		m.seen = true
	}
}

func (m *MaxValue) Value() float64 { return m.max }

// At is the time of the maximum.
func (m *MaxValue) At() float64 { return m.at }

func (m *MaxValue) Reset() {
	m.max, m.at, m.seen = 0, 0, false
}

// Mean is the time-weighted average of a field's magnitude.
type Mean struct {
	name     string
	field    Field
	sum      float64
	duration float64
	last     float64
	prevT    float64
	samples  int
}

func NewMean(name string, field Field) *Mean {
	return &Mean{name: name, field: field}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(s telemetry.Sample) {
	v := math.Abs(m.field(s))
	if m.samples > 0 {
		dt := s.Time - m.prevT
		m.sum += 0.5 * (v + m.last) * dt
		m.duration += dt
	}
	m.last, m.prevT = v, s.Time
	m.samples++
}

func (m *Mean) Value() float64 {
	if m.duration == 0 {
		return m.last
	}
	return m.sum / m.duration
}

func (m *Mean) Reset() {
	m.sum, m.duration, m.last, m.prevT, m.samples = 0, 0, 0, 0, 0
}

// Apogee is the highest point above ground.
func Apogee() *MaxValue {
	return NewMaxValue("apogee", func(s telemetry.Sample) float64 { return s.Z })
}

func AccelerationMagnitude(s telemetry.Sample) float64 {
	return math.Sqrt(s.Ax*s.Ax + s.Ay*s.Ay + s.Az*s.Az)
}

// Flight returns the maximum-value metrics reported after a flight.
func Flight() []*MaxValue {
	return []*MaxValue{
		NewMaxValue("speed", func(s telemetry.Sample) float64 { return s.Speed }),
		NewMaxValue("mach", func(s telemetry.Sample) float64 { return s.Mach }),
		NewMaxValue("reynolds", func(s telemetry.Sample) float64 { return s.Reynolds }),
		NewMaxValue("dynamic_pressure", func(s telemetry.Sample) float64 { return s.DynamicPressure }),
		NewMaxValue("acceleration", AccelerationMagnitude),
		NewMaxValue("upper_button_normal", func(s telemetry.Sample) float64 { return math.Abs(s.UpperButtonNormal) }),
		NewMaxValue("upper_button_shear", func(s telemetry.Sample) float64 { return math.Abs(s.UpperButtonShear) }),
		NewMaxValue("lower_button_normal", func(s telemetry.Sample) float64 { return math.Abs(s.LowerButtonNormal) }),
		NewMaxValue("lower_button_shear", func(s telemetry.Sample) float64 { return math.Abs(s.LowerButtonShear) }),
		Apogee(),
	}
}

// Apply feeds every sample to every metric.
func Apply[M Metric](samples []telemetry.Sample, ms ...M) {
	for _, s := range samples {
		for _, m := range ms {
			m.Observe(s)
		}
	}
}
