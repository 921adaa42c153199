package motor

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const testEng = `; test motor
; two lines of comments
T1000 100 600 P 3.3 6.0 Test Motors
0.0 1000 ; flat
2.0 1000
`

func newTestMotor(t *testing.T) *SolidMotor {
	t.Helper()
	tc, err := ReadEng(strings.NewReader(testEng))
	if err != nil {
		t.Fatalf("read eng: %v", err)
	}
	m, err := NewSolidMotor(Config{
		Thrust:                  tc,
		DryMass:                 2,
		DryInertia:              [3]float64{0.5, 0.5, 0.01},
		NozzleRadius:            0.03,
		ThroatRadius:            0.01,
		GrainNumber:             1,
		GrainDensity:            1000,
		GrainOuterRadius:        0.05,
		GrainInitialInnerRadius: 0.02,
		GrainInitialHeight:      0.5,
		GrainsCenterOfMass:      0.25,
		CenterOfDryMass:         0.3,
		BurnTime:                [2]float64{0, 2},
		Orientation:             NozzleToChamber,
	})
	if err != nil {
		t.Fatalf("new motor: %v", err)
	}
	return m
}

func TestReadEng(t *testing.T) {
	tc, err := ReadEng(strings.NewReader(testEng))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.Name != "T1000" || tc.Maker != "Test Motors" {
		t.Errorf("unexpected header: %q by %q", tc.Name, tc.Maker)
	}
	if tc.Diameter != 0.1 || tc.Length != 0.6 {
		t.Errorf("expected 0.1 x 0.6 m, got %g x %g", tc.Diameter, tc.Length)
	}
	if tc.PropMass != 3.3 {
		t.Errorf("expected prop mass 3.3, got %g", tc.PropMass)
	}
}

func TestReadEng_PrefixesZero(t *testing.T) {
	tc, err := ReadEng(strings.NewReader("X 29 100 0 0.1 0.2 Acme\n0.1 50\n0.5 0\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lo, _ := tc.Table.Domain()
	if lo != 0 || tc.Table.At(0) != 0 {
		t.Errorf("expected curve to start at (0, 0), got (%g, %g)", lo, tc.Table.At(0))
	}
}

func TestReadEng_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", "; nothing\n"},
		{"short header", "X 29 100\n0 1\n"},
		{"bad row", "X 29 100 0 0.1 0.2 Acme\n0.1 abc\n"},
		{"negative thrust", "X 29 100 0 0.1 0.2 Acme\n0.1 -5\n0.2 0\n"},
	}
	for _, tt := range tests {
		if _, err := ReadEng(strings.NewReader(tt.input)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	_, err := ReadEng(strings.NewReader("; nothing\n"))
	if !errors.Is(err, ErrEmptyThrust) {
		t.Errorf("expected ErrEmptyThrust, got %v", err)
	}
	_, err = ReadEng(strings.NewReader("X 29 100 0 0.1 0.2 Acme\n0.1 abc\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line number in error, got %v", err)
	}
}

func TestSolidMotor_Mass(t *testing.T) {
	m := newTestMotor(t)

	wantProp := 1000 * math.Pi * (0.05*0.05 - 0.02*0.02) * 0.5
	if math.Abs(m.PropellantInitialMass()-wantProp) > 1e-9 {
		t.Errorf("expected propellant mass %f, got %f", wantProp, m.PropellantInitialMass())
	}
	if math.Abs(m.TotalImpulse()-2000) > 1e-9 {
		t.Errorf("expected impulse 2000, got %f", m.TotalImpulse())
	}
	if math.Abs(m.ExhaustVelocity()-2000/wantProp) > 1e-9 {
		t.Errorf("unexpected exhaust velocity %f", m.ExhaustVelocity())
	}
	if math.Abs(m.PropellantMass(1)-wantProp/2) > 1e-9 {
		t.Errorf("expected half the propellant at t=1, got %f", m.PropellantMass(1))
	}
	if m.PropellantMass(3) != 0 {
		t.Errorf("expected no propellant after burn out, got %f", m.PropellantMass(3))
	}
	if m.Thrust(2.5) != 0 {
		t.Error("expected zero thrust after burn out")
	}
	if math.Abs(m.MassFlowRate(1)+1000/m.ExhaustVelocity()) > 1e-9 {
		t.Errorf("unexpected mass flow %f", m.MassFlowRate(1))
	}
	if math.Abs(m.NozzleExpansionRatio()-9) > 1e-12 {
		t.Errorf("expected expansion ratio 9, got %f", m.NozzleExpansionRatio())
	}
}

func TestSolidMotor_GrainRegression(t *testing.T) {
	m := newTestMotor(t)
	cfg := m.Config()

	r0, h0 := m.GrainGeometry(0)
	if r0 != cfg.GrainInitialInnerRadius || h0 != cfg.GrainInitialHeight {
		t.Errorf("unexpected initial geometry (%g, %g)", r0, h0)
	}

	r1, h1 := m.GrainGeometry(1)
	if r1 <= r0 || h1 >= h0 {
		t.Errorf("expected bore to grow and grain to shorten, got (%g, %g)", r1, h1)
	}

	// grain volume tracks the propellant mass
	for _, tm := range []float64{0.5, 1, 1.5} {
		r, h := m.GrainGeometry(tm)
		ro := cfg.GrainOuterRadius
		volMass := cfg.GrainDensity * math.Pi * (ro*ro - r*r) * h
		if math.Abs(volMass-m.PropellantMass(tm))/m.PropellantInitialMass() > 1e-3 {
			t.Errorf("t=%g: geometry mass %f, propellant mass %f", tm, volMass, m.PropellantMass(tm))
		}
	}
}

func TestSolidMotor_CenterOfMassAndInertia(t *testing.T) {
	m := newTestMotor(t)

	mp := m.PropellantInitialMass()
	want := (2*0.3 + mp*0.25) / (2 + mp)
	if math.Abs(m.CenterOfMass(0)-want) > 1e-12 {
		t.Errorf("expected centre of mass %f, got %f", want, m.CenterOfMass(0))
	}
	if m.CenterOfMass(5) != 0.3 {
		t.Errorf("expected dry centre of mass after burn, got %f", m.CenterOfMass(5))
	}

	i0 := m.Inertia(0)
	i1 := m.Inertia(5)
	if i0.At(0, 0) <= i1.At(0, 0) {
		t.Error("expected transverse inertia to drop as propellant burns")
	}
	if math.Abs(i1.At(2, 2)-0.01) > 1e-12 {
		t.Errorf("expected dry axial inertia 0.01, got %f", i1.At(2, 2))
	}
}

func TestParallelAxis(t *testing.T) {
	i := ParallelAxis(Inertia(1, 1, 0.1), 2, [3]float64{0, 0, 1})
	p := Principal(i)
	if p[0] != 3 || p[1] != 3 || math.Abs(p[2]-0.1) > 1e-12 {
		t.Errorf("expected (3, 3, 0.1), got %v", p)
	}

	i = ParallelAxis(Inertia(0, 0, 0), 1, [3]float64{1, 1, 0})
	if math.Abs(i.At(0, 1)+1) > 1e-12 {
		t.Errorf("expected product of inertia -1, got %f", i.At(0, 1))
	}
}

func TestNewSolidMotor_Invalid(t *testing.T) {
	tc, _ := ReadEng(strings.NewReader(testEng))
	base := Config{
		Thrust: tc, DryMass: 1, NozzleRadius: 0.02, ThroatRadius: 0.01,
		GrainNumber: 1, GrainDensity: 1000, GrainOuterRadius: 0.05,
		GrainInitialInnerRadius: 0.02, GrainInitialHeight: 0.3,
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no grains", func(c *Config) { c.GrainNumber = 0 }},
		{"inner >= outer", func(c *Config) { c.GrainInitialInnerRadius = 0.06 }},
		{"throat > nozzle", func(c *Config) { c.ThroatRadius = 0.03 }},
		{"bad orientation", func(c *Config) { c.Orientation = "sideways" }},
		{"empty burn", func(c *Config) { c.BurnTime = [2]float64{1.5, 1.0} }},
	}
	for _, tt := range tests {
		cfg := base
		tt.mutate(&cfg)
		if _, err := NewSolidMotor(cfg); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	cfg := base
	cfg.Thrust = nil
	if _, err := NewSolidMotor(cfg); !errors.Is(err, ErrEmptyThrust) {
		t.Errorf("expected ErrEmptyThrust, got %v", err)
	}
}
