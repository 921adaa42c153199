package rocket

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/rocketsim/internal/curve"
	"github.com/san-kum/rocketsim/internal/motor"
)

func testMotor(t *testing.T) *motor.SolidMotor {
	t.Helper()
	tc, err := motor.ReadEng(strings.NewReader("T 98 600 P 3 6 Test\n0 1000\n2 1000\n"))
	if err != nil {
		t.Fatalf("read eng: %v", err)
	}
	m, err := motor.NewSolidMotor(motor.Config{
		Thrust:                  tc,
		DryMass:                 2,
		DryInertia:              [3]float64{0.2, 0.2, 0.002},
		NozzleRadius:            0.02,
		ThroatRadius:            0.01,
		GrainNumber:             1,
		GrainDensity:            1800,
		GrainOuterRadius:        0.04,
		GrainInitialInnerRadius: 0.015,
		GrainInitialHeight:      0.4,
		GrainsCenterOfMass:      0.2,
		CenterOfDryMass:         0.25,
		Orientation:             motor.NozzleToChamber,
	})
	if err != nil {
		t.Fatalf("new motor: %v", err)
	}
	return m
}

func testRocket(t *testing.T) *Rocket {
	t.Helper()
	r, err := New(Config{
		Radius:                   0.05,
		Mass:                     5,
		Inertia:                  [3]float64{2, 2, 0.01},
		PowerOffDrag:             curve.Constant(0.5),
		PowerOnDrag:              curve.Constant(0.4),
		CenterOfMassWithoutMotor: 1.0,
		Orientation:              TailToNose,
	})
	if err != nil {
		t.Fatalf("new rocket: %v", err)
	}
	r.AddMotor(testMotor(t), 0)
	if _, err := r.AddNose(0.4, "von karman", 2.0); err != nil {
		t.Fatal(err)
	}
	if _, err := r.AddTrapezoidalFins(FinSet{N: 4, RootChord: 0.15, TipChord: 0.07, Span: 0.1, Position: 0.15}); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRocket_MassProperties(t *testing.T) {
	r := testRocket(t)
	m := r.Motor

	if got, want := r.TotalMass(0), 5+m.TotalMass(0); got != want {
		t.Errorf("expected total mass %f, got %f", want, got)
	}
	if got := r.TotalMass(10); math.Abs(got-7) > 1e-12 {
		t.Errorf("expected burnt-out mass 7, got %f", got)
	}

	want := (5*1.0 + m.TotalMass(0)*m.CenterOfMass(0)) / r.TotalMass(0)
	if math.Abs(r.CenterOfMass(0)-want) > 1e-12 {
		t.Errorf("expected centre of mass %f, got %f", want, r.CenterOfMass(0))
	}
	if r.CenterOfMass(10) <= r.CenterOfMass(0) {
		t.Error("expected centre of mass to move forward as propellant burns")
	}

	i := r.InertiaTensor(0)
	if i.At(0, 0) <= 2 {
		t.Errorf("expected transverse inertia above the airframe's 2, got %f", i.At(0, 0))
	}
}

func TestRocket_Stability(t *testing.T) {
	r := testRocket(t)

	cp := r.CenterOfPressure(0)
	if cp >= r.CenterOfMass(0) {
		t.Fatalf("expected CP %f behind CoM %f", cp, r.CenterOfMass(0))
	}
	margin := r.StaticMargin(0)
	want := (r.CenterOfMass(0) - cp) / 0.1
	if math.Abs(margin-want) > 1e-12 {
		t.Errorf("expected margin %f, got %f", want, margin)
	}
	if r.StabilityMargin(0.8, 0) <= margin {
		t.Error("expected fins to move CP aft at higher Mach")
	}

	times, margins := r.StaticMarginCurve(11)
	if len(times) != 11 || times[10] != r.Motor.BurnOutTime() {
		t.Errorf("unexpected static margin sampling: %v", times)
	}
	if margins[10] <= margins[0] {
		t.Error("expected margin to grow as the motor burns")
	}
}

func TestRocket_NoseToTailMirror(t *testing.T) {
	r, _ := New(Config{
		Radius: 0.05, Mass: 5, PowerOffDrag: curve.Constant(0.5), PowerOnDrag: curve.Constant(0.5),
		CenterOfMassWithoutMotor: 1.0, Orientation: NoseToTail,
	})
	r.AddMotor(testMotor(t), 2.0)
	r.AddNose(0.4, "von karman", 0)
	r.AddTrapezoidalFins(FinSet{N: 4, RootChord: 0.15, TipChord: 0.07, Span: 0.1, Position: 1.85})

	// same airframe measured from the nose tip
	mirror := testRocket(t)
	if math.Abs(r.StaticMargin(0)-mirror.StaticMargin(0)) > 1e-9 {
		t.Errorf("expected equal margins, got %f and %f", r.StaticMargin(0), mirror.StaticMargin(0))
	}
}

func TestRocket_Validation(t *testing.T) {
	r, _ := New(Config{Radius: 0.05, Mass: 1, PowerOffDrag: curve.Constant(0.5), PowerOnDrag: curve.Constant(0.5)})
	if err := r.Validate(); !errors.Is(err, ErrNoMotor) {
		t.Errorf("expected ErrNoMotor, got %v", err)
	}
	if _, err := r.Info(); !errors.Is(err, ErrNoMotor) {
		t.Errorf("expected ErrNoMotor from Info, got %v", err)
	}

	if _, err := r.SetRailButtons(0.2, 0.9, 45); !errors.Is(err, ErrRailButtons) {
		t.Errorf("expected ErrRailButtons, got %v", err)
	}
	b, err := r.SetRailButtons(0.9, 0.2, 45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(b.Distance()-0.7) > 1e-12 {
		t.Errorf("expected button distance 0.7, got %f", b.Distance())
	}

	if _, err := New(Config{Radius: 0.05}); !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("expected ErrInvalidFrame without drag curves, got %v", err)
	}
	if _, err := New(Config{Radius: 0.05, PowerOffDrag: curve.Constant(1), PowerOnDrag: curve.Constant(1), Orientation: "up"}); !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("expected ErrInvalidFrame for orientation, got %v", err)
	}
}

func TestParachuteTriggers(t *testing.T) {
	tests := []struct {
		trigger Trigger
		height  float64
		vz      float64
		want    bool
	}{
		{Apogee(), 1000, 5, false},
		{Apogee(), 1000, -0.1, true},
		{Altitude(300), 400, -20, false},
		{Altitude(300), 299, -20, true},
		{Altitude(300), 200, 10, false},
		{Custom(func(p, h, vz float64) bool { return p > 95000 }), 0, 0, false},
	}
	for i, tt := range tests {
		if got := tt.trigger.Fire(90000, tt.height, tt.vz); got != tt.want {
			t.Errorf("case %d (%s): expected %v, got %v", i, tt.trigger, tt.want, got)
		}
	}

	tr, err := ParseTrigger("apogee")
	if err != nil || tr.Kind != TriggerApogee {
		t.Errorf("expected apogee trigger, got %v (%v)", tr, err)
	}
	tr, err = ParseTrigger("300")
	if err != nil || tr.Altitude != 300 {
		t.Errorf("expected 300 m trigger, got %v (%v)", tr, err)
	}
	if _, err := ParseTrigger("soon"); !errors.Is(err, ErrInvalidTrigger) {
		t.Errorf("expected ErrInvalidTrigger, got %v", err)
	}
}

func TestAddParachute(t *testing.T) {
	r := testRocket(t)
	p, err := r.AddParachute("main", 10, Altitude(300), 105, 1.5, Noise{0, 8.3, 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "main" || len(r.Parachutes) != 1 {
		t.Errorf("expected main parachute to be attached")
	}
	if _, err := r.AddParachute("drogue", 1, Trigger{}, 105, 1.5, Noise{}); !errors.Is(err, ErrInvalidTrigger) {
		t.Errorf("expected ErrInvalidTrigger for missing trigger, got %v", err)
	}
	if _, err := r.AddParachute("drogue", 1, Apogee(), 105, 1.5, Noise{Correlation: 1}); err == nil {
		t.Error("expected error for correlation 1")
	}
}

func TestRocket_Info(t *testing.T) {
	r := testRocket(t)
	info, err := r.Info()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Surfaces) != 2 {
		t.Errorf("expected 2 surfaces, got %d", len(info.Surfaces))
	}
	if info.StaticMarginMin > info.StaticMarginInitial || info.StaticMarginMax < info.StaticMarginFinal {
		t.Errorf("inconsistent margin range %+v", info)
	}
	if math.Abs(info.Length-2.0) > 1e-12 {
		t.Errorf("expected length 2.0 (nose tip to fin trailing edge/nozzle), got %f", info.Length)
	}
}
