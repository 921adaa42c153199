package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rocketsim/internal/dynamo"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

// decay is x' = -x with x(t) = exp(-t).
type decay struct{}

func (decay) StateDim() int                                 { return 1 }
func (decay) Derive(x dynamo.State, t float64) dynamo.State { return dynamo.State{-x[0]} }

func TestRK45EnergyConservation(t *testing.T) {
	integ := NewRK45()
	sys := &harmonicOscillator{}
	x := dynamo.State{1, 0}
	dt := 0.01

	for i := 0; i < 10000; i++ {
		x = integ.Step(sys, x, float64(i)*dt, dt)
	}
	if !x.IsValid() {
		t.Fatal("expected a finite state")
	}
	if drift := math.Abs(sys.Energy(x)-0.5) / 0.5; drift > 1e-6 {
		t.Errorf("expected energy drift below 1e-6, got %e", drift)
	}
}

func TestRK45MoreAccurateThanRK4(t *testing.T) {
	dt := 0.1
	x4, x45 := dynamo.State{1}, dynamo.State{1}
	rk4, rk45 := NewRK4(), NewRK45()
	for i := 0; i < 50; i++ {
		x4 = rk4.Step(decay{}, x4, float64(i)*dt, dt)
		x45 = rk45.Step(decay{}, x45, float64(i)*dt, dt)
	}
	exact := math.Exp(-5)
	e4, e45 := math.Abs(x4[0]-exact), math.Abs(x45[0]-exact)
	if e45 >= e4 {
		t.Errorf("expected rk45 error %e below rk4 error %e", e45, e4)
	}
	if e4 > 1e-6 {
		t.Errorf("expected rk4 error below 1e-6, got %e", e4)
	}
}

func TestRK45AdaptiveGrows(t *testing.T) {
	integ := NewRK45()
	x, next, err := integ.StepAdaptive(&harmonicOscillator{}, dynamo.State{1, 0}, 0, 0.01, 1e-2)
	if err != nil {
		t.Fatalf("expected accepted step, got %v", err)
	}
	if !x.IsValid() {
		t.Error("expected a finite state")
	}
	if next <= 0.01 {
		t.Errorf("expected step to grow after an easy step, got %f", next)
	}
	if next > 0.01*integ.maxScale {
		t.Errorf("expected growth capped at x%g, got %f", integ.maxScale, next)
	}
}

func TestRK45AdaptiveReject(t *testing.T) {
	integ := NewRK45()
	_, next, err := integ.StepAdaptive(&harmonicOscillator{}, dynamo.State{1, 0}, 0, 0.5, 1e-14)
	if !errors.Is(err, dynamo.ErrStepRejected) {
		t.Fatalf("expected ErrStepRejected, got %v", err)
	}
	if next >= 0.5 || next < 0.5*integ.minScale {
		t.Errorf("expected a retry step in [%g, 0.5), got %f", 0.5*integ.minScale, next)
	}
}

// TestRK45AdaptiveLoop drives the step size the way the simulator does and
// checks the global error over several periods.
func TestRK45AdaptiveLoop(t *testing.T) {
	integ := NewRK45()
	sys := &harmonicOscillator{}
	x := dynamo.State{1, 0}
	tm, dt, end := 0.0, 0.1, 10.0
	accepted := 0

	for tm < end {
		dt = math.Min(dt, end-tm)
		next, suggested, err := integ.StepAdaptive(sys, x, tm, dt, 1e-8)
		if err == nil {
			x, tm = next, tm+dt
			accepted++
		}
		dt = suggested
	}

	if e := math.Abs(x[0] - math.Cos(end)); e > 1e-5 {
		t.Errorf("expected x(10) within 1e-5 of cos(10), got error %e", e)
	}
	if accepted > 1000 {
		t.Errorf("expected adaptive stepping to need far fewer than 1000 steps, got %d", accepted)
	}
}
