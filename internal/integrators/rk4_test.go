package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/rocketsim/internal/dynamo"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (s *simpleDynamics) StateDim() int { return 2 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x0 := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	x := x0
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

// freeFall is dv/dt = -g with drag-free motion; RK4 integrates it exactly.
type freeFall struct{}

func (f *freeFall) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -9.81}
}

func (f *freeFall) StateDim() int { return 2 }

func TestEulerVsRK4FreeFall(t *testing.T) {
	x0 := dynamo.State{100, 0}
	dt := 0.1

	euler := NewEuler()
	rk4 := NewRK4()
	xe, xr := x0, x0
	for i := 0; i < 20; i++ {
		xe = euler.Step(&freeFall{}, xe, float64(i)*dt, dt)
		xr = rk4.Step(&freeFall{}, xr, float64(i)*dt, dt)
	}

	exact := 100 - 0.5*9.81*4
	if math.Abs(xr[0]-exact) > 1e-9 {
		t.Errorf("rk4 should be exact for constant acceleration: got %.9f, expected %.9f", xr[0], exact)
	}
	if math.Abs(xe[0]-exact) < 1e-3 {
		t.Errorf("euler should carry first-order error, got %.9f", xe[0])
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"euler", "rk4", "rk45"} {
		if _, err := Lookup(name); err != nil {
			t.Errorf("lookup %s: %v", name, err)
		}
	}

	if _, err := Lookup("verlet"); err == nil {
		t.Error("expected error for unknown integrator")
	}

	if !IsAdaptive("rk45") {
		t.Error("rk45 should be adaptive")
	}
	if IsAdaptive("rk4") {
		t.Error("rk4 should not be adaptive")
	}
}
