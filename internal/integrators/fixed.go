package integrators

import "github.com/san-kum/rocketsim/internal/dynamo"

// Euler is the explicit first order method. It is only useful as a baseline.
type Euler struct{ s stepper }

func NewEuler() *Euler {
	return &Euler{s: stepper{tab: eulerTableau}}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return e.s.advance(sys, x, t, dt)
}

// RK4 is the classic fourth order Runge-Kutta method.
type RK4 struct{ s stepper }

func NewRK4() *RK4 {
	return &RK4{s: stepper{tab: rk4Tableau}}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return r.s.advance(sys, x, t, dt)
}
