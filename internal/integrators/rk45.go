package integrators

import (
	"math"

	"github.com/san-kum/rocketsim/internal/dynamo"
)

// RK45 is the adaptive Dormand-Prince method.
type RK45 struct {
	s stepper

	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		s:        stepper{tab: dopriTableau},
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Step takes a single step of exactly dt and discards the error estimate.
func (r *RK45) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return r.s.advance(sys, x, t, dt)
}

// StepAdaptive returns the fifth order solution and the next step size. When
// the error exceeds tol the step is rejected with a smaller suggestion and
// dynamo.ErrStepRejected.
func (r *RK45) StepAdaptive(sys dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64, error) {
	next := r.s.advance(sys, x, t, dt)
	ratio := r.s.errorNorm(x, dt) / tol

	if ratio > 1 {
		return next, dt * math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25)), dynamo.ErrStepRejected
	}
	if ratio == 0 {
		return next, dt * r.maxScale, nil
	}
	return next, dt * math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2)), nil
}
