package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// State is the flat vector a System evolves.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return floats.Norm(s, 2)
}

// Add, Sub and Scale return new states; the receiver is left untouched.
func (s State) Add(other State) State {
	out := s.Clone()
	floats.Add(out, other)
	return out
}

func (s State) Sub(other State) State {
	out := s.Clone()
	floats.Sub(out, other)
	return out
}

func (s State) Scale(factor float64) State {
	out := s.Clone()
	floats.Scale(factor, out)
	return out
}

// Lerp interpolates linearly towards other: alpha 0 gives s, 1 gives other.
func (s State) Lerp(other State, alpha float64) State {
	return s.Add(other.Sub(s).Scale(alpha))
}

// AddScaled returns s + alpha*d as a new state.
func (s State) AddScaled(alpha float64, d State) State {
	out := make(State, len(s))
	floats.AddScaledTo(out, s, alpha, d)
	return out
}

type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, t float64, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, error)
}

// Observer is notified after every accepted step.
type Observer interface {
	OnStep(x State, t float64)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(x State, t float64)

func (f ObserverFunc) OnStep(x State, t float64) { f(x, t) }

// Action runs when an event or a scheduled time is reached. It may mutate the
// system it belongs to and returns the state to continue from.
type Action func(x State, t float64) State

type Config struct {
	Dt            float64
	MaxTime       float64
	Tolerance     float64
	MaxDt         float64
	MinDt         float64
	EventTol      float64
	Adaptive      bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		MaxTime:       600.0,
		Tolerance:     1e-6,
		MaxDt:         0.1,
		MinDt:         1e-8,
		EventTol:      1e-6,
		Adaptive:      false,
		ValidateState: true,
	}
}

// EventRecord is one located event or executed scheduled action.
type EventRecord struct {
	Name  string
	Time  float64
	State State
}

type Result struct {
	States     []State
	Times      []float64
	Events     []EventRecord
	StepsTaken int
	Terminated string
}

// Event returns the first record with the given name.
func (r *Result) Event(name string) (EventRecord, bool) {
	for _, ev := range r.Events {
		if ev.Name == name {
			return ev, true
		}
	}
	return EventRecord{}, false
}

func (r *Result) Final() (State, float64) {
	if len(r.States) == 0 {
		return nil, 0
	}
	return r.States[len(r.States)-1], r.Times[len(r.Times)-1]
}

func (e EventRecord) String() string {
	return fmt.Sprintf("%s at t=%.4f", e.Name, e.Time)
}
