package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

type Simulator struct {
	sys        System
	integrator Integrator
	events     []*Event
	observers  []Observer
	pending    []scheduled
	records    []EventRecord
	stop       string
}

func New(sys System, integrator Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		events:     make([]*Event, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddEvent(ev *Event)     { s.events = append(s.events, ev) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Schedule registers an action at absolute time t. The step that would cross
// t is shortened to land on it. Safe to call from observers and actions.
func (s *Simulator) Schedule(t float64, name string, action Action) {
	s.pending = append(s.pending, scheduled{name: name, time: t, action: action})
	sort.SliceStable(s.pending, func(i, j int) bool { return s.pending[i].time < s.pending[j].time })
}

// Record appends an event record without affecting the run. Observers use it
// for detections they perform themselves (sampled sensors).
func (s *Simulator) Record(name string, x State, t float64) {
	s.records = append(s.records, EventRecord{Name: name, Time: t, State: x.Clone()})
}

// Stop ends the run after the current step.
func (s *Simulator) Stop(reason string) { s.stop = reason }

func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg, x0); err != nil {
		return nil, err
	}
	if cfg.EventTol <= 0 {
		cfg.EventTol = 1e-6
	}

	capacity := int(cfg.MaxTime/cfg.Dt) + 1
	if capacity > 1<<16 {
		capacity = 1 << 16
	}
	result := &Result{
		States: make([]State, 0, capacity),
		Times:  make([]float64, 0, capacity),
	}
	s.records = s.records[:0]
	s.stop = ""

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}

	for step := 0; cfg.MaxTime-t > 1e-9*cfg.Dt; step++ {
		select {
		case <-ctx.Done():
			result.Events = append(result.Events, s.records...)
			return result, fmt.Errorf("%w: %v", ErrContextCanceled, ctx.Err())
		default:
		}

		h := math.Min(dt, cfg.MaxTime-t)
		var next *scheduled
		if len(s.pending) > 0 && s.pending[0].time <= t+h {
			head := s.pending[0]
			next = &head
			h = math.Max(next.time-t, 0)
		}

		var newX State
		var err error
		if h > 0 {
			newX, h, dt, err = s.advance(x, t, h, dt, cfg)
			if err != nil {
				result.Events = append(result.Events, s.records...)
				return result, &SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: err}
			}
		} else {
			newX = x.Clone()
		}

		if cfg.ValidateState && !newX.IsValid() {
			result.Events = append(result.Events, s.records...)
			return result, &SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
		}

		tNew := t + h
		if next != nil {
			if next.time-tNew > 1e-12 {
				next = nil
			} else if next.time > t {
				tNew = next.time
			}
		}

		// The earliest event inside the step wins; later ones are re-checked
		// from the event state on the next iteration.
		var hit *Event
		hitX, hitT := newX, tNew
		for _, ev := range s.events {
			if !ev.armed() || h == 0 {
				continue
			}
			g0 := ev.Func(x, t)
			g1 := ev.Func(newX, tNew)
			if !ev.crossed(g0, g1) {
				continue
			}
			ex, et := s.locate(ev, x, t, h, cfg.EventTol)
			if hit == nil || et < hitT {
				hit, hitX, hitT = ev, ex, et
			}
		}

		if hit != nil {
			x, t = hitX, hitT
			hit.fired = true
			result.StepsTaken++
			s.records = append(s.records, EventRecord{Name: hit.Name, Time: t, State: x.Clone()})
			if hit.Action != nil {
				x = hit.Action(x, t)
			}
			s.accept(result, x, t)
			if hit.Terminal {
				result.Terminated = hit.Name
				break
			}
			continue
		}

		x, t = newX, tNew
		result.StepsTaken++
		if next != nil {
			s.pending = s.pending[1:]
			s.records = append(s.records, EventRecord{Name: next.name, Time: t, State: x.Clone()})
			if next.action != nil {
				x = next.action(x, t)
			}
		}
		s.accept(result, x, t)

		if s.stop != "" {
			result.Terminated = s.stop
			break
		}
	}

	if result.Terminated == "" {
		result.Terminated = "max time"
	}
	result.Events = append(result.Events, s.records...)
	sort.SliceStable(result.Events, func(i, j int) bool { return result.Events[i].Time < result.Events[j].Time })
	return result, nil
}

func (s *Simulator) accept(result *Result, x State, t float64) {
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}
}

// advance takes one accepted step of at most h. It returns the new state, the
// step actually taken and the suggested next step size.
func (s *Simulator) advance(x State, t, h, dt float64, cfg Config) (State, float64, float64, error) {
	if !cfg.Adaptive {
		return s.integrator.Step(s.sys, x, t, h), h, dt, nil
	}

	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		for {
			newX, hNext, err := adaptive.StepAdaptive(s.sys, x, t, h, cfg.Tolerance)
			if err == nil {
				return newX, h, math.Min(math.Max(hNext, cfg.MinDt), cfg.MaxDt), nil
			}
			if !errors.Is(err, ErrStepRejected) {
				return nil, 0, 0, err
			}
			if hNext < cfg.MinDt {
				return nil, 0, 0, ErrStepTooSmall
			}
			h = hNext
		}
	}

	// Step doubling for fixed-order integrators.
	for {
		x1 := s.integrator.Step(s.sys, x, t, h)
		xHalf := s.integrator.Step(s.sys, x, t, h/2)
		x2 := s.integrator.Step(s.sys, xHalf, t+h/2, h/2)

		errNorm := x2.Sub(x1).Norm()
		if errNorm > cfg.Tolerance && h/2 >= cfg.MinDt {
			h /= 2
			continue
		}
		next := h
		if errNorm < cfg.Tolerance/10 {
			next = math.Min(h*2, cfg.MaxDt)
		}
		return x2, h, next, nil
	}
}

func (s *Simulator) validateConfig(cfg Config, x0 State) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.MaxTime <= 0 {
		return fmt.Errorf("max time must be positive, got %f", cfg.MaxTime)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive for adaptive stepping")
	}
	if cfg.Adaptive && (cfg.MinDt <= 0 || cfg.MaxDt < cfg.MinDt) {
		return fmt.Errorf("adaptive stepping needs 0 < min dt <= max dt")
	}
	if len(x0) != s.sys.StateDim() {
		return fmt.Errorf("%w: state has %d entries, system expects %d", ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}
	return nil
}
