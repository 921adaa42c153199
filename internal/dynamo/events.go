package dynamo

// Event describes a zero crossing of Func along a trajectory.
//
// Direction selects which crossings count: +1 for rising (negative to
// positive), -1 for falling, 0 for both. Once events are disarmed after they
// fire. A Terminal event ends the run at the located time.
type Event struct {
	Name      string
	Func      func(x State, t float64) float64
	Direction int
	Terminal  bool
	Once      bool
	Action    Action

	fired bool
}

func (e *Event) armed() bool {
	return !(e.Once && e.fired)
}

func (e *Event) crossed(g0, g1 float64) bool {
	switch {
	case e.Direction > 0:
		return g0 < 0 && g1 >= 0
	case e.Direction < 0:
		return g0 > 0 && g1 <= 0
	default:
		return (g0 < 0 && g1 >= 0) || (g0 > 0 && g1 <= 0)
	}
}

type scheduled struct {
	name   string
	time   float64
	action Action
}

// locate brackets the crossing of ev inside [t0, t0+dt] by bisection,
// re-integrating from x0 with shortened steps. It returns the state and time
// just after the crossing.
func (s *Simulator) locate(ev *Event, x0 State, t0, dt, tol float64) (State, float64) {
	lo, hi := 0.0, dt
	g0 := ev.Func(x0, t0)
	xHi := s.integrator.Step(s.sys, x0, t0, hi)

	for i := 0; i < 60 && hi-lo > tol; i++ {
		mid := 0.5 * (lo + hi)
		xMid := s.integrator.Step(s.sys, x0, t0, mid)
		gMid := ev.Func(xMid, t0+mid)
		if ev.crossed(g0, gMid) || gMid == 0 {
			hi = mid
			xHi = xMid
		} else {
			lo = mid
		}
	}
	return xHi, t0 + hi
}
