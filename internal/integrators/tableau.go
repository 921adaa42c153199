package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/rocketsim/internal/dynamo"
)

// tableau is the Butcher tableau of an explicit Runge-Kutta scheme. errW,
// when present, weighs the stages into the embedded error estimate (higher
// order solution minus lower order solution).
type tableau struct {
	c    []float64
	a    [][]float64
	b    []float64
	errW []float64
}

var eulerTableau = tableau{
	c: []float64{0},
	a: [][]float64{{}},
	b: []float64{1},
}

var rk4Tableau = tableau{
	c: []float64{0, 1.0 / 2, 1.0 / 2, 1},
	a: [][]float64{
		{},
		{1.0 / 2},
		{0, 1.0 / 2},
		{0, 0, 1},
	},
	b: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
}

// Dormand-Prince 5(4). The last stage is evaluated at the fifth order
// solution and only feeds the error estimate.
var dopriTableau = func() tableau {
	b := []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0}
	b4 := []float64{5179.0 / 57600, 0, 7571.0 / 16695, 393.0 / 640, -92097.0 / 339200, 187.0 / 2100, 1.0 / 40}
	errW := make([]float64, len(b))
	floats.SubTo(errW, b, b4)
	return tableau{
		c: []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
		a: [][]float64{
			{},
			{1.0 / 5},
			{3.0 / 40, 9.0 / 40},
			{44.0 / 45, -56.0 / 15, 32.0 / 9},
			{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
			{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
			b[:6],
		},
		b:    b,
		errW: errW,
	}
}()

// stepper evaluates a tableau. The stage buffers are reused between steps,
// so a stepper must not be shared between simulations.
type stepper struct {
	tab tableau
	k   []dynamo.State
	tmp dynamo.State
}

func (s *stepper) resize(n int) {
	if len(s.tmp) == n {
		return
	}
	s.tmp = make(dynamo.State, n)
	s.k = make([]dynamo.State, len(s.tab.c))
	for i := range s.k {
		s.k[i] = make(dynamo.State, n)
	}
}

// advance runs every stage and returns the weighted solution at t+dt.
func (s *stepper) advance(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	s.resize(len(x))
	for i, ci := range s.tab.c {
		copy(s.tmp, x)
		for j, aij := range s.tab.a[i] {
			if aij != 0 {
				floats.AddScaled(s.tmp, dt*aij, s.k[j])
			}
		}
		copy(s.k[i], sys.Derive(s.tmp, t+ci*dt))
	}

	out := x.Clone()
	for i, bi := range s.tab.b {
		if bi != 0 {
			floats.AddScaled(out, dt*bi, s.k[i])
		}
	}
	return out
}

// errorNorm is the largest component of the embedded error estimate relative
// to the magnitude of x plus its first-stage increment.
func (s *stepper) errorNorm(x dynamo.State, dt float64) float64 {
	worst := 0.0
	for i := range x {
		est := 0.0
		for j, w := range s.tab.errW {
			est += w * s.k[j][i]
		}
		scale := abs(x[i]) + abs(dt*s.k[0][i]) + 1e-10
		worst = max(worst, abs(dt*est)/scale)
	}
	return worst
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
