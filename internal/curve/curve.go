// Package curve holds one-dimensional lookup tables: thrust curves, drag
// curves, airfoil lift curves and atmospheric profiles.
//
// Tables interpolate linearly and hold the end values outside their range.
package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/interp"
)

var (
	ErrTooFewPoints  = errors.New("curve: at least two points are required")
	ErrNotIncreasing = errors.New("curve: x values must be strictly increasing")
	ErrLength        = errors.New("curve: x and y lengths differ")
)

type Table struct {
	xs, ys []float64
	pl     interp.PiecewiseLinear
}

// New builds a table from parallel slices. Inputs are copied.
func New(xs, ys []float64) (*Table, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLength, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, ErrTooFewPoints
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, fmt.Errorf("%w: x[%d]=%g after x[%d]=%g", ErrNotIncreasing, i, xs[i], i-1, xs[i-1])
		}
	}
	if floats.HasNaN(xs) || floats.HasNaN(ys) {
		return nil, errors.New("curve: NaN in table")
	}

	t := &Table{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
	}
	if err := t.pl.Fit(t.xs, t.ys); err != nil {
		return nil, err
	}
	return t, nil
}

// Constant returns a table that evaluates to v everywhere.
func Constant(v float64) *Table {
	t, _ := New([]float64{0, 1}, []float64{v, v})
	return t
}

// FromPairs builds a table from (x, y) rows, sorting them by x first.
func FromPairs(pairs [][2]float64) (*Table, error) {
	sorted := append([][2]float64(nil), pairs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i][0] < sorted[j][0] })

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, p := range sorted {
		xs[i], ys[i] = p[0], p[1]
	}
	return New(xs, ys)
}

func (t *Table) At(x float64) float64 {
	return t.pl.Predict(x)
}

func (t *Table) Len() int { return len(t.xs) }

func (t *Table) X() []float64 { return append([]float64(nil), t.xs...) }

func (t *Table) Y() []float64 { return append([]float64(nil), t.ys...) }

func (t *Table) Domain() (float64, float64) {
	return t.xs[0], t.xs[len(t.xs)-1]
}

// Max returns the largest y and the x at which it occurs.
func (t *Table) Max() (x, y float64) {
	i := floats.MaxIdx(t.ys)
	return t.xs[i], t.ys[i]
}

// Integral is the trapezoidal integral over the whole table.
func (t *Table) Integral() float64 {
	return integrate.Trapezoidal(t.xs, t.ys)
}

// Cumulative returns the running trapezoidal integral as a table over the
// same x values. It is exact for the piecewise-linear function.
func (t *Table) Cumulative() *Table {
	acc := make([]float64, len(t.xs))
	for i := 1; i < len(t.xs); i++ {
		acc[i] = acc[i-1] + 0.5*(t.ys[i]+t.ys[i-1])*(t.xs[i]-t.xs[i-1])
	}
	out, _ := New(t.xs, acc)
	return out
}

// IntegralTo integrates the table from its first x up to x.
func (t *Table) IntegralTo(x float64) float64 {
	if x <= t.xs[0] {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(t.xs); i++ {
		x0, x1 := t.xs[i-1], t.xs[i]
		if x >= x1 {
			sum += 0.5 * (t.ys[i] + t.ys[i-1]) * (x1 - x0)
			continue
		}
		sum += 0.5 * (t.ys[i-1] + t.At(x)) * (x - x0)
		break
	}
	return sum
}

// Scale multiplies every y by k.
func (t *Table) Scale(k float64) *Table {
	ys := make([]float64, len(t.ys))
	floats.ScaleTo(ys, k, t.ys)
	out, _ := New(t.xs, ys)
	return out
}

// Clip restricts the table to [x0, x1], inserting interpolated end points.
func (t *Table) Clip(x0, x1 float64) (*Table, error) {
	if !(x1 > x0) {
		return nil, fmt.Errorf("curve: clip range [%g, %g] is empty", x0, x1)
	}
	xs := []float64{x0}
	ys := []float64{t.At(x0)}
	for i, x := range t.xs {
		if x > x0 && x < x1 {
			xs = append(xs, x)
			ys = append(ys, t.ys[i])
		}
	}
	xs = append(xs, x1)
	ys = append(ys, t.At(x1))
	return New(xs, ys)
}

// Shift moves every x by dx.
func (t *Table) Shift(dx float64) *Table {
	xs := make([]float64, len(t.xs))
	for i, x := range t.xs {
		xs[i] = x + dx
	}
	out, _ := New(xs, t.ys)
	return out
}

// Slope estimates dy/dx at x from the neighbouring table segment.
func (t *Table) Slope(x float64) float64 {
	i := sort.SearchFloat64s(t.xs, x)
	switch {
	case i <= 0:
		i = 1
	case i >= len(t.xs):
		i = len(t.xs) - 1
	}
	return (t.ys[i] - t.ys[i-1]) / (t.xs[i] - t.xs[i-1])
}

// Sample evaluates the table at n evenly spaced points across its domain.
func (t *Table) Sample(n int) (xs, ys []float64) {
	if n < 2 {
		n = 2
	}
	lo, hi := t.Domain()
	xs = floats.Span(make([]float64, n), lo, hi)
	ys = make([]float64, n)
	for i, x := range xs {
		ys[i] = t.At(x)
	}
	return xs, ys
}

// Invert finds x in the table domain with At(x) == y for a monotonic table.
// ok is false when y lies outside the table's y range.
func (t *Table) Invert(y float64) (float64, bool) {
	for i := 1; i < len(t.xs); i++ {
		y0, y1 := t.ys[i-1], t.ys[i]
		if (y-y0)*(y-y1) > 0 {
			continue
		}
		if y1 == y0 {
			return t.xs[i-1], true
		}
		frac := (y - y0) / (y1 - y0)
		return t.xs[i-1] + frac*(t.xs[i]-t.xs[i-1]), true
	}
	return math.NaN(), false
}
