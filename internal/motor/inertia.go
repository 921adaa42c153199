package motor

import "gonum.org/v1/gonum/mat"

// Inertia builds a diagonal inertia tensor from (Ixx, Iyy, Izz). z is the
// longitudinal axis.
func Inertia(ixx, iyy, izz float64) *mat.SymDense {
	return mat.NewSymDense(3, []float64{
		ixx, 0, 0,
		0, iyy, 0,
		0, 0, izz,
	})
}

// ParallelAxis moves an inertia tensor about a body's centre of mass to a
// point displaced by d from it: I + m(|d|^2 E - d d^T).
func ParallelAxis(i mat.Symmetric, m float64, d [3]float64) *mat.SymDense {
	out := mat.NewSymDense(3, nil)
	out.CopySym(i)

	dv := mat.NewVecDense(3, []float64{d[0], d[1], d[2]})
	d2 := mat.Dot(dv, dv)
	for k := 0; k < 3; k++ {
		out.SetSym(k, k, out.At(k, k)+m*d2)
	}
	out.SymRankOne(out, -m, dv)
	return out
}

// AddInertia returns a + b.
func AddInertia(a, b mat.Symmetric) *mat.SymDense {
	out := mat.NewSymDense(3, nil)
	out.AddSym(a, b)
	return out
}

// Principal returns the diagonal (Ixx, Iyy, Izz).
func Principal(i mat.Symmetric) [3]float64 {
	return [3]float64{i.At(0, 0), i.At(1, 1), i.At(2, 2)}
}
