package ibl

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// clamp returns v limited to [lo, hi]. The caller's value is never mutated,
// so correlation functions can share input slices safely.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// apply evaluates f element-wise over xs and returns a new slice.
func apply(f func(float64) float64, xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}

// sign returns the sign of a given number.
func sign(v float64) float64 {
	if scalar.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// signChange reports whether a continuous function with values g0 and g1 at
// the ends of a step crossed zero within it. A zero at the far end counts.
func signChange(g0, g1 float64) bool {
	if g1 == 0 {
		return true
	}
	return g0*g1 < 0
}

// bisect finds a root of f in [a, b] assuming f(a) and f(b) bracket zero.
// It stops once the bracket is narrower than tol.
func bisect(f func(float64) float64, a, b, tol float64) float64 {
	fa := f(a)
	if fa == 0 {
		return a
	}
	for b-a > tol {
		m := 0.5 * (a + b)
		fm := f(m)
		if fm == 0 {
			return m
		}
		if sign(fa) == sign(fm) {
			a, fa = m, fm
		} else {
			b = m
		}
	}
	return 0.5 * (a + b)
}
