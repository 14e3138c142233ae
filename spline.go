package ibl

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrSplineData indicates unusable sample data for spline construction.
var ErrSplineData = errors.New("ibl: spline needs at least two strictly increasing sample points")

// Spline is a piecewise polynomial over breakpoints xs. Segment i covers
// [xs[i], xs[i+1]) and evaluates sum_k c[i][k]*(x-xs[i])^k. Evaluation outside
// the breakpoints extrapolates with the nearest end segment, matching how the
// underlying fits are used during adaptive stepping, where transient
// excursions past the sampled range must not abort the solve.
type Spline struct {
	xs []float64
	c  [][]float64
}

// NewSpline builds a natural cubic spline interpolating (xs[i], ys[i]). The
// abscissae must be strictly increasing. Derivatives of the returned spline
// are exact derivatives of the interpolant, not finite differences.
func NewSpline(xs, ys []float64) (*Spline, error) {
	n := len(xs)
	if n < 2 || len(ys) != n {
		return nil, ErrSplineData
	}
	for i := 1; i < n; i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("%w: xs[%d]=%g, xs[%d]=%g", ErrSplineData, i-1, xs[i-1], i, xs[i])
		}
	}

	h := make([]float64, n-1)
	for i := range h {
		h[i] = xs[i+1] - xs[i]
	}

	// Second derivatives at the knots, natural end conditions. The interior
	// moment system is tridiagonal.
	m := make([]float64, n)
	if n > 2 {
		dim := n - 2
		dl := make([]float64, dim-1)
		d := make([]float64, dim)
		du := make([]float64, dim-1)
		rhs := make([]float64, dim)
		for i := 0; i < dim; i++ {
			d[i] = 2 * (h[i] + h[i+1])
			rhs[i] = 6 * ((ys[i+2]-ys[i+1])/h[i+1] - (ys[i+1]-ys[i])/h[i])
			if i > 0 {
				dl[i-1] = h[i]
			}
			if i < dim-1 {
				du[i] = h[i+1]
			}
		}
		tri := mat.NewTridiag(dim, dl, d, du)
		sol := mat.NewVecDense(dim, nil)
		if err := tri.SolveVecTo(sol, false, mat.NewVecDense(dim, rhs)); err != nil {
			return nil, fmt.Errorf("ibl: spline moment system: %w", err)
		}
		for i := 0; i < dim; i++ {
			m[i+1] = sol.AtVec(i)
		}
	}

	c := make([][]float64, n-1)
	for i := 0; i < n-1; i++ {
		c[i] = []float64{
			ys[i],
			(ys[i+1]-ys[i])/h[i] - h[i]*(2*m[i]+m[i+1])/6,
			m[i] / 2,
			(m[i+1] - m[i]) / (6 * h[i]),
		}
	}
	cp := make([]float64, n)
	copy(cp, xs)
	return &Spline{xs: cp, c: c}, nil
}

// segment returns the index of the piece containing x.
func (s *Spline) segment(x float64) int {
	i := sort.SearchFloat64s(s.xs, x) - 1
	if i < 0 {
		i = 0
	}
	if i > len(s.c)-1 {
		i = len(s.c) - 1
	}
	return i
}

// At evaluates the spline at x.
func (s *Spline) At(x float64) float64 {
	i := s.segment(x)
	t := x - s.xs[i]
	var v float64
	for k := len(s.c[i]) - 1; k >= 0; k-- {
		v = v*t + s.c[i][k]
	}
	return v
}

// Eval evaluates the spline element-wise over xs.
func (s *Spline) Eval(xs []float64) []float64 {
	return apply(s.At, xs)
}

// Derivative returns the exact derivative of the piecewise polynomial.
func (s *Spline) Derivative() *Spline {
	c := make([][]float64, len(s.c))
	for i, seg := range s.c {
		if len(seg) <= 1 {
			c[i] = []float64{0}
			continue
		}
		d := make([]float64, len(seg)-1)
		for k := 1; k < len(seg); k++ {
			d[k-1] = float64(k) * seg[k]
		}
		c[i] = d
	}
	return &Spline{xs: s.xs, c: c}
}

// Antiderivative returns the piecewise antiderivative whose value at the
// first breakpoint is y0. Integration constants accumulate across segments so
// the result is continuous.
func (s *Spline) Antiderivative(y0 float64) *Spline {
	c := make([][]float64, len(s.c))
	acc := y0
	for i, seg := range s.c {
		a := make([]float64, len(seg)+1)
		a[0] = acc
		for k, ck := range seg {
			a[k+1] = ck / float64(k+1)
		}
		c[i] = a
		// Value at the right end of this segment seeds the next one.
		t := s.xs[i+1] - s.xs[i]
		v := 0.0
		for k := len(a) - 1; k >= 0; k-- {
			v = v*t + a[k]
		}
		acc = v
	}
	return &Spline{xs: s.xs, c: c}
}

// Range returns the sampled domain of the spline.
func (s *Spline) Range() (float64, float64) {
	return s.xs[0], s.xs[len(s.xs)-1]
}
