package ibl

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Edge velocity configuration errors.
var (
	ErrVelocityNotSet = errors.New("ibl: edge velocity profile not set")
	ErrVelocityInput  = errors.New("ibl: invalid edge velocity description")
)

// EdgeVelocity bundles the edge velocity and its first two streamwise
// derivatives as mutually consistent functions. Missing derivatives are
// derived by differentiating a cubic spline representation of the supplied
// data, never by finite differencing evaluated outputs.
type EdgeVelocity struct {
	u, up, upp func(float64) float64
}

// NewEdgeVelocityFuncs builds a profile from the velocity and both of its
// derivatives. All three must be supplied; use one of the other constructors
// when derivative information is missing.
func NewEdgeVelocityFuncs(u, up, upp func(float64) float64) (*EdgeVelocity, error) {
	if u == nil || up == nil || upp == nil {
		return nil, fmt.Errorf("%w: all three callables are required", ErrVelocityInput)
	}
	return &EdgeVelocity{u: u, up: up, upp: upp}, nil
}

// NewEdgeVelocityFromFunc builds a profile from a bare velocity callable.
// The callable is sampled at n evenly spaced points on [x0, x1], the samples
// are fit with a cubic spline, and both derivatives come from the spline.
func NewEdgeVelocityFromFunc(u func(float64) float64, x0, x1 float64, n int) (*EdgeVelocity, error) {
	if u == nil {
		return nil, fmt.Errorf("%w: velocity callable is required", ErrVelocityInput)
	}
	if n < 4 || x1 <= x0 {
		return nil, fmt.Errorf("%w: need x0 < x1 and at least 4 samples", ErrVelocityInput)
	}
	xs := spanPoints(x0, x1, n)
	sp, err := NewSpline(xs, apply(u, xs))
	if err != nil {
		return nil, err
	}
	d1 := sp.Derivative()
	d2 := d1.Derivative()
	return &EdgeVelocity{u: u, up: d1.At, upp: d2.At}, nil
}

// NewEdgeVelocityFuncAndDeriv builds a profile from the velocity and its
// first derivative. The second derivative is the exact derivative of a cubic
// spline fit of the first derivative sampled on [x0, x1].
func NewEdgeVelocityFuncAndDeriv(u, up func(float64) float64, x0, x1 float64, n int) (*EdgeVelocity, error) {
	if u == nil || up == nil {
		return nil, fmt.Errorf("%w: velocity and first derivative callables are required", ErrVelocityInput)
	}
	if n < 4 || x1 <= x0 {
		return nil, fmt.Errorf("%w: need x0 < x1 and at least 4 samples", ErrVelocityInput)
	}
	xs := spanPoints(x0, x1, n)
	sp, err := NewSpline(xs, apply(up, xs))
	if err != nil {
		return nil, err
	}
	d2 := sp.Derivative()
	return &EdgeVelocity{u: u, up: up, upp: d2.At}, nil
}

// NewEdgeVelocityFromPoints builds a profile from sampled (x, U) pairs. The
// samples are interpolated with a cubic spline and both derivatives are exact
// derivatives of that interpolant.
func NewEdgeVelocityFromPoints(xs, us []float64) (*EdgeVelocity, error) {
	sp, err := NewSpline(xs, us)
	if err != nil {
		return nil, err
	}
	d1 := sp.Derivative()
	d2 := d1.Derivative()
	return &EdgeVelocity{u: sp.At, up: d1.At, upp: d2.At}, nil
}

// NewEdgeVelocityFromDerivPoints builds a profile from sampled (x, dU/dx)
// pairs plus the velocity u0 at xs[0]. The derivative samples are splined,
// the velocity is the antiderivative of that spline anchored at u0, and the
// second derivative is the spline's exact derivative.
func NewEdgeVelocityFromDerivPoints(u0 float64, xs, ups []float64) (*EdgeVelocity, error) {
	sp, err := NewSpline(xs, ups)
	if err != nil {
		return nil, err
	}
	anti := sp.Antiderivative(u0)
	d2 := sp.Derivative()
	return &EdgeVelocity{u: anti.At, up: sp.At, upp: d2.At}, nil
}

// U evaluates the edge velocity element-wise.
func (v *EdgeVelocity) U(xs []float64) []float64 { return apply(v.u, xs) }

// DUDx evaluates the first streamwise derivative element-wise.
func (v *EdgeVelocity) DUDx(xs []float64) []float64 { return apply(v.up, xs) }

// D2UDx2 evaluates the second streamwise derivative element-wise.
func (v *EdgeVelocity) D2UDx2(xs []float64) []float64 { return apply(v.upp, xs) }

// spanPoints returns n evenly spaced values from a to b inclusive.
func spanPoints(a, b float64, n int) []float64 {
	return floats.Span(make([]float64, n), a, b)
}
