package ibl

import (
	"errors"
	"math"
	"testing"

	"github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestWhiteFits(t *testing.T) {
	m := newWhiteFits()
	if got := m.S([]float64{-0.09})[0]; got != 0 {
		t.Fatalf("S(-0.09) = %g, want 0", got)
	}
	// z = 0 at lambda = 0.25, where the shape polynomial collapses to 2.
	if got := m.H([]float64{0.25})[0]; !scalar.EqualWithinAbs(got, 2, 1e-12) {
		t.Fatalf("H(0.25) = %g, want 2", got)
	}
	// Below the valid range the argument clamps to -0.09.
	if got := m.S([]float64{-5})[0]; got != 0 {
		t.Fatalf("S(-5) = %g, want clamp to S(-0.09) = 0", got)
	}
	const d = 1e-6
	fd := (m.hAt(0.1+d) - m.hAt(0.1-d)) / (2 * d)
	if !scalar.EqualWithinAbs(m.hpAt(0.1), fd, 1e-5) {
		t.Fatalf("Hp(0.1) = %g, difference quotient %g", m.hpAt(0.1), fd)
	}
}

func TestCebeciBradshawFits(t *testing.T) {
	m := newCebeciBradshawFits()
	// The shear branches agree at lambda = 0.
	if got := m.S([]float64{0})[0]; !scalar.EqualWithinAbs(got, 0.22, 1e-12) {
		t.Fatalf("S(0) = %g, want 0.22", got)
	}
	if got := m.S([]float64{-1e-12})[0]; !scalar.EqualWithinAbs(got, 0.22, 1e-9) {
		t.Fatalf("S(0-) = %g, want 0.22", got)
	}
	if got := m.H([]float64{0})[0]; !scalar.EqualWithinAbs(got, 2.61, 1e-12) {
		t.Fatalf("H(0) = %g, want 2.61", got)
	}
	lo, hi := m.Range()
	if lo != -0.1 || hi != 0.1 {
		t.Fatalf("range [%g, %g], want [-0.1, 0.1]", lo, hi)
	}
	// Out of range arguments clamp to the boundary.
	if got, want := m.sAt(0.5), m.sAt(0.1); got != want {
		t.Fatalf("S(0.5) = %g, want clamp to S(0.1) = %g", got, want)
	}
}

func TestSplineFitsInterpolateTable(t *testing.T) {
	m := newSplineFits()
	checks := []struct{ lam, s, h float64 }{
		{-0.082, 0.000, 3.70},
		{0.000, 0.220, 2.61},
		{0.25, 0.500, 2.00},
	}
	for _, c := range checks {
		if got := m.sAt(c.lam); !scalar.EqualWithinAbs(got, c.s, 1e-10) {
			t.Fatalf("S(%g) = %g, want %g", c.lam, got, c.s)
		}
		if got := m.hAt(c.lam); !scalar.EqualWithinAbs(got, c.h, 1e-10) {
			t.Fatalf("H(%g) = %g, want %g", c.lam, got, c.h)
		}
	}
}

func TestFitsDoNotMutateInput(t *testing.T) {
	m := newWhiteFits()
	lam := []float64{-10, 0, 10}
	m.S(lam)
	m.H(lam)
	m.F(lam)
	if lam[0] != -10 || lam[2] != 10 {
		t.Fatalf("input slice mutated: %v", lam)
	}
}

func TestSetDataFits(t *testing.T) {
	m := NewThwaitesLinear()
	if err := m.SetDataFits("White"); err != nil {
		t.Fatal(err)
	}
	if m.Fits().Name() != "White" {
		t.Fatalf("fits = %q, want White", m.Fits().Name())
	}
	if err := m.SetDataFits("Falkner-Skan"); err == nil {
		t.Fatal("unknown fit name accepted")
	}
}

func TestSetCustomFits(t *testing.T) {
	m := NewThwaitesNonlinear()
	s := func(lam float64) float64 { return 0.22 + lam }
	h := func(lam float64) float64 { return lam * lam }
	if err := m.SetCustomFits(s, h, nil); err != nil {
		t.Fatal(err)
	}
	// Missing hp falls back to differencing h; for h = lam^2 the slope at
	// 0.5 is 1.
	if got := m.Fits().hpAt(0.5); !scalar.EqualWithinAbs(got, 1, 1e-4) {
		t.Fatalf("Hp(0.5) = %g, want 1", got)
	}
	if err := m.SetCustomFits(nil, h, nil); err == nil {
		t.Fatal("nil shear function accepted")
	}
}

func TestThwaitesConfigErrors(t *testing.T) {
	m := NewThwaitesLinear()
	if _, err := m.Solve(); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("unconfigured solve: got %v", err)
	}
	if err := m.SetSolutionParameters(0.1, 2, 1e-4, -1); err == nil {
		t.Fatal("negative viscosity accepted")
	}
	if err := m.SetSolutionParameters(0.1, 2, 0, 1e-5); err == nil {
		t.Fatal("zero initial thickness accepted")
	}
	if err := m.SetSolutionParameters(2, 0.1, 1e-4, 1e-5); !errors.Is(err, ErrBadRange) {
		t.Fatalf("reversed range: got %v", err)
	}
	if err := m.SetSolutionParameters(0.1, 2, 1e-4, 1e-5); err != nil {
		t.Fatal(err)
	}
	// Parameters alone are not enough: the velocity profile is still unset.
	if _, err := m.Solve(); !errors.Is(err, ErrVelocityNotSet) {
		t.Fatalf("solve without velocity: got %v", err)
	}
}

func flatPlateThwaites(t *testing.T, u, nu, deltaM0, x0, xEnd float64) *ThwaitesLinear {
	t.Helper()
	m := NewThwaitesLinear()
	m.SetLogger(log.NewNopLogger())
	vel, err := NewEdgeVelocityFuncs(
		func(float64) float64 { return u },
		func(float64) float64 { return 0 },
		func(float64) float64 { return 0 },
	)
	if err != nil {
		t.Fatal(err)
	}
	m.SetVelocity(vel)
	if err := m.SetSolutionParameters(x0, xEnd, deltaM0, nu); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestThwaitesFlatPlate(t *testing.T) {
	const (
		uInf = 10.0
		nu   = 1e-5
		x0   = 0.1
		xEnd = 5.0
	)
	// Start from the Blasius momentum thickness at x0.
	deltaM0 := 0.664 * math.Sqrt(nu*x0/uInf)
	m := flatPlateThwaites(t, uInf, nu, deltaM0, x0, xEnd)
	res, err := m.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.Status != 0 {
		t.Fatalf("flat plate did not complete: %s", res)
	}
	if res.XEnd != xEnd {
		t.Fatalf("xEnd = %g, want %g", res.XEnd, xEnd)
	}

	// With lambda = 0 throughout, F grows linearly at 0.45/(1e-3 + U).
	f0 := deltaM0 * deltaM0 / nu
	slope := 0.45 / (1e-3 + uInf)
	if want := f0 + slope*(xEnd-x0); !scalar.EqualWithinRel(res.FEnd[0], want, 1e-7) {
		t.Fatalf("FEnd = %g, want %g", res.FEnd[0], want)
	}

	xs := spanPoints(x0, xEnd, 20)
	dm, err := m.DeltaM(xs)
	if err != nil {
		t.Fatal(err)
	}
	for i, x := range xs {
		blasius := 0.664 * math.Sqrt(nu*x/uInf)
		if !scalar.EqualWithinRel(dm[i], blasius, 1.5e-2) {
			t.Fatalf("deltaM(%g) = %g, Blasius %g", x, dm[i], blasius)
		}
	}

	// Displacement thickness is the product of thickness and shape factor.
	dd, err := m.DeltaD(xs)
	if err != nil {
		t.Fatal(err)
	}
	hd, err := m.ShapeD(xs)
	if err != nil {
		t.Fatal(err)
	}
	for i := range xs {
		if !scalar.EqualWithinAbs(dd[i], dm[i]*hd[i], 1e-15) {
			t.Fatalf("deltaD(%g) = %g, deltaM*H_d = %g", xs[i], dd[i], dm[i]*hd[i])
		}
	}

	tw, err := m.TauW(xs, 1.2)
	if err != nil {
		t.Fatal(err)
	}
	vt, err := m.TranspirationVelocity(xs)
	if err != nil {
		t.Fatal(err)
	}
	for i := range xs {
		if tw[i] <= 0 || math.IsNaN(tw[i]) {
			t.Fatalf("tauW(%g) = %g", xs[i], tw[i])
		}
		if vt[i] <= 0 || math.IsNaN(vt[i]) {
			t.Fatalf("transpiration(%g) = %g", xs[i], vt[i])
		}
	}

	// Unmodeled kinetic energy quantities report zero.
	dk, err := m.DeltaK(xs)
	if err != nil {
		t.Fatal(err)
	}
	for i := range dk {
		if dk[i] != 0 {
			t.Fatalf("deltaK(%g) = %g, want 0", xs[i], dk[i])
		}
	}
}

func TestThwaitesSeparation(t *testing.T) {
	m := NewThwaitesNonlinear()
	m.SetLogger(log.NewNopLogger())
	vel, err := NewEdgeVelocityFuncs(
		func(x float64) float64 { return 10 - 5*x },
		func(float64) float64 { return -5 },
		func(float64) float64 { return 0 },
	)
	if err != nil {
		t.Fatal(err)
	}
	m.SetVelocity(vel)
	if err := m.SetSolutionParameters(0.05, 1.9, 1e-4, 1e-5); err != nil {
		t.Fatal(err)
	}
	res, err := m.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Fatalf("solve failed: %s", res.Message)
	}
	if res.Status != -1 || res.Message != "Separated" {
		t.Fatalf("status %d %q, want -1 Separated", res.Status, res.Message)
	}
	if res.XEnd >= 1.9 {
		t.Fatalf("separation not upstream of range end: x = %g", res.XEnd)
	}
	// At the separation point the shear function has reached zero.
	lam := res.FEnd[0] * -5
	if s := m.Fits().sAt(lam); !scalar.EqualWithinAbs(s, 0, 1e-6) {
		t.Fatalf("S at separation = %g, want 0", s)
	}
}
