package ibl

import (
	"fmt"
	"math"
)

// ThwaitesFits bundles the empirical shear function S, shape function H and
// its slope H' used by Thwaites' method, each valid over a bounded range of
// the pressure gradient parameter lambda. Arguments outside the range are
// clamped to the nearest boundary so a transient excursion during adaptive
// stepping does not abort the solve. Clamping never mutates caller data.
type ThwaitesFits struct {
	name           string
	s, h, hp       func(float64) float64
	lamMin, lamMax float64
}

// Name returns the name of the fit set.
func (m *ThwaitesFits) Name() string { return m.name }

// Range returns the valid lambda range of the fits.
func (m *ThwaitesFits) Range() (float64, float64) { return m.lamMin, m.lamMax }

func (m *ThwaitesFits) sAt(lam float64) float64 { return m.s(clamp(lam, m.lamMin, m.lamMax)) }
func (m *ThwaitesFits) hAt(lam float64) float64 { return m.h(clamp(lam, m.lamMin, m.lamMax)) }
func (m *ThwaitesFits) hpAt(lam float64) float64 {
	return m.hp(clamp(lam, m.lamMin, m.lamMax))
}

// fAt is the right-hand-side interaction term 2[S - lambda(H+2)].
func (m *ThwaitesFits) fAt(lam float64) float64 {
	return 2 * (m.sAt(lam) - lam*(m.hAt(lam)+2))
}

// S evaluates the shear function element-wise.
func (m *ThwaitesFits) S(lam []float64) []float64 { return apply(m.sAt, lam) }

// H evaluates the shape function element-wise.
func (m *ThwaitesFits) H(lam []float64) []float64 { return apply(m.hAt, lam) }

// Hp evaluates the slope of the shape function element-wise.
func (m *ThwaitesFits) Hp(lam []float64) []float64 { return apply(m.hpAt, lam) }

// F evaluates 2[S - lambda(H+2)] element-wise.
func (m *ThwaitesFits) F(lam []float64) []float64 { return apply(m.fAt, lam) }

// newWhiteFits returns the closed-form curve fits from White (2011).
func newWhiteFits() *ThwaitesFits {
	s := func(lam float64) float64 { return math.Pow(lam+0.09, 0.62) }
	h := func(lam float64) float64 {
		z := 0.25 - lam
		return 2 + z*(4.14+z*(-83.5+z*(854+z*(-3337+z*4576))))
	}
	hp := func(lam float64) float64 {
		z := 0.25 - lam
		return -(4.14 + z*(-2*83.5+z*(3*854+z*(-4*3337+z*5*4576))))
	}
	return &ThwaitesFits{name: "White", s: s, h: h, hp: hp,
		lamMin: -0.09, lamMax: math.Inf(1)}
}

// newCebeciBradshawFits returns the piecewise curve fits from Cebeci and
// Bradshaw (1977). H and H' are discontinuous at lambda=0; S is not.
func newCebeciBradshawFits() *ThwaitesFits {
	s := func(lam float64) float64 {
		if lam < 0 {
			return 0.22 + 1.402*lam + 0.018*lam/(0.107+lam)
		}
		return 0.22 + 1.57*lam - 1.8*lam*lam
	}
	h := func(lam float64) float64 {
		if lam < 0 {
			return 2.088 + 0.0731/(0.14+lam)
		}
		return 2.61 - 3.75*lam + 5.24*lam*lam
	}
	hp := func(lam float64) float64 {
		if lam < 0 {
			return -0.0731 / ((0.14 + lam) * (0.14 + lam))
		}
		return -3.75 + 2*5.24*lam
	}
	return &ThwaitesFits{name: "Cebeci-Bradshaw", s: s, h: h, hp: hp,
		lamMin: -0.1, lamMax: 0.1}
}

// Thwaites' original tabulated data (Edland 2022 spline fits).
var (
	thwaitesTabLambda = []float64{
		-0.082, -0.0818, -0.0816, -0.0812, -0.0808, -0.0804,
		-0.080, -0.079, -0.078, -0.076, -0.074, -0.072,
		-0.070, -0.068, -0.064, -0.060, -0.056, -0.052,
		-0.048, -0.040, -0.032, -0.024, -0.016, -0.008,
		0.000, 0.016, 0.032, 0.048, 0.064, 0.080,
		0.10, 0.12, 0.14, 0.20, 0.25,
	}
	thwaitesTabS = []float64{
		0.000, 0.011, 0.016, 0.024, 0.030, 0.035, 0.039, 0.049,
		0.055, 0.067, 0.076, 0.083, 0.089, 0.094, 0.104, 0.113,
		0.122, 0.130, 0.138, 0.153, 0.168, 0.182, 0.195, 0.208,
		0.220, 0.244, 0.268, 0.291, 0.313, 0.333, 0.359, 0.382,
		0.404, 0.463, 0.500,
	}
	thwaitesTabH = []float64{
		3.70, 3.69, 3.66, 3.63, 3.61, 3.59, 3.58, 3.52, 3.47,
		3.38, 3.30, 3.23, 3.17, 3.13, 3.05, 2.99, 2.94, 2.90,
		2.87, 2.81, 2.75, 2.71, 2.67, 2.64, 2.61, 2.55, 2.49,
		2.44, 2.39, 2.34, 2.28, 2.23, 2.18, 2.07, 2.00,
	}
)

// newSplineFits returns cubic spline fits of Thwaites' tabulated data.
func newSplineFits() *ThwaitesFits {
	sSpline, err := NewSpline(thwaitesTabLambda, thwaitesTabS)
	if err != nil {
		panic(err)
	}
	hSpline, err := NewSpline(thwaitesTabLambda, thwaitesTabH)
	if err != nil {
		panic(err)
	}
	hpSpline := hSpline.Derivative()
	return &ThwaitesFits{name: "Thwaites Splines",
		s: sSpline.At, h: hSpline.At, hp: hpSpline.At,
		lamMin: thwaitesTabLambda[0], lamMax: thwaitesTabLambda[len(thwaitesTabLambda)-1]}
}

// thwaitesMethod carries everything shared by the linear and nonlinear
// variants of Thwaites' method. The single state variable is
// F = delta_m^2/nu.
type thwaitesMethod struct {
	solverBase
	linear bool
	model  *ThwaitesFits
	ic     InitialCondition
}

// ThwaitesLinear models a laminar boundary layer with Thwaites' original
// linear approximation F(lambda) = 0.45 - 6 lambda.
type ThwaitesLinear struct{ thwaitesMethod }

// ThwaitesNonlinear models a laminar boundary layer with the exact
// F(lambda) = 2[S - lambda(H+2)] built from the active data fits.
type ThwaitesNonlinear struct{ thwaitesMethod }

// NewThwaitesLinear returns a linear Thwaites method using the spline fits
// of the original tabulated data.
func NewThwaitesLinear() *ThwaitesLinear {
	m := &ThwaitesLinear{newThwaitesMethod(true)}
	m.setKillEvent(&thwaitesSeparationEvent{m: &m.thwaitesMethod})
	return m
}

// NewThwaitesNonlinear returns a nonlinear Thwaites method using the spline
// fits of the original tabulated data.
func NewThwaitesNonlinear() *ThwaitesNonlinear {
	m := &ThwaitesNonlinear{newThwaitesMethod(false)}
	m.setKillEvent(&thwaitesSeparationEvent{m: &m.thwaitesMethod})
	return m
}

func newThwaitesMethod(linear bool) thwaitesMethod {
	return thwaitesMethod{
		solverBase: newSolverBase(1e-8, 1e-11),
		linear:     linear,
		model:      newSplineFits(),
	}
}

// SetDataFits selects one of the built-in fit sets by name: "Spline",
// "White" or "Cebeci-Bradshaw".
func (m *thwaitesMethod) SetDataFits(name string) error {
	switch name {
	case "Spline":
		m.model = newSplineFits()
	case "White":
		m.model = newWhiteFits()
	case "Cebeci-Bradshaw":
		m.model = newCebeciBradshawFits()
	default:
		return fmt.Errorf("ibl: unknown fitting function name %q", name)
	}
	return nil
}

// SetCustomFits installs user supplied shear and shape functions. hp may be
// nil, in which case the slope of the shape function is approximated by
// central differencing h.
func (m *thwaitesMethod) SetCustomFits(s, h, hp func(float64) float64) error {
	if s == nil || h == nil {
		return fmt.Errorf("ibl: custom fits need callable shear and shape functions")
	}
	if hp == nil {
		const d = 1e-5
		hp = func(lam float64) float64 {
			return (h(lam+d) - h(lam-d)) / (2 * d)
		}
	}
	m.model = &ThwaitesFits{name: "Custom", s: s, h: h, hp: hp,
		lamMin: math.Inf(-1), lamMax: math.Inf(1)}
	return nil
}

// Fits returns the active data fit set.
func (m *thwaitesMethod) Fits() *ThwaitesFits { return m.model }

// SetInitialCondition installs an initial condition collaborator supplying
// the starting momentum thickness.
func (m *thwaitesMethod) SetInitialCondition(ic InitialCondition) error {
	if ic == nil {
		return fmt.Errorf("%w: nil initial condition", ErrNotConfigured)
	}
	if ic.DeltaM() <= 0 {
		return fmt.Errorf("ibl: initial momentum thickness must be positive, got %g", ic.DeltaM())
	}
	m.ic = ic
	return nil
}

// SetSolutionParameters configures the integration range, the initial
// momentum thickness and the kinematic viscosity.
func (m *thwaitesMethod) SetSolutionParameters(x0, xEnd, deltaM0, nu float64) error {
	if nu <= 0 {
		return fmt.Errorf("ibl: viscosity must be positive, got %g", nu)
	}
	if err := m.SetInitialCondition(ManualCondition{DeltaM0: deltaM0}); err != nil {
		return err
	}
	if err := m.setXRange(x0, xEnd); err != nil {
		return err
	}
	m.nu = nu
	return nil
}

// lambda is the pressure gradient parameter for state F = delta_m^2/nu.
func (m *thwaitesMethod) lambda(x, f float64) float64 {
	return f * m.vel.up(x)
}

// fCorr is the variant specific interaction term.
func (m *thwaitesMethod) fCorr(lam float64) float64 {
	if m.linear {
		return 0.45 - 6*lam
	}
	return m.model.fAt(lam)
}

// rhs is dF/dx. The small floor on the edge velocity guards the stagnation
// point at the leading edge.
func (m *thwaitesMethod) rhs(x float64, f []float64) []float64 {
	return []float64{m.fCorr(m.lambda(x, f[0])) / (1e-3 + m.vel.u(x))}
}

// Solve integrates Thwaites' ODE over the configured range. Any extra
// termination events are monitored after the built-in separation event.
func (m *thwaitesMethod) Solve(events ...TermEvent) (Result, error) {
	if err := m.checkConfigured(true); err != nil {
		return Result{}, err
	}
	if m.ic == nil {
		return Result{}, fmt.Errorf("%w: initial condition missing", ErrNotConfigured)
	}
	d := m.ic.DeltaM()
	y0 := []float64{d * d / m.nu}
	return m.solveRange(y0, m.rhs, events), nil
}

// DeltaM returns the momentum thickness over the solved range.
func (m *thwaitesMethod) DeltaM(xs []float64) ([]float64, error) {
	f, err := m.component(xs, 0)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(f))
	for i, v := range f {
		out[i] = math.Sqrt(v * m.nu)
	}
	return out, nil
}

// ShapeD returns the displacement shape factor over the solved range.
func (m *thwaitesMethod) ShapeD(xs []float64) ([]float64, error) {
	f, err := m.component(xs, 0)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(f))
	for i, v := range f {
		out[i] = m.model.hAt(m.lambda(xs[i], v))
	}
	return out, nil
}

// DeltaD returns the displacement thickness over the solved range.
func (m *thwaitesMethod) DeltaD(xs []float64) ([]float64, error) {
	dm, err := m.DeltaM(xs)
	if err != nil {
		return nil, err
	}
	hd, err := m.ShapeD(xs)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(dm))
	for i := range out {
		out[i] = dm[i] * hd[i]
	}
	return out, nil
}

// DeltaK returns the kinetic energy thickness, which this method does not
// model.
func (m *thwaitesMethod) DeltaK(xs []float64) ([]float64, error) {
	if _, err := m.component(xs, 0); err != nil {
		return nil, err
	}
	return make([]float64, len(xs)), nil
}

// ShapeK returns the kinetic energy shape factor, which this method does not
// model.
func (m *thwaitesMethod) ShapeK(xs []float64) ([]float64, error) {
	return m.DeltaK(xs)
}

// TauW returns the wall shear stress for the given freestream density.
func (m *thwaitesMethod) TauW(xs []float64, rho float64) ([]float64, error) {
	f, err := m.component(xs, 0)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(f))
	for i, v := range f {
		dm := math.Sqrt(v * m.nu)
		out[i] = rho * m.nu * m.vel.u(xs[i]) * m.model.sAt(m.lambda(xs[i], v)) / dm
	}
	return out, nil
}

// TranspirationVelocity returns the wall-normal velocity representing the
// boundary layer's displacement effect on the outer flow. It re-evaluates
// the right-hand side to get the local slope of the solved state.
func (m *thwaitesMethod) TranspirationVelocity(xs []float64) ([]float64, error) {
	f, err := m.component(xs, 0)
	if err != nil {
		return nil, err
	}
	dd, err := m.DeltaD(xs)
	if err != nil {
		return nil, err
	}
	hd, err := m.ShapeD(xs)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(f))
	for i, v := range f {
		x := xs[i]
		u := m.vel.u(x)
		up := m.vel.up(x)
		upp := m.vel.upp(x)
		dfdx := m.rhs(x, []float64{v})[0]
		term1 := up * dd[i]
		term2 := math.Sqrt(m.nu / v)
		term3 := 0.5 * u * hd[i] * dfdx
		term4 := u * v * m.model.hpAt(m.lambda(x, v))
		term5 := up*dfdx + upp*v
		out[i] = term1 + term2*(term3+term4*term5)
	}
	return out, nil
}

// Dissipation returns the dissipation integral, which this method does not
// model.
func (m *thwaitesMethod) Dissipation(xs []float64, rho float64) ([]float64, error) {
	return m.DeltaK(xs)
}

// thwaitesSeparationEvent terminates the integration when the shear function
// vanishes, which marks laminar separation.
type thwaitesSeparationEvent struct {
	m *thwaitesMethod
}

// Value implements TermEvent: the current value of the shear function.
func (e *thwaitesSeparationEvent) Value(x float64, f []float64) float64 {
	return e.m.model.sAt(e.m.lambda(x, f[0]))
}

// Info implements TermEvent.
func (e *thwaitesSeparationEvent) Info() (int, string) { return -1, "" }
