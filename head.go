package ibl

import (
	"fmt"
	"math"
)

// Entrainment correlation constants for Head's method. The two inverse power
// law branches of H1 meet at H_d = 1.6.
const (
	headHDBreak  = 1.6
	headH1LowA   = 0.8234
	headH1LowB   = 1.1
	headH1LowC   = 1.287
	headH1LowD   = 3.3
	headH1HighA  = 1.5501
	headH1HighB  = 0.6778
	headH1HighC  = 3.064
	headH1HighD  = 3.32254659218600974
	headHDFloor  = 1.1001
	headH1SFloor = 3.001
)

// entrainmentShapeAt is the entrainment shape factor H1(H_d). Shape factors
// at or below 1.1 are clamped, since the correlation is singular there.
func entrainmentShapeAt(hD float64) float64 {
	if hD <= 1.1 {
		hD = headHDFloor
	}
	if hD <= headHDBreak {
		return headH1LowD + headH1LowA/math.Pow(hD-headH1LowB, headH1LowC)
	}
	return headH1HighD + headH1HighA/math.Pow(hD-headH1HighB, headH1HighC)
}

// entrainmentShapeSlopeAt is the analytic derivative of the same branches.
func entrainmentShapeSlopeAt(hD float64) float64 {
	if hD <= 1.1 {
		hD = headHDFloor
	}
	if hD <= headHDBreak {
		return -headH1LowA * headH1LowC / math.Pow(hD-headH1LowB, headH1LowC+1)
	}
	return -headH1HighA * headH1HighC / math.Pow(hD-headH1HighB, headH1HighC+1)
}

// entrainmentRateAt is the entrainment rate S(H1). H1 is clamped above 3 to
// avoid the singularity of the correlation.
func entrainmentRateAt(h1 float64) float64 {
	if h1 <= 3 {
		h1 = headH1SFloor
	}
	return 0.0306 / math.Pow(h1-3, 0.6169)
}

// shapeFromEntrainmentAt inverts H1(H_d). Unlike the forward correlations the
// inverse has no meaningful clamp below its asymptote, so it reports an error.
func shapeFromEntrainmentAt(h1 float64) (float64, error) {
	if h1 <= headH1HighD {
		return 0, fmt.Errorf("ibl: entrainment shape factor must exceed %.3f, got %g", headH1HighD, h1)
	}
	if h1 <= entrainmentShapeAt(headHDBreak) {
		return headH1HighB + math.Pow(headH1HighA/(h1-headH1HighD), 1/headH1HighC), nil
	}
	return headH1LowB + math.Pow(headH1LowA/(h1-headH1LowD), 1/headH1LowC), nil
}

// EntrainmentShape evaluates H1(H_d) element-wise.
func EntrainmentShape(hD []float64) []float64 { return apply(entrainmentShapeAt, hD) }

// EntrainmentShapeSlope evaluates dH1/dH_d element-wise.
func EntrainmentShapeSlope(hD []float64) []float64 { return apply(entrainmentShapeSlopeAt, hD) }

// EntrainmentRate evaluates the entrainment rate S(H1) element-wise.
func EntrainmentRate(h1 []float64) []float64 { return apply(entrainmentRateAt, h1) }

// ShapeFromEntrainment evaluates the inverse correlation H_d(H1) element-wise.
func ShapeFromEntrainment(h1 []float64) ([]float64, error) {
	out := make([]float64, len(h1))
	for i, v := range h1 {
		hd, err := shapeFromEntrainmentAt(v)
		if err != nil {
			return nil, err
		}
		out[i] = hd
	}
	return out, nil
}

// HeadMethod models a turbulent boundary layer using Head's method (1958).
// The state vector is (delta_m, H_d). Since vanishing shear is not predicted
// by this closure, separation is declared when the displacement shape factor
// exceeds a critical value, 2.4 by default.
type HeadMethod struct {
	solverBase
	deltaM0 float64
	hD0     float64
	icSet   bool
	cf      SkinFriction
}

// NewHeadMethod returns a Head's method solver with the Ludwieg-Tillman skin
// friction correlation and the default critical shape factor.
func NewHeadMethod() *HeadMethod {
	m := &HeadMethod{
		solverBase: newSolverBase(1e-8, 1e-11),
		cf:         LudwiegTillman,
	}
	m.SetHDCritical(2.4)
	return m
}

// SetHDCritical reconfigures the displacement shape factor threshold used to
// declare separation.
func (m *HeadMethod) SetHDCritical(hDCrit float64) {
	m.setKillEvent(&headSeparationEvent{hDCrit: hDCrit})
}

// SetSkinFriction replaces the skin friction correlation.
func (m *HeadMethod) SetSkinFriction(cf SkinFriction) error {
	if cf == nil {
		return fmt.Errorf("ibl: skin friction correlation must not be nil")
	}
	m.cf = cf
	return nil
}

// SetSolutionParameters configures the integration range, the initial
// momentum thickness and shape factor, and the kinematic viscosity.
func (m *HeadMethod) SetSolutionParameters(x0, xEnd, deltaM0, hD0, nu float64) error {
	if nu <= 0 {
		return fmt.Errorf("ibl: viscosity must be positive, got %g", nu)
	}
	if deltaM0 <= 0 {
		return fmt.Errorf("ibl: initial momentum thickness must be positive, got %g", deltaM0)
	}
	if hD0 <= 1 {
		return fmt.Errorf("ibl: initial displacement shape factor must be greater than one, got %g", hD0)
	}
	if err := m.setXRange(x0, xEnd); err != nil {
		return err
	}
	m.nu = nu
	m.deltaM0 = deltaM0
	m.hD0 = hD0
	m.icSet = true
	return nil
}

// rhs is the coupled ODE system for (delta_m, H_d).
func (m *HeadMethod) rhs(x float64, y []float64) []float64 {
	deltaM := y[0]
	hD := y[1]
	if hD < 1.11 {
		hD = 1.11
	}
	u := m.vel.u(x)
	if math.Abs(u) < 1e-3 {
		u = 1e-3
	}
	up := m.vel.up(x)
	re := u * deltaM / m.nu
	cf := m.cf(re, hD)
	h1 := entrainmentShapeAt(hD)
	h1p := entrainmentShapeSlopeAt(hD)
	yp0 := 0.5*cf - deltaM*(2+hD)*up/u
	yp1 := (u*entrainmentRateAt(h1) - u*yp0*h1 - up*deltaM*h1) / (h1p * u * deltaM)
	return []float64{yp0, yp1}
}

// Solve integrates Head's ODE system over the configured range.
func (m *HeadMethod) Solve(events ...TermEvent) (Result, error) {
	if err := m.checkConfigured(true); err != nil {
		return Result{}, err
	}
	if !m.icSet {
		return Result{}, fmt.Errorf("%w: initial condition missing", ErrNotConfigured)
	}
	return m.solveRange([]float64{m.deltaM0, m.hD0}, m.rhs, events), nil
}

// DeltaM returns the momentum thickness over the solved range.
func (m *HeadMethod) DeltaM(xs []float64) ([]float64, error) {
	return m.component(xs, 0)
}

// ShapeD returns the displacement shape factor over the solved range.
func (m *HeadMethod) ShapeD(xs []float64) ([]float64, error) {
	return m.component(xs, 1)
}

// DeltaD returns the displacement thickness over the solved range.
func (m *HeadMethod) DeltaD(xs []float64) ([]float64, error) {
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
func (m *HeadMethod) DeltaK(xs []float64) ([]float64, error) {
	if _, err := m.component(xs, 0); err != nil {
		return nil, err
	}
	return make([]float64, len(xs)), nil
}

// ShapeK returns the kinetic energy shape factor, which this method does not
// model.
func (m *HeadMethod) ShapeK(xs []float64) ([]float64, error) {
	return m.DeltaK(xs)
}

// TauW returns the wall shear stress for the given freestream density.
func (m *HeadMethod) TauW(xs []float64, rho float64) ([]float64, error) {
	states, err := m.stateAt(xs)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(xs))
	for i, s := range states {
		u := m.vel.u(xs[i])
		if math.Abs(u) < 1e-3 {
			u = 1e-3
		}
		re := u * s[0] / m.nu
		out[i] = 0.5 * rho * u * u * m.cf(re, s[1])
	}
	return out, nil
}

// TranspirationVelocity returns the wall-normal velocity representing the
// boundary layer's displacement effect on the outer flow.
func (m *HeadMethod) TranspirationVelocity(xs []float64) ([]float64, error) {
	states, err := m.stateAt(xs)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(xs))
	for i, s := range states {
		x := xs[i]
		yp := m.rhs(x, s)
		u := m.vel.u(x)
		up := m.vel.up(x)
		out[i] = up*s[1]*s[0] + u*yp[1]*s[0] + u*s[1]*yp[0]
	}
	return out, nil
}

// headSeparationEvent terminates the integration once the displacement shape
// factor exceeds its critical value.
type headSeparationEvent struct {
	hDCrit float64
}

// Value implements TermEvent: positive while attached, zero at separation.
func (e *headSeparationEvent) Value(_ float64, y []float64) float64 {
	return e.hDCrit - y[1]
}

// Info implements TermEvent.
func (e *headSeparationEvent) Info() (int, string) { return -1, "" }
