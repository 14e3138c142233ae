package ibl

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/go-kit/kit/log"
)

// Solver configuration errors.
var (
	ErrNotConfigured   = errors.New("ibl: solution parameters not set")
	ErrBadRange        = errors.New("ibl: start location must be upstream of end location")
	ErrNotSolved       = errors.New("ibl: no stored solution, call Solve first")
	ErrOutsideSolution = errors.New("ibl: position outside the solved range")
)

// Result reports the outcome of a solve. Status 0 means the requested end
// location was reached, negative values the method's built-in separation
// event, positive values a caller supplied termination event. Success is
// false only for numerical failures inside the stepper; callers must check
// it instead of expecting an error.
type Result struct {
	XEnd    float64
	FEnd    []float64
	Status  int
	Message string
	Success bool
}

func (r Result) String() string {
	return fmt.Sprintf("Result:\n    x_end: %v\n    F_end: %v\n    status: %d\n    message: %s\n    success: %t",
		r.XEnd, r.FEnd, r.Status, r.Message, r.Success)
}

type rhsFunc func(x float64, f []float64) []float64

// solverBase owns the edge velocity profile and the evolving solution, and
// drives the adaptive integration shared by every concrete method.
type solverBase struct {
	vel      *EdgeVelocity
	nu       float64
	x0, xEnd float64
	rangeSet bool
	kill     TermEvent
	rtol     float64
	atol     float64
	logger   log.Logger
	sol      *solution
}

func newSolverBase(rtol, atol float64) solverBase {
	return solverBase{
		rtol:   rtol,
		atol:   atol,
		logger: log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout)),
	}
}

// SetVelocity sets the edge velocity profile used by the method.
func (b *solverBase) SetVelocity(v *EdgeVelocity) {
	b.vel = v
}

// SetLogger replaces the default stdout logfmt logger.
func (b *solverBase) SetLogger(l log.Logger) {
	if l == nil {
		l = log.NewNopLogger()
	}
	b.logger = l
}

// Ue evaluates the edge velocity at the given positions.
func (b *solverBase) Ue(xs []float64) ([]float64, error) {
	if b.vel == nil {
		return nil, ErrVelocityNotSet
	}
	return b.vel.U(xs), nil
}

// DUeDx evaluates the first derivative of the edge velocity.
func (b *solverBase) DUeDx(xs []float64) ([]float64, error) {
	if b.vel == nil {
		return nil, ErrVelocityNotSet
	}
	return b.vel.DUDx(xs), nil
}

// D2UeDx2 evaluates the second derivative of the edge velocity.
func (b *solverBase) D2UeDx2(xs []float64) ([]float64, error) {
	if b.vel == nil {
		return nil, ErrVelocityNotSet
	}
	return b.vel.D2UDx2(xs), nil
}

// Nu returns the kinematic viscosity used for the solution.
func (b *solverBase) Nu() float64 { return b.nu }

func (b *solverBase) setXRange(x0, xEnd float64) error {
	if x0 >= xEnd {
		return fmt.Errorf("%w: x0=%g, xEnd=%g", ErrBadRange, x0, xEnd)
	}
	b.x0, b.xEnd = x0, xEnd
	b.rangeSet = true
	return nil
}

func (b *solverBase) setKillEvent(e TermEvent) { b.kill = e }

// checkConfigured validates everything Solve needs. Methods whose right-hand
// side does not read the velocity profile pass velRequired=false.
func (b *solverBase) checkConfigured(velRequired bool) error {
	if !b.rangeSet {
		return ErrNotConfigured
	}
	if velRequired && b.vel == nil {
		return ErrVelocityNotSet
	}
	return nil
}

// solveRange integrates rhs from x0 to xEnd, monitoring the built-in kill
// event followed by any extra events, and stores the accepted samples as the
// new solution. A second call overwrites the previous solution.
func (b *solverBase) solveRange(y0 []float64, rhs rhsFunc, extra []TermEvent) Result {
	events := make([]TermEvent, 0, 1+len(extra))
	if b.kill != nil {
		events = append(events, b.kill)
	}
	events = append(events, extra...)

	b.logger.Log("level", "info", "subsys", "solver", "status", "integrating",
		"x0", b.x0, "xEnd", b.xEnd, "nState", len(y0))
	res := b.integrate(y0, rhs, events)
	lvl := "info"
	if !res.Success {
		lvl = "warning"
	}
	b.logger.Log("level", lvl, "subsys", "solver", "status", "finished",
		"xReached", res.XEnd, "code", res.Status, "message", res.Message, "success", res.Success)
	return res
}

// Dormand-Prince 5(4) tableau.
var (
	dpC = [7]float64{0, 1. / 5, 3. / 10, 4. / 5, 8. / 9, 1, 1}
	dpA = [7][6]float64{
		{},
		{1. / 5},
		{3. / 40, 9. / 40},
		{44. / 45, -56. / 15, 32. / 9},
		{19372. / 6561, -25360. / 2187, 64448. / 6561, -212. / 729},
		{9017. / 3168, -355. / 33, 46732. / 5247, 49. / 176, -5103. / 18656},
		{35. / 384, 0, 500. / 1113, 125. / 192, -2187. / 6784, 11. / 84},
	}
	// Difference between the 5th and embedded 4th order weights.
	dpE = [7]float64{
		35./384 - 5179./57600, 0, 500./1113 - 7571./16695, 125./192 - 393./640,
		-2187./6784 + 92097./339200, 11./84 - 187./2100, -1. / 40,
	}
)

const maxSteps = 100000

func (b *solverBase) integrate(y0 []float64, rhs rhsFunc, events []TermEvent) Result {
	n := len(y0)
	x := b.x0
	y := append([]float64(nil), y0...)
	f := rhs(x, y)
	if !allFinite(f) {
		return Result{XEnd: x, FEnd: y, Status: 0, Success: false,
			Message: fmt.Sprintf("Non-finite derivative at x=%g", x)}
	}

	sol := &solution{}
	sol.push(x, y, f)
	b.sol = sol

	gPrev := make([]float64, len(events))
	for i, ev := range events {
		gPrev[i] = ev.Value(x, y)
	}

	span := b.xEnd - b.x0
	h := span / 100
	hMin := 1e-13 * math.Max(1, math.Abs(b.xEnd))
	var k [7][]float64
	for i := range k {
		k[i] = make([]float64, n)
	}
	copy(k[0], f)
	yTmp := make([]float64, n)
	y1 := make([]float64, n)

	for step := 0; step < maxSteps; step++ {
		last := false
		if x+h >= b.xEnd {
			h = b.xEnd - x
			last = true
		}

		// Stage evaluations; k[0] holds rhs at the current point (FSAL).
		for s := 1; s < 7; s++ {
			for i := 0; i < n; i++ {
				acc := 0.0
				for j := 0; j < s; j++ {
					acc += dpA[s][j] * k[j][i]
				}
				yTmp[i] = y[i] + h*acc
			}
			copy(k[s], rhs(x+dpC[s]*h, yTmp))
		}
		// 5th order solution is stage 7's argument.
		for i := 0; i < n; i++ {
			acc := 0.0
			for j := 0; j < 6; j++ {
				acc += dpA[6][j] * k[j][i]
			}
			y1[i] = y[i] + h*acc
		}
		if !allFinite(y1) || !allFinite(k[6]) {
			return Result{XEnd: x, FEnd: append([]float64(nil), y...), Status: 0, Success: false,
				Message: fmt.Sprintf("Non-finite state near x=%g", x)}
		}

		// Embedded error estimate.
		errNorm := 0.0
		for i := 0; i < n; i++ {
			e := 0.0
			for j := 0; j < 7; j++ {
				e += dpE[j] * k[j][i]
			}
			sc := b.atol + b.rtol*math.Max(math.Abs(y[i]), math.Abs(y1[i]))
			r := h * e / sc
			errNorm += r * r
		}
		errNorm = math.Sqrt(errNorm / float64(n))

		if errNorm > 1 {
			h *= math.Max(0.2, 0.9*math.Pow(errNorm, -0.2))
			if h < hMin {
				return Result{XEnd: x, FEnd: append([]float64(nil), y...), Status: 0, Success: false,
					Message: fmt.Sprintf("Step size underflow at x=%g", x)}
			}
			continue
		}

		x1 := x + h
		f1 := k[6] // FSAL stage equals rhs(x1, y1)

		if xr, ev, fired := b.firstCrossing(events, gPrev, x, y, f, x1, y1, f1); fired {
			yr := hermite(x, y, f, x1, y1, f1, xr)
			fr := rhs(xr, yr)
			sol.push(xr, yr, fr)
			status, msg := ev.Info()
			if msg == "" {
				if status < 0 {
					msg = "Separated"
				} else {
					msg = "Transition"
				}
			}
			return Result{XEnd: xr, FEnd: yr, Status: status, Message: msg, Success: true}
		}

		sol.push(x1, y1, f1)
		for i, ev := range events {
			gPrev[i] = ev.Value(x1, y1)
		}
		if last {
			return Result{XEnd: x1, FEnd: append([]float64(nil), y1...), Status: 0,
				Message: "Completed", Success: true}
		}

		x = x1
		copy(y, y1)
		copy(k[0], f1)
		f = k[0]
		fac := 0.9 * math.Pow(math.Max(errNorm, 1e-10), -0.2)
		h *= math.Min(5, math.Max(0.2, fac))
		if h > span {
			h = span
		}
	}
	return Result{XEnd: x, FEnd: append([]float64(nil), y...), Status: 0, Success: false,
		Message: fmt.Sprintf("Exceeded %d steps at x=%g", maxSteps, x)}
}

// firstCrossing scans the events in declared order (built-in kill first) for
// a sign change over the accepted step and locates the earliest crossing on
// the step's dense output. When two events cross in the same step the one
// with the smaller root wins; exact ties go to declaration order.
func (b *solverBase) firstCrossing(events []TermEvent, gPrev []float64,
	x0 float64, y0, f0 []float64, x1 float64, y1, f1 []float64) (float64, TermEvent, bool) {
	xTol := 1e-12 * (1 + math.Abs(x1))
	best := math.Inf(1)
	var hit TermEvent
	for i, ev := range events {
		g1 := ev.Value(x1, y1)
		if !signChange(gPrev[i], g1) {
			continue
		}
		g := func(xq float64) float64 {
			return ev.Value(xq, hermite(x0, y0, f0, x1, y1, f1, xq))
		}
		xr := bisect(g, x0, x1, xTol)
		if xr < best-xTol {
			best = xr
			hit = ev
		}
	}
	return best, hit, hit != nil
}

// hermite evaluates the cubic Hermite interpolant of the step (x0,y0,f0) ->
// (x1,y1,f1) at xq.
func hermite(x0 float64, y0, f0 []float64, x1 float64, y1, f1 []float64, xq float64) []float64 {
	h := x1 - x0
	t := (xq - x0) / h
	t2 := t * t
	h00 := (1 + 2*t) * (1 - t) * (1 - t)
	h10 := t * (1 - t) * (1 - t)
	h01 := t2 * (3 - 2*t)
	h11 := t2 * (t - 1)
	out := make([]float64, len(y0))
	for i := range out {
		out[i] = h00*y0[i] + h10*h*f0[i] + h01*y1[i] + h11*h*f1[i]
	}
	return out
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// solution stores the accepted integration samples together with the local
// derivatives, so queries can interpolate without re-integrating.
type solution struct {
	xs []float64
	ys [][]float64
	fs [][]float64
}

func (s *solution) push(x float64, y, f []float64) {
	s.xs = append(s.xs, x)
	s.ys = append(s.ys, append([]float64(nil), y...))
	s.fs = append(s.fs, append([]float64(nil), f...))
}

func (s *solution) xRange() (float64, float64) {
	return s.xs[0], s.xs[len(s.xs)-1]
}

// at interpolates the state at x, which must lie within the solved range.
func (s *solution) at(x float64) []float64 {
	i := sort.SearchFloat64s(s.xs, x)
	if i > 0 {
		i--
	}
	if i >= len(s.xs)-1 {
		i = len(s.xs) - 2
	}
	if i < 0 {
		return append([]float64(nil), s.ys[0]...)
	}
	return hermite(s.xs[i], s.ys[i], s.fs[i], s.xs[i+1], s.ys[i+1], s.fs[i+1], x)
}

// stateAt returns the interpolated state vectors at each query position.
func (b *solverBase) stateAt(xs []float64) ([][]float64, error) {
	if b.sol == nil || len(b.sol.xs) < 2 {
		return nil, ErrNotSolved
	}
	lo, hi := b.sol.xRange()
	tol := 1e-10 * math.Max(1, math.Abs(hi))
	out := make([][]float64, len(xs))
	for i, x := range xs {
		if x < lo-tol || x > hi+tol {
			return nil, fmt.Errorf("%w: x=%g not in [%g, %g]", ErrOutsideSolution, x, lo, hi)
		}
		out[i] = b.sol.at(clamp(x, lo, hi))
	}
	return out, nil
}

// component returns a single state component at each query position.
func (b *solverBase) component(xs []float64, idx int) ([]float64, error) {
	states, err := b.stateAt(xs)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(xs))
	for i, s := range states {
		out[i] = s[idx]
	}
	return out, nil
}
