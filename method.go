package ibl

import "github.com/go-kit/kit/log"

// Method is the interface shared by every integral boundary layer method.
// Configuration setters are method specific; everything downstream of
// configuration is common.
type Method interface {
	SetVelocity(v *EdgeVelocity)
	SetLogger(l log.Logger)
	Solve(events ...TermEvent) (Result, error)

	// Queries over the solved range. Each accepts an ordered sequence of
	// streamwise positions and returns a matching sequence.
	DeltaM(xs []float64) ([]float64, error)
	DeltaD(xs []float64) ([]float64, error)
	DeltaK(xs []float64) ([]float64, error)
	ShapeD(xs []float64) ([]float64, error)
	ShapeK(xs []float64) ([]float64, error)
	TauW(xs []float64, rho float64) ([]float64, error)
	TranspirationVelocity(xs []float64) ([]float64, error)
	Nu() float64
}

var (
	_ Method = (*ThwaitesLinear)(nil)
	_ Method = (*ThwaitesNonlinear)(nil)
	_ Method = (*HeadMethod)(nil)
)
