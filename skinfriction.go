package ibl

import "math"

// SkinFriction computes the skin friction coefficient from the momentum
// thickness Reynolds number and the displacement shape factor. Head's method
// consumes one of these; LudwiegTillman is the default.
type SkinFriction func(reDeltaM, hD float64) float64

// LudwiegTillman is the Ludwieg-Tillman skin friction correlation for
// turbulent boundary layers.
func LudwiegTillman(reDeltaM, hD float64) float64 {
	return 0.246 * math.Pow(10, -0.678*hD) * math.Pow(reDeltaM, -0.268)
}
