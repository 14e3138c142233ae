package ibl

// InitialCondition exposes the boundary layer state at the start location.
type InitialCondition interface {
	// DeltaM returns the momentum thickness at the start location.
	DeltaM() float64
	// HD returns the displacement shape factor at the start location.
	HD() float64
}

// ManualCondition is an initial condition set directly from known values.
type ManualCondition struct {
	DeltaM0 float64
	HD0     float64
}

// DeltaM implements InitialCondition.
func (c ManualCondition) DeltaM() float64 { return c.DeltaM0 }

// HD implements InitialCondition.
func (c ManualCondition) HD() float64 { return c.HD0 }
