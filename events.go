package ibl

// TermEvent is a termination condition monitored during integration. Value
// returns a continuous signed scalar of the position and current state; a
// sign change between accepted steps marks the event, and the crossing is
// then located by root finding so that the solution stops exactly there
// rather than at the first step past it.
//
// Implementations must be pure in x and f: the stepper and the root finder
// evaluate them an arbitrary number of times, in no particular order.
type TermEvent interface {
	Value(x float64, f []float64) float64
	// Info returns the status code and message reported when the event
	// stops the integration. Built-in separation events use -1 and
	// "Separated"; caller supplied events should use positive codes.
	Info() (int, string)
}

// StopAtX terminates the integration once a fixed streamwise position is
// passed. It is mostly useful for forcing a transition or trip location.
type StopAtX struct {
	X       float64
	Status  int
	Message string
}

// Value implements TermEvent. It is negative upstream of X and positive past it.
func (e StopAtX) Value(x float64, _ []float64) float64 { return x - e.X }

// Info implements TermEvent.
func (e StopAtX) Info() (int, string) { return e.Status, e.Message }
