package kinetics

import (
	"errors"
	"fmt"
)

// Domain errors for integration and simulation.
var (
	// ErrDiverged indicates the ODE solver failed to converge.
	ErrDiverged = errors.New("kinetics: solver diverged")

	// ErrNegative indicates negative population values in the solution.
	ErrNegative = errors.New("kinetics: negative values in solution")

	// ErrEmptySchedule indicates a Simulate call with no intervals.
	ErrEmptySchedule = errors.New("kinetics: empty treatment schedule")

	// ErrUnknownVariant indicates an unregistered model variant name.
	ErrUnknownVariant = errors.New("kinetics: unknown model variant")
)

// IntegrationError wraps a domain error with the interval it occurred in.
type IntegrationError struct {
	Start   float64
	End     float64
	Message string
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("interval [%g, %g): %s", e.Start, e.End, e.Message)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
