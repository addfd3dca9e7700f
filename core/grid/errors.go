package grid

import "errors"

// Validation failures reported by the scheduler entry points. Capacity
// exhaustion is not among them: shedding is a designed outcome, not an
// error.
var (
	// ErrInvalidAmount indicates a non-positive power amount.
	ErrInvalidAmount = errors.New("grid: requested power must be positive")
	// ErrInvalidClass indicates an unrecognised priority class.
	ErrInvalidClass = errors.New("grid: unknown priority class")
	// ErrUnknownSubstation indicates a reference to a substation that
	// does not exist.
	ErrUnknownSubstation = errors.New("grid: unknown substation")
	// ErrDuplicateSubstation indicates a substation ID collision.
	ErrDuplicateSubstation = errors.New("grid: substation already exists")
	// ErrInvalidCapacity indicates a non-positive substation capacity.
	ErrInvalidCapacity = errors.New("grid: substation capacity must be positive")
)
