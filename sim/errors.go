package sim

import "errors"

var (
	// ErrInvalidParameter is returned when an engine, discipline, or run
	// is configured with an out-of-range value.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEmptyQueue is returned by Discipline.Select when no job is waiting.
	ErrEmptyQueue = errors.New("queue is empty")

	// ErrInternalInconsistency reports a broken engine invariant, such as
	// a departure event naming a job that is not in flight.
	ErrInternalInconsistency = errors.New("internal inconsistency")

	// ErrIterationLimit is returned when a run processes MaxIterations
	// events without reaching its stopping condition.
	ErrIterationLimit = errors.New("iteration limit exceeded")
)
