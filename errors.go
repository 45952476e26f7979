package snowpager

import "errors"

var (
	// ErrClockRegression means the clock moved behind the last issued
	// timestamp and did not catch up within the generator's wait bound.
	ErrClockRegression = errors.New("clock moved backwards")
	// ErrGenerationStalled means the sequence of the current millisecond is
	// exhausted and the clock did not advance within the wait bound. Retryable.
	ErrGenerationStalled = errors.New("id generation stalled")
	// ErrStorageUnavailable wraps every error returned by a Store.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInvariantViolation is the panic value (wrapped) raised when a store
	// returns data that breaks the ordering contract.
	ErrInvariantViolation = errors.New("ordering invariant violated")
	// ErrDuplicateID is returned by store writes when the partition already
	// holds an item with the same ID.
	ErrDuplicateID = errors.New("duplicate id")
)
