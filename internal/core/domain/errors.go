package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRunInProgress indicates a stats run is already executing.
	ErrRunInProgress = errors.New("run in progress")

	// Synchronisation Errors.

	// ErrStructural indicates a matched section lacks the table terminator.
	// The run must abort rather than guess an insertion point.
	ErrStructural = errors.New("malformed document")

	// ErrMetricUnavailable indicates a data source's snapshot could not be obtained.
	// The section is skipped for this run.
	ErrMetricUnavailable = errors.New("metrics unavailable")

	// ErrStoreUnavailable indicates the page could not be fetched or committed.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrUnknownSource indicates an identifier outside the configured family.
	ErrUnknownSource = errors.New("unknown data source")

	// Authentication Errors.

	// ErrAuthRequired indicates an edit was attempted without credentials.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the credentials were rejected.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// StructuralError reports a matched section that cannot receive a row.
type StructuralError struct {
	Section string
	Offset  int
	Reason  string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: section %q at offset %d: %s", ErrStructural, e.Section, e.Offset, e.Reason)
}

// Unwrap lets errors.Is match ErrStructural.
func (e *StructuralError) Unwrap() error {
	return ErrStructural
}
