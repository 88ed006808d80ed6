/*
errors.go - Centralized error types for the ledger

PURPOSE:
  All error kinds in one place. Callers classify failures with errors.Is /
  errors.As and the helpers below; the API layer maps them onto HTTP status
  codes without inspecting error strings.

ERROR CATEGORIES:
  1. Validation errors  - malformed input, never retried
  2. Not-found errors   - referenced record absent or soft-deleted
  3. NoRateForDate      - valid but unresolvable: the timeline has no rate
                          covering the requested date
  4. Integrity errors   - an internal invariant is broken (e.g. two
                          open-ended rates); surfaced as a server fault,
                          never swallowed

SEE ALSO:
  - rates.go, entries.go: producers of these errors
  - api/handlers.go: HTTP status mapping
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrNoRateForDate is returned when no pay rate covers a date. This is a
	// client-correctable state, not a server fault: create a rate first.
	ErrNoRateForDate = errors.New("no pay rate covers date")

	// ErrProjectNotFound is returned when a referenced project does not
	// exist or is soft-deleted.
	ErrProjectNotFound = errors.New("project not found")

	ErrRateNotFound       = errors.New("pay rate not found")
	ErrEntryNotFound      = errors.New("time entry not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrIncidentalNotFound = errors.New("incidental not found")

	// ErrIntegrity marks a broken storage invariant, such as more than one
	// open-ended pay rate. Callers should surface it as a server error.
	ErrIntegrity = errors.New("ledger integrity violation")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NoRateForDateError identifies the date the timeline could not cover.
type NoRateForDateError struct {
	Date Date
}

func (e *NoRateForDateError) Error() string {
	return fmt.Sprintf("no pay rate covers %s", e.Date)
}

func (e *NoRateForDateError) Unwrap() error { return ErrNoRateForDate }

// ProjectNotFoundError identifies the missing or soft-deleted project.
type ProjectNotFoundError struct {
	ProjectID int64
}

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("project %d not found", e.ProjectID)
}

func (e *ProjectNotFoundError) Unwrap() error { return ErrProjectNotFound }

// IntegrityError describes which invariant broke. It is logged for operator
// attention and mapped to a server error, never silently recovered.
type IntegrityError struct {
	Detail string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation: %s", e.Detail)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is correctable by the caller.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNoRateForDate) ||
		IsNotFound(err)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrRateNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrIncidentalNotFound)
}
