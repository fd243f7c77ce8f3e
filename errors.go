package tradebook

import (
	"errors"
	"fmt"
)

// The engine's failure taxonomy. Every error returned by a mutating operation
// wraps exactly one of these sentinels, so callers dispatch with errors.Is.
var (
	// ErrValidation marks a structurally malformed entry, rejected before it
	// is ever attached to an account.
	ErrValidation = errors.New("invalid entry")

	// ErrRejected marks an apply-time invariant failure (cash or allocation
	// shortfall). The ledger is left exactly as it was; the caller may retry
	// with different values.
	ErrRejected = errors.New("entry rejected")

	// ErrNotFound marks a lookup of an unknown account, portfolio or entry id.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientLots marks a sell whose quantity exceeds the open
	// quantity of the targeted position.
	ErrInsufficientLots = errors.New("insufficient lots")

	// ErrInternalInconsistency marks a failed rollback: the ledger was already
	// corrupt before the attempted mutation. It is a programming-invariant
	// violation, never a user error, and must surface to the top unmodified.
	ErrInternalInconsistency = errors.New("internal ledger inconsistency")
)

// taggedf attaches a formatted reason to one of the sentinels above.
func taggedf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

func validationf(format string, args ...any) error {
	return taggedf(ErrValidation, format, args...)
}

func rejectedf(format string, args ...any) error {
	return taggedf(ErrRejected, format, args...)
}

func notFoundf(format string, args ...any) error {
	return taggedf(ErrNotFound, format, args...)
}

// internalf escalates to the fatal taxonomy. The message keeps both the
// failure that triggered the rollback and the rollback's own failure.
func internalf(format string, args ...any) error {
	return taggedf(ErrInternalInconsistency, format, args...)
}
