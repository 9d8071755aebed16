// Package apperr defines the application error kinds shared by all layers.
// Storage implementations map driver errors onto these sentinels so that
// callers can branch with errors.Is without knowing the backing store.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a referenced customer or account is absent.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName is returned on a customer name collision.
	ErrDuplicateName = errors.New("customer name already taken")
	// ErrInvalidAmount is returned for a negative amount, a zero amount where a
	// positive one is required, or an amount that cannot be represented at scale 2.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrCurrencyMismatch is returned when two amounts or accounts carry
	// different currency codes.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrInsufficientFunds is returned when the sender balance is below the
	// requested transfer amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSameAccount is returned when sender and recipient are the same account.
	ErrSameAccount = errors.New("sender and recipient accounts are identical")
	// ErrConflict is returned on backing-store contention (serialization
	// failure, deadlock, timeout). The failed operation had no effect and may
	// be retried verbatim.
	ErrConflict = errors.New("storage conflict")
	// ErrInvalidInput is returned for malformed input the validation layer let through.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal hides storage error detail from external callers.
	ErrInternal = errors.New("internal error")
)

// Retryable reports whether the caller may safely re-issue the exact same
// operation. Only ErrConflict qualifies: the atomic unit rolled back, so no
// side effect was observed.
func Retryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
