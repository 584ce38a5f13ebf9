package domain

import "errors"

// Error taxonomy for ledger operations. Conflict is the only kind the
// retrier ever re-runs an operation for; everything else propagates to the
// caller immediately.
var (
	// ErrItemNotFound means the target item does not exist. Fatal, never retried.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidInput means the request carried a quantity or field the
	// operation disallows. Rejected before any storage interaction.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientStock means an issue would drive the balance negative.
	// A business-rule rejection the caller must correct, never retried.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicateSKU means an item with the same SKU already exists.
	ErrDuplicateSKU = errors.New("duplicate sku")

	// ErrConflict means a concurrent modification was detected: a stale
	// optimistic-lock version, a lock-wait timeout, or a unique-constraint
	// race on a retried write.
	ErrConflict = errors.New("concurrent modification detected")

	// ErrStorage covers storage failures unrelated to concurrency.
	ErrStorage = errors.New("storage failure")
)

// IsRetryable reports whether err should re-enter the bounded retry loop.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
