package ledger

import "errors"

// Mutation errors are precise and recoverable by the caller correcting input.
// ErrStoreUnavailable is fatal to the current request and never retried here.
var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrNotFound         = errors.New("transaction not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)
