package ledger

import "errors"

// Every engine operation returns one of these kinds, wrapped with context via
// fmt.Errorf("%w: ...") and matched by callers with errors.Is. ErrPersistence
// means the atomic unit rolled back and the call may be retried; all other
// kinds are terminal for that call.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrPermission        = errors.New("permission denied")
	ErrStateConflict     = errors.New("state conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPersistence       = errors.New("persistence failure")
)
