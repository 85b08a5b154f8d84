package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ledger core. Services wrap these with fmt.Errorf("%w")
// so callers can classify failures with errors.Is while keeping detail in the
// message. Handlers map them to HTTP statuses; the CLI prints the code.

// Authentication / authorization.
var (
	ErrAuth           = errors.New("authentication required")
	ErrForbidden      = errors.New("operation not permitted")
	ErrTenantMismatch = errors.New("resource belongs to a different tenant")
)

// Validation.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrValidation          = errors.New("validation error")
	ErrDuplicate           = errors.New("resource already exists")
	ErrInvalidAmount       = errors.New("amount is zero, negative, or not representable")
	ErrUnknownAccount      = errors.New("account not found")
	ErrUnknownCurrency     = errors.New("currency not supported")
	ErrUnknownPair         = errors.New("no exchange rate for currency pair")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrDuplicateCode       = errors.New("account code already exists in tenant")
	ErrParentMismatch      = errors.New("parent account type, tenant, or currency differs")
	ErrUnbalanced          = errors.New("entries do not balance in header currency")
	ErrInsufficientBalance = errors.New("insufficient account balance")
	ErrRateVariance        = errors.New("rate differs from stored rate beyond allowed variance")
	ErrStaleRate           = errors.New("stored rate is older than the allowed maximum age")
	ErrNotPending          = errors.New("transaction is not in pending status")
	ErrMissingAccount      = errors.New("required chart account is missing")
	ErrBaseCurrencyLocked  = errors.New("base currency cannot change once transactions exist")
)

// Transient errors. Safe to retry; the posting engine retries these internally
// before surfacing them.
var (
	ErrStorage       = errors.New("storage error")
	ErrConflict      = errors.New("concurrent modification conflict")
	ErrSerialization = errors.New("serialization failure, transaction aborted")
	ErrTimeout       = errors.New("operation deadline exceeded")
)

// IsRetryable reports whether the error indicates a transient failure that a
// caller may safely resubmit. ErrConflict is deliberately excluded: it marks
// business conflicts (a transaction already reversed, an idempotency race)
// that a retry cannot resolve.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSerialization) || errors.Is(err, ErrTimeout)
}

// AppError carries a stable machine code and a safe human message alongside the
// wrapped cause. The message never contains another tenant's identifiers.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a code and a safe message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError builds a not-found AppError wrapping ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// NewValidationError builds a validation AppError wrapping ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: 400, Message: message, Err: ErrValidation}
}
