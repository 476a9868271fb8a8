package pos

import "fmt"

// Kind classifies a business error so the HTTP layer can pick a status code.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindBusinessRule
	KindConflict
)

// Error is a caller-legible business error.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func businessRulef(format string, args ...any) *Error {
	return &Error{Kind: KindBusinessRule, Message: fmt.Sprintf(format, args...)}
}

// BelowMinimumError rejects a discount whose minimum purchase is not met.
// The minimum is carried so the API can surface it in the error payload.
type BelowMinimumError struct {
	MinPurchase float64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("minimum purchase of %.2f required for this discount", e.MinPurchase)
}
