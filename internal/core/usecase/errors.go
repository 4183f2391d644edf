package usecase

import (
	"errors"

	"github.com/Nzyazin/paycapture/internal/core/repository"
)

// Validation failures. Each ValidationError unwraps to exactly one of these.
var (
	ErrMissingField        = errors.New("missing required field")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrInvalidCardNumber   = errors.New("invalid card number")
	ErrInvalidExpiry       = errors.New("invalid expiry date")
	ErrInvalidSecurityCode = errors.New("invalid security code")
)

// Authentication failures.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

var ErrTransactionNotFound = repository.ErrTransactionNotFound

// ValidationError names the rule a payment request broke.
type ValidationError struct {
	Kind    error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}
