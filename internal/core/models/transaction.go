package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType identifies the payer's identity document.
type DocumentType string

const (
	DocumentCedula    DocumentType = "cedula"
	DocumentPasaporte DocumentType = "pasaporte"
)

func (d DocumentType) Valid() bool {
	return d == DocumentCedula || d == DocumentPasaporte
}

type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
)

// RedactedSecurityCode replaces every security code before storage.
const RedactedSecurityCode = "***"

// MaskedCardPrefix precedes the last four card digits in storage.
const MaskedCardPrefix = "****-****-****-"

// Transaction is the persisted record. CardNumber is always masked and
// SecurityCode is always RedactedSecurityCode.
type Transaction struct {
	ID             string            `json:"id" db:"id"`
	Currency       Currency          `json:"currency" db:"currency"`
	Amount         decimal.Decimal   `json:"amount" db:"amount"`
	Description    string            `json:"description" db:"description"`
	Name           string            `json:"name" db:"name"`
	DocumentType   DocumentType      `json:"documentType" db:"document_type"`
	DocumentNumber string            `json:"documentNumber" db:"document_number"`
	CardNumber     string            `json:"cardNumber" db:"card_number"`
	ExpiryDate     string            `json:"expiryDate" db:"expiry_date"`
	SecurityCode   string            `json:"securityCode" db:"security_code"`
	CreatedAt      time.Time         `json:"createdAt" db:"created_at"`
	Status         TransactionStatus `json:"status" db:"status"`
}

// PaymentRequest is the raw form payload. Every value arrives as text.
type PaymentRequest map[string]string

// ValidatedPayment is a PaymentRequest that passed validation. Nothing is
// masked yet.
type ValidatedPayment struct {
	Currency       Currency
	Amount         decimal.Decimal
	Description    string
	Name           string
	DocumentType   DocumentType
	DocumentNumber string
	CardNumber     string
	ExpiryDate     string
	SecurityCode   string
}
