package usecase

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/shopspring/decimal"
)

// Payment request keys, in the order they are checked.
const (
	FieldCurrency       = "currency"
	FieldAmount         = "amount"
	FieldDescription    = "description"
	FieldName           = "name"
	FieldDocumentType   = "documentType"
	FieldDocumentNumber = "documentNumber"
	FieldCardNumber     = "cardNumber"
	FieldExpiryDate     = "expiryDate"
	FieldSecurityCode   = "securityCode"
)

var RequiredFields = []string{
	FieldCurrency,
	FieldAmount,
	FieldDescription,
	FieldName,
	FieldDocumentType,
	FieldDocumentNumber,
	FieldCardNumber,
	FieldExpiryDate,
	FieldSecurityCode,
}

// Amounts must fit the NUMERIC(20,4) column: below 10^16 with at most
// four decimals.
const (
	amountScale       = 4
	maxAmountExponent = 16
	// Exponents below this are rejected before any rescaling.
	minAmountExponent = -20
)

var maxAmount = decimal.New(1, maxAmountExponent)

var errAmountOutOfRange = errors.New("amount out of range")

var (
	cardNumberRegexp   = regexp.MustCompile(`^\d{16}$`)
	expiryDateRegexp   = regexp.MustCompile(`^\d{2}/\d{2}$`)
	securityCodeRegexp = regexp.MustCompile(`^\d{3,4}$`)
)

// ValidatePayment checks req rule by rule and stops at the first failure.
func ValidatePayment(req models.PaymentRequest) (*models.ValidatedPayment, error) {
	values := make(map[string]string, len(RequiredFields))
	for _, field := range RequiredFields {
		value := strings.TrimSpace(req[field])
		if value == "" {
			return nil, &ValidationError{
				Kind:    ErrMissingField,
				Field:   field,
				Message: fmt.Sprintf("field %s is required", field),
			}
		}
		values[field] = value
	}

	currency := models.Currency(values[FieldCurrency])
	if !currency.Valid() {
		return nil, &ValidationError{
			Kind:    ErrInvalidCurrency,
			Field:   FieldCurrency,
			Message: "currency must be COP or USD",
		}
	}

	amount, err := parseAmount(values[FieldAmount])
	if err != nil {
		msg := "amount must be a positive number"
		if errors.Is(err, errAmountOutOfRange) {
			msg = "amount must be below 10000000000000000 with at most 4 decimals"
		}
		return nil, &ValidationError{
			Kind:    ErrInvalidAmount,
			Field:   FieldAmount,
			Message: msg,
		}
	}

	documentType := models.DocumentType(values[FieldDocumentType])
	if !documentType.Valid() {
		return nil, &ValidationError{
			Kind:    ErrInvalidDocumentType,
			Field:   FieldDocumentType,
			Message: "document type must be cedula or pasaporte",
		}
	}

	cardNumber := stripWhitespace(values[FieldCardNumber])
	if !cardNumberRegexp.MatchString(cardNumber) {
		return nil, &ValidationError{
			Kind:    ErrInvalidCardNumber,
			Field:   FieldCardNumber,
			Message: "card number must have 16 digits",
		}
	}

	if !expiryDateRegexp.MatchString(values[FieldExpiryDate]) {
		return nil, &ValidationError{
			Kind:    ErrInvalidExpiry,
			Field:   FieldExpiryDate,
			Message: "expiry date must have the format MM/YY",
		}
	}

	if !securityCodeRegexp.MatchString(values[FieldSecurityCode]) {
		return nil, &ValidationError{
			Kind:    ErrInvalidSecurityCode,
			Field:   FieldSecurityCode,
			Message: "security code must have 3 or 4 digits",
		}
	}

	return &models.ValidatedPayment{
		Currency:       currency,
		Amount:         amount,
		Description:    values[FieldDescription],
		Name:           values[FieldName],
		DocumentType:   documentType,
		DocumentNumber: values[FieldDocumentNumber],
		CardNumber:     cardNumber,
		ExpiryDate:     values[FieldExpiryDate],
		SecurityCode:   values[FieldSecurityCode],
	}, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not parse amount: %w", err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}

	// Comparing or rescaling a value with an extreme exponent costs time
	// proportional to the exponent, so bound it first.
	exp := amount.Exponent()
	if exp >= maxAmountExponent || exp < minAmountExponent {
		return decimal.Zero, errAmountOutOfRange
	}
	if amount.GreaterThanOrEqual(maxAmount) || !amount.Equal(amount.Truncate(amountScale)) {
		return decimal.Zero, errAmountOutOfRange
	}
	return amount, nil
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
