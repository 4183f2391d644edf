package usecase

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paycapture_transactions_stored_total",
		Help: "Transactions persisted, by currency.",
	}, []string{"currency"})

	transactionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paycapture_transactions_rejected_total",
		Help: "Payment requests rejected by validation, by rule.",
	}, []string{"reason"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paycapture_login_attempts_total",
		Help: "Admin login attempts, by result.",
	}, []string{"result"})
)

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrInvalidCurrency):
		return "invalid_currency"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInvalidDocumentType):
		return "invalid_document_type"
	case errors.Is(err, ErrInvalidCardNumber):
		return "invalid_card_number"
	case errors.Is(err, ErrInvalidExpiry):
		return "invalid_expiry"
	case errors.Is(err, ErrInvalidSecurityCode):
		return "invalid_security_code"
	default:
		return "unknown"
	}
}
