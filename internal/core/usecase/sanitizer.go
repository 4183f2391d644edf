package usecase

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/google/uuid"
)

// Sanitizer turns a validated payment into the record that gets stored.
// Timestamps it hands out never go backwards, even if the clock does.
type Sanitizer struct {
	now func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewSanitizer(now func() time.Time) *Sanitizer {
	if now == nil {
		now = time.Now
	}
	return &Sanitizer{now: now}
}

func (s *Sanitizer) Sanitize(p *models.ValidatedPayment) *models.Transaction {
	createdAt := s.timestamp()

	return &models.Transaction{
		ID:             newTransactionID(createdAt),
		Currency:       p.Currency,
		Amount:         p.Amount,
		Description:    p.Description,
		Name:           p.Name,
		DocumentType:   p.DocumentType,
		DocumentNumber: p.DocumentNumber,
		CardNumber:     MaskCardNumber(p.CardNumber),
		ExpiryDate:     p.ExpiryDate,
		SecurityCode:   models.RedactedSecurityCode,
		CreatedAt:      createdAt,
		Status:         models.StatusCompleted,
	}
}

func (s *Sanitizer) timestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().UTC().Truncate(time.Microsecond)
	if t.Before(s.last) {
		t = s.last
	}
	s.last = t
	return t
}

// MaskCardNumber keeps only the last four digits of a card number.
func MaskCardNumber(digits string) string {
	if len(digits) < 4 {
		return models.MaskedCardPrefix + strings.Repeat("*", 4)
	}
	return models.MaskedCardPrefix + digits[len(digits)-4:]
}

func newTransactionID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("txn_%d_%s", t.UnixMilli(), suffix[:12])
}
