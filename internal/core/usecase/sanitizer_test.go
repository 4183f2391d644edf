package usecase_test

import (
	"strings"
	"testing"
	"time"

	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/Nzyazin/paycapture/internal/core/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	created := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	s := usecase.NewSanitizer(func() time.Time { return created })

	p, err := usecase.ValidatePayment(validRequest())
	require.NoError(t, err)

	tx := s.Sanitize(p)

	assert.True(t, strings.HasPrefix(tx.ID, "txn_"))
	assert.Equal(t, "****-****-****-1111", tx.CardNumber)
	assert.Equal(t, models.RedactedSecurityCode, tx.SecurityCode)
	assert.Equal(t, models.StatusCompleted, tx.Status)
	assert.Equal(t, created, tx.CreatedAt)
	assert.Equal(t, p.Description, tx.Description)
	assert.Equal(t, p.Name, tx.Name)
	assert.Equal(t, p.DocumentNumber, tx.DocumentNumber)
	assert.Equal(t, p.ExpiryDate, tx.ExpiryDate)
	assert.True(t, p.Amount.Equal(tx.Amount))
}

func TestSanitize_NeverKeepsCardOrCode(t *testing.T) {
	s := usecase.NewSanitizer(nil)

	req := withField(withField(validRequest(), "cardNumber", "5500 0000 0000 0004"), "securityCode", "987")
	p, err := usecase.ValidatePayment(req)
	require.NoError(t, err)

	tx := s.Sanitize(p)

	assert.NotContains(t, tx.CardNumber, "5500000000000004")
	assert.NotContains(t, tx.CardNumber, "5500")
	assert.True(t, strings.HasSuffix(tx.CardNumber, "0004"))
	assert.Equal(t, models.RedactedSecurityCode, tx.SecurityCode)
}

func TestSanitize_UniqueIDs(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := usecase.NewSanitizer(func() time.Time { return fixed })

	p, err := usecase.ValidatePayment(validRequest())
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		id := s.Sanitize(p).ID
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestSanitize_TimestampsNeverGoBackwards(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(-time.Minute), base.Add(time.Second)}
	i := 0
	s := usecase.NewSanitizer(func() time.Time {
		ts := times[i]
		i++
		return ts
	})

	p, err := usecase.ValidatePayment(validRequest())
	require.NoError(t, err)

	first := s.Sanitize(p).CreatedAt
	second := s.Sanitize(p).CreatedAt
	third := s.Sanitize(p).CreatedAt

	assert.Equal(t, base, first)
	assert.Equal(t, base, second)
	assert.Equal(t, base.Add(time.Second), third)
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "****-****-****-4242", usecase.MaskCardNumber("4242424242424242"))
	assert.Equal(t, "****-****-****-****", usecase.MaskCardNumber("12"))
}
