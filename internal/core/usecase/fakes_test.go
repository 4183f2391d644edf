package usecase_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/Nzyazin/paycapture/internal/core/repository"
	"github.com/stretchr/testify/mock"
)

type fakeTransactionRepo struct {
	mu        sync.Mutex
	records   []models.Transaction
	insertErr error
	listErr   error
}

func (f *fakeTransactionRepo) Insert(ctx context.Context, tx *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.records = append(f.records, *tx)
	return nil
}

func (f *fakeTransactionRepo) List(ctx context.Context) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := append([]models.Transaction(nil), f.records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeTransactionRepo) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.records {
		if tx.ID == id {
			found := tx
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", repository.ErrTransactionNotFound, id)
}

func (f *fakeTransactionRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// steppingClock advances by step on every call.
type steppingClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

func newSteppingClock(start time.Time, step time.Duration) *steppingClock {
	return &steppingClock{next: start, step: step}
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}

func validRequest() models.PaymentRequest {
	return models.PaymentRequest{
		"currency":       "COP",
		"amount":         "12.50",
		"description":    "  Monthly plan  ",
		"name":           " Ana María ",
		"documentType":   "cedula",
		"documentNumber": " 1020304050 ",
		"cardNumber":     "4111 1111 1111 1111",
		"expiryDate":     "12/28",
		"securityCode":   "123",
	}
}

func withField(req models.PaymentRequest, key, value string) models.PaymentRequest {
	out := make(models.PaymentRequest, len(req))
	for k, v := range req {
		out[k] = v
	}
	out[key] = value
	return out
}

func withoutField(req models.PaymentRequest, key string) models.PaymentRequest {
	out := withField(req, key, "")
	delete(out, key)
	return out
}
