package handler_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/Nzyazin/paycapture/internal/core/repository"
)

type stubTransactionRepo struct {
	mu      sync.Mutex
	records []models.Transaction
	err     error
}

func (s *stubTransactionRepo) Insert(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, *tx)
	return nil
}

func (s *stubTransactionRepo) List(ctx context.Context) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := append([]models.Transaction(nil), s.records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *stubTransactionRepo) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, tx := range s.records {
		if tx.ID == id {
			found := tx
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", repository.ErrTransactionNotFound, id)
}

type stubUserRepo struct {
	users map[string]*models.User
	err   error
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[username]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: %s", repository.ErrUserNotFound, username)
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, ok := s.users[user.Username]; ok {
		return repository.ErrUserExists
	}
	s.users[user.Username] = user
	return nil
}
