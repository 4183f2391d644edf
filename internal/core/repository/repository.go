package repository

import (
	"context"
	"errors"

	"github.com/Nzyazin/paycapture/internal/core/models"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
)

// TransactionRepository is append-only: records are inserted and read,
// never updated or removed.
type TransactionRepository interface {
	Insert(ctx context.Context, tx *models.Transaction) error
	// List returns every transaction, most recent first.
	List(ctx context.Context) ([]models.Transaction, error)
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
}

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}
