package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Nzyazin/paycapture/internal/core/logger"
	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/Nzyazin/paycapture/internal/core/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

type postgresUserRepo struct {
	db  *sqlx.DB
	log logger.Logger
}

func NewPostgresUserRepo(db *sqlx.DB, log logger.Logger) repository.UserRepository {
	return &postgresUserRepo{
		db:  db,
		log: log,
	}
}

func (r *postgresUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", repository.ErrUserNotFound, username)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *postgresUserRepo) Create(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (id, username, password_hash, role, created_at)
		VALUES (:id, :username, :password_hash, :role, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", repository.ErrUserExists, user.Username)
		}
		r.log.Error("Error creating user",
			logger.StringField("username", user.Username),
			logger.ErrorField("error", err))
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}
