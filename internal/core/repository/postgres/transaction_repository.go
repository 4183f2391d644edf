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
)

const transactionColumns = `id, currency, amount, description, name, document_type,
	document_number, card_number, expiry_date, security_code, created_at, status`

type postgresTransactionRepo struct {
	db  *sqlx.DB
	log logger.Logger
}

func NewPostgresTransactionRepo(db *sqlx.DB, log logger.Logger) repository.TransactionRepository {
	return &postgresTransactionRepo{
		db:  db,
		log: log,
	}
}

func (r *postgresTransactionRepo) Insert(ctx context.Context, tx *models.Transaction) error {
	const query = `INSERT INTO transactions (` + transactionColumns + `)
		VALUES (:id, :currency, :amount, :description, :name, :document_type,
			:document_number, :card_number, :expiry_date, :security_code, :created_at, :status)`

	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		r.log.Error("Error inserting transaction",
			logger.StringField("transaction_id", tx.ID),
			logger.ErrorField("error", err))
		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}

func (r *postgresTransactionRepo) List(ctx context.Context) ([]models.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at DESC, id DESC`

	transactions := []models.Transaction{}
	if err := r.db.SelectContext(ctx, &transactions, query); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	for i := range transactions {
		transactions[i].CreatedAt = transactions[i].CreatedAt.UTC()
	}

	return transactions, nil
}

func (r *postgresTransactionRepo) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	var tx models.Transaction
	err := r.db.GetContext(ctx, &tx, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", repository.ErrTransactionNotFound, id)
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	tx.CreatedAt = tx.CreatedAt.UTC()
	return &tx, nil
}
