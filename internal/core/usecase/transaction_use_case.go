package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nzyazin/paycapture/internal/core/logger"
	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/Nzyazin/paycapture/internal/core/repository"
)

type TransactionUsecase interface {
	Submit(ctx context.Context, req models.PaymentRequest) (*models.Transaction, error)
	List(ctx context.Context) ([]models.Transaction, error)
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
}

type transactionUsecase struct {
	repo      repository.TransactionRepository
	sanitizer *Sanitizer
	log       logger.Logger
}

func NewTransactionUsecase(repo repository.TransactionRepository, sanitizer *Sanitizer, log logger.Logger) TransactionUsecase {
	if sanitizer == nil {
		sanitizer = NewSanitizer(nil)
	}
	return &transactionUsecase{repo: repo, sanitizer: sanitizer, log: log}
}

func (uc *transactionUsecase) Submit(ctx context.Context, req models.PaymentRequest) (*models.Transaction, error) {
	payment, err := ValidatePayment(req)
	if err != nil {
		uc.logRejected(err)
		return nil, err
	}

	tx := uc.sanitizer.Sanitize(payment)

	if err := uc.repo.Insert(ctx, tx); err != nil {
		uc.log.Error("Transaction insert failed",
			logger.StringField("transaction_id", tx.ID),
			logger.ErrorField("error", err))
		return nil, fmt.Errorf("store transaction: %w", err)
	}

	transactionsStored.WithLabelValues(string(tx.Currency)).Inc()
	uc.log.Info("Transaction stored",
		logger.StringField("transaction_id", tx.ID),
		logger.StringField("currency", string(tx.Currency)),
		logger.StringField("amount", tx.Amount.String()))

	return tx, nil
}

func (uc *transactionUsecase) List(ctx context.Context) ([]models.Transaction, error) {
	transactions, err := uc.repo.List(ctx)
	if err != nil {
		uc.log.Error("Transaction listing failed", logger.ErrorField("error", err))
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

func (uc *transactionUsecase) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	tx, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		uc.log.Error("Transaction lookup failed",
			logger.StringField("transaction_id", id),
			logger.ErrorField("error", err))
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (uc *transactionUsecase) logRejected(err error) {
	reason := rejectionReason(err)
	transactionsRejected.WithLabelValues(reason).Inc()

	fields := []logger.Field{logger.StringField("reason", reason)}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		fields = append(fields, logger.StringField("field", vErr.Field))
	}
	uc.log.Warn("Payment request rejected", fields...)
}
