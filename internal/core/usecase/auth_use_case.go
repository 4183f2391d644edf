package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Nzyazin/paycapture/internal/core/logger"
	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/Nzyazin/paycapture/internal/core/repository"
	"github.com/Nzyazin/paycapture/pkg/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// dummyPasswordHash is compared against when the username does not exist.
var dummyPasswordHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("paycapture-unknown-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy password hash: %v", err))
	}
	return hash
})

type Session struct {
	User      models.AuthUser
	Token     string
	ExpiresAt time.Time
}

type AuthUsecase interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	Authenticate(tokenString string) (*models.AuthUser, error)
	EnsureAdmin(ctx context.Context, username, password string) error
}

type authUsecase struct {
	users  repository.UserRepository
	tokens *token.Manager
	log    logger.Logger
}

func NewAuthUsecase(users repository.UserRepository, tokens *token.Manager, log logger.Logger) AuthUsecase {
	return &authUsecase{users: users, tokens: tokens, log: log}
}

func (uc *authUsecase) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)

	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Unknown usernames pay the same bcrypt cost as wrong passwords.
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash(), []byte(password))
			loginAttempts.WithLabelValues("invalid").Inc()
			uc.log.Warn("Login with unknown username", logger.StringField("username", username))
			return nil, ErrInvalidCredentials
		}
		loginAttempts.WithLabelValues("error").Inc()
		uc.log.Error("User lookup failed", logger.ErrorField("error", err))
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		loginAttempts.WithLabelValues("invalid").Inc()
		uc.log.Warn("Login with wrong password", logger.StringField("username", username))
		return nil, ErrInvalidCredentials
	}

	signed, expiresAt, err := uc.tokens.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		loginAttempts.WithLabelValues("error").Inc()
		return nil, err
	}

	loginAttempts.WithLabelValues("success").Inc()
	uc.log.Info("Admin logged in", logger.StringField("user_id", user.ID))

	return &Session{
		User: models.AuthUser{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

func (uc *authUsecase) Authenticate(tokenString string) (*models.AuthUser, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	claims, err := uc.tokens.Verify(tokenString)
	if err != nil {
		uc.log.Debug("Token rejected", logger.ErrorField("error", err))
		return nil, ErrInvalidToken
	}

	return &models.AuthUser{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// EnsureAdmin creates the admin user unless one with that username exists.
func (uc *authUsecase) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("admin username and password are required")
	}

	_, err := uc.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("get user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = uc.users.Create(ctx, &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil && !errors.Is(err, repository.ErrUserExists) {
		return fmt.Errorf("create admin: %w", err)
	}

	uc.log.Info("Admin user ensured", logger.StringField("username", username))
	return nil
}
