package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/Nzyazin/paycapture/internal/core/logger"
	"github.com/Nzyazin/paycapture/internal/core/repository/postgres"
	"github.com/Nzyazin/paycapture/internal/core/usecase"
	"github.com/Nzyazin/paycapture/internal/server"
	"github.com/Nzyazin/paycapture/pkg/config"
	"github.com/Nzyazin/paycapture/pkg/postgresdb"
	"github.com/Nzyazin/paycapture/pkg/token"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load("config.env")
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	log, cleanup, err := logger.NewLogger(logger.Config{Dir: cfg.Log.Dir, Level: cfg.Log.Level})
	if err != nil {
		os.Stderr.WriteString("failed to create logger: " + err.Error() + "\n")
		return 1
	}
	defer cleanup()

	if cfg.Auth.SecretDefaulted {
		log.Warn("JWT_SECRET is not set, using the development secret", logger.StringField("env", cfg.Env))
	}

	location, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		log.Error("Invalid report time zone", logger.StringField("timezone", cfg.ReportTimezone), logger.ErrorField("error", err))
		return 1
	}

	db, err := postgresdb.NewPostgresDB(cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", logger.ErrorField("error", err))
		return 1
	}

	if err := postgresdb.Migrate(db.DB, log); err != nil {
		log.Error("Failed to migrate database", logger.ErrorField("error", err))
		db.Close()
		return 1
	}

	transactionRepo := postgres.NewPostgresTransactionRepo(db.DB, log)
	userRepo := postgres.NewPostgresUserRepo(db.DB, log)

	transactionUsecase := usecase.NewTransactionUsecase(transactionRepo, usecase.NewSanitizer(time.Now), log)
	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authUsecase := usecase.NewAuthUsecase(userRepo, tokens, log)

	if cfg.Auth.AdminUsername != "" && cfg.Auth.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := authUsecase.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		cancel()
		if err != nil {
			log.Error("Failed to seed admin user", logger.ErrorField("error", err))
			db.Close()
			return 1
		}
	}

	srv := server.NewServer(server.Options{
		Transactions:  transactionUsecase,
		Auth:          authUsecase,
		Health:        db,
		DB:            db,
		Production:    cfg.IsProduction(),
		SecureCookies: cfg.HTTP.TLSEnabled(),
		CookieTTL:     tokens.TTL(),
		Location:      location,
		AllowedOrigin: cfg.HTTP.AllowedOrigin,
	}, log)

	serverErr := make(chan error, 1)
	go func() {
		if cfg.HTTP.TLSEnabled() {
			log.Info("Starting TLS server", logger.StringField("addr", cfg.HTTP.Addr))
			serverErr <- srv.RunTLS(cfg.HTTP.Addr, cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile)
			return
		}
		log.Info("Starting server", logger.StringField("addr", cfg.HTTP.Addr))
		serverErr <- srv.Run(cfg.HTTP.Addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", logger.ErrorField("error", err))
			db.Close()
			return 1
		}
	}
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", logger.ErrorField("error", err))
		return 1
	}

	log.Info("Server exited properly")
	return 0
}
