package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Nzyazin/paycapture/internal/core/handler"
	"github.com/Nzyazin/paycapture/internal/core/logger"
	middlWre "github.com/Nzyazin/paycapture/internal/core/middleware"
	"github.com/Nzyazin/paycapture/internal/core/usecase"
	"github.com/gorilla/mux"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
)

const loginPath = "/admin/login"

// HealthChecker is the backing store probe used by /healthz.
type HealthChecker interface {
	Probe(ctx context.Context) error
}

type Closer interface {
	Close() error
}

type Options struct {
	Transactions  usecase.TransactionUsecase
	Auth          usecase.AuthUsecase
	Health        HealthChecker
	DB            Closer
	Production    bool
	// SecureCookies forces the Secure cookie flag outside production.
	SecureCookies bool
	CookieTTL     time.Duration
	Location      *time.Location
	AllowedOrigin string
	// Registry receives the HTTP metrics. Nil means the default registerer.
	Registry      promclient.Registerer
}

type Server struct {
	router     *mux.Router
	handler    http.Handler
	log        logger.Logger
	httpServer *http.Server
	health     HealthChecker
	db         Closer
}

func NewServer(opts Options, log logger.Logger) *Server {
	server := &Server{
		log:    log,
		router: mux.NewRouter(),
		health: opts.Health,
		db:     opts.DB,
	}

	server.router.Use(loggingMiddleware(server.log))

	registry := opts.Registry
	if registry == nil {
		registry = promclient.DefaultRegisterer
	}

	mw := middleware.New(middleware.Config{
		Recorder: prometheus.NewRecorder(prometheus.Config{Registry: registry}),
	})

	server.router.Use(func(next http.Handler) http.Handler {
		return std.Handler("", mw, next)
	})

	server.RegisterRoutes(opts)

	// OPTIONS preflight is answered before route matching.
	server.handler = middlWre.CORS(opts.AllowedOrigin)(server.router)

	return server
}

func (s *Server) RegisterRoutes(opts Options) {
	s.router.Use(
		middlWre.WithErrorHandler(s.log),
		middlWre.Recovery(s.log, !opts.Production),
	)

	transactionHandler := handler.NewTransactionHandler(opts.Transactions, s.log)
	authHandler := handler.NewAuthHandler(opts.Auth, s.log, opts.Production || opts.SecureCookies, opts.CookieTTL)
	adminHandler := handler.NewAdminHandler(opts.Transactions, s.log, opts.Location)

	s.router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	authHandler.RegisterRoutes(s.router)

	pages := s.router.NewRoute().Subrouter()
	pages.Use(middlWre.RequireAdminPage(opts.Auth, s.log, loginPath))

	api := s.router.NewRoute().Subrouter()
	api.Use(middlWre.RequireAdmin(opts.Auth, s.log))

	transactionHandler.RegisterRoutes(s.router, api)
	adminHandler.RegisterRoutes(s.router, pages, api)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       9 * time.Second,
		WriteTimeout:      12 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 60 * time.Second,
	}

	s.httpServer = srv

	return srv.ListenAndServe()
}

func (s *Server) RunTLS(addr, certFile, keyFile string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       9 * time.Second,
		WriteTimeout:      9 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 6 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
	}

	s.httpServer = srv
	return srv.ListenAndServeTLS(certFile, keyFile)
}

func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	var shutdownErr error

	go func() {
		if s.httpServer != nil {
			err := s.httpServer.Shutdown(ctx)
			if err != nil {
				s.log.Error("failed to shutdown HTTP server", logger.ErrorField("error", err))
				shutdownErr = fmt.Errorf("HTTP server shutdown error: %w", err)
			}
		}

		if s.db != nil {
			err := s.db.Close()
			if err != nil {
				s.log.Error("failed to close database connection", logger.ErrorField("error", err))
				shutdownErr = fmt.Errorf("database shutdown error: %w", err)
			}
		}

		close(done)
	}()

	select {
	case <-done:
		return shutdownErr
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	payload := map[string]string{"status": "ok"}

	if s.health != nil {
		if err := s.health.Probe(ctx); err != nil {
			s.log.Error("health probe failed", logger.ErrorField("error", err))
			status = http.StatusServiceUnavailable
			payload["status"] = "degraded"
			payload["error"] = err.Error()
		}
	}

	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func loggingMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Info("HTTP request",
				logger.StringField("method", r.Method),
				logger.StringField("path", r.URL.Path),
				logger.StringField("remote_addr", r.RemoteAddr),
				logger.StringField("user_agent", r.UserAgent()),
			)
			next.ServeHTTP(w, r)
		})
	}
}
