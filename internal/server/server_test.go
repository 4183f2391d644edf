package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Nzyazin/paycapture/internal/core/middleware"
	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/Nzyazin/paycapture/internal/core/repository"
	"github.com/Nzyazin/paycapture/internal/core/usecase"
	"github.com/Nzyazin/paycapture/internal/server"
	"github.com/Nzyazin/paycapture/pkg/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryTransactions struct {
	mu      sync.Mutex
	records []models.Transaction
}

func (m *memoryTransactions) Insert(ctx context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]models.Transaction{*tx}, m.records...)
	return nil
}

func (m *memoryTransactions) List(ctx context.Context) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Transaction(nil), m.records...), nil
}

func (m *memoryTransactions) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range m.records {
		if tx.ID == id {
			found := tx
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", repository.ErrTransactionNotFound, id)
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (m *memoryUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUsers) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return repository.ErrUserExists
	}
	m.users[user.Username] = user
	return nil
}

type probe struct{ err error }

func (p probe) Probe(ctx context.Context) error { return p.err }

type testServer struct {
	handler http.Handler
	tokens  *token.Manager
}

func newTestServer(t *testing.T, health server.HealthChecker) *testServer {
	t.Helper()
	return newTestServerWith(t, server.Options{Health: health})
}

func newTestServerWith(t *testing.T, opts server.Options) *testServer {
	t.Helper()

	tokens := token.NewManager("server-test-secret", time.Hour)
	auth := usecase.NewAuthUsecase(&memoryUsers{users: map[string]*models.User{}}, tokens, zap.NewNop())

	require.NoError(t, auth.EnsureAdmin(context.Background(), "admin", "hunter2"))

	opts.Transactions = usecase.NewTransactionUsecase(&memoryTransactions{}, nil, zap.NewNop())
	opts.Auth = auth
	opts.CookieTTL = tokens.TTL()
	opts.Location = time.UTC
	opts.AllowedOrigin = "http://localhost:3000"
	opts.Registry = prometheus.NewRegistry()

	srv := server.NewServer(opts, zap.NewNop())

	return &testServer{handler: srv.Handler(), tokens: tokens}
}

func (ts *testServer) do(method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := ts.do(http.MethodPost, "/auth/login", `{"username":"admin","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AuthCookieName {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

const payment = `{"currency":"COP","amount":"50000","description":"Curso","name":"Juan",
	"documentType":"cedula","documentNumber":"1020304050","cardNumber":"4242 4242 4242 4242",
	"expiryDate":"01/30","securityCode":"123"}`

func TestSubmitIsPublic(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/transactions", payment)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListRequiresAdmin(t *testing.T) {
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/transactions", payment).Code)

	rec := ts.do(http.MethodGet, "/transactions", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())

	rec = ts.do(http.MethodGet, "/transactions", "", &http.Cookie{Name: middleware.AuthCookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/transactions", "", ts.login(t))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "****-****-****-4242", listed[0]["cardNumber"])
	assert.Equal(t, "***", listed[0]["securityCode"])
}

func TestBearerToken(t *testing.T) {
	ts := newTestServer(t, nil)

	signed, _, err := ts.tokens.Generate("u-9", "ops", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboardRedirectsToLogin(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/admin", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

	rec = ts.do(http.MethodGet, "/admin/login", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/admin", "", ts.login(t))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Signed in as admin")
}

func TestExportRequiresAdmin(t *testing.T) {
	ts := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/admin/export", "").Code)

	rec := ts.do(http.MethodGet, "/admin/export", "", ts.login(t))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
}

func TestPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodOptions, "/transactions", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodDelete, "/transactions", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := newTestServer(t, probe{}).do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = newTestServer(t, probe{err: errors.New("connection refused")}).do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","error":"connection refused"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	rec := newTestServer(t, nil).do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecureCookies(t *testing.T) {
	tests := []struct {
		name   string
		opts   server.Options
		secure bool
	}{
		{"development", server.Options{}, false},
		{"production", server.Options{Production: true}, true},
		{"tls outside production", server.Options{SecureCookies: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cookie := newTestServerWith(t, tt.opts).login(t)
			assert.Equal(t, tt.secure, cookie.Secure)
			assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)
		})
	}
}

func TestRunTLS_MissingCertificate(t *testing.T) {
	srv := server.NewServer(server.Options{Registry: prometheus.NewRegistry()}, zap.NewNop())

	dir := t.TempDir()
	err := srv.RunTLS("127.0.0.1:0", dir+"/missing.crt", dir+"/missing.key")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, http.ErrServerClosed))
}
