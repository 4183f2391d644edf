package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Nzyazin/paycapture/internal/core/logger"
	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/Nzyazin/paycapture/internal/core/usecase"
)

const AuthCookieName = "auth-token"

type contextKey string

const userContextKey contextKey = "user"

// Authenticator resolves a session token into the identity it carries.
type Authenticator interface {
	Authenticate(tokenString string) (*models.AuthUser, error)
}

// TokenFromRequest prefers an "Authorization: Bearer" header and falls back
// to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func UserFromContext(ctx context.Context) (*models.AuthUser, bool) {
	user, ok := ctx.Value(userContextKey).(*models.AuthUser)
	return user, ok
}

func WithUser(ctx context.Context, user *models.AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// RequireAdmin guards JSON endpoints and answers 401 on a bad session.
func RequireAdmin(auth Authenticator, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(TokenFromRequest(r))
			if err != nil {
				log.Warn("Unauthorized request",
					logger.StringField("path", r.URL.Path),
					logger.ErrorField("error", err))
				msg := "invalid or expired token"
				if errors.Is(err, usecase.ErrMissingToken) {
					msg = "unauthorized"
				}
				writeJSONError(w, http.StatusUnauthorized, msg)
				return
			}
			if user.Role != models.RoleAdmin {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdminPage guards rendered pages and redirects to loginPath.
func RequireAdminPage(auth Authenticator, log logger.Logger, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(TokenFromRequest(r))
			if err != nil || user.Role != models.RoleAdmin {
				log.Debug("Redirecting to login", logger.StringField("path", r.URL.Path))
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
