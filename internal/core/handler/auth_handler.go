package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Nzyazin/paycapture/internal/core/logger"
	"github.com/Nzyazin/paycapture/internal/core/middleware"
	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/Nzyazin/paycapture/internal/core/usecase"
	"github.com/gorilla/mux"
)

type AuthHandler struct {
	usecase      usecase.AuthUsecase
	log          logger.Logger
	secureCookie bool
	cookieTTL    time.Duration
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool            `json:"success"`
	User    models.AuthUser `json:"user"`
}

// NewAuthHandler sets the Secure cookie flag when secureCookie is true.
func NewAuthHandler(usecase usecase.AuthUsecase, log logger.Logger, secureCookie bool, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{usecase: usecase, log: log, secureCookie: secureCookie, cookieTTL: cookieTTL}
}

func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	router.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("Failed to decode login body", logger.ErrorField("error", err))
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	session, err := h.usecase.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.Error("Login failed", logger.ErrorField("error", err))
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.SetCookie(w, h.sessionCookie(session.Token, int(h.cookieTTL.Seconds())))
	respondWithJSON(w, http.StatusOK, LoginResponse{Success: true, User: session.User})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
