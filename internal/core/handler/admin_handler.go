package handler

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/Nzyazin/paycapture/internal/core/export"
	"github.com/Nzyazin/paycapture/internal/core/logger"
	"github.com/Nzyazin/paycapture/internal/core/middleware"
	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/Nzyazin/paycapture/internal/core/usecase"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFiles embed.FS

type AdminHandler struct {
	usecase   usecase.TransactionUsecase
	log       logger.Logger
	location  *time.Location
	templates *template.Template
	now       func() time.Time
}

type dashboardView struct {
	User         *models.AuthUser
	Stats        usecase.Stats
	Transactions []models.Transaction
	Filter       usecase.TransactionFilter
	Currencies   []models.Currency
}

func NewAdminHandler(usecase usecase.TransactionUsecase, log logger.Logger, location *time.Location) *AdminHandler {
	if location == nil {
		location = time.UTC
	}
	h := &AdminHandler{usecase: usecase, log: log, location: location, now: time.Now}
	h.templates = template.Must(template.New("admin").Funcs(template.FuncMap{
		"amount": func(d decimal.Decimal) string { return d.StringFixed(2) },
		"date":   func(t time.Time) string { return t.In(h.location).Format(export.DateLayout) },
		"status": export.StatusLabel,
	}).ParseFS(templateFiles, "templates/*.html"))
	return h
}

// RegisterRoutes mounts the login page on public, the dashboard on pages
// and the data endpoints on api.
func (h *AdminHandler) RegisterRoutes(public, pages, api *mux.Router) {
	public.HandleFunc("/admin/login", h.LoginPage).Methods(http.MethodGet)
	pages.HandleFunc("/admin", h.Dashboard).Methods(http.MethodGet)
	api.HandleFunc("/admin/stats", h.Stats).Methods(http.MethodGet)
	api.HandleFunc("/admin/export", h.Export).Methods(http.MethodGet)
}

func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", nil)
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	all, err := h.usecase.List(r.Context())
	if err != nil {
		h.log.Error("Failed to load dashboard", logger.ErrorField("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	user, _ := middleware.UserFromContext(r.Context())
	filter := filterFromRequest(r)

	h.render(w, "dashboard.html", dashboardView{
		User:         user,
		Stats:        usecase.Summarize(all),
		Transactions: usecase.Filter(all, filter),
		Filter:       filter,
		Currencies:   models.SupportedCurrencies,
	})
}

// Stats reports totals over every stored transaction, like the dashboard
// header. Filters only narrow listings and exports.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	all, err := h.usecase.List(r.Context())
	if err != nil {
		h.log.Error("Failed to compute stats", logger.ErrorField("error", err))
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, usecase.Summarize(all))
}

func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	all, err := h.usecase.List(r.Context())
	if err != nil {
		h.log.Error("Failed to export transactions", logger.ErrorField("error", err))
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	filtered := usecase.Filter(all, filterFromRequest(r))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(h.now())+`"`)
	w.WriteHeader(http.StatusOK)

	if err := export.WriteTransactionsCSV(w, filtered, h.location); err != nil {
		h.log.Error("Failed to write export", logger.ErrorField("error", err))
		return
	}

	h.log.Info("Transactions exported", logger.IntField("rows", len(filtered)))
}

func (h *AdminHandler) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error("Failed to render template",
			logger.StringField("template", name),
			logger.ErrorField("error", err))
	}
}

func filterFromRequest(r *http.Request) usecase.TransactionFilter {
	q := r.URL.Query()
	return usecase.TransactionFilter{
		Search:   q.Get("q"),
		Currency: q.Get("currency"),
	}
}
