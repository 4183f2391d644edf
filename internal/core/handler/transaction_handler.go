package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Nzyazin/paycapture/internal/core/logger"
	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/Nzyazin/paycapture/internal/core/usecase"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

type TransactionHandler struct {
	usecase usecase.TransactionUsecase
	log     logger.Logger
}

type SubmitResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// TransactionResponse is the API shape of a stored transaction. Amount is
// written as a JSON number.
type TransactionResponse struct {
	ID             string                   `json:"id"`
	Currency       models.Currency          `json:"currency"`
	Amount         json.Number              `json:"amount"`
	Description    string                   `json:"description"`
	Name           string                   `json:"name"`
	DocumentType   models.DocumentType      `json:"documentType"`
	DocumentNumber string                   `json:"documentNumber"`
	CardNumber     string                   `json:"cardNumber"`
	ExpiryDate     string                   `json:"expiryDate"`
	SecurityCode   string                   `json:"securityCode"`
	CreatedAt      time.Time                `json:"createdAt"`
	Status         models.TransactionStatus `json:"status"`
}

func NewTransactionHandler(usecase usecase.TransactionUsecase, log logger.Logger) *TransactionHandler {
	return &TransactionHandler{usecase: usecase, log: log}
}

func (h *TransactionHandler) RegisterRoutes(public, admin *mux.Router) {
	public.HandleFunc("/transactions", h.Submit).Methods(http.MethodPost)
	admin.HandleFunc("/transactions", h.List).Methods(http.MethodGet)
	admin.HandleFunc("/transactions/{id}", h.Get).Methods(http.MethodGet)
}

func (h *TransactionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodePaymentRequest(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.usecase.Submit(r.Context(), req)
	if err != nil {
		var vErr *usecase.ValidationError
		if errors.As(err, &vErr) {
			respondWithError(w, http.StatusBadRequest, vErr.Message)
			return
		}
		h.log.Error("Failed to submit transaction", logger.ErrorField("error", err))
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, SubmitResponse{
		Success: true,
		ID:      tx.ID,
		Message: "Transaction processed successfully",
	})
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.usecase.List(r.Context())
	if err != nil {
		h.log.Error("Failed to list transactions", logger.ErrorField("error", err))
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, toTransactionResponses(transactions))
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	tx, err := h.usecase.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrTransactionNotFound) {
			respondWithError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.log.Error("Failed to get transaction",
			logger.StringField("transaction_id", id),
			logger.ErrorField("error", err))
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, toTransactionResponse(*tx))
}

// decodePaymentRequest accepts any JSON object and turns every value into
// text, so numbers typed by the form are checked like strings.
func (h *TransactionHandler) decodePaymentRequest(w http.ResponseWriter, r *http.Request) (models.PaymentRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var body map[string]interface{}
	if err := decoder.Decode(&body); err != nil {
		h.log.Warn("Failed to decode request body", logger.ErrorField("error", err))
		return nil, fmt.Errorf("invalid request payload")
	}

	req := make(models.PaymentRequest, len(body))
	for key, value := range body {
		req[key] = stringValue(value)
	}
	return req, nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

func toTransactionResponse(tx models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             tx.ID,
		Currency:       tx.Currency,
		Amount:         json.Number(tx.Amount.String()),
		Description:    tx.Description,
		Name:           tx.Name,
		DocumentType:   tx.DocumentType,
		DocumentNumber: tx.DocumentNumber,
		CardNumber:     tx.CardNumber,
		ExpiryDate:     tx.ExpiryDate,
		SecurityCode:   tx.SecurityCode,
		CreatedAt:      tx.CreatedAt,
		Status:         tx.Status,
	}
}

func toTransactionResponses(transactions []models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}
