package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/HubertasVin/pos-1206-sub000/internal/auth"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	"github.com/HubertasVin/pos-1206-sub000/internal/service"
	"github.com/HubertasVin/pos-1206-sub000/pkg/httputil"
	"github.com/HubertasVin/pos-1206-sub000/pkg/pagination"
	"github.com/HubertasVin/pos-1206-sub000/pkg/validator"
)

// TransactionHandler handles HTTP requests for payment transaction endpoints.
type TransactionHandler struct {
	transactions *service.TransactionService
	logger       *slog.Logger
}

// NewTransactionHandler creates a new transaction HTTP handler.
func NewTransactionHandler(transactions *service.TransactionService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		logger:       logger,
	}
}

// CreateTransactionRequest is the JSON request body for recording a payment.
type CreateTransactionRequest struct {
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash payment_card gift_card"`
	Amount        decimal.Decimal `json:"amount"`
}

// UpdateTransactionStatusRequest is the JSON request body for moving a
// transaction through the settlement machine.
type UpdateTransactionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed declined refunded disputed abandoned"`
}

// CreateTransaction handles POST /api/v1/orders/{id}/transactions
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	tx, err := h.transactions.CreateTransaction(r.Context(), actor, chi.URLParam(r, "id"), service.CreateTransactionInput{
		PaymentMethod: req.PaymentMethod,
		Amount:        req.Amount,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: tx})
}

// ListTransactions handles GET /api/v1/orders/{id}/transactions
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	filter := repository.TransactionFilter{Limit: 20}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("payment_method"); v != "" {
		filter.PaymentMethod = &v
	}
	page := pagination.FromRequest(r)
	filter.Offset, filter.Limit = page.Offset, page.Limit

	txs, total, err := h.transactions.ListTransactions(r.Context(), actor, chi.URLParam(r, "id"), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(txs, total, filter.Offset, filter.Limit))
}

// GetTransaction handles GET /api/v1/transactions/{id}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	tx, err := h.transactions.GetTransaction(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: tx})
}

// UpdateTransactionStatus handles PUT /api/v1/transactions/{id}/status
func (h *TransactionHandler) UpdateTransactionStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req UpdateTransactionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	tx, err := h.transactions.UpdateTransactionStatus(r.Context(), actor, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: tx})
}
