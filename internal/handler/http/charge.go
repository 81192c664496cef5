package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/HubertasVin/pos-1206-sub000/internal/auth"
	"github.com/HubertasVin/pos-1206-sub000/internal/service"
	"github.com/HubertasVin/pos-1206-sub000/pkg/httputil"
	"github.com/HubertasVin/pos-1206-sub000/pkg/pagination"
	"github.com/HubertasVin/pos-1206-sub000/pkg/validator"
)

// ChargeHandler handles HTTP requests for charge definition and attachment
// endpoints.
type ChargeHandler struct {
	charges *service.ChargeService
	logger  *slog.Logger
}

// NewChargeHandler creates a new charge HTTP handler.
func NewChargeHandler(charges *service.ChargeService, logger *slog.Logger) *ChargeHandler {
	return &ChargeHandler{
		charges: charges,
		logger:  logger,
	}
}

// CreateChargeRequest is the JSON request body for creating a charge.
// Exactly one of percent or amount must be set.
type CreateChargeRequest struct {
	Name       string           `json:"name" validate:"required,min=1,max=255"`
	Type       string           `json:"type" validate:"required,oneof=tax service_charge tip discount"`
	Scope      string           `json:"scope" validate:"required,oneof=order item"`
	Percent    *decimal.Decimal `json:"percent"`
	Amount     *decimal.Decimal `json:"amount"`
	ValidFrom  *string          `json:"valid_from"`
	ValidUntil *string          `json:"valid_until"`
}

// CreateCharge handles POST /api/v1/charges
func (h *ChargeHandler) CreateCharge(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateChargeRequest
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

	input := service.CreateChargeInput{
		Name:    req.Name,
		Type:    req.Type,
		Scope:   req.Scope,
		Percent: req.Percent,
		Amount:  req.Amount,
	}

	if req.ValidFrom != nil {
		ts, err := time.Parse(time.RFC3339, *req.ValidFrom)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "valid_from must be in RFC3339 format"},
			})
			return
		}
		input.ValidFrom = &ts
	}
	if req.ValidUntil != nil {
		ts, err := time.Parse(time.RFC3339, *req.ValidUntil)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "valid_until must be in RFC3339 format"},
			})
			return
		}
		input.ValidUntil = &ts
	}

	charge, err := h.charges.CreateCharge(r.Context(), actor, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: charge})
}

// ListCharges handles GET /api/v1/charges
func (h *ChargeHandler) ListCharges(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page := pagination.FromRequest(r)
	offset, limit := page.Offset, page.Limit
	charges, total, err := h.charges.ListCharges(r.Context(), actor, offset, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(charges, total, offset, limit))
}

// GetCharge handles GET /api/v1/charges/{id}
func (h *ChargeHandler) GetCharge(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	charge, err := h.charges.GetCharge(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: charge})
}

// DeleteCharge handles DELETE /api/v1/charges/{id}
func (h *ChargeHandler) DeleteCharge(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.charges.DeleteCharge(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListOrderCharges handles GET /api/v1/orders/{id}/charges
func (h *ChargeHandler) ListOrderCharges(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	charges, err := h.charges.ListOrderCharges(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: charges})
}

// AttachToOrder handles POST /api/v1/orders/{id}/charges/{chargeId}
func (h *ChargeHandler) AttachToOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.charges.AttachChargeToOrder(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "chargeId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DetachFromOrder handles DELETE /api/v1/orders/{id}/charges/{chargeId}
func (h *ChargeHandler) DetachFromOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.charges.DetachChargeFromOrder(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "chargeId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AttachToItem handles POST /api/v1/orders/{id}/items/{itemId}/charges/{chargeId}
func (h *ChargeHandler) AttachToItem(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.charges.AttachChargeToItem(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), chi.URLParam(r, "chargeId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DetachFromItem handles DELETE /api/v1/orders/{id}/items/{itemId}/charges/{chargeId}
func (h *ChargeHandler) DetachFromItem(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.charges.DetachChargeFromItem(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), chi.URLParam(r, "chargeId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
