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

// DiscountHandler handles HTTP requests for discount definition and
// attachment endpoints.
type DiscountHandler struct {
	discounts *service.DiscountService
	logger    *slog.Logger
}

// NewDiscountHandler creates a new discount HTTP handler.
func NewDiscountHandler(discounts *service.DiscountService, logger *slog.Logger) *DiscountHandler {
	return &DiscountHandler{
		discounts: discounts,
		logger:    logger,
	}
}

// DiscountRequest is the JSON request body for creating or updating a
// discount. Exactly one of percent or amount must be set.
type DiscountRequest struct {
	Name       string           `json:"name" validate:"required,min=1,max=255"`
	Percent    *decimal.Decimal `json:"percent"`
	Amount     *decimal.Decimal `json:"amount"`
	ValidFrom  *string          `json:"valid_from"`
	ValidUntil *string          `json:"valid_until"`
}

// CreateDiscount handles POST /api/v1/discounts
func (h *DiscountHandler) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	input, ok := h.decodeDiscountRequest(w, r)
	if !ok {
		return
	}

	discount, err := h.discounts.CreateDiscount(r.Context(), actor, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: discount})
}

// ListDiscounts handles GET /api/v1/discounts
func (h *DiscountHandler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	q := r.URL.Query()
	includeInactive := q.Get("include_inactive") == "true"
	page := pagination.FromRequest(r)
	offset, limit := page.Offset, page.Limit

	discounts, total, err := h.discounts.ListDiscounts(r.Context(), actor, includeInactive, offset, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(discounts, total, offset, limit))
}

// GetDiscount handles GET /api/v1/discounts/{id}
func (h *DiscountHandler) GetDiscount(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	discount, err := h.discounts.GetDiscount(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: discount})
}

// UpdateDiscount handles PUT /api/v1/discounts/{id}
func (h *DiscountHandler) UpdateDiscount(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	input, ok := h.decodeDiscountRequest(w, r)
	if !ok {
		return
	}

	discount, err := h.discounts.UpdateDiscount(r.Context(), actor, chi.URLParam(r, "id"), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: discount})
}

// DeleteDiscount handles DELETE /api/v1/discounts/{id}
func (h *DiscountHandler) DeleteDiscount(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.discounts.DeleteDiscount(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListOrderDiscounts handles GET /api/v1/orders/{id}/discounts
func (h *DiscountHandler) ListOrderDiscounts(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	discounts, err := h.discounts.ListOrderDiscounts(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: discounts})
}

// AttachToOrder handles POST /api/v1/orders/{id}/discounts/{discountId}
func (h *DiscountHandler) AttachToOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.discounts.AttachDiscountToOrder(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "discountId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DetachFromOrder handles DELETE /api/v1/orders/{id}/discounts/{discountId}
func (h *DiscountHandler) DetachFromOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.discounts.DetachDiscountFromOrder(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "discountId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DiscountHandler) decodeDiscountRequest(w http.ResponseWriter, r *http.Request) (service.DiscountInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req DiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return service.DiscountInput{}, false
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return service.DiscountInput{}, false
	}

	input := service.DiscountInput{
		Name:    req.Name,
		Percent: req.Percent,
		Amount:  req.Amount,
	}

	if req.ValidFrom != nil {
		ts, err := time.Parse(time.RFC3339, *req.ValidFrom)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "valid_from must be in RFC3339 format"},
			})
			return service.DiscountInput{}, false
		}
		input.ValidFrom = &ts
	}
	if req.ValidUntil != nil {
		ts, err := time.Parse(time.RFC3339, *req.ValidUntil)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "valid_until must be in RFC3339 format"},
			})
			return service.DiscountInput{}, false
		}
		input.ValidUntil = &ts
	}

	return input, true
}
