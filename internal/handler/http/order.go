package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/HubertasVin/pos-1206-sub000/internal/auth"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	"github.com/HubertasVin/pos-1206-sub000/internal/service"
	"github.com/HubertasVin/pos-1206-sub000/pkg/httputil"
	"github.com/HubertasVin/pos-1206-sub000/pkg/pagination"
)

// OrderHandler handles HTTP requests for order lifecycle endpoints.
type OrderHandler struct {
	orders  *service.OrderService
	pricing *service.PricingService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(orders *service.OrderService, pricing *service.PricingService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		pricing: pricing,
		logger:  logger,
	}
}

// SetTipRequest is the JSON request body for setting an order's tip.
type SetTipRequest struct {
	Tip decimal.Decimal `json:"tip"`
}

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), actor)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	filter := repository.OrderFilter{Limit: 20}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("created_from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "created_from must be in RFC3339 format"},
			})
			return
		}
		filter.CreatedFrom = &ts
	}
	if v := q.Get("created_until"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "created_until must be in RFC3339 format"},
			})
			return
		}
		filter.CreatedUntil = &ts
	}
	page := pagination.FromRequest(r)
	filter.Offset, filter.Limit = page.Offset, page.Limit

	orders, total, err := h.orders.ListOrders(r.Context(), actor, filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, filter.Offset, filter.Limit))
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// SetTip handles PUT /api/v1/orders/{id}/tip
func (h *OrderHandler) SetTip(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SetTipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	order, err := h.orders.SetTip(r.Context(), actor, chi.URLParam(r, "id"), req.Tip)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// CloseOrder handles POST /api/v1/orders/{id}/close
func (h *OrderHandler) CloseOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	order, err := h.orders.CloseOrder(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// CancelOrder handles POST /api/v1/orders/{id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	order, err := h.orders.CancelOrder(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// DeleteOrder handles DELETE /api/v1/orders/{id}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.orders.DeleteOrder(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// QuoteOrder handles GET /api/v1/orders/{id}/quote
func (h *OrderHandler) QuoteOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	quote, err := h.pricing.Quote(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: quote})
}

