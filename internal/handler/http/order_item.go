package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HubertasVin/pos-1206-sub000/internal/auth"
	"github.com/HubertasVin/pos-1206-sub000/internal/service"
	"github.com/HubertasVin/pos-1206-sub000/pkg/httputil"
	"github.com/HubertasVin/pos-1206-sub000/pkg/validator"
)

// OrderItemHandler handles HTTP requests for order line endpoints.
type OrderItemHandler struct {
	items  *service.OrderItemService
	logger *slog.Logger
}

// NewOrderItemHandler creates a new order item HTTP handler.
func NewOrderItemHandler(items *service.OrderItemService, logger *slog.Logger) *OrderItemHandler {
	return &OrderItemHandler{
		items:  items,
		logger: logger,
	}
}

// OrderItemRequest is the JSON request body for adding or replacing an order
// line. Exactly one of product_id or reservation_id must be set; the service
// enforces the exclusivity so the error message stays consistent across
// transports.
type OrderItemRequest struct {
	ProductID          string `json:"product_id" validate:"omitempty,uuid"`
	ProductVariationID string `json:"product_variation_id" validate:"omitempty,uuid"`
	ReservationID      string `json:"reservation_id" validate:"omitempty,uuid"`
	Quantity           int    `json:"quantity"`
}

// ListItems handles GET /api/v1/orders/{id}/items
func (h *OrderItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	items, err := h.items.ListItems(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: items})
}

// AddItem handles POST /api/v1/orders/{id}/items
func (h *OrderItemHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	req, ok := h.decodeItemRequest(w, r)
	if !ok {
		return
	}

	item, err := h.items.AddItem(r.Context(), actor, chi.URLParam(r, "id"), service.OrderItemInput{
		ProductID:          req.ProductID,
		ProductVariationID: req.ProductVariationID,
		ReservationID:      req.ReservationID,
		Quantity:           req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: item})
}

// ReplaceItem handles PUT /api/v1/orders/{id}/items/{itemId}
func (h *OrderItemHandler) ReplaceItem(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	req, ok := h.decodeItemRequest(w, r)
	if !ok {
		return
	}

	item, err := h.items.ReplaceItem(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), service.OrderItemInput{
		ProductID:          req.ProductID,
		ProductVariationID: req.ProductVariationID,
		ReservationID:      req.ReservationID,
		Quantity:           req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: item})
}

// RemoveItem handles DELETE /api/v1/orders/{id}/items/{itemId}
func (h *OrderItemHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.items.RemoveItem(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "itemId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderItemHandler) decodeItemRequest(w http.ResponseWriter, r *http.Request) (OrderItemRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req OrderItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return OrderItemRequest{}, false
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return OrderItemRequest{}, false
	}

	return req, true
}
