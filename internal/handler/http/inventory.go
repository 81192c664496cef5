package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/HubertasVin/pos-1206-sub000/internal/auth"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	"github.com/HubertasVin/pos-1206-sub000/internal/service"
	"github.com/HubertasVin/pos-1206-sub000/pkg/httputil"
	"github.com/HubertasVin/pos-1206-sub000/pkg/pagination"
	"github.com/HubertasVin/pos-1206-sub000/pkg/validator"
)

// InventoryHandler handles HTTP requests for the stock adjustment ledger.
type InventoryHandler struct {
	inventory *service.InventoryService
	logger    *slog.Logger
}

// NewInventoryHandler creates a new inventory HTTP handler.
func NewInventoryHandler(inventory *service.InventoryService, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventory,
		logger:    logger,
	}
}

// AdjustStockRequest is the JSON request body for a direct stock correction.
// Exactly one of product_id or product_variation_id must be set.
type AdjustStockRequest struct {
	ProductID          string `json:"product_id" validate:"omitempty,uuid"`
	ProductVariationID string `json:"product_variation_id" validate:"omitempty,uuid"`
	Adjustment         int    `json:"adjustment"`
}

// AdjustStock handles POST /api/v1/inventory/adjustments
func (h *InventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AdjustStockRequest
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

	entry, err := h.inventory.AdjustStock(r.Context(), actor, service.AdjustStockInput{
		ProductID:          req.ProductID,
		ProductVariationID: req.ProductVariationID,
		Adjustment:         req.Adjustment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: entry})
}

// ListLogs handles GET /api/v1/inventory/logs
func (h *InventoryHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	filter := repository.InventoryLogFilter{Limit: 20}
	q := r.URL.Query()
	if v := q.Get("product_id"); v != "" {
		filter.ProductID = &v
	}
	if v := q.Get("product_variation_id"); v != "" {
		filter.ProductVariationID = &v
	}
	if v := q.Get("order_id"); v != "" {
		filter.OrderID = &v
	}
	if v := q.Get("user_id"); v != "" {
		filter.UserID = &v
	}
	page := pagination.FromRequest(r)
	filter.Offset, filter.Limit = page.Offset, page.Limit

	entries, total, err := h.inventory.GetLogs(r.Context(), actor, filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(entries, total, filter.Offset, filter.Limit))
}
