package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HubertasVin/pos-1206-sub000/internal/service"
	"github.com/HubertasVin/pos-1206-sub000/pkg/health"
	"github.com/HubertasVin/pos-1206-sub000/pkg/middleware"
)

// Services bundles the service dependencies the router wires up.
type Services struct {
	Orders       *service.OrderService
	Items        *service.OrderItemService
	Pricing      *service.PricingService
	Charges      *service.ChargeService
	Discounts    *service.DiscountService
	Transactions *service.TransactionService
	Inventory    *service.InventoryService
}

// NewRouter creates a chi router with all POS service routes registered.
func NewRouter(
	services Services,
	tokenValidator middleware.TokenValidator,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("pos"))
	r.Use(middleware.Tracing("pos"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	orderHandler := NewOrderHandler(services.Orders, services.Pricing, logger)
	itemHandler := NewOrderItemHandler(services.Items, logger)
	chargeHandler := NewChargeHandler(services.Charges, logger)
	discountHandler := NewDiscountHandler(services.Discounts, logger)
	transactionHandler := NewTransactionHandler(services.Transactions, logger)
	inventoryHandler := NewInventoryHandler(services.Inventory, logger)

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Post("/", orderHandler.CreateOrder)
		r.Get("/", orderHandler.ListOrders)
		r.Get("/{id}", orderHandler.GetOrder)
		r.Delete("/{id}", orderHandler.DeleteOrder)
		r.Put("/{id}/tip", orderHandler.SetTip)
		r.Post("/{id}/close", orderHandler.CloseOrder)
		r.Post("/{id}/cancel", orderHandler.CancelOrder)
		r.Get("/{id}/quote", orderHandler.QuoteOrder)

		r.Get("/{id}/items", itemHandler.ListItems)
		r.Post("/{id}/items", itemHandler.AddItem)
		r.Put("/{id}/items/{itemId}", itemHandler.ReplaceItem)
		r.Delete("/{id}/items/{itemId}", itemHandler.RemoveItem)

		r.Get("/{id}/charges", chargeHandler.ListOrderCharges)
		r.Post("/{id}/charges/{chargeId}", chargeHandler.AttachToOrder)
		r.Delete("/{id}/charges/{chargeId}", chargeHandler.DetachFromOrder)
		r.Post("/{id}/items/{itemId}/charges/{chargeId}", chargeHandler.AttachToItem)
		r.Delete("/{id}/items/{itemId}/charges/{chargeId}", chargeHandler.DetachFromItem)

		r.Get("/{id}/discounts", discountHandler.ListOrderDiscounts)
		r.Post("/{id}/discounts/{discountId}", discountHandler.AttachToOrder)
		r.Delete("/{id}/discounts/{discountId}", discountHandler.DetachFromOrder)

		r.Post("/{id}/transactions", transactionHandler.CreateTransaction)
		r.Get("/{id}/transactions", transactionHandler.ListTransactions)
	})

	r.Route("/api/v1/charges", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Post("/", chargeHandler.CreateCharge)
		r.Get("/", chargeHandler.ListCharges)
		r.Get("/{id}", chargeHandler.GetCharge)
		r.Delete("/{id}", chargeHandler.DeleteCharge)
	})

	r.Route("/api/v1/discounts", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Post("/", discountHandler.CreateDiscount)
		r.Get("/", discountHandler.ListDiscounts)
		r.Get("/{id}", discountHandler.GetDiscount)
		r.Put("/{id}", discountHandler.UpdateDiscount)
		r.Delete("/{id}", discountHandler.DeleteDiscount)
	})

	r.Route("/api/v1/transactions", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/{id}", transactionHandler.GetTransaction)
		r.Put("/{id}/status", transactionHandler.UpdateTransactionStatus)
	})

	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Post("/adjustments", inventoryHandler.AdjustStock)
		r.Get("/logs", inventoryHandler.ListLogs)
	})

	return r
}
