package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
)

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	MerchantID   string
	Status       *string
	CreatedFrom  *time.Time
	CreatedUntil *time.Time
	Offset       int
	Limit        int
}

// TransactionFilter defines filter criteria for listing an order's transactions.
type TransactionFilter struct {
	Status        *string
	PaymentMethod *string
	Offset        int
	Limit         int
}

// InventoryLogFilter defines filter criteria for querying the inventory ledger.
type InventoryLogFilter struct {
	MerchantID         string
	ProductID          *string
	ProductVariationID *string
	OrderID            *string
	UserID             *string
	Offset             int
	Limit              int
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new, empty open order.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier, including items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the given filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// SetTip stores the order's tip amount.
	SetTip(ctx context.Context, id string, tip decimal.Decimal) error

	// Close atomically flips an open order to closed and appends the given
	// inventory ledger entries in the same transaction. Returns ErrConflict
	// if the order exists but is no longer open (a concurrent closer won).
	Close(ctx context.Context, id string, entries []domain.InventoryLogEntry) error

	// TransitionStatus flips the order from one exact status to another.
	// Returns ErrConflict if the order is not currently in the from status.
	TransitionStatus(ctx context.Context, id, from, to string) error

	// Delete removes the order, cascading its items and transactions.
	Delete(ctx context.Context, id string) error
}

// OrderItemRepository defines the interface for order line persistence.
type OrderItemRepository interface {
	// Create appends a new line to its order.
	Create(ctx context.Context, item *domain.OrderItem) error

	// GetByID retrieves a single line by its identifier.
	GetByID(ctx context.Context, id string) (*domain.OrderItem, error)

	// ListByOrder returns all lines of an order in insertion order.
	ListByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error)

	// Update overwrites the line's unit reference and quantity in place.
	Update(ctx context.Context, item *domain.OrderItem) error

	// Delete removes a line by its identifier.
	Delete(ctx context.Context, id string) error
}

// ChargeRepository defines the interface for charge definitions and their
// order/item attachments.
type ChargeRepository interface {
	Create(ctx context.Context, charge *domain.Charge) error
	GetByID(ctx context.Context, id string) (*domain.Charge, error)
	ListByMerchant(ctx context.Context, merchantID string, offset, limit int) ([]domain.Charge, int, error)
	Delete(ctx context.Context, id string) error

	// AttachToOrder links a charge to an order. Returns ErrAlreadyExists if
	// the charge is already attached.
	AttachToOrder(ctx context.Context, orderID, chargeID string) error
	DetachFromOrder(ctx context.Context, orderID, chargeID string) error
	ListByOrder(ctx context.Context, orderID string) ([]domain.Charge, error)

	// AttachToItem links a charge to a single order line.
	AttachToItem(ctx context.Context, itemID, chargeID string) error
	DetachFromItem(ctx context.Context, itemID, chargeID string) error

	// ListByOrderItems returns item-scoped charges for every line of an
	// order, keyed by item id.
	ListByOrderItems(ctx context.Context, orderID string) (map[string][]domain.Charge, error)
}

// DiscountRepository defines the interface for discount persistence.
type DiscountRepository interface {
	Create(ctx context.Context, discount *domain.Discount) error
	GetByID(ctx context.Context, id string) (*domain.Discount, error)
	ListByMerchant(ctx context.Context, merchantID string, includeInactive bool, offset, limit int) ([]domain.Discount, int, error)
	Update(ctx context.Context, discount *domain.Discount) error

	// SoftDelete flips is_active to false; the row is retained.
	SoftDelete(ctx context.Context, id string) error

	AttachToOrder(ctx context.Context, orderID, discountID string) error
	DetachFromOrder(ctx context.Context, orderID, discountID string) error
	ListByOrder(ctx context.Context, orderID string) ([]domain.Discount, error)
}

// TransactionRepository defines the interface for payment transaction records.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListByOrder(ctx context.Context, orderID string, filter TransactionFilter) ([]domain.Transaction, int, error)

	// UpdateStatus flips the transaction from one exact status to another.
	// Returns ErrConflict if the transaction is not currently in the from
	// status.
	UpdateStatus(ctx context.Context, id, from, to string) error

	// SumCompletedByOrder returns the total of the order's completed
	// transactions: the amount already paid.
	SumCompletedByOrder(ctx context.Context, orderID string) (decimal.Decimal, error)
}

// InventoryLogRepository defines the interface for the append-only stock
// adjustment ledger. There is no update or delete.
type InventoryLogRepository interface {
	Create(ctx context.Context, entry *domain.InventoryLogEntry) error
	List(ctx context.Context, filter InventoryLogFilter) ([]domain.InventoryLogEntry, int, error)

	// CountByOrder returns the number of ledger entries referencing an order.
	CountByOrder(ctx context.Context, orderID string) (int, error)
}
