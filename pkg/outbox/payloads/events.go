package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// OrderLine is the item snapshot carried by order events.
type OrderLine struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	UnitType  enums.UnitType  `json:"unitType"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderCreatedEvent is emitted once a cart has been placed as an order.
type OrderCreatedEvent struct {
	OrderID        uuid.UUID            `json:"orderId"`
	CustomerID     uuid.UUID            `json:"customerId"`
	Phone          string               `json:"phone"`
	ShippingMethod enums.ShippingMethod `json:"shippingMethod"`
	Items          []OrderLine          `json:"items"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	ShippingCost   decimal.Decimal      `json:"shippingCost"`
	Total          decimal.Decimal      `json:"total"`
}

// OrderStatusChangedEvent records a lifecycle transition.
type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID           `json:"orderId"`
	PreviousStatus enums.OrderStatus   `json:"previousStatus"`
	Status         enums.OrderStatus   `json:"status"`
	PaymentStatus  enums.PaymentStatus `json:"paymentStatus"`
	Restocked      bool                `json:"restocked"`
	ChangedAt      time.Time           `json:"changedAt"`
}

// OrderAdjustedEvent is emitted after an adjustment is committed.
type OrderAdjustedEvent struct {
	OrderID       uuid.UUID            `json:"orderId"`
	AdjustmentID  uuid.UUID            `json:"adjustmentId"`
	Type          enums.AdjustmentType `json:"type"`
	Amount        decimal.Decimal      `json:"amount"`
	PreviousTotal decimal.Decimal      `json:"previousTotal"`
	NewTotal      decimal.Decimal      `json:"newTotal"`
	Reason        string               `json:"reason,omitempty"`
}

// OrderItemsUpdatedEvent is emitted after an admin edits an order's lines.
type OrderItemsUpdatedEvent struct {
	OrderID       uuid.UUID       `json:"orderId"`
	Items         []OrderLine     `json:"items"`
	PreviousTotal decimal.Decimal `json:"previousTotal"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`
}

// OrderDeletedEvent is emitted when an order is removed.
type OrderDeletedEvent struct {
	OrderID   uuid.UUID         `json:"orderId"`
	Status    enums.OrderStatus `json:"status"`
	Restocked bool              `json:"restocked"`
	DeletedAt time.Time         `json:"deletedAt"`
}

// StockUpdatedEvent reports an explicit stock change on a product.
type StockUpdatedEvent struct {
	ProductID     uuid.UUID `json:"productId"`
	PreviousStock int       `json:"previousStock"`
	StockQuantity int       `json:"stockQuantity"`
}
