package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Order is the authoritative record of a placed cart.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID     uuid.UUID            `gorm:"column:customer_id;type:uuid;not null"`
	Customer       *Customer            `gorm:"foreignKey:CustomerID"`
	Name           string               `gorm:"column:name;not null"`
	Phone          string               `gorm:"column:phone;not null"`
	Address        string               `gorm:"column:address;not null"`
	ShippingMethod enums.ShippingMethod `gorm:"column:shipping_method;not null"`
	Status         enums.OrderStatus    `gorm:"column:status;not null;default:pending"`
	PaymentStatus  enums.PaymentStatus  `gorm:"column:payment_status;not null;default:unpaid"`
	Subtotal       decimal.Decimal      `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingCost   decimal.Decimal      `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	Total          decimal.Decimal      `gorm:"column:total;type:numeric(12,2);not null"`
	Items          []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Adjustments    []OrderAdjustment    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem snapshots a product line at order time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	UnitType  enums.UnitType  `gorm:"column:unit_type;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i OrderItem) LineQuantity() int          { return i.Quantity }
func (i OrderItem) LinePrice() decimal.Decimal { return i.Price }

// OrderAdjustment is one committed discount, fee or refund.
type OrderAdjustment struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID            `gorm:"column:order_id;type:uuid;not null"`
	Type          enums.AdjustmentType `gorm:"column:type;not null"`
	Amount        decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	Reason        *string              `gorm:"column:reason"`
	PreviousTotal decimal.Decimal      `gorm:"column:previous_total;type:numeric(12,2);not null"`
	NewTotal      decimal.Decimal      `gorm:"column:new_total;type:numeric(12,2);not null"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (a *OrderAdjustment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
