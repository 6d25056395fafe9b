package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence operations for orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItems(ctx context.Context, itemIDs []uuid.UUID) error
	CreateAdjustment(ctx context.Context, adjustment *models.OrderAdjustment) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, types.PageMeta, error)
}

// Inventory takes and returns product stock inside the caller's transaction.
type Inventory interface {
	Snapshot(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) (map[uuid.UUID]models.Product, error)
	Take(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error)
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// CustomerDirectory creates or refreshes the customer placing an order.
type CustomerDirectory interface {
	UpsertByPhone(ctx context.Context, tx *gorm.DB, name, phone, address string) (*models.Customer, error)
}

// ListFilters narrows the order list. To is an inclusive upper bound.
type ListFilters struct {
	Search        string
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	From          *time.Time
	To            *time.Time
	CustomerID    *uuid.UUID
	ProductID     *uuid.UUID
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
}
