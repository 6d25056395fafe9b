package orders

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

// Create inserts the order together with its items.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).Omit("Customer").Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Adjustments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.DB(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.DB(ctx).Model(&models.OrderItem{}).Where("id = ?", itemID).Update("quantity", quantity).Error
}

func (r *repository) DeleteItems(ctx context.Context, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.DB(ctx).Where("id IN ?", itemIDs).Delete(&models.OrderItem{}).Error
}

func (r *repository) CreateAdjustment(ctx context.Context, adjustment *models.OrderAdjustment) error {
	return r.DB(ctx).Create(adjustment).Error
}

// Delete removes the order and its dependent rows.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db := r.DB(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderAdjustment{}).Error; err != nil {
		return false, err
	}
	if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return false, err
	}
	res := db.Where("id = ?", id).Delete(&models.Order{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, types.PageMeta, error) {
	query := repo.Search(r.DB(ctx).Model(&models.Order{}), filters.Search, "orders.name", "orders.phone", "orders.address")
	if filters.Status != nil {
		query = query.Where("orders.status = ?", *filters.Status)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("orders.payment_status = ?", *filters.PaymentStatus)
	}
	if filters.From != nil {
		query = query.Where("orders.created_at >= ?", filters.From.UTC())
	}
	if filters.To != nil {
		query = query.Where("orders.created_at <= ?", filters.To.UTC())
	}
	if filters.CustomerID != nil {
		query = query.Where("orders.customer_id = ?", *filters.CustomerID)
	}
	if filters.ProductID != nil {
		query = query.Where("EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.product_id = ?)", *filters.ProductID)
	}
	if filters.MinAmount != nil {
		query = query.Where("orders.total >= ?", *filters.MinAmount)
	}
	if filters.MaxAmount != nil {
		query = query.Where("orders.total <= ?", *filters.MaxAmount)
	}

	var rows []models.Order
	meta, err := repo.Paginate(query, params, "orders.created_at DESC, orders.id ASC", &rows, "Items")
	if err != nil {
		return nil, types.PageMeta{}, err
	}
	return rows, meta, nil
}
