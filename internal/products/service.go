package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog management and the inventory screen.
type Service interface {
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) (*ProductDTO, error)
}

// CreateInput holds the validated payload to create a product.
type CreateInput struct {
	CategoryID    *uuid.UUID
	Name          string
	Description   *string
	Media         *string
	UnitType      enums.UnitType
	Price         decimal.Decimal
	StockQuantity int
	IsActive      *bool
}

// UpdateInput holds optional mutation values for a product. Stock is changed
// through UpdateStock only.
type UpdateInput struct {
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	Media       *string
	UnitType    *enums.UnitType
	Price       *decimal.Decimal
	IsActive    *bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   *Repository
	tx     txRunner
	outbox outbox.Emitter
}

// NewService constructs a product service instance.
func NewService(repo *Repository, tx txRunner, emitter outbox.Emitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, tx: tx, outbox: emitter}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*ListResult, error) {
	rows, meta, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	items := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, NewProductDTO(&rows[i]))
	}
	return &ListResult{Items: items, Pagination: meta}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ProductDTO, error) {
	var fields []pkgerrors.FieldError
	name := strings.TrimSpace(input.Name)
	if name == "" {
		fields = append(fields, pkgerrors.Field("name", "name is required"))
	}
	if !input.UnitType.IsValid() {
		fields = append(fields, pkgerrors.Field("unitType", "unit type must be weight or count"))
	}
	if !input.Price.IsPositive() {
		fields = append(fields, pkgerrors.Field("price", "price must be greater than zero"))
	}
	if input.StockQuantity < 0 {
		fields = append(fields, pkgerrors.Field("stockQuantity", "stock cannot be negative"))
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("invalid product", fields...)
	}

	product := &models.Product{
		CategoryID:    input.CategoryID,
		Name:          name,
		Description:   trimmedOrNil(input.Description),
		Media:         trimmedOrNil(input.Media),
		UnitType:      input.UnitType,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		IsActive:      true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return s.Get(ctx, product.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	product, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	var fields []pkgerrors.FieldError
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name == "" {
			fields = append(fields, pkgerrors.Field("name", "name cannot be blank"))
		} else {
			product.Name = name
		}
	}
	if input.UnitType != nil {
		if !input.UnitType.IsValid() {
			fields = append(fields, pkgerrors.Field("unitType", "unit type must be weight or count"))
		} else {
			product.UnitType = *input.UnitType
		}
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			fields = append(fields, pkgerrors.Field("price", "price must be greater than zero"))
		} else {
			product.Price = *input.Price
		}
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("invalid product", fields...)
	}

	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = input.CategoryID
		product.Category = nil
	}
	if input.Description != nil {
		product.Description = trimmedOrNil(input.Description)
	}
	if input.Media != nil {
		product.Media = trimmedOrNil(input.Media)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	used, err := s.repo.CountOrderItems(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count product orders")
	}
	if used > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "product appears on orders; deactivate it instead").
			WithDetails(map[string]any{"orderItems": used})
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// UpdateStock overwrites the stock counter and queues a stock_updated event in
// the same transaction.
func (s *service) UpdateStock(ctx context.Context, id uuid.UUID, stock int) (*ProductDTO, error) {
	if stock < 0 {
		return nil, pkgerrors.Validation("invalid stock", pkgerrors.Field("stockQuantity", "stock cannot be negative"))
	}

	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product, err := s.load(ctx, txRepo, id)
		if err != nil {
			return err
		}
		previous := product.StockQuantity
		if _, err := txRepo.SetStock(ctx, id, stock); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
		}
		product.StockQuantity = stock
		updated = product

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockUpdated,
			AggregateType: enums.AggregateProduct,
			AggregateID:   id,
			Actor:         outbox.Admin(),
			Data: payloads.StockUpdatedEvent{
				ProductID:     id,
				PreviousStock: previous,
				StockQuantity: stock,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}
	dto := NewProductDTO(updated)
	return &dto, nil
}

func (s *service) load(ctx context.Context, r *Repository, id uuid.UUID) (*models.Product, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ensureCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := s.repo.DB(ctx).Model(&models.Category{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if count == 0 {
		return pkgerrors.Validation("invalid product", pkgerrors.Field("categoryId", "category does not exist"))
	}
	return nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
