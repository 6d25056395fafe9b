package customers

import (
	"context"
	"errors"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists customers.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.DB(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.DB(ctx).Where("phone = ?", phone).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpsertByPhone creates the customer or refreshes name and address on the
// existing row with the same phone.
func (r *Repository) UpsertByPhone(ctx context.Context, name, phone, address string) (*models.Customer, error) {
	existing, err := r.FindByPhone(ctx, phone)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		existing.Name = name
		existing.Address = address
		if err := r.DB(ctx).Save(existing).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}

	customer := &models.Customer{Name: name, Phone: phone, Address: address}
	if err := r.DB(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *Repository) Save(ctx context.Context, customer *models.Customer) error {
	return r.DB(ctx).Save(customer).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Customer{})
	return res.RowsAffected > 0, res.Error
}

// CountOrders reports how many orders reference the customer.
func (r *Repository) CountOrders(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Order{}).Where("customer_id = ?", id).Count(&count).Error
	return count, err
}

func (r *Repository) List(ctx context.Context, search string, params pagination.Params) ([]models.Customer, types.PageMeta, error) {
	query := repo.Search(r.DB(ctx).Model(&models.Customer{}), search, "name", "phone", "email", "address")

	var rows []models.Customer
	meta, err := repo.Paginate(query, params, "created_at DESC, id ASC", &rows)
	if err != nil {
		return nil, types.PageMeta{}, err
	}
	return rows, meta, nil
}
