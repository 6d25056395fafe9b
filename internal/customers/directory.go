package customers

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Directory resolves the customer behind an incoming order.
type Directory struct {
	repo *Repository
}

func NewDirectory(repo *Repository) *Directory {
	return &Directory{repo: repo}
}

func (d *Directory) UpsertByPhone(ctx context.Context, tx *gorm.DB, name, phone, address string) (*models.Customer, error) {
	return d.repo.WithTx(tx).UpsertByPhone(ctx, name, phone, address)
}
