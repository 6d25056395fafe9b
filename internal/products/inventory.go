package product

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inventory exposes product stock to order placement. Every call runs on the
// caller's transaction.
type Inventory struct {
	repo *Repository
}

func NewInventory(repo *Repository) *Inventory {
	return &Inventory{repo: repo}
}

// Snapshot loads the current rows for ids. Missing ids are absent from the map.
func (i *Inventory) Snapshot(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	return i.repo.WithTx(tx).FindByIDs(ctx, ids)
}

// Take decrements stock by qty and reports false when not enough is left.
func (i *Inventory) Take(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	return i.repo.WithTx(tx).DecrementStock(ctx, id, qty)
}

func (i *Inventory) Release(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	return i.repo.WithTx(tx).IncrementStock(ctx, id, qty)
}
