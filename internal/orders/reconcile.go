package orders

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconcileItem is an order line under edit. Quantity may sit at zero until
// the edit is submitted.
type ReconcileItem struct {
	ItemID           uuid.UUID
	ProductID        uuid.UUID
	Name             string
	Price            decimal.Decimal
	OriginalQuantity int
	Quantity         int
}

func (i ReconcileItem) LineQuantity() int          { return i.Quantity }
func (i ReconcileItem) LinePrice() decimal.Decimal { return i.Price }

// Reconciler applies operator edits to a placed order's lines.
type Reconciler struct {
	items []ReconcileItem
}

func NewReconciler(items []models.OrderItem) *Reconciler {
	r := &Reconciler{items: make([]ReconcileItem, 0, len(items))}
	for _, item := range items {
		r.items = append(r.items, ReconcileItem{
			ItemID:           item.ID,
			ProductID:        item.ProductID,
			Name:             item.Name,
			Price:            item.Price,
			OriginalQuantity: item.Quantity,
			Quantity:         item.Quantity,
		})
	}
	return r
}

// UpdateQuantity sets the quantity of productID. Zero is allowed and marks the
// line for exclusion; a negative quantity leaves the line untouched. It
// reports whether a line was changed.
func (r *Reconciler) UpdateQuantity(productID uuid.UUID, quantity int) bool {
	if quantity < 0 {
		return false
	}
	idx := r.indexOf(productID)
	if idx < 0 {
		return false
	}
	r.items[idx].Quantity = quantity
	return true
}

// RemoveItem drops the line for productID.
func (r *Reconciler) RemoveItem(productID uuid.UUID) bool {
	idx := r.indexOf(productID)
	if idx < 0 {
		return false
	}
	r.items = append(r.items[:idx], r.items[idx+1:]...)
	return true
}

// RecalculatedTotal sums quantity × price over lines with a positive quantity.
func (r *Reconciler) RecalculatedTotal() decimal.Decimal {
	return pricing.Subtotal(r.items)
}

// Items returns every line still in the edit, zero quantities included.
func (r *Reconciler) Items() []ReconcileItem {
	out := make([]ReconcileItem, len(r.items))
	copy(out, r.items)
	return out
}

// Submission returns the lines to persist.
func (r *Reconciler) Submission() []ReconcileItem {
	out := make([]ReconcileItem, 0, len(r.items))
	for _, item := range r.items {
		if item.Quantity > 0 {
			out = append(out, item)
		}
	}
	return out
}

// Contains reports whether productID is still part of the edit.
func (r *Reconciler) Contains(productID uuid.UUID) bool {
	return r.indexOf(productID) >= 0
}

// StockDeltas maps each product to how many more units the edit needs
// compared to the original order. Removed lines yield their full negative
// quantity.
func (r *Reconciler) StockDeltas(original []models.OrderItem) map[uuid.UUID]int {
	deltas := make(map[uuid.UUID]int, len(original))
	for _, item := range original {
		deltas[item.ProductID] -= item.Quantity
	}
	for _, item := range r.items {
		deltas[item.ProductID] += item.Quantity
	}
	for id, delta := range deltas {
		if delta == 0 {
			delete(deltas, id)
		}
	}
	return deltas
}

func (r *Reconciler) indexOf(productID uuid.UUID) int {
	for i, item := range r.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
