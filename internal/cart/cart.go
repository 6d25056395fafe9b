// Package cart holds the storefront shopping cart: the aggregate enforcing
// quantity bounds, its Redis persistence, and the session-scoped service.
package cart

import (
	"errors"
	"sort"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrStockExceeded rejects a change that would push a line above its stock.
	ErrStockExceeded = errors.New("quantity exceeds available stock")
	// ErrOutOfStock rejects adding a unit with no stock left.
	ErrOutOfStock = errors.New("product is out of stock")
	// ErrQuantityFloor rejects decrementing a line that is already at 1.
	ErrQuantityFloor = errors.New("quantity cannot go below one")
	// ErrItemNotFound is returned for actions on a product not in the cart.
	ErrItemNotFound = errors.New("item not in cart")
)

// Snapshot is the product data captured when a line is added.
type Snapshot struct {
	ProductID uuid.UUID
	Name      string
	Media     *string
	Unit      pricing.Unit
}

// LineItem is one product in the cart.
type LineItem struct {
	ProductID uuid.UUID    `json:"productId"`
	Name      string       `json:"name"`
	Media     *string      `json:"media,omitempty"`
	Unit      pricing.Unit `json:"unit"`
	Quantity  int          `json:"quantity"`
	AddedAt   time.Time    `json:"addedAt"`
}

func (l LineItem) LineQuantity() int          { return l.Quantity }
func (l LineItem) LinePrice() decimal.Decimal { return l.Unit.Price }

// Cart maps product ids to their line. The zero value is not usable; call New.
type Cart struct {
	SessionID string                 `json:"sessionId"`
	Items     map[uuid.UUID]LineItem `json:"items"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// New returns an empty cart for sessionID.
func New(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Items: map[uuid.UUID]LineItem{}}
}

// AddOrIncrement adds max(1, delta) units of the product. A new line takes the
// snapshot; an existing line refreshes its unit from it. The cart is left
// untouched when the result would not fit the unit's stock.
func (c *Cart) AddOrIncrement(s Snapshot, delta int) error {
	if delta < 1 {
		delta = 1
	}
	if !s.Unit.InStock() {
		return ErrOutOfStock
	}

	line, exists := c.Items[s.ProductID]
	next := delta
	if exists {
		next = line.Quantity + delta
	}
	if !s.Unit.Allows(next) {
		return ErrStockExceeded
	}

	if !exists {
		line = LineItem{ProductID: s.ProductID, AddedAt: time.Now().UTC()}
	}
	line.Name = s.Name
	line.Media = s.Media
	line.Unit = s.Unit
	line.Quantity = next
	c.Items[s.ProductID] = line
	c.touch()
	return nil
}

// Increment adds one unit using the stored unit snapshot.
func (c *Cart) Increment(productID uuid.UUID) error {
	line, ok := c.Items[productID]
	if !ok {
		return ErrItemNotFound
	}
	return c.AddOrIncrement(Snapshot{
		ProductID: productID,
		Name:      line.Name,
		Media:     line.Media,
		Unit:      line.Unit,
	}, 1)
}

// Decrement removes one unit. It never deletes the line.
func (c *Cart) Decrement(productID uuid.UUID) error {
	line, ok := c.Items[productID]
	if !ok {
		return ErrItemNotFound
	}
	if line.Quantity <= 1 {
		return ErrQuantityFloor
	}
	line.Quantity--
	c.Items[productID] = line
	c.touch()
	return nil
}

// Remove deletes the line if present.
func (c *Cart) Remove(productID uuid.UUID) {
	if _, ok := c.Items[productID]; !ok {
		return
	}
	delete(c.Items, productID)
	c.touch()
}

func (c *Cart) Clear() {
	c.Items = map[uuid.UUID]LineItem{}
	c.touch()
}

// Lines returns the items ordered by when they were added.
func (c *Cart) Lines() []LineItem {
	lines := make([]LineItem, 0, len(c.Items))
	for _, line := range c.Items {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].AddedAt.Equal(lines[j].AddedAt) {
			return lines[i].AddedAt.Before(lines[j].AddedAt)
		}
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})
	return lines
}

func (c *Cart) Subtotal() decimal.Decimal {
	return pricing.Subtotal(c.Lines())
}

// ItemCount is the total number of units across lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, line := range c.Items {
		n += line.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
