package pricing

import (
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Unit is the purchasable shape of a product at the time it was priced.
type Unit struct {
	Type          enums.UnitType  `json:"unitType"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

// Allows reports whether quantity fits the unit's bounds.
func (u Unit) Allows(quantity int) bool {
	return quantity >= 1 && quantity <= u.StockQuantity
}

// InStock reports whether at least one unit can be bought.
func (u Unit) InStock() bool {
	return u.StockQuantity > 0
}

// Line is anything with a quantity and a unit price.
type Line interface {
	LineQuantity() int
	LinePrice() decimal.Decimal
}

// LineTotal is quantity × price.
func LineTotal(l Line) decimal.Decimal {
	return l.LinePrice().Mul(decimal.NewFromInt(int64(l.LineQuantity())))
}

// Subtotal sums quantity × price over lines. Lines with a non-positive
// quantity contribute nothing.
func Subtotal[L Line](lines []L) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		if l.LineQuantity() <= 0 {
			continue
		}
		sum = sum.Add(LineTotal(l))
	}
	return sum
}
