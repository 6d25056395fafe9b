package pricing

import (
	"errors"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAdjustmentType = errors.New("invalid adjustment type")
	ErrNonPositiveAdjustment = errors.New("adjustment amount must be greater than zero")
)

// Adjustment modifies a placed order's amount.
type Adjustment struct {
	Type   enums.AdjustmentType `json:"type"`
	Amount decimal.Decimal      `json:"amount"`
}

// Quote is the priced view of a set of lines plus shipping.
type Quote struct {
	Subtotal     decimal.Decimal      `json:"subtotal"`
	ShippingCost decimal.Decimal      `json:"shippingCost"`
	Total        decimal.Decimal      `json:"total"`
	Method       enums.ShippingMethod `json:"shippingMethod"`
}

// Total is subtotal plus shipping. No tax or rounding is applied.
func Total(subtotal, shipping decimal.Decimal) decimal.Decimal {
	return subtotal.Add(shipping)
}

// AdjustedTotal applies adj to base. Discounts and refunds subtract, fees add.
// The result is not clamped and may be negative.
func AdjustedTotal(base decimal.Decimal, adj Adjustment) decimal.Decimal {
	if adj.Type.Reduces() {
		return base.Sub(adj.Amount)
	}
	return base.Add(adj.Amount)
}

// ValidateAdjustment guards the calculator at the request boundary.
func ValidateAdjustment(adj Adjustment) error {
	if !adj.Type.IsValid() {
		return ErrInvalidAdjustmentType
	}
	if !adj.Amount.IsPositive() {
		return ErrNonPositiveAdjustment
	}
	return nil
}

// TotalChanged reports whether an adjustment moved the total.
func TotalChanged(before, after decimal.Decimal) bool {
	return !before.Equal(after)
}

// QuoteLines prices lines for method. An unset or unknown method is an error.
func QuoteLines[L Line](lines []L, method enums.ShippingMethod) (Quote, error) {
	shipping, err := ShippingCost(method)
	if err != nil {
		return Quote{}, err
	}
	subtotal := Subtotal(lines)
	return Quote{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Total:        Total(subtotal, shipping),
		Method:       method,
	}, nil
}
