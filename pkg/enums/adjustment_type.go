package enums

import "fmt"

// AdjustmentType is a post-placement modifier on an order amount.
type AdjustmentType string

const (
	AdjustmentTypeDiscount AdjustmentType = "discount"
	AdjustmentTypeFee      AdjustmentType = "fee"
	AdjustmentTypeRefund   AdjustmentType = "refund"
)

var validAdjustmentTypes = []AdjustmentType{
	AdjustmentTypeDiscount,
	AdjustmentTypeFee,
	AdjustmentTypeRefund,
}

// String implements fmt.Stringer.
func (a AdjustmentType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AdjustmentType.
func (a AdjustmentType) IsValid() bool {
	for _, candidate := range validAdjustmentTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// Reduces reports whether the adjustment lowers the amount it applies to.
func (a AdjustmentType) Reduces() bool {
	return a == AdjustmentTypeDiscount || a == AdjustmentTypeRefund
}

// ParseAdjustmentType converts raw input into an AdjustmentType.
func ParseAdjustmentType(value string) (AdjustmentType, error) {
	for _, candidate := range validAdjustmentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adjustment type %q", value)
}
