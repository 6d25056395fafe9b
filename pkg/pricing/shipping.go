package pricing

import (
	"errors"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

var (
	ErrShippingMethodUnset   = errors.New("shipping method not selected")
	ErrUnknownShippingMethod = errors.New("unknown shipping method")
)

var shippingRates = map[enums.ShippingMethod]decimal.Decimal{
	enums.ShippingMethodLocal:  decimal.NewFromInt(70),
	enums.ShippingMethodRemote: decimal.NewFromInt(150),
}

// ShippingCost returns the flat rate for method.
func ShippingCost(method enums.ShippingMethod) (decimal.Decimal, error) {
	if !method.IsSet() {
		return decimal.Zero, ErrShippingMethodUnset
	}
	rate, ok := shippingRates[method]
	if !ok {
		return decimal.Zero, ErrUnknownShippingMethod
	}
	return rate, nil
}

// MethodForCost maps a flat delivery cost back to its tier.
func MethodForCost(cost decimal.Decimal) (enums.ShippingMethod, error) {
	for method, rate := range shippingRates {
		if rate.Equal(cost) {
			return method, nil
		}
	}
	return enums.ShippingMethodUnset, ErrUnknownShippingMethod
}
