package enums

import (
	"fmt"
	"strings"
)

// ShippingMethod selects a delivery tier. The zero value means no tier was chosen.
type ShippingMethod string

const (
	ShippingMethodUnset  ShippingMethod = ""
	ShippingMethodLocal  ShippingMethod = "local"
	ShippingMethodRemote ShippingMethod = "remote"
)

var validShippingMethods = []ShippingMethod{
	ShippingMethodLocal,
	ShippingMethodRemote,
}

// storefront selectors still send the regional labels.
var shippingMethodAliases = map[string]ShippingMethod{
	"inside-dhaka":  ShippingMethodLocal,
	"outside-dhaka": ShippingMethodRemote,
}

// String implements fmt.Stringer.
func (s ShippingMethod) String() string {
	return string(s)
}

// IsSet reports whether a tier was chosen.
func (s ShippingMethod) IsSet() bool {
	return s != ShippingMethodUnset
}

// IsValid reports whether the value is a known, selected ShippingMethod.
func (s ShippingMethod) IsValid() bool {
	for _, candidate := range validShippingMethods {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShippingMethod converts raw input into a ShippingMethod. Blank input
// yields ShippingMethodUnset without error so callers can decide whether a
// selection is required.
func ParseShippingMethod(value string) (ShippingMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ShippingMethodUnset, nil
	}
	if alias, ok := shippingMethodAliases[normalized]; ok {
		return alias, nil
	}
	for _, candidate := range validShippingMethods {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return ShippingMethodUnset, fmt.Errorf("invalid shipping method %q", value)
}
