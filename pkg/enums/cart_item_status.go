package enums

import "fmt"

// CartItemStatus tracks the lifecycle of a persisted cart line.
type CartItemStatus string

const (
	CartItemStatusActive     CartItemStatus = "active"
	CartItemStatusCheckedOut CartItemStatus = "checked_out"
	CartItemStatusAbandoned  CartItemStatus = "abandoned"
)

var validCartItemStatuses = []CartItemStatus{
	CartItemStatusActive,
	CartItemStatusCheckedOut,
	CartItemStatusAbandoned,
}

// String implements fmt.Stringer.
func (c CartItemStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c CartItemStatus) IsValid() bool {
	for _, candidate := range validCartItemStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartItemStatus converts raw input into a CartItemStatus.
func ParseCartItemStatus(value string) (CartItemStatus, error) {
	for _, candidate := range validCartItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart item status %q", value)
}
