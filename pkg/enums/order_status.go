package enums

import "fmt"

// OrderStatus is the ordered order lifecycle. Transitions only move
// forward one step at a time; "reviewed" is terminal and reachable only
// through review submission.
type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "order placed"
	OrderStatusAssigned   OrderStatus = "assigned"
	OrderStatusInProgress OrderStatus = "in progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusReviewed   OrderStatus = "reviewed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusAssigned,
	OrderStatusInProgress,
	OrderStatusCompleted,
	OrderStatusReviewed,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// CanTransitionTo reports whether the lifecycle allows moving from s to
// next. The review path (completed -> reviewed) is included here but is
// only exercised by review submission, never by staff status updates.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPlaced:
		return next == OrderStatusAssigned
	case OrderStatusAssigned:
		return next == OrderStatusInProgress
	case OrderStatusInProgress:
		return next == OrderStatusCompleted
	case OrderStatusCompleted:
		return next == OrderStatusReviewed
	case OrderStatusReviewed:
		return false
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusReviewed
}
