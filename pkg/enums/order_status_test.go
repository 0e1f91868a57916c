package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPlaced, OrderStatusAssigned, true},
		{OrderStatusAssigned, OrderStatusInProgress, true},
		{OrderStatusInProgress, OrderStatusCompleted, true},
		{OrderStatusCompleted, OrderStatusReviewed, true},
		{OrderStatusPlaced, OrderStatusCompleted, false},
		{OrderStatusAssigned, OrderStatusPlaced, false},
		{OrderStatusCompleted, OrderStatusInProgress, false},
		{OrderStatusReviewed, OrderStatusCompleted, false},
		{OrderStatusReviewed, OrderStatusReviewed, false},
	}
	for _, tc := range tests {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if !OrderStatusReviewed.IsTerminal() {
		t.Fatal("reviewed must be terminal")
	}
	if OrderStatusCompleted.IsTerminal() {
		t.Fatal("completed is not terminal; a review can still arrive")
	}
}

func TestParseOrderStatus(t *testing.T) {
	if status, err := ParseOrderStatus("in progress"); err != nil || status != OrderStatusInProgress {
		t.Fatalf("ParseOrderStatus(in progress) = %v, %v", status, err)
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("unknown status must fail to parse")
	}
}
