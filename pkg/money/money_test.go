package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound2HalfUp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"10.005", "10.01"},
		{"10.004", "10"},
		{"99.999", "100"},
		{"-1.005", "-1.01"},
		{"0", "0"},
	}
	for _, tt := range tests {
		got := Round2(decimal.RequireFromString(tt.in))
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Fatalf("Round2(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestClampZero(t *testing.T) {
	t.Parallel()

	if got := ClampZero(decimal.RequireFromString("-0.01")); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
	if got := ClampZero(decimal.RequireFromString("3.50")); !got.Equal(decimal.RequireFromString("3.5")) {
		t.Fatalf("positive value should pass through, got %s", got)
	}
}

func TestMin(t *testing.T) {
	t.Parallel()

	a := decimal.RequireFromString("12.00")
	b := decimal.RequireFromString("11.99")
	if got := Min(a, b); !got.Equal(b) {
		t.Fatalf("expected %s, got %s", b, got)
	}
	if got := Min(b, a); !got.Equal(b) {
		t.Fatalf("expected %s, got %s", b, got)
	}
}
