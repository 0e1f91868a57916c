package enums

import "fmt"

// LedgerEntryStatus gates whether an entry counts toward the available
// balance. Referral credits are written pending and settled by a manual
// back-office step; debits settle immediately.
type LedgerEntryStatus string

const (
	LedgerEntryStatusPending LedgerEntryStatus = "pending"
	LedgerEntryStatusSettled LedgerEntryStatus = "settled"
)

var validLedgerEntryStatuses = []LedgerEntryStatus{
	LedgerEntryStatusPending,
	LedgerEntryStatusSettled,
}

// String implements fmt.Stringer.
func (s LedgerEntryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s LedgerEntryStatus) IsValid() bool {
	for _, candidate := range validLedgerEntryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLedgerEntryStatus converts raw input into a LedgerEntryStatus.
func ParseLedgerEntryStatus(value string) (LedgerEntryStatus, error) {
	for _, candidate := range validLedgerEntryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry status %q", value)
}
