package enums

import "fmt"

// ReviewStatus marks whether a review is publicly visible. Deactivation is
// a soft delete; the row and its rating contribution are retained.
type ReviewStatus string

const (
	ReviewStatusActive   ReviewStatus = "active"
	ReviewStatusInactive ReviewStatus = "inactive"
)

var validReviewStatuses = []ReviewStatus{
	ReviewStatusActive,
	ReviewStatusInactive,
}

// String implements fmt.Stringer.
func (s ReviewStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s ReviewStatus) IsValid() bool {
	for _, candidate := range validReviewStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReviewStatus converts raw input into a ReviewStatus.
func ParseReviewStatus(value string) (ReviewStatus, error) {
	for _, candidate := range validReviewStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid review status %q", value)
}
