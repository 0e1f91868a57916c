// Package ratings maintains running rating aggregates for rateable
// targets. The aggregate is carried as a sufficient statistic (sum and
// count) so applying ratings in any order yields the same result as
// recomputing the mean from scratch.
package ratings

import (
	"github.com/shopspring/decimal"

	"github.com/skillbazaar/marketplace-backend/pkg/money"
)

// Aggregate is the running rating state of a single target.
type Aggregate struct {
	Sum   decimal.Decimal
	Count int64
}

// Apply folds one new rating into the aggregate.
func (a Aggregate) Apply(rating decimal.Decimal) Aggregate {
	return Aggregate{
		Sum:   a.Sum.Add(rating),
		Count: a.Count + 1,
	}
}

// Replace swaps one already-counted rating for another, leaving the
// count untouched. Used when a review is edited in place.
func (a Aggregate) Replace(oldRating, newRating decimal.Decimal) Aggregate {
	return Aggregate{
		Sum:   a.Sum.Sub(oldRating).Add(newRating),
		Count: a.Count,
	}
}

// Average returns the mean rating rounded to two decimals, or zero for
// a target that has never been rated.
func (a Aggregate) Average() decimal.Decimal {
	if a.Count <= 0 {
		return decimal.Zero
	}
	return money.Round2(a.Sum.Div(decimal.NewFromInt(a.Count)))
}
