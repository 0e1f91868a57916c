package users

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillbazaar/marketplace-backend/internal/ratings"
	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
)

// Repository defines the user persistence surface shared across services.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ApplyRating(ctx context.Context, id int64, rating decimal.Decimal) (*models.User, error)
	ReplaceRating(ctx context.Context, id int64, oldRating, newRating decimal.Decimal) (*models.User, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindByID loads a user by primary key.
func (r *repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDForUpdate loads a user row under a row-level lock. Callers
// must be inside a transaction.
func (r *repository) FindByIDForUpdate(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves the user matching the provided email. Emails
// are matched case-insensitively after trimming.
func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", normalized).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ApplyRating folds one rating into the user's aggregate and persists
// the updated statistic. Callers are expected to run this inside a
// transaction; the row is locked while the aggregate is recomputed.
func (r *repository) ApplyRating(ctx context.Context, id int64, rating decimal.Decimal) (*models.User, error) {
	user, err := r.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	agg := ratings.Aggregate{Sum: user.TotalRatingSum, Count: user.RatingCount}.Apply(rating)
	return r.persistAggregate(ctx, user, agg)
}

// ReplaceRating swaps an already-counted rating for an edited one,
// locking the row while the aggregate is recomputed. Callers are
// expected to run this inside a transaction.
func (r *repository) ReplaceRating(ctx context.Context, id int64, oldRating, newRating decimal.Decimal) (*models.User, error) {
	user, err := r.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	agg := ratings.Aggregate{Sum: user.TotalRatingSum, Count: user.RatingCount}.Replace(oldRating, newRating)
	return r.persistAggregate(ctx, user, agg)
}

func (r *repository) persistAggregate(ctx context.Context, user *models.User, agg ratings.Aggregate) (*models.User, error) {
	user.TotalRatingSum = agg.Sum
	user.RatingCount = agg.Count
	user.OverallRating = agg.Average()

	err := r.db.WithContext(ctx).
		Model(user).
		Select("total_rating_sum", "rating_count", "overall_rating").
		Updates(map[string]any{
			"total_rating_sum": user.TotalRatingSum,
			"rating_count":     user.RatingCount,
			"overall_rating":   user.OverallRating,
		}).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}
