package profiles

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillbazaar/marketplace-backend/internal/ratings"
	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
)

// Repository defines the persistence surface for service profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, profile *models.ServiceProfile) (*models.ServiceProfile, error)
	Save(ctx context.Context, profile *models.ServiceProfile) (*models.ServiceProfile, error)
	FindByID(ctx context.Context, id int64) (*models.ServiceProfile, error)
	List(ctx context.Context, limit, offset int) ([]models.ServiceProfile, error)
	Count(ctx context.Context) (int64, error)
	ApplyRating(ctx context.Context, id int64, rating decimal.Decimal) (*models.ServiceProfile, error)
	ReplaceRating(ctx context.Context, id int64, oldRating, newRating decimal.Decimal) (*models.ServiceProfile, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a profiles repository bound to the provided DB.
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

// Create inserts a new profile.
func (r *repository) Create(ctx context.Context, profile *models.ServiceProfile) (*models.ServiceProfile, error) {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// Save persists the provided profile.
func (r *repository) Save(ctx context.Context, profile *models.ServiceProfile) (*models.ServiceProfile, error) {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// FindByID loads a profile by primary key.
func (r *repository) FindByID(ctx context.Context, id int64) (*models.ServiceProfile, error) {
	var profile models.ServiceProfile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// List returns profiles newest first.
func (r *repository) List(ctx context.Context, limit, offset int) ([]models.ServiceProfile, error) {
	var rows []models.ServiceProfile
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the total number of profiles.
func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ServiceProfile{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// ApplyRating folds one rating into the profile's aggregate under a
// row-level lock. Callers must be inside a transaction.
func (r *repository) ApplyRating(ctx context.Context, id int64, rating decimal.Decimal) (*models.ServiceProfile, error) {
	var profile models.ServiceProfile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	agg := ratings.Aggregate{Sum: profile.TotalRatingSum, Count: profile.RatingCount}.Apply(rating)
	return r.persistAggregate(ctx, &profile, agg)
}

// ReplaceRating swaps an already-counted rating for an edited one under
// a row-level lock. Callers must be inside a transaction.
func (r *repository) ReplaceRating(ctx context.Context, id int64, oldRating, newRating decimal.Decimal) (*models.ServiceProfile, error) {
	var profile models.ServiceProfile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	agg := ratings.Aggregate{Sum: profile.TotalRatingSum, Count: profile.RatingCount}.Replace(oldRating, newRating)
	return r.persistAggregate(ctx, &profile, agg)
}

func (r *repository) persistAggregate(ctx context.Context, profile *models.ServiceProfile, agg ratings.Aggregate) (*models.ServiceProfile, error) {
	profile.TotalRatingSum = agg.Sum
	profile.RatingCount = agg.Count
	profile.OverallRating = agg.Average()

	err := r.db.WithContext(ctx).
		Model(profile).
		Updates(map[string]any{
			"total_rating_sum": profile.TotalRatingSum,
			"rating_count":     profile.RatingCount,
			"overall_rating":   profile.OverallRating,
		}).Error
	if err != nil {
		return nil, err
	}
	return profile, nil
}
