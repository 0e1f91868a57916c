package reviews

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
)

// Repository defines the persistence surface for reviews.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	FindByID(ctx context.Context, id int64) (*models.Review, error)
	FindByOrderID(ctx context.Context, orderID int64) (*models.Review, error)
	ListByService(ctx context.Context, serviceID int64, limit, offset int) ([]models.Review, error)
	CountByService(ctx context.Context, serviceID int64) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status enums.ReviewStatus) (int64, error)
	UpdateContent(ctx context.Context, id int64, rating decimal.Decimal, comment string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a reviews repository bound to the provided DB.
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

// Create inserts a review. The unique index on order_id rejects a
// concurrent duplicate with a constraint violation.
func (r *repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.Status == "" {
		review.Status = enums.ReviewStatusActive
	}
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// FindByID loads a review by primary key.
func (r *repository) FindByID(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// FindByOrderID loads the review tied to an order, if any.
func (r *repository) FindByOrderID(ctx context.Context, orderID int64) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByService returns active reviews for a service profile, newest
// first.
func (r *repository) ListByService(ctx context.Context, serviceID int64, limit, offset int) ([]models.Review, error) {
	var rows []models.Review
	err := r.db.WithContext(ctx).
		Where("service_id = ? AND status = ?", serviceID, enums.ReviewStatusActive).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByService returns the active review count for a service profile.
func (r *repository) CountByService(ctx context.Context, serviceID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("service_id = ? AND status = ?", serviceID, enums.ReviewStatusActive).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// UpdateContent rewrites the rating and comment of an existing review.
func (r *repository) UpdateContent(ctx context.Context, id int64, rating decimal.Decimal, comment string) error {
	return r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating":  rating,
			"comment": comment,
		}).Error
}

// UpdateStatus flips a review's visibility and reports whether a row
// changed.
func (r *repository) UpdateStatus(ctx context.Context, id int64, status enums.ReviewStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ? AND status <> ?", id, status).
		Update("status", status)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
