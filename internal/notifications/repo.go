package notifications

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
)

// Repository defines the persistence surface for in-app notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID int64, at time.Time) (int64, error)
	MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a notifications repository bound to the provided DB.
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

// Create inserts a notification row.
func (r *repository) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

// ListByUser returns the user's notifications, newest first.
func (r *repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByUser returns the user's total notification count.
func (r *repository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// MarkRead stamps one unread notification owned by the user.
func (r *repository) MarkRead(ctx context.Context, userID, notificationID int64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", at)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// MarkAllRead stamps every unread notification owned by the user.
func (r *repository) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
