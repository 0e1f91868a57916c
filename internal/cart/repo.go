package cart

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
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

// Create inserts a new cart item.
func (r *repository) Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item.Status == "" {
		item.Status = enums.CartItemStatusActive
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Save persists the provided cart item.
func (r *repository) Save(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindActiveByID returns the active item restricted to its owner.
func (r *repository) FindActiveByID(ctx context.Context, userID, cartItemID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND status = ?", cartItemID, userID, enums.CartItemStatusActive).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindActiveByProfile returns the user's active line for a profile, if any.
func (r *repository) FindActiveByProfile(ctx context.Context, userID, profileID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND profile_id = ? AND status = ?", userID, profileID, enums.CartItemStatusActive).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListActive returns the user's active cart lines with their service
// profiles preloaded, oldest first.
func (r *repository) ListActive(ctx context.Context, userID int64) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("user_id = ? AND status = ?", userID, enums.CartItemStatusActive).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActiveForUpdate locks and returns the user's active cart lines.
// Callers must be inside a transaction; the lock serializes concurrent
// checkouts over the same cart.
func (r *repository) ListActiveForUpdate(ctx context.Context, userID int64) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND status = ?", userID, enums.CartItemStatusActive).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteActiveByProfile removes the user's active line for a profile.
// Deleting a line that is already gone is not an error.
func (r *repository) DeleteActiveByProfile(ctx context.Context, userID, profileID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND profile_id = ? AND status = ?", userID, profileID, enums.CartItemStatusActive).
		Delete(&models.CartItem{}).Error
}

// MarkCheckedOut flips the provided active lines to checked_out and
// reports how many rows actually flipped.
func (r *repository) MarkCheckedOut(ctx context.Context, userID int64, ids []int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id IN ? AND user_id = ? AND status = ?", ids, userID, enums.CartItemStatusActive).
		Update("status", enums.CartItemStatusCheckedOut)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
