package cart

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
)

// Repository defines the persistence surface required by the cart
// service and the checkout pipeline.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	Save(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	FindActiveByID(ctx context.Context, userID, cartItemID int64) (*models.CartItem, error)
	FindActiveByProfile(ctx context.Context, userID, profileID int64) (*models.CartItem, error)
	ListActive(ctx context.Context, userID int64) ([]models.CartItem, error)
	ListActiveForUpdate(ctx context.Context, userID int64) ([]models.CartItem, error)
	DeleteActiveByProfile(ctx context.Context, userID, profileID int64) error
	MarkCheckedOut(ctx context.Context, userID int64, ids []int64) (int64, error)
}
