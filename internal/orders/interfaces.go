package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
)

// Repository defines the persistence surface for orders and their item
// snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Order, error)
	FindByIDAndUser(ctx context.Context, id, userID int64) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Order, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Order, error)
	CountAll(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus, assignedTo *int64) error
	SetReviewed(ctx context.Context, id, reviewID int64) error
}
