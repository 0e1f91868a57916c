package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillbazaar/marketplace-backend/pkg/enums"
)

// CartItem is a pending line owned by one user. line_total always equals
// quantity * unit_price as of the last mutation; rows mutate only while
// active and flip to checked_out exactly once, with order creation.
type CartItem struct {
	ID        int64                `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64                `gorm:"column:user_id;not null;index"`
	ProfileID int64                `gorm:"column:profile_id;not null"`
	Quantity  int                  `gorm:"column:quantity;not null;default:1"`
	UnitPrice decimal.Decimal      `gorm:"column:unit_price;type:numeric(10,2);not null"`
	LineTotal decimal.Decimal      `gorm:"column:line_total;type:numeric(10,2);not null"`
	Status    enums.CartItemStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`

	Profile *ServiceProfile `gorm:"foreignKey:ProfileID"`
}
