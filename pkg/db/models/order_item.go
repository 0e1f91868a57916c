package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillbazaar/marketplace-backend/pkg/enums"
)

// OrderItem snapshots a cart line at checkout time. The snapshot is
// immutable once written, decoupling the order's historical record from
// later price changes on the source profile.
type OrderItem struct {
	ID         int64             `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID    int64             `gorm:"column:order_id;not null;index"`
	CartItemID int64             `gorm:"column:cart_item_id;not null"`
	ProfileID  int64             `gorm:"column:profile_id;not null"`
	AssignedTo *int64            `gorm:"column:assigned_to"`
	Quantity   int               `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal   `gorm:"column:unit_price;type:numeric(10,2);not null"`
	LineTotal  decimal.Decimal   `gorm:"column:line_total;type:numeric(10,2);not null"`
	Status     enums.OrderStatus `gorm:"column:status;type:text;not null;default:'order placed'"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`

	Profile *ServiceProfile `gorm:"foreignKey:ProfileID"`
}
