package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillbazaar/marketplace-backend/pkg/enums"
)

// Order is the immutable monetary record of one checkout. Only status,
// the assignee and the review back-reference change after creation;
// total_amount = subtotal + gst_amount - credit_applied and is never
// negative.
type Order struct {
	ID            int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        int64             `gorm:"column:user_id;not null;index"`
	AssignedTo    *int64            `gorm:"column:assigned_to"`
	Subtotal      decimal.Decimal   `gorm:"column:subtotal;type:numeric(10,2);not null"`
	GSTAmount     decimal.Decimal   `gorm:"column:gst_amount;type:numeric(10,2);not null"`
	CreditApplied decimal.Decimal   `gorm:"column:credit_applied;type:numeric(10,2);not null;default:0"`
	TotalAmount   decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null"`
	TotalHours    int               `gorm:"column:total_hours;not null"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'order placed'"`
	ReviewID      *int64            `gorm:"column:review_id"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}
