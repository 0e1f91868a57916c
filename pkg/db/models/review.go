package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillbazaar/marketplace-backend/pkg/enums"
)

// Review holds one customer review per order. The unique index on
// order_id is the last line of defense against concurrent duplicate
// submissions; creation also advances the order to "reviewed" and feeds
// the rating aggregates, all in one transaction.
type Review struct {
	ID         int64              `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID    int64              `gorm:"column:order_id;not null;uniqueIndex"`
	UserID     int64              `gorm:"column:user_id;not null"`
	ProviderID int64              `gorm:"column:provider_id;not null"`
	ServiceID  int64              `gorm:"column:service_id;not null"`
	Rating     decimal.Decimal    `gorm:"column:rating;type:numeric(2,1);not null"`
	Comment    string             `gorm:"column:comment;type:text;not null"`
	Status     enums.ReviewStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
