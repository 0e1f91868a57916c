package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillbazaar/marketplace-backend/pkg/enums"
)

// User is a marketplace account. Providers accumulate the same rating
// sufficient statistic as service profiles, aggregated across every
// service they fulfill.
type User struct {
	ID             int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name           string          `gorm:"column:name;type:text;not null"`
	Email          string          `gorm:"column:email;type:text;not null;uniqueIndex"`
	Role           enums.UserRole  `gorm:"column:role;type:text;not null;default:'customer'"`
	OverallRating  decimal.Decimal `gorm:"column:overall_rating;type:numeric(4,2);not null;default:0"`
	RatingCount    int64           `gorm:"column:rating_count;not null;default:0"`
	TotalRatingSum decimal.Decimal `gorm:"column:total_rating_sum;type:numeric(10,2);not null;default:0"`
	DeviceToken    *string         `gorm:"column:device_token;type:text"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
