package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceProfile is a marketplace listing. The three rating columns form
// a sufficient statistic for the running mean; full history stays in the
// reviews table.
type ServiceProfile struct {
	ID              int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Title           string          `gorm:"column:title;type:text;not null"`
	Tagline         string          `gorm:"column:tagline;type:text;not null"`
	ExperienceRange string          `gorm:"column:experience_range;type:text;not null"`
	HourlyRate      decimal.Decimal `gorm:"column:hourly_rate;type:numeric(10,2);not null"`
	ProfileImage    *string         `gorm:"column:profile_image;type:text"`
	IsActive        bool            `gorm:"column:is_active;not null;default:true"`
	OverallRating   decimal.Decimal `gorm:"column:overall_rating;type:numeric(4,2);not null;default:0"`
	RatingCount     int64           `gorm:"column:rating_count;not null;default:0"`
	TotalRatingSum  decimal.Decimal `gorm:"column:total_rating_sum;type:numeric(10,2);not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
