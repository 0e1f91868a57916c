package models

import (
	"time"

	"github.com/skillbazaar/marketplace-backend/pkg/enums"
)

// Notification stores in-app notification payloads per user. Push
// delivery happens through an external transport and is best-effort; the
// row here is the durable record.
type Notification struct {
	ID        int64                  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64                  `gorm:"column:user_id;not null;index"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title     string                 `gorm:"column:title;type:text;not null"`
	Message   string                 `gorm:"column:message;type:text;not null"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
