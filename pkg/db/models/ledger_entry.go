package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillbazaar/marketplace-backend/pkg/enums"
)

// LedgerEntry is an append-only credit or debit against a user's stored
// balance. Entries are never updated or deleted; balance is derived by
// summing settled entries. The settlement flip on pending referral
// credits is the single exception, performed by the back office.
type LedgerEntry struct {
	ID          int64                   `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      int64                   `gorm:"column:user_id;not null;index"`
	Type        enums.LedgerEntryType   `gorm:"column:type;type:text;not null"`
	Amount      decimal.Decimal         `gorm:"column:amount;type:numeric(10,2);not null"`
	OrderID     *int64                  `gorm:"column:order_id"`
	Status      enums.LedgerEntryStatus `gorm:"column:status;type:text;not null"`
	Description string                  `gorm:"column:description;type:text"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}
