package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
	"github.com/skillbazaar/marketplace-backend/pkg/money"
)

// Repository defines the persistence surface for ledger entries. The
// ledger is append-only: entries are created and listed, never updated,
// with the single exception of flipping a pending credit to settled.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error)
	FindByID(ctx context.Context, id int64) (*models.LedgerEntry, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.LedgerEntry, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	AvailableBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	MarkSettled(ctx context.Context, id int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create appends a new entry.
func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// FindByID loads a single entry.
func (r *repository) FindByID(ctx context.Context, id int64) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByUser returns the user's entries, newest first.
func (r *repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.LedgerEntry, error) {
	var rows []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByUser returns the total number of entries for the user.
func (r *repository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// AvailableBalance derives the spendable balance from settled entries:
// settled credits minus settled debits, clamped at zero. Pending
// credits never count.
func (r *repository) AvailableBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	type sumRow struct {
		Type  enums.LedgerEntryType
		Total decimal.Decimal
	}

	var sums []sumRow
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND status = ?", userID, enums.LedgerEntryStatusSettled).
		Group("type").
		Scan(&sums).Error
	if err != nil {
		return decimal.Zero, err
	}

	credits, debits := decimal.Zero, decimal.Zero
	for _, row := range sums {
		switch row.Type {
		case enums.LedgerEntryTypeCredit:
			credits = row.Total
		case enums.LedgerEntryTypeDebit:
			debits = row.Total
		}
	}
	return money.Round2(money.ClampZero(credits.Sub(debits))), nil
}

// MarkSettled flips a pending credit entry to settled. The status
// predicate keeps the flip idempotency-safe under races.
func (r *repository) MarkSettled(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("id = ? AND type = ? AND status = ?", id, enums.LedgerEntryTypeCredit, enums.LedgerEntryStatusPending).
		Update("status", enums.LedgerEntryStatusSettled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
