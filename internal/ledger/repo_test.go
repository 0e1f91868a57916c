package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  type TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  order_id INTEGER,
  status TEXT NOT NULL,
  description TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func mustCreate(t *testing.T, repo Repository, entry *models.LedgerEntry) *models.LedgerEntry {
	t.Helper()
	created, err := repo.Create(context.Background(), entry)
	require.NoError(t, err)
	return created
}

func TestRepoAvailableBalance(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	// Three settled credits of 5.00, one settled debit of 4.00, one
	// pending credit that must not count.
	for i := 0; i < 3; i++ {
		entry, err := NewCreditEntry(1, dec("5.00"), nil, enums.LedgerEntryStatusSettled, "referral reward")
		require.NoError(t, err)
		mustCreate(t, repo, entry)
	}
	debit, err := NewDebitEntry(1, dec("4.00"), 10, "credits redeemed")
	require.NoError(t, err)
	mustCreate(t, repo, debit)

	pending, err := NewCreditEntry(1, dec("100.00"), nil, enums.LedgerEntryStatusPending, "referral reward")
	require.NoError(t, err)
	mustCreate(t, repo, pending)

	balance, err := repo.AvailableBalance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("11.00")), "balance = %s, want 11.00", balance)
}

func TestRepoAvailableBalanceClampsAtZero(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	credit, err := NewCreditEntry(1, dec("2.00"), nil, enums.LedgerEntryStatusSettled, "")
	require.NoError(t, err)
	mustCreate(t, repo, credit)

	debit, err := NewDebitEntry(1, dec("5.00"), 10, "")
	require.NoError(t, err)
	mustCreate(t, repo, debit)

	balance, err := repo.AvailableBalance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "balance = %s, want 0", balance)
}

func TestRepoAvailableBalanceEmptyLedger(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)

	balance, err := repo.AvailableBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestRepoListByUserScopesAndCounts(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for _, userID := range []int64{1, 1, 2} {
		entry, err := NewCreditEntry(userID, dec("5.00"), nil, enums.LedgerEntryStatusSettled, "")
		require.NoError(t, err)
		mustCreate(t, repo, entry)
	}

	rows, err := repo.ListByUser(ctx, 1, 10, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, int64(1), row.UserID)
	}

	total, err := repo.CountByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestRepoMarkSettled(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pending, err := NewCreditEntry(1, dec("5.00"), nil, enums.LedgerEntryStatusPending, "")
	require.NoError(t, err)
	created := mustCreate(t, repo, pending)

	require.NoError(t, repo.MarkSettled(ctx, created.ID))

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.LedgerEntryStatusSettled, reloaded.Status)

	// Second settle finds no pending row.
	err = repo.MarkSettled(ctx, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
