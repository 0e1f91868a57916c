package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skillbazaar/marketplace-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestEveryTableHasAMigration(t *testing.T) {
	tables := []string{
		"users", "service_profiles", "cart_items", "orders",
		"order_items", "ledger_entries", "reviews", "notifications",
	}
	for _, table := range tables {
		content := readMigration(t, "*_create_"+table+".sql")
		if !strings.Contains(content, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("migration for %s missing CREATE TABLE statement", table)
		}
		if !strings.Contains(content, "DROP TABLE IF EXISTS "+table) {
			t.Errorf("migration for %s missing DROP TABLE rollback", table)
		}
	}
}

func TestReviewsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_reviews.sql")

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_order ON reviews (order_id)",
		"CHECK (rating >= 1 AND rating <= 5)",
		"FOREIGN KEY (provider_id) REFERENCES users(id)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestLedgerMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_ledger_entries.sql")

	checks := []string{
		"CHECK (amount > 0)",
		"CHECK (type IN ('credit', 'debit'))",
		"CHECK (status IN ('pending', 'settled'))",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCartMigrationGuardsActiveLines(t *testing.T) {
	content := readMigration(t, "*_create_cart_items.sql")

	if !strings.Contains(content, "ON cart_items (user_id, profile_id) WHERE status = 'active'") {
		t.Error("missing partial unique index on active cart lines")
	}
}
