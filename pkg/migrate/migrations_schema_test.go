package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cafeconecta/cafeconecta-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestInitSchemaContainsMarketplaceConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE UNIQUE INDEX ux_interests_lot_buyer ON interests (lot_id, buyer_id)",
		"CREATE UNIQUE INDEX ux_negotiations_lot_buyer ON negotiations (lot_id, buyer_id)",
		"CREATE UNIQUE INDEX ux_chat_messages_session_seq ON chat_messages (session_id, seq)",
		"CHECK (status IN ('available', 'reserved', 'sold'))",
		"CHECK (status IN ('open', 'negotiating', 'closed'))",
		"WHERE published_at IS NULL",
		"DROP TABLE IF EXISTS outbox_events",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSeedMigrationCoversBothQuoteTypes(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_seed_market_board.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no seed migration found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	for _, sub := range []string{"'Arábica'", "'Robusta'", "ON CONFLICT (type) DO NOTHING"} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
