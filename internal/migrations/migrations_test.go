package migrations

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFiles.ReadDir(".")
	if err != nil {
		t.Fatalf("Failed to read embedded migrations: %v", err)
	}

	foundSQL := false
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			foundSQL = true
			t.Logf("Found migration: %s", entry.Name())
		}
	}

	if !foundSQL {
		t.Error("No .sql migration files found in embedFS")
	}
}

func TestOrdersSchemaDefined(t *testing.T) {
	data, err := migrationFiles.ReadFile("001_create_orders.sql")
	if err != nil {
		t.Fatalf("Failed to read orders migration: %v", err)
	}

	schema := string(data)
	for _, want := range []string{"orders", "order_files", "idx_orders_order_id", "ON DELETE CASCADE"} {
		if !strings.Contains(schema, want) {
			t.Errorf("orders migration does not mention %q", want)
		}
	}
}

func TestRunWithInvalidDB(t *testing.T) {
	db, err := sql.Open("pgx", "invalid://connection")
	if err != nil {
		t.Skipf("Cannot create test DB connection: %v", err)
	}
	defer db.Close()

	// Run должен вернуть ошибку для невалидного подключения
	if err := Run(db); err == nil {
		t.Error("Expected error for invalid DB connection, got nil")
	}
}

func TestVersionWithInvalidDB(t *testing.T) {
	db, err := sql.Open("pgx", "invalid://connection")
	if err != nil {
		t.Skipf("Cannot create test DB connection: %v", err)
	}
	defer db.Close()

	if _, err := Version(db); err == nil {
		t.Error("Expected error for invalid DB connection, got nil")
	}
}
