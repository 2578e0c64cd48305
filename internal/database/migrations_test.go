package database

import (
	"context"
	"testing"
)

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate returned error: %v", err)
	}

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion returned error: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Fatalf("expected schema version %d, got %d", LatestSchemaVersion(), version)
	}

	stats, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	for _, table := range tableOrder {
		if _, ok := stats.TableRows[table]; !ok {
			t.Errorf("expected table %s to exist", table)
		}
	}
}

func TestSplitSQLStatements(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"empty", "", 0},
		{"single", "CREATE TABLE a (id INTEGER);", 1},
		{"comments skipped", "-- comment\nCREATE TABLE a (id INTEGER);\n-- trailing", 1},
		{"multi line", "CREATE TABLE a (\n  id INTEGER,\n  name TEXT\n);\nCREATE INDEX i ON a (id);", 2},
		{"no trailing semicolon", "SELECT 1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSQLStatements(tt.sql)
			if len(got) != tt.want {
				t.Fatalf("expected %d statements, got %d: %q", tt.want, len(got), got)
			}
		})
	}

	if n := len(splitSQLStatements(schemaSQL(DialectSQLite))); n != len(tableOrder) {
		t.Fatalf("expected %d schema statements, got %d", len(tableOrder), n)
	}
}
