package database

import (
	"context"
	"path/filepath"
	"testing"
)

// newTestDB opens a migrated SQLite store in a temp directory
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(DialectSQLite, SQLiteDSN(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func mustCreateSubject(t *testing.T, db *DB, name, syllabusType string) string {
	t.Helper()
	id, err := db.CreateSubject(context.Background(), NewSubject{Name: name, SyllabusType: syllabusType})
	if err != nil {
		t.Fatalf("failed to create subject %s: %v", name, err)
	}
	return id
}

func mustExamSession(t *testing.T, db *DB, session string, year int) string {
	t.Helper()
	id, err := db.EnsureExamSession(context.Background(), session, year)
	if err != nil {
		t.Fatalf("failed to ensure exam session %s %d: %v", session, year, err)
	}
	return id
}
