package database

import (
	"context"
	"fmt"
)

// StoreStats summarizes the contents of the store
type StoreStats struct {
	Version        string
	SchemaVersion  int
	TableRows      map[string]int64
	SubjectsByType map[string]int64
}

// Ping checks connectivity within the query timeout
func (db *DB) Ping(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database not initialized")
	}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Stats reports the server version, schema version, row counts per table and subjects per syllabus type.
// Tables that do not exist yet are skipped.
func (db *DB) Stats(ctx context.Context) (*StoreStats, error) {
	stats := &StoreStats{
		TableRows:      make(map[string]int64),
		SubjectsByType: make(map[string]int64),
	}

	versionQuery := "SELECT VERSION()"
	if db.dialect == DialectSQLite {
		versionQuery = "SELECT sqlite_version()"
	}
	if err := db.GetContext(ctx, &stats.Version, versionQuery); err != nil {
		return nil, fmt.Errorf("failed to get server version: %w", err)
	}

	if v, err := db.SchemaVersion(ctx); err == nil {
		stats.SchemaVersion = v
	}

	for _, table := range tableOrder {
		var count int64
		// table names come from the fixed schema list
		if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+table); err != nil {
			continue
		}
		stats.TableRows[table] = count
	}

	if _, ok := stats.TableRows[TableSubjects]; ok {
		rows := []struct {
			SyllabusType string `db:"syllabus_type"`
			Num          int64  `db:"num"`
		}{}
		if err := db.SelectContext(ctx, &rows, `
			SELECT syllabus_type, COUNT(*) AS num FROM subjects GROUP BY syllabus_type
		`); err != nil {
			return nil, fmt.Errorf("failed to count subjects by type: %w", err)
		}
		for _, r := range rows {
			stats.SubjectsByType[r.SyllabusType] = r.Num
		}
	}

	return stats, nil
}
