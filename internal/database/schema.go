package database

import (
	"context"
	"fmt"
)

// Table names
const (
	TableSubjects          = "subjects"
	TableExamSessions      = "exam_sessions"
	TableStaffUsers        = "staff_users"
	TableResources         = "resources"
	TablePapers            = "papers"
	TableCommunityRequests = "community_resource_requests"
)

// tableOrder lists tables so that foreign key targets come first
var tableOrder = []string{
	TableSubjects,
	TableExamSessions,
	TableStaffUsers,
	TableResources,
	TablePapers,
	TableCommunityRequests,
}

var mysqlTables = map[string]string{
	TableSubjects: `
		CREATE TABLE IF NOT EXISTS subjects (
			id CHAR(36) NOT NULL DEFAULT (UUID()),
			name TEXT NOT NULL,
			code TEXT,
			syllabus_type ENUM('IGCSE','IAL') NOT NULL,
			units JSON DEFAULT (JSON_ARRAY()),
			PRIMARY KEY (id)
		) ENGINE=InnoDB;`,
	TableExamSessions: `
		CREATE TABLE IF NOT EXISTS exam_sessions (
			id CHAR(36) NOT NULL DEFAULT (UUID()),
			session VARCHAR(50) NOT NULL,
			year INT NOT NULL,
			PRIMARY KEY (id)
		) ENGINE=InnoDB;`,
	TableStaffUsers: `
		CREATE TABLE IF NOT EXISTS staff_users (
			id CHAR(36) NOT NULL DEFAULT (UUID()),
			username VARCHAR(255) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role ENUM('admin','moderator') NOT NULL DEFAULT 'moderator',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id)
		) ENGINE=InnoDB;`,
	TableResources: `
		CREATE TABLE IF NOT EXISTS resources (
			id CHAR(36) NOT NULL DEFAULT (UUID()),
			subject_id CHAR(36) NOT NULL,
			resource_type ENUM('note','essay_questions','assorted_papers','youtube_videos','topic_question','commonly_asked_questions','solved_papers','extra_resource') NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			link TEXT NOT NULL,
			contributor_email TEXT,
			unit_chapter_name TEXT,
			approved ENUM('Approved','Unapproved','Pending') DEFAULT 'Unapproved',
			submitted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			CONSTRAINT resources_subject_id_fkey FOREIGN KEY (subject_id) REFERENCES subjects(id)
				ON UPDATE CASCADE ON DELETE CASCADE
		) ENGINE=InnoDB;`,
	TablePapers: `
		CREATE TABLE IF NOT EXISTS papers (
			id CHAR(36) NOT NULL DEFAULT (UUID()),
			subject_id CHAR(36) NOT NULL,
			exam_session_id CHAR(36) NOT NULL,
			unit_code VARCHAR(100) NOT NULL,
			question_paper_link TEXT,
			mark_scheme_link TEXT,
			examiner_report_link TEXT,
			PRIMARY KEY (id),
			CONSTRAINT papers_subject_id_fkey FOREIGN KEY (subject_id) REFERENCES subjects(id)
				ON UPDATE CASCADE ON DELETE CASCADE,
			CONSTRAINT papers_exam_session_id_fkey FOREIGN KEY (exam_session_id) REFERENCES exam_sessions(id)
				ON UPDATE CASCADE ON DELETE CASCADE
		) ENGINE=InnoDB;`,
	TableCommunityRequests: `
		CREATE TABLE IF NOT EXISTS community_resource_requests (
			id CHAR(36) NOT NULL DEFAULT (UUID()),
			contributor_name TEXT,
			contributor_email TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			link TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			unit_chapter_name TEXT,
			subject_id CHAR(36),
			approved ENUM('Approved','Unapproved','Pending') DEFAULT 'Unapproved',
			approved_at TIMESTAMP NULL,
			approved_by TEXT,
			rejection_reason TEXT,
			rejected BOOLEAN,
			submitter_ip VARCHAR(45),
			submitted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			version INT DEFAULT 1,
			like_count BIGINT DEFAULT 0,
			dislike_count BIGINT DEFAULT 0,
			PRIMARY KEY (id),
			CONSTRAINT community_resource_requests_subject_id_fkey FOREIGN KEY (subject_id) REFERENCES subjects(id)
				ON UPDATE CASCADE ON DELETE SET NULL
		) ENGINE=InnoDB;`,
}

var sqliteTables = map[string]string{
	TableSubjects: `
		CREATE TABLE IF NOT EXISTS subjects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			code TEXT,
			syllabus_type TEXT NOT NULL CHECK (syllabus_type IN ('IGCSE', 'IAL')),
			units TEXT NOT NULL DEFAULT '[]'
		);`,
	TableExamSessions: `
		CREATE TABLE IF NOT EXISTS exam_sessions (
			id TEXT PRIMARY KEY,
			session TEXT NOT NULL,
			year INTEGER NOT NULL
		);`,
	TableStaffUsers: `
		CREATE TABLE IF NOT EXISTS staff_users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'moderator' CHECK (role IN ('admin', 'moderator')),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
	TableResources: `
		CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			subject_id TEXT NOT NULL REFERENCES subjects(id) ON UPDATE CASCADE ON DELETE CASCADE,
			resource_type TEXT NOT NULL CHECK (resource_type IN ('note', 'essay_questions', 'assorted_papers', 'youtube_videos', 'topic_question', 'commonly_asked_questions', 'solved_papers', 'extra_resource')),
			title TEXT NOT NULL,
			description TEXT,
			link TEXT NOT NULL,
			contributor_email TEXT,
			unit_chapter_name TEXT,
			approved TEXT DEFAULT 'Unapproved' CHECK (approved IN ('Approved', 'Unapproved', 'Pending')),
			submitted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
	TablePapers: `
		CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			subject_id TEXT NOT NULL REFERENCES subjects(id) ON UPDATE CASCADE ON DELETE CASCADE,
			exam_session_id TEXT NOT NULL REFERENCES exam_sessions(id) ON UPDATE CASCADE ON DELETE CASCADE,
			unit_code TEXT NOT NULL,
			question_paper_link TEXT,
			mark_scheme_link TEXT,
			examiner_report_link TEXT
		);`,
	TableCommunityRequests: `
		CREATE TABLE IF NOT EXISTS community_resource_requests (
			id TEXT PRIMARY KEY,
			contributor_name TEXT,
			contributor_email TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			link TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			unit_chapter_name TEXT,
			subject_id TEXT REFERENCES subjects(id) ON UPDATE CASCADE ON DELETE SET NULL,
			approved TEXT DEFAULT 'Unapproved' CHECK (approved IN ('Approved', 'Unapproved', 'Pending')),
			approved_at TIMESTAMP,
			approved_by TEXT,
			rejection_reason TEXT,
			rejected INTEGER,
			submitter_ip TEXT,
			submitted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			version INTEGER DEFAULT 1,
			like_count INTEGER DEFAULT 0,
			dislike_count INTEGER DEFAULT 0
		);`,
}

// Unique indexes. MySQL has no IF NOT EXISTS for indexes, so creation tolerates
// "duplicate key name" instead.
var mysqlIndexes = map[string]string{
	"idx_papers_unique":        `CREATE UNIQUE INDEX idx_papers_unique ON papers (subject_id, exam_session_id, unit_code);`,
	"idx_exam_sessions_unique": `CREATE UNIQUE INDEX idx_exam_sessions_unique ON exam_sessions (session, year);`,
	"idx_subjects_name_type":   `CREATE UNIQUE INDEX idx_subjects_name_type ON subjects (name(191), syllabus_type);`,
}

var sqliteIndexes = map[string]string{
	"idx_papers_unique":        `CREATE UNIQUE INDEX IF NOT EXISTS idx_papers_unique ON papers (subject_id, exam_session_id, unit_code);`,
	"idx_exam_sessions_unique": `CREATE UNIQUE INDEX IF NOT EXISTS idx_exam_sessions_unique ON exam_sessions (session, year);`,
	"idx_subjects_name_type":   `CREATE UNIQUE INDEX IF NOT EXISTS idx_subjects_name_type ON subjects (name, syllabus_type);`,
}

var indexOrder = []string{
	"idx_papers_unique",
	"idx_exam_sessions_unique",
	"idx_subjects_name_type",
}

func tableDDL(dialect Dialect, table string) string {
	if dialect == DialectSQLite {
		return sqliteTables[table]
	}
	return mysqlTables[table]
}

func indexDDL(dialect Dialect, name string) string {
	if dialect == DialectSQLite {
		return sqliteIndexes[name]
	}
	return mysqlIndexes[name]
}

// schemaSQL joins the DDL for all tables in dependency order
func schemaSQL(dialect Dialect) string {
	var sql string
	for _, table := range tableOrder {
		sql += tableDDL(dialect, table) + "\n"
	}
	return sql
}

func indexesSQL(dialect Dialect) string {
	var sql string
	for _, name := range indexOrder {
		sql += indexDDL(dialect, name) + "\n"
	}
	return sql
}

// ensureTable creates a table if it does not exist
func (db *DB) ensureTable(ctx context.Context, table string) error {
	ddl := tableDDL(db.dialect, table)
	if ddl == "" {
		return fmt.Errorf("unknown table %q", table)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to ensure %s table: %w", table, err)
	}
	return nil
}

// ensureIndex creates a unique index if it does not exist
func (db *DB) ensureIndex(ctx context.Context, name string) error {
	ddl := indexDDL(db.dialect, name)
	if ddl == "" {
		return fmt.Errorf("unknown index %q", name)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil && !isDuplicateIndex(err) {
		return fmt.Errorf("failed to ensure index %s: %w", name, err)
	}
	return nil
}
