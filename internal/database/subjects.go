package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Syllabus types
const (
	SyllabusIGCSE = "IGCSE"
	SyllabusIAL   = "IAL"
)

// SyllabusTypes lists the accepted syllabus types
var SyllabusTypes = []string{SyllabusIGCSE, SyllabusIAL}

// Subject is a full subjects row
type Subject struct {
	ID           string  `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Code         *string `db:"code" json:"code"`
	SyllabusType string  `db:"syllabus_type" json:"syllabus_type"`
	Units        Units   `db:"units" json:"units"`
}

// SubjectDetail is the lookup projection of a subject
type SubjectDetail struct {
	ID    string  `db:"id" json:"id"`
	Code  *string `db:"code" json:"code"`
	Units Units   `db:"units" json:"units"`
}

// SubjectRef identifies a resolved subject
type SubjectRef struct {
	ID   string  `db:"id" json:"id"`
	Name string  `db:"name" json:"name"`
	Code *string `db:"code" json:"code"`
}

// SubjectName is a subject name projection
type SubjectName struct {
	Name string `db:"name" json:"name"`
}

// SubjectListing is a name and syllabus type pair
type SubjectListing struct {
	Name         string `db:"name" json:"name"`
	SyllabusType string `db:"syllabus_type" json:"syllabus_type"`
}

// NewSubject holds the fields for a subject insert
type NewSubject struct {
	Name         string
	Code         string
	SyllabusType string
	Units        []string
}

// GetSubject looks up a subject by name and syllabus type.
// Returns nil, nil if no subject matches.
func (db *DB) GetSubject(ctx context.Context, name, syllabusType string) (*SubjectDetail, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	subject := &SubjectDetail{}
	err := db.GetContext(ctx, subject, `
		SELECT id, code, units FROM subjects
		WHERE name = ? AND syllabus_type = ?
		LIMIT 1
	`, name, syllabusType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return subject, nil
}

// FindSubjectRef resolves a subject's id, name and code.
// Returns nil, nil if no subject matches.
func (db *DB) FindSubjectRef(ctx context.Context, name, syllabusType string) (*SubjectRef, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	ref := &SubjectRef{}
	err := db.GetContext(ctx, ref, `
		SELECT id, name, code FROM subjects
		WHERE name = ? AND syllabus_type = ?
		LIMIT 1
	`, name, syllabusType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve subject: %w", err)
	}
	return ref, nil
}

// ListSubjectNames returns the names of all subjects of a syllabus type, alphabetically
func (db *DB) ListSubjectNames(ctx context.Context, syllabusType string) ([]SubjectName, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	names := []SubjectName{}
	if err := db.SelectContext(ctx, &names, `
		SELECT name FROM subjects WHERE syllabus_type = ? ORDER BY name ASC
	`, syllabusType); err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return names, nil
}

// ListSubjects returns every subject ordered by name
func (db *DB) ListSubjects(ctx context.Context) ([]Subject, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	subjects := []Subject{}
	if err := db.SelectContext(ctx, &subjects, `
		SELECT id, name, code, syllabus_type, units FROM subjects ORDER BY name ASC
	`); err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

// ListSubjectCatalog returns name and syllabus type of every subject ordered by name
func (db *DB) ListSubjectCatalog(ctx context.Context) ([]SubjectListing, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	listings := []SubjectListing{}
	if err := db.SelectContext(ctx, &listings, `
		SELECT name, syllabus_type FROM subjects ORDER BY name ASC
	`); err != nil {
		return nil, fmt.Errorf("failed to list subject catalog: %w", err)
	}
	return listings, nil
}

// CreateSubject inserts a subject, creating the table first if needed.
// Returns ErrDuplicate if the name and syllabus type pair already exists.
func (db *DB) CreateSubject(ctx context.Context, s NewSubject) (string, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if err := db.ensureTable(ctx, TableSubjects); err != nil {
		return "", err
	}

	id := uuid.NewString()
	err := db.Transaction(ctx, func(tx *sqlx.Tx) error {
		exists, err := subjectExists(ctx, tx, s.Name, s.SyllabusType)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicate
		}
		return insertSubject(ctx, tx, id, s)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return "", ErrDuplicate
		}
		return "", err
	}
	return id, nil
}

// EnsureSubjects inserts the subjects that do not exist yet and returns how many were added
func (db *DB) EnsureSubjects(ctx context.Context, subjects []NewSubject) (int, error) {
	if err := db.ensureTable(ctx, TableSubjects); err != nil {
		return 0, err
	}

	inserted := 0
	err := db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for _, s := range subjects {
			exists, err := subjectExists(ctx, tx, s.Name, s.SyllabusType)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := insertSubject(ctx, tx, uuid.NewString(), s); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func subjectExists(ctx context.Context, tx *sqlx.Tx, name, syllabusType string) (bool, error) {
	var id string
	err := tx.GetContext(ctx, &id, `
		SELECT id FROM subjects WHERE name = ? AND syllabus_type = ? LIMIT 1
	`, name, syllabusType)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check subject: %w", err)
	}
	return true, nil
}

func insertSubject(ctx context.Context, tx *sqlx.Tx, id string, s NewSubject) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO subjects (id, name, code, syllabus_type, units)
		VALUES (?, ?, ?, ?, ?)
	`, id, s.Name, nullIfEmpty(s.Code), s.SyllabusType, Units(s.Units))
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create subject: %w", err)
	}
	return nil
}
