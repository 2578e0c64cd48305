package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PaperBatchSize is the number of rows per multi-row upsert
const PaperBatchSize = 100

// SubjectPaper is a paper joined with its exam session
type SubjectPaper struct {
	ID                 string  `db:"id" json:"id"`
	UnitCode           string  `db:"unit_code" json:"unit_code"`
	QuestionPaperLink  *string `db:"question_paper_link" json:"question_paper_link"`
	MarkSchemeLink     *string `db:"mark_scheme_link" json:"mark_scheme_link"`
	ExaminerReportLink *string `db:"examiner_report_link" json:"examiner_report_link"`
	Session            string  `db:"session" json:"session"`
	Year               int     `db:"year" json:"year"`
}

// PastPaper is a paper of one exam session across all subjects
type PastPaper struct {
	ID                 string  `db:"id" json:"id"`
	SubjectID          string  `db:"subject_id" json:"subject_id"`
	SubjectName        string  `db:"subject_name" json:"subject_name"`
	SyllabusType       string  `db:"syllabus_type" json:"syllabus_type"`
	UnitCode           string  `db:"unit_code" json:"unit_code"`
	QuestionPaperLink  *string `db:"question_paper_link" json:"question_paper_link"`
	MarkSchemeLink     *string `db:"mark_scheme_link" json:"mark_scheme_link"`
	ExaminerReportLink *string `db:"examiner_report_link" json:"examiner_report_link"`
	Session            string  `db:"session" json:"session"`
	Year               int     `db:"year" json:"year"`
}

// PaperInput holds the fields for a paper upsert.
// Empty links are stored as NULL.
type PaperInput struct {
	SubjectID          string
	ExamSessionID      string
	UnitCode           string
	QuestionPaperLink  string
	MarkSchemeLink     string
	ExaminerReportLink string
}

// ListSubjectPapers returns a subject's papers ordered by unit, newest year, then session
func (db *DB) ListSubjectPapers(ctx context.Context, subjectID string) ([]SubjectPaper, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	papers := []SubjectPaper{}
	if err := db.SelectContext(ctx, &papers, `
		SELECT p.id, p.unit_code, p.question_paper_link, p.mark_scheme_link, p.examiner_report_link,
		       e.session, e.year
		FROM papers p
		JOIN exam_sessions e ON e.id = p.exam_session_id
		WHERE p.subject_id = ?
		ORDER BY p.unit_code ASC, e.year DESC, e.session ASC
	`, subjectID); err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	return papers, nil
}

// ListPastPapers returns the papers of one exam session ordered by unit code
func (db *DB) ListPastPapers(ctx context.Context, year int, session string) ([]PastPaper, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	papers := []PastPaper{}
	if err := db.SelectContext(ctx, &papers, `
		SELECT p.id, p.subject_id, s.name AS subject_name, s.syllabus_type, p.unit_code,
		       p.question_paper_link, p.mark_scheme_link, p.examiner_report_link,
		       e.session, e.year
		FROM papers p
		JOIN exam_sessions e ON e.id = p.exam_session_id
		JOIN subjects s ON s.id = p.subject_id
		WHERE e.year = ? AND e.session = ?
		ORDER BY p.unit_code ASC
	`, year, session); err != nil {
		return nil, fmt.Errorf("failed to list past papers: %w", err)
	}
	return papers, nil
}

// UpsertPaper inserts a paper or replaces the links of the existing
// (subject, exam session, unit) row. The table and its unique index are created if missing.
func (db *DB) UpsertPaper(ctx context.Context, p PaperInput) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if err := db.ensurePapersTable(ctx); err != nil {
		return err
	}

	query, args := db.upsertPapersQuery([]PaperInput{p})
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert paper: %w", err)
	}
	return nil
}

// UpsertPapers upserts papers in batches of PaperBatchSize and returns the number processed
func (db *DB) UpsertPapers(ctx context.Context, papers []PaperInput) (int, error) {
	if len(papers) == 0 {
		return 0, nil
	}
	if err := db.ensurePapersTable(ctx); err != nil {
		return 0, err
	}

	processed := 0
	err := db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(papers); start += PaperBatchSize {
			end := min(start+PaperBatchSize, len(papers))
			query, args := db.upsertPapersQuery(papers[start:end])
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to upsert papers %d-%d: %w", start+1, end, err)
			}
			processed = end
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return processed, nil
}

func (db *DB) ensurePapersTable(ctx context.Context) error {
	if err := db.ensureTable(ctx, TablePapers); err != nil {
		return err
	}
	return db.ensureIndex(ctx, "idx_papers_unique")
}

// upsertPapersQuery builds a multi-row upsert in the pool's dialect
func (db *DB) upsertPapersQuery(papers []PaperInput) (string, []any) {
	placeholders := make([]string, 0, len(papers))
	args := make([]any, 0, len(papers)*7)
	for _, p := range papers {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			uuid.NewString(),
			p.SubjectID,
			p.ExamSessionID,
			p.UnitCode,
			nullIfEmpty(p.QuestionPaperLink),
			nullIfEmpty(p.MarkSchemeLink),
			nullIfEmpty(p.ExaminerReportLink),
		)
	}

	var conflict string
	if db.dialect == DialectSQLite {
		conflict = `
		ON CONFLICT (subject_id, exam_session_id, unit_code) DO UPDATE SET
			question_paper_link = excluded.question_paper_link,
			mark_scheme_link = excluded.mark_scheme_link,
			examiner_report_link = excluded.examiner_report_link`
	} else {
		conflict = `
		ON DUPLICATE KEY UPDATE
			question_paper_link = VALUES(question_paper_link),
			mark_scheme_link = VALUES(mark_scheme_link),
			examiner_report_link = VALUES(examiner_report_link)`
	}

	query := `
		INSERT INTO papers (id, subject_id, exam_session_id, unit_code, question_paper_link, mark_scheme_link, examiner_report_link)
		VALUES ` + strings.Join(placeholders, ", ") + conflict
	return query, args
}
