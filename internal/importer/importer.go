// Package importer loads subjects and past papers from the data-import tree:
//
//	<dir>/<IAL|IGCSE>/<Subject Name (YYYY)>/<Session>-<YYYY>.json
package importer

import (
	"context"

	"github.com/eduvance/portal/internal/database"
)

// Store is the slice of the database the importer writes through
type Store interface {
	FindSubjectRef(ctx context.Context, name, syllabusType string) (*database.SubjectRef, error)
	EnsureSubjects(ctx context.Context, subjects []database.NewSubject) (int, error)
	EnsureExamSession(ctx context.Context, session string, year int) (string, error)
	UpsertPapers(ctx context.Context, papers []database.PaperInput) (int, error)
}

// Importer reads the data-import directory into the store
type Importer struct {
	store Store
	dir   string
}

// New creates an importer rooted at dir
func New(store Store, dir string) *Importer {
	return &Importer{store: store, dir: dir}
}

// Dir returns the data-import root
func (i *Importer) Dir() string {
	return i.dir
}
