package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/eduvance/portal/internal/database"
)

// yearSuffix matches folder names like "Accounting (2013)"
var yearSuffix = regexp.MustCompile(`^(.+?)\s*\((\d{4})\)$`)

// SubjectFolder is a subject directory found under a syllabus folder
type SubjectFolder struct {
	Name         string
	SyllabusType string
	Path         string
}

// SubjectName strips a trailing "(YYYY)" from a folder name
func SubjectName(folder string) string {
	if m := yearSuffix.FindStringSubmatch(folder); m != nil {
		return strings.TrimSpace(m[1])
	}
	return folder
}

// ScanSubjects lists the subject folders under <dir>/IAL and <dir>/IGCSE.
// A missing syllabus folder is skipped.
func ScanSubjects(dir string) ([]SubjectFolder, error) {
	var folders []SubjectFolder

	for _, syllabusType := range database.SyllabusTypes {
		typeDir := filepath.Join(dir, syllabusType)
		entries, err := os.ReadDir(typeDir)
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", typeDir).Msg("Syllabus folder not found, skipping")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", typeDir, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			folders = append(folders, SubjectFolder{
				Name:         SubjectName(entry.Name()),
				SyllabusType: syllabusType,
				Path:         filepath.Join(typeDir, entry.Name()),
			})
		}
	}

	return folders, nil
}

// FindSubjectFolder returns the folder holding a subject's paper files, or nil
func FindSubjectFolder(dir, name, syllabusType string) (*SubjectFolder, error) {
	folders, err := ScanSubjects(dir)
	if err != nil {
		return nil, err
	}
	for _, f := range folders {
		if f.SyllabusType == syllabusType && strings.EqualFold(f.Name, name) {
			return &f, nil
		}
	}
	return nil, nil
}

// SeedSubjects inserts a subject for every folder not yet in the store
// and returns the number inserted
func (i *Importer) SeedSubjects(ctx context.Context) (int, error) {
	folders, err := ScanSubjects(i.dir)
	if err != nil {
		return 0, err
	}
	if len(folders) == 0 {
		log.Warn().Str("dir", i.dir).Msg("No subject folders found")
		return 0, nil
	}

	subjects := make([]database.NewSubject, 0, len(folders))
	for _, f := range folders {
		subjects = append(subjects, database.NewSubject{
			Name:         f.Name,
			SyllabusType: f.SyllabusType,
		})
	}

	inserted, err := i.store.EnsureSubjects(ctx, subjects)
	if err != nil {
		return 0, err
	}

	log.Info().
		Int("found", len(folders)).
		Int("inserted", inserted).
		Msg("Subjects seeded")

	return inserted, nil
}
