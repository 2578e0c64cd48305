package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/eduvance/portal/internal/database"
)

// Material kinds a listing item can link to
const (
	MaterialQuestionPaper  = "question_paper"
	MaterialMarkScheme     = "mark_scheme"
	MaterialExaminerReport = "examiner_report"
)

var (
	// "Jan-2019", "May-June-2020", "Oct/Nov-2021"
	sessionFileName = regexp.MustCompile(`^([A-Za-z]+)(?:[\/\-]([A-Za-z]+))?[\-\/]((?:19|20)\d{2})$`)
	ialUnitCode     = regexp.MustCompile(`\((W[A-Z0-9]+)(?:\/[0-9]+)?\)`)
	igcseUnitCode   = regexp.MustCompile(`paper\s*(\b(?:1p|1pr|2p|2pr|pr|1c|1cr|2c|2cr|1b|1br|2b|2br|1|1r|2|2r|01|02)\b)`)
)

// Item is one entry of a session listing file
type Item struct {
	Name string `json:"Name"`
	Link string `json:"Link"`
}

// ImportResult summarizes an import-papers run
type ImportResult struct {
	Files        int
	SkippedFiles int
	Sessions     int
	Papers       int
}

// paperKey groups listing items into one papers row
type paperKey struct {
	Session  string
	Year     int
	UnitCode string
}

type paperLinks struct {
	QuestionPaper  string
	MarkScheme     string
	ExaminerReport string
}

// NormalizeSession maps a raw session label onto the stored session names.
// Unknown labels are returned unchanged.
func NormalizeSession(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "jan"):
		return "January"
	case strings.Contains(s, "june") || strings.Contains(s, "may"):
		return "May/June"
	case strings.Contains(s, "oct") || strings.Contains(s, "nov"):
		return "Oct/Nov"
	default:
		return raw
	}
}

// ParseFileName extracts the session and year from a listing file name
func ParseFileName(name string) (session string, year int, ok bool) {
	base := strings.TrimSuffix(filepath.Base(name), ".json")
	m := sessionFileName.FindStringSubmatch(base)
	if m == nil {
		return "", 0, false
	}

	raw := m[1]
	if m[2] != "" {
		raw = m[1] + "/" + m[2]
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return "", 0, false
	}
	return NormalizeSession(raw), year, true
}

// ClassifyMaterial returns the material an item name refers to, or "" when unknown.
// Checks run in order, so a name matching several keywords takes the first.
func ClassifyMaterial(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "question paper") || strings.Contains(lower, "qp"):
		return MaterialQuestionPaper
	case strings.Contains(lower, "mark scheme") || strings.Contains(lower, "ms"):
		return MaterialMarkScheme
	case strings.Contains(lower, "examiner report") || strings.Contains(lower, "er"):
		return MaterialExaminerReport
	default:
		return ""
	}
}

// UnitCode extracts the unit code from an item name, or "" when none is found
func UnitCode(name, syllabusType string) string {
	switch syllabusType {
	case database.SyllabusIAL:
		if m := ialUnitCode.FindStringSubmatch(name); m != nil {
			return m[1]
		}
	case database.SyllabusIGCSE:
		if m := igcseUnitCode.FindStringSubmatch(strings.ToLower(name)); m != nil {
			code := strings.ToUpper(m[1])
			if code == "PR" {
				code = "2PR"
			}
			return code
		}
	}
	return ""
}

// collect folds the items of one listing file into papers
func collect(papers map[paperKey]*paperLinks, session string, year int, syllabusType string, items []Item) {
	for _, item := range items {
		if item.Name == "" || item.Link == "" {
			continue
		}
		if strings.Contains(strings.ToLower(item.Name), "unused") {
			continue
		}

		material := ClassifyMaterial(item.Name)
		if material == "" {
			continue
		}
		unit := UnitCode(item.Name, syllabusType)
		if unit == "" {
			continue
		}

		key := paperKey{Session: session, Year: year, UnitCode: unit}
		links, ok := papers[key]
		if !ok {
			links = &paperLinks{}
			papers[key] = links
		}
		switch material {
		case MaterialQuestionPaper:
			links.QuestionPaper = item.Link
		case MaterialMarkScheme:
			links.MarkScheme = item.Link
		case MaterialExaminerReport:
			links.ExaminerReport = item.Link
		}
	}
}

// ImportPapers reads every listing file of a subject's folder and upserts its papers
func (i *Importer) ImportPapers(ctx context.Context, subjectName, syllabusType string) (*ImportResult, error) {
	subject, err := i.store.FindSubjectRef(ctx, subjectName, syllabusType)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, fmt.Errorf("subject %q (%s) not found, run seed-subjects first", subjectName, syllabusType)
	}

	folder, err := FindSubjectFolder(i.dir, subjectName, syllabusType)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, fmt.Errorf("no folder for %s under %s", subjectName, filepath.Join(i.dir, syllabusType))
	}

	files, err := filepath.Glob(filepath.Join(folder.Path, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", folder.Path, err)
	}
	sort.Strings(files)

	result := &ImportResult{Files: len(files)}
	papers := make(map[paperKey]*paperLinks)

	for _, file := range files {
		session, year, ok := ParseFileName(file)
		if !ok {
			log.Warn().Str("file", file).Msg("Skipping file with unrecognized session name")
			result.SkippedFiles++
			continue
		}

		items, err := readItems(file)
		if err != nil {
			log.Warn().Err(err).Str("file", file).Msg("Skipping invalid listing file")
			result.SkippedFiles++
			continue
		}

		collect(papers, session, year, syllabusType, items)
	}

	if len(papers) == 0 {
		log.Info().Str("subject", subjectName).Msg("No papers found to import")
		return result, nil
	}

	sessionIDs := make(map[string]string)
	inputs := make([]database.PaperInput, 0, len(papers))
	for _, key := range sortedKeys(papers) {
		sessionKey := fmt.Sprintf("%s-%d", key.Session, key.Year)
		sessionID, ok := sessionIDs[sessionKey]
		if !ok {
			sessionID, err = i.store.EnsureExamSession(ctx, key.Session, key.Year)
			if err != nil {
				return nil, err
			}
			sessionIDs[sessionKey] = sessionID
		}

		links := papers[key]
		inputs = append(inputs, database.PaperInput{
			SubjectID:          subject.ID,
			ExamSessionID:      sessionID,
			UnitCode:           key.UnitCode,
			QuestionPaperLink:  links.QuestionPaper,
			MarkSchemeLink:     links.MarkScheme,
			ExaminerReportLink: links.ExaminerReport,
		})
	}
	result.Sessions = len(sessionIDs)

	processed, err := i.store.UpsertPapers(ctx, inputs)
	if err != nil {
		return nil, err
	}
	result.Papers = processed

	log.Info().
		Str("subject", subjectName).
		Str("type", syllabusType).
		Int("files", result.Files).
		Int("sessions", result.Sessions).
		Int("papers", result.Papers).
		Msg("Papers imported")

	return result, nil
}

func readItems(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return items, nil
}

func sortedKeys(papers map[paperKey]*paperLinks) []paperKey {
	keys := make([]paperKey, 0, len(papers))
	for k := range papers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].Year != keys[b].Year {
			return keys[a].Year < keys[b].Year
		}
		if keys[a].Session != keys[b].Session {
			return keys[a].Session < keys[b].Session
		}
		return keys[a].UnitCode < keys[b].UnitCode
	})
	return keys
}
