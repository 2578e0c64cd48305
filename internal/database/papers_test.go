package database

import (
	"context"
	"fmt"
	"testing"
)

func TestListSubjectPapers_Ordering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	subjectID := mustCreateSubject(t, db, "Accounting", SyllabusIAL)
	otherID := mustCreateSubject(t, db, "Biology", SyllabusIAL)

	jan23 := mustExamSession(t, db, "January", 2023)
	jun23 := mustExamSession(t, db, "June", 2023)
	jan24 := mustExamSession(t, db, "January", 2024)
	jun24 := mustExamSession(t, db, "June", 2024)

	// Inserted out of order on purpose
	inputs := []PaperInput{
		{SubjectID: subjectID, ExamSessionID: jun23, UnitCode: "WAC12", QuestionPaperLink: "qp-wac12-jun23"},
		{SubjectID: subjectID, ExamSessionID: jan24, UnitCode: "WAC11", QuestionPaperLink: "qp-wac11-jan24"},
		{SubjectID: subjectID, ExamSessionID: jan23, UnitCode: "WAC11", QuestionPaperLink: "qp-wac11-jan23"},
		{SubjectID: subjectID, ExamSessionID: jun24, UnitCode: "WAC12", QuestionPaperLink: "qp-wac12-jun24"},
		{SubjectID: subjectID, ExamSessionID: jun24, UnitCode: "WAC11", QuestionPaperLink: "qp-wac11-jun24"},
		{SubjectID: subjectID, ExamSessionID: jun23, UnitCode: "WAC11", QuestionPaperLink: "qp-wac11-jun23"},
		{SubjectID: otherID, ExamSessionID: jun24, UnitCode: "WBI11", QuestionPaperLink: "qp-wbi11-jun24"},
	}
	if _, err := db.UpsertPapers(ctx, inputs); err != nil {
		t.Fatalf("UpsertPapers returned error: %v", err)
	}

	papers, err := db.ListSubjectPapers(ctx, subjectID)
	if err != nil {
		t.Fatalf("ListSubjectPapers returned error: %v", err)
	}

	expected := []struct {
		unit    string
		year    int
		session string
	}{
		{"WAC11", 2024, "January"},
		{"WAC11", 2024, "June"},
		{"WAC11", 2023, "January"},
		{"WAC11", 2023, "June"},
		{"WAC12", 2024, "June"},
		{"WAC12", 2023, "June"},
	}

	if len(papers) != len(expected) {
		t.Fatalf("expected %d papers, got %d", len(expected), len(papers))
	}
	for i, want := range expected {
		got := papers[i]
		if got.UnitCode != want.unit || got.Year != want.year || got.Session != want.session {
			t.Errorf("papers[%d] = %s %d %s, want %s %d %s",
				i, got.UnitCode, got.Year, got.Session, want.unit, want.year, want.session)
		}
	}
}

func TestListSubjectPapers_UnknownSubject(t *testing.T) {
	db := newTestDB(t)

	papers, err := db.ListSubjectPapers(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("ListSubjectPapers returned error: %v", err)
	}
	if papers == nil || len(papers) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", papers)
	}
}

func TestUpsertPaper_ReplacesLinks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	subjectID := mustCreateSubject(t, db, "Chemistry", SyllabusIAL)
	sessionID := mustExamSession(t, db, "Oct/Nov", 2022)

	first := PaperInput{
		SubjectID:         subjectID,
		ExamSessionID:     sessionID,
		UnitCode:          "WCH11",
		QuestionPaperLink: "https://example.com/qp-old",
		MarkSchemeLink:    "https://example.com/ms-old",
	}
	if err := db.UpsertPaper(ctx, first); err != nil {
		t.Fatalf("UpsertPaper returned error: %v", err)
	}

	second := first
	second.QuestionPaperLink = "https://example.com/qp-new"
	second.MarkSchemeLink = ""
	second.ExaminerReportLink = "https://example.com/er"
	if err := db.UpsertPaper(ctx, second); err != nil {
		t.Fatalf("UpsertPaper returned error: %v", err)
	}

	papers, err := db.ListSubjectPapers(ctx, subjectID)
	if err != nil {
		t.Fatalf("ListSubjectPapers returned error: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("expected the upsert to keep a single row, got %d", len(papers))
	}

	p := papers[0]
	if p.QuestionPaperLink == nil || *p.QuestionPaperLink != "https://example.com/qp-new" {
		t.Errorf("question paper link not replaced: %v", p.QuestionPaperLink)
	}
	if p.MarkSchemeLink != nil {
		t.Errorf("expected mark scheme link to be cleared, got %q", *p.MarkSchemeLink)
	}
	if p.ExaminerReportLink == nil || *p.ExaminerReportLink != "https://example.com/er" {
		t.Errorf("examiner report link not set: %v", p.ExaminerReportLink)
	}
}

func TestUpsertPapers_Batches(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	subjectID := mustCreateSubject(t, db, "Mathematics", SyllabusIGCSE)
	sessionID := mustExamSession(t, db, "May/June", 2021)

	total := PaperBatchSize*2 + 5
	inputs := make([]PaperInput, 0, total)
	for i := range total {
		inputs = append(inputs, PaperInput{
			SubjectID:     subjectID,
			ExamSessionID: sessionID,
			UnitCode:      fmt.Sprintf("U%03d", i),
		})
	}

	processed, err := db.UpsertPapers(ctx, inputs)
	if err != nil {
		t.Fatalf("UpsertPapers returned error: %v", err)
	}
	if processed != total {
		t.Fatalf("expected %d processed, got %d", total, processed)
	}

	papers, err := db.ListSubjectPapers(ctx, subjectID)
	if err != nil {
		t.Fatalf("ListSubjectPapers returned error: %v", err)
	}
	if len(papers) != total {
		t.Fatalf("expected %d stored papers, got %d", total, len(papers))
	}

	if processed, err := db.UpsertPapers(ctx, nil); err != nil || processed != 0 {
		t.Fatalf("expected empty upsert to be a no-op, got %d, %v", processed, err)
	}
}

func TestListPastPapers_FiltersBySession(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	biology := mustCreateSubject(t, db, "Biology", SyllabusIAL)
	physics := mustCreateSubject(t, db, "Physics", SyllabusIGCSE)
	jun24 := mustExamSession(t, db, "May/June", 2024)
	jan24 := mustExamSession(t, db, "January", 2024)

	if _, err := db.UpsertPapers(ctx, []PaperInput{
		{SubjectID: physics, ExamSessionID: jun24, UnitCode: "4PH1/2P"},
		{SubjectID: biology, ExamSessionID: jun24, UnitCode: "WBI11"},
		{SubjectID: biology, ExamSessionID: jan24, UnitCode: "WBI12"},
	}); err != nil {
		t.Fatalf("UpsertPapers returned error: %v", err)
	}

	papers, err := db.ListPastPapers(ctx, 2024, "May/June")
	if err != nil {
		t.Fatalf("ListPastPapers returned error: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}
	if papers[0].UnitCode != "4PH1/2P" || papers[0].SubjectName != "Physics" || papers[0].SyllabusType != SyllabusIGCSE {
		t.Errorf("unexpected first paper %+v", papers[0])
	}
	if papers[1].UnitCode != "WBI11" || papers[1].SubjectName != "Biology" {
		t.Errorf("unexpected second paper %+v", papers[1])
	}

	none, err := db.ListPastPapers(ctx, 1999, "May/June")
	if err != nil {
		t.Fatalf("ListPastPapers returned error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no papers for 1999, got %d", len(none))
	}
}
