package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eduvance/portal/internal/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.DialectSQLite, database.SQLiteDSN(filepath.Join(t.TempDir(), "import.db")))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", p, err)
		}
	}
}

func TestSubjectName(t *testing.T) {
	tests := map[string]string{
		"Accounting (2013)":      "Accounting",
		"Business Studies(2017)": "Business Studies",
		"Physics":                "Physics",
		"Maths (Further)":        "Maths (Further)",
	}
	for in, want := range tests {
		if got := SubjectName(in); got != want {
			t.Errorf("SubjectName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScanSubjects(t *testing.T) {
	root := t.TempDir()
	mkdirs(t,
		filepath.Join(root, "IAL", "Accounting (2013)"),
		filepath.Join(root, "IAL", "Biology (2018)"),
		filepath.Join(root, "IGCSE", "Biology"),
		filepath.Join(root, "Other", "Ignored"),
	)
	if err := os.WriteFile(filepath.Join(root, "IAL", "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	folders, err := ScanSubjects(root)
	if err != nil {
		t.Fatalf("ScanSubjects returned error: %v", err)
	}
	if len(folders) != 3 {
		t.Fatalf("expected 3 folders, got %d: %+v", len(folders), folders)
	}

	found, err := FindSubjectFolder(root, "biology", database.SyllabusIAL)
	if err != nil || found == nil {
		t.Fatalf("FindSubjectFolder returned %v, %v", found, err)
	}
	if found.Path != filepath.Join(root, "IAL", "Biology (2018)") {
		t.Fatalf("unexpected path %s", found.Path)
	}
}

func TestScanSubjects_MissingRoot(t *testing.T) {
	folders, err := ScanSubjects(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("ScanSubjects returned error: %v", err)
	}
	if len(folders) != 0 {
		t.Fatalf("expected no folders, got %d", len(folders))
	}
}

func TestSeedSubjects_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	root := t.TempDir()
	mkdirs(t,
		filepath.Join(root, "IAL", "Accounting (2013)"),
		filepath.Join(root, "IGCSE", "Accounting"),
	)

	imp := New(db, root)
	inserted, err := imp.SeedSubjects(ctx)
	if err != nil || inserted != 2 {
		t.Fatalf("SeedSubjects returned %d, %v", inserted, err)
	}

	inserted, err = imp.SeedSubjects(ctx)
	if err != nil || inserted != 0 {
		t.Fatalf("second SeedSubjects returned %d, %v", inserted, err)
	}

	subject, err := db.GetSubject(ctx, "Accounting", database.SyllabusIAL)
	if err != nil || subject == nil {
		t.Fatalf("GetSubject returned %v, %v", subject, err)
	}
	if subject.Code != nil || len(subject.Units) != 0 {
		t.Fatalf("expected NULL code and no units, got %+v", subject)
	}
}

func TestWatcher_ReseedsOnNewFolder(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, filepath.Join(root, "IAL"))

	changed := make(chan struct{}, 8)
	w, err := NewWatcher(root, 50*time.Millisecond, func(ctx context.Context) {
		changed <- struct{}{}
	})
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer w.Stop()

	mkdirs(t, filepath.Join(root, "IAL", "Chemistry (2018)"))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a reseed after a subject folder was created")
	}
}
