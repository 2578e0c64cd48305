package database

import (
	"context"
	"testing"
)

func TestCreateCommunityRequest_Defaults(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	subjectID := mustCreateSubject(t, db, "Economics", SyllabusIAL)

	id, err := db.CreateCommunityRequest(ctx, CommunityRequestInput{
		Title:        "Unit 1 notes",
		Link:         "https://example.com/notes",
		ResourceType: "note",
		SubjectID:    subjectID,
		SubmitterIP:  "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("CreateCommunityRequest returned error: %v", err)
	}

	var row struct {
		Name     string `db:"contributor_name"`
		Email    string `db:"contributor_email"`
		Approved string `db:"approved"`
		IP       string `db:"submitter_ip"`
	}
	if err := db.GetContext(ctx, &row, `
		SELECT contributor_name, contributor_email, approved, submitter_ip
		FROM community_resource_requests WHERE id = ?
	`, id); err != nil {
		t.Fatalf("failed to read request: %v", err)
	}

	if row.Name != DefaultContributorName {
		t.Errorf("contributor_name = %q, want %q", row.Name, DefaultContributorName)
	}
	if row.Email != DefaultContributorEmail {
		t.Errorf("contributor_email = %q, want %q", row.Email, DefaultContributorEmail)
	}
	if row.Approved != ApprovalUnapproved {
		t.Errorf("approved = %q, want %q", row.Approved, ApprovalUnapproved)
	}
	if row.IP != "203.0.113.7" {
		t.Errorf("submitter_ip = %q", row.IP)
	}

	// Unapproved submissions are not listed
	listed, err := db.ListApprovedCommunityResources(ctx, subjectID)
	if err != nil {
		t.Fatalf("ListApprovedCommunityResources returned error: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no approved resources, got %d", len(listed))
	}
}

func TestListApprovedCommunityResources(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	subjectID := mustCreateSubject(t, db, "Economics", SyllabusIAL)

	approvedID, err := db.CreateCommunityRequest(ctx, CommunityRequestInput{
		ContributorName:  "Sam",
		ContributorEmail: "sam@example.com",
		Title:            "Elasticity summary",
		Link:             "https://example.com/elasticity",
		ResourceType:     "note",
		UnitChapterName:  "Unit 1",
		SubjectID:        subjectID,
	})
	if err != nil {
		t.Fatalf("CreateCommunityRequest returned error: %v", err)
	}
	if _, err := db.ExecContext(ctx, `
		UPDATE community_resource_requests SET approved = 'Approved', approved_at = CURRENT_TIMESTAMP WHERE id = ?
	`, approvedID); err != nil {
		t.Fatalf("failed to approve request: %v", err)
	}

	if err := db.UpdateResourceVotes(ctx, approvedID, 12, 3); err != nil {
		t.Fatalf("UpdateResourceVotes returned error: %v", err)
	}

	resources, err := db.ListApprovedCommunityResources(ctx, subjectID)
	if err != nil {
		t.Fatalf("ListApprovedCommunityResources returned error: %v", err)
	}
	if len(resources) != 1 {
		t.Fatalf("expected 1 approved resource, got %d", len(resources))
	}

	r := resources[0]
	if r.ID != approvedID || r.Title != "Elasticity summary" {
		t.Errorf("unexpected resource %+v", r)
	}
	if r.LikeCount != 12 || r.DislikeCount != 3 {
		t.Errorf("votes = %d/%d, want 12/3", r.LikeCount, r.DislikeCount)
	}
	if !r.ApprovedAt.Valid {
		t.Error("expected approved_at to be set")
	}
	if !r.SubmittedAt.Valid {
		t.Error("expected submitted_at to be set")
	}
	if r.Rejected != nil {
		t.Errorf("expected rejected to be NULL, got %v", *r.Rejected)
	}
}

func TestCreateResource_Defaults(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	subjectID := mustCreateSubject(t, db, "Physics", SyllabusIGCSE)

	id, err := db.CreateResource(ctx, ResourceInput{
		SubjectID:    subjectID,
		ResourceType: "youtube_videos",
		Title:        "Forces playlist",
		Link:         "https://example.com/forces",
	})
	if err != nil {
		t.Fatalf("CreateResource returned error: %v", err)
	}

	var row struct {
		Unit     string  `db:"unit_chapter_name"`
		Email    string  `db:"contributor_email"`
		Approved string  `db:"approved"`
		Desc     *string `db:"description"`
	}
	if err := db.GetContext(ctx, &row, `
		SELECT unit_chapter_name, contributor_email, approved, description FROM resources WHERE id = ?
	`, id); err != nil {
		t.Fatalf("failed to read resource: %v", err)
	}

	if row.Unit != DefaultResourceUnit || row.Email != DefaultStaffEmail || row.Approved != DefaultResourceApproval {
		t.Errorf("unexpected defaults %+v", row)
	}
	if row.Desc != nil {
		t.Errorf("expected NULL description, got %q", *row.Desc)
	}
}

func TestCreateResource_UnknownSubject(t *testing.T) {
	db := newTestDB(t)

	_, err := db.CreateResource(context.Background(), ResourceInput{
		SubjectID:    "missing",
		ResourceType: "note",
		Title:        "Orphan",
		Link:         "https://example.com",
	})
	if err == nil {
		t.Fatal("expected a foreign key error for an unknown subject")
	}
}
