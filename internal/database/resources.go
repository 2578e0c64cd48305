package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Resource types accepted for staff-curated resources
var ResourceTypes = []string{
	"note",
	"essay_questions",
	"assorted_papers",
	"youtube_videos",
	"topic_question",
	"commonly_asked_questions",
	"solved_papers",
	"extra_resource",
}

// Approval states
const (
	ApprovalApproved   = "Approved"
	ApprovalUnapproved = "Unapproved"
	ApprovalPending    = "Pending"
)

// Defaults applied to optional submission fields
const (
	DefaultResourceUnit      = "General"
	DefaultStaffEmail        = "staff@example.com"
	DefaultContributorEmail  = "contributor@example.com"
	DefaultContributorName   = "Anonymous Contributor"
	DefaultResourceApproval  = ApprovalApproved
	DefaultCommunityApproval = ApprovalUnapproved
)

// CommunityResource is an approved community submission as shown to readers
type CommunityResource struct {
	ID               string   `db:"id" json:"id"`
	ContributorName  *string  `db:"contributor_name" json:"contributor_name"`
	ContributorEmail string   `db:"contributor_email" json:"contributor_email"`
	Title            string   `db:"title" json:"title"`
	Description      *string  `db:"description" json:"description"`
	Link             string   `db:"link" json:"link"`
	ResourceType     string   `db:"resource_type" json:"resource_type"`
	UnitChapterName  *string  `db:"unit_chapter_name" json:"unit_chapter_name"`
	Approved         *string  `db:"approved" json:"approved"`
	ApprovedAt       NullTime `db:"approved_at" json:"approved_at"`
	RejectionReason  *string  `db:"rejection_reason" json:"rejection_reason"`
	Rejected         *bool    `db:"rejected" json:"rejected"`
	SubmittedAt      NullTime `db:"submitted_at" json:"submitted_at"`
	LikeCount        int64    `db:"like_count" json:"like_count"`
	DislikeCount     int64    `db:"dislike_count" json:"dislike_count"`
}

// ResourceInput holds the fields for a staff resource insert
type ResourceInput struct {
	SubjectID        string
	ResourceType     string
	Title            string
	Description      string
	Link             string
	UnitChapterName  string
	ContributorEmail string
	Approved         string
}

// CommunityRequestInput holds a community resource submission
type CommunityRequestInput struct {
	ContributorName  string
	ContributorEmail string
	Title            string
	Description      string
	Link             string
	ResourceType     string
	UnitChapterName  string
	SubjectID        string
	SubmitterIP      string
}

// ListApprovedCommunityResources returns a subject's approved community submissions
func (db *DB) ListApprovedCommunityResources(ctx context.Context, subjectID string) ([]CommunityResource, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	resources := []CommunityResource{}
	if err := db.SelectContext(ctx, &resources, `
		SELECT id, contributor_name, contributor_email, title, description, link, resource_type, unit_chapter_name,
		       approved, approved_at, rejection_reason, rejected, submitted_at,
		       COALESCE(like_count, 0) AS like_count, COALESCE(dislike_count, 0) AS dislike_count
		FROM community_resource_requests
		WHERE subject_id = ? AND approved = 'Approved'
		ORDER BY unit_chapter_name ASC, resource_type ASC, title ASC
	`, subjectID); err != nil {
		return nil, fmt.Errorf("failed to list community resources: %w", err)
	}
	return resources, nil
}

// UpdateResourceVotes sets the like and dislike counters of a community submission
func (db *DB) UpdateResourceVotes(ctx context.Context, id string, likes, dislikes int64) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if _, err := db.ExecContext(ctx, `
		UPDATE community_resource_requests SET like_count = ?, dislike_count = ? WHERE id = ?
	`, likes, dislikes, id); err != nil {
		return fmt.Errorf("failed to update resource votes: %w", err)
	}
	return nil
}

// CreateResource inserts a staff resource, applying defaults for optional fields
func (db *DB) CreateResource(ctx context.Context, r ResourceInput) (string, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if err := db.ensureTable(ctx, TableResources); err != nil {
		return "", err
	}

	approved := r.Approved
	if approved == "" {
		approved = DefaultResourceApproval
	}
	unit := r.UnitChapterName
	if unit == "" {
		unit = DefaultResourceUnit
	}
	email := r.ContributorEmail
	if email == "" {
		email = DefaultStaffEmail
	}

	id := uuid.NewString()
	if _, err := db.ExecContext(ctx, `
		INSERT INTO resources (id, subject_id, resource_type, title, description, link, contributor_email, unit_chapter_name, approved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, r.SubjectID, r.ResourceType, r.Title, nullIfEmpty(r.Description), r.Link, email, unit, approved); err != nil {
		return "", fmt.Errorf("failed to create resource: %w", err)
	}
	return id, nil
}

// CreateCommunityRequest stores a community submission as unapproved
func (db *DB) CreateCommunityRequest(ctx context.Context, r CommunityRequestInput) (string, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if err := db.ensureTable(ctx, TableCommunityRequests); err != nil {
		return "", err
	}

	name := r.ContributorName
	if name == "" {
		name = DefaultContributorName
	}
	email := r.ContributorEmail
	if email == "" {
		email = DefaultContributorEmail
	}

	id := uuid.NewString()
	if _, err := db.ExecContext(ctx, `
		INSERT INTO community_resource_requests (
			id, contributor_name, contributor_email, title, description, link, resource_type, unit_chapter_name,
			subject_id, approved, submitter_ip, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, name, email, r.Title, nullIfEmpty(r.Description), r.Link, r.ResourceType, nullIfEmpty(r.UnitChapterName),
		r.SubjectID, DefaultCommunityApproval, nullIfEmpty(r.SubmitterIP), time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to create community request: %w", err)
	}
	return id, nil
}
