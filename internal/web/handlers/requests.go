package handlers

// subjectAddRequest is the body of POST /api/mysql/subjects_add
type subjectAddRequest struct {
	Name         string   `json:"name" validate:"required"`
	Code         *string  `json:"code"`
	SyllabusType string   `json:"syllabus_type" validate:"required,oneof=IGCSE IAL"`
	Units        []string `json:"units"`
}

// paperInsertRequest is the body of POST /api/mysql/papers_insert
type paperInsertRequest struct {
	SubjectID          string  `json:"subject_id" validate:"required"`
	ExamSessionID      string  `json:"exam_session_id" validate:"required"`
	UnitCode           string  `json:"unit_code" validate:"required,max=100"`
	QuestionPaperLink  *string `json:"question_paper_link"`
	MarkSchemeLink     *string `json:"mark_scheme_link"`
	ExaminerReportLink *string `json:"examiner_report_link"`
}

// resourceVotesRequest is the body of PATCH /api/mysql/resources
type resourceVotesRequest struct {
	ID           string `json:"id" validate:"required"`
	LikeCount    *int64 `json:"like_count" validate:"omitempty,min=0"`
	DislikeCount *int64 `json:"dislike_count" validate:"omitempty,min=0"`
}

// resourceInsertRequest is the body of POST /api/mysql/resources_insert
type resourceInsertRequest struct {
	SubjectID        string `json:"subject_id" validate:"required"`
	ResourceType     string `json:"resource_type" validate:"required,oneof=note essay_questions assorted_papers youtube_videos topic_question commonly_asked_questions solved_papers extra_resource"`
	Title            string `json:"title" validate:"required"`
	Link             string `json:"link" validate:"required"`
	Description      string `json:"description"`
	UnitChapterName  string `json:"unit_chapter_name"`
	ContributorEmail string `json:"contributor_email"`
	Approved         string `json:"approved" validate:"omitempty,oneof=Approved Unapproved Pending"`
}

// communityRequest is the body of POST /api/mysql/community_resource_requests
type communityRequest struct {
	Title            string `json:"title" validate:"required"`
	Link             string `json:"link" validate:"required"`
	SubjectID        string `json:"subject_id" validate:"required"`
	ResourceType     string `json:"resource_type" validate:"required"`
	ContributorName  string `json:"contributor_name"`
	ContributorEmail string `json:"contributor_email"`
	Description      string `json:"description"`
	UnitChapterName  string `json:"unit_chapter_name"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
