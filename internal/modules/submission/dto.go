package submission

import "eduforms/internal/domain"

// SubmitRequest is the public submit body.
type SubmitRequest struct {
	Data        map[string]any     `json:"data" validate:"required"`
	PageContext domain.PageContext `json:"page_context"`
}

// SubmissionListResponse is the paginated admin listing for one form.
type SubmissionListResponse struct {
	Submissions []*domain.FormSubmission `json:"submissions"`
	Total       int64                    `json:"total"`
}
