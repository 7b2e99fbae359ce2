package form

import "eduforms/internal/domain"

// FormRequest carries a create or full-update of a form schema.
type FormRequest struct {
	Title            string                  `json:"title" validate:"required"`
	Slug             string                  `json:"slug" validate:"required"`
	Description      string                  `json:"description"`
	Purpose          domain.Purpose          `json:"purpose" validate:"required"`
	Fields           []domain.FormField      `json:"fields" validate:"required"`
	PostSubmitAction domain.PostSubmitAction `json:"post_submit_action" validate:"required"`
	SuccessMessage   string                  `json:"success_message"`
	RedirectURL      string                  `json:"redirect_url"`
	Assignments      []domain.PageAssignment `json:"assigned_pages"`
	Visibility       domain.Visibility       `json:"visibility"`
}

// PagePlacement is one assignment with its form embedded, as served to the
// page-level trigger orchestrator.
type PagePlacement struct {
	Assignment domain.PageAssignment `json:"assignment"`
	Form       *domain.DynamicForm   `json:"form"`
}

// FormListResponse is the paginated admin listing.
type FormListResponse struct {
	Forms []*domain.DynamicForm `json:"forms"`
	Total int64                 `json:"total"`
}
