package submission

import (
	"context"

	"eduforms/internal/domain"
)

// FormRepository is the slice of form persistence the submit path needs.
type FormRepository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.DynamicForm, error)
}

// Repository persists submissions.
type Repository interface {
	Create(ctx context.Context, s *domain.FormSubmission) error
	GetByID(ctx context.Context, id int64) (*domain.FormSubmission, error)
	ListByForm(ctx context.Context, formID int64, limit, offset int) ([]*domain.FormSubmission, int64, error)
}

// LeadPipeline receives lead-capture submissions downstream.
type LeadPipeline interface {
	CreateFromSubmission(ctx context.Context, form *domain.DynamicForm, sub *domain.FormSubmission) (*domain.Lead, error)
}
