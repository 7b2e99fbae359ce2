package form

import (
	"context"

	"eduforms/internal/domain"
)

// Repository defines form persistence as consumed by the service.
type Repository interface {
	Create(ctx context.Context, f *domain.DynamicForm) error
	GetByID(ctx context.Context, id int64) (*domain.DynamicForm, error)
	GetBySlug(ctx context.Context, slug string) (*domain.DynamicForm, error)
	Update(ctx context.Context, f *domain.DynamicForm) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*domain.DynamicForm, int64, error)
	ListPublished(ctx context.Context) ([]*domain.DynamicForm, error)
}
