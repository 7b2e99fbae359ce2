package lead

import (
	"context"
	"time"

	"eduforms/internal/domain"
	"eduforms/internal/repository"
)

// Repository defines lead persistence as consumed by the service.
type Repository interface {
	Create(ctx context.Context, l *domain.Lead) error
	GetByID(ctx context.Context, id int64) (*domain.Lead, error)
	List(ctx context.Context, filter repository.LeadFilter, limit, offset int) ([]*domain.Lead, int64, error)
	UpdateStatus(ctx context.Context, id, revision int64, status domain.LeadStatus, history []domain.StatusChange) (bool, error)
	Assign(ctx context.Context, id, userID int64) error
	AppendNote(ctx context.Context, id int64, notes []domain.Note) error
	UpdateDetails(ctx context.Context, l *domain.Lead) error
	CountTotal(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.LeadStatus]int64, error)
	CountByPriority(ctx context.Context) (map[domain.LeadPriority]int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// Notifier announces pipeline events to whoever is watching (the admin
// websocket feed in production).
type Notifier interface {
	LeadCreated(l *domain.Lead)
}
