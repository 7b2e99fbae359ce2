package lead

import (
	"context"
	"time"

	"eduforms/internal/domain"
	"eduforms/internal/repository"
)

// Service owns the lead status state machine: terminality is enforced at
// the transition boundary, history is append-only, and concurrent status
// writers are serialized by the repository's revision check.
type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// CreateFromSubmission builds and persists a lead out of a lead-capture
// submission. Implements the submission module's LeadPipeline.
func (s *Service) CreateFromSubmission(ctx context.Context, form *domain.DynamicForm, sub *domain.FormSubmission) (*domain.Lead, error) {
	lead := domain.LeadFromSubmission(form, sub)
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.LeadCreated(lead)
	}
	return lead, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}

func (s *Service) List(ctx context.Context, filter repository.LeadFilter, limit, offset int) ([]*domain.Lead, int64, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// ChangeStatus applies one transition. A terminal current status rejects
// the call before any history mutation. Among non-terminal states any move
// is allowed; only terminality is enforced. The write is conditional on the
// revision read here, so two concurrent changes cannot silently overwrite
// one another's history entries.
func (s *Service) ChangeStatus(ctx context.Context, id int64, newStatus domain.LeadStatus, note string, actor int64) (*domain.Lead, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}
	if lead.Status.Terminal() {
		return nil, ErrTerminalStatus
	}

	change := domain.StatusChange{
		From:      lead.Status,
		To:        newStatus,
		ChangedBy: actor,
		ChangedAt: time.Now(),
		Note:      note,
	}
	history := append(append([]domain.StatusChange{}, lead.History...), change)

	updated, err := s.repo.UpdateStatus(ctx, id, lead.Revision, newStatus, history)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrConflict
	}

	lead.Status = newStatus
	lead.History = history
	lead.Revision++
	return lead, nil
}

// Assign sets the owner. Deliberately not a status change: no history
// entry is appended.
func (s *Service) Assign(ctx context.Context, id, userID int64) (*domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}

	if err := s.repo.Assign(ctx, id, userID); err != nil {
		return nil, err
	}
	lead.AssignedTo = &userID
	return lead, nil
}

// AddNote appends a note. Notes are never edited or deleted.
func (s *Service) AddNote(ctx context.Context, id int64, content string, actor int64) (*domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}

	note := domain.Note{
		Content:   content,
		CreatedBy: actor,
		CreatedAt: time.Now(),
	}
	notes := append(append([]domain.Note{}, lead.Notes...), note)

	if err := s.repo.AppendNote(ctx, id, notes); err != nil {
		return nil, err
	}
	lead.Notes = notes
	return lead, nil
}

// Update edits priority, tags and entity links.
func (s *Service) Update(ctx context.Context, id int64, req *UpdateRequest) (*domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}

	if req.Priority != nil {
		if !req.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		lead.Priority = *req.Priority
	}
	if req.Tags != nil {
		lead.Tags = *req.Tags
	}
	if req.CollegeID != nil {
		lead.CollegeID = req.CollegeID
	}
	if req.CourseID != nil {
		lead.CourseID = req.CourseID
	}

	if err := s.repo.UpdateDetails(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// Stats is a read-only projection over the lead collection. It is
// eventually consistent with in-flight transitions, which is acceptable.
func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	total, err := s.repo.CountTotal(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.repo.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.repo.CountCreatedSince(ctx, midnight)
	if err != nil {
		return nil, err
	}

	// week starts Monday
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	weekStart := midnight.AddDate(0, 0, -(weekday - 1))
	week, err := s.repo.CountCreatedSince(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	return &StatsResponse{
		Total:      total,
		ByStatus:   byStatus,
		ByPriority: byPriority,
		TodayCount: today,
		WeekCount:  week,
	}, nil
}
