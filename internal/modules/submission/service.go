package submission

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"eduforms/internal/domain"
	"eduforms/internal/engine"
)

// Service accepts validated payloads, persists a versioned snapshot, and
// forwards lead-capture submissions to the lead pipeline. Requests are
// stateless and hold no lock over the form: a concurrent schema edit may
// land just before or just after the point-in-time snapshot read, which is
// accepted as eventually consistent.
type Service struct {
	forms FormRepository
	repo  Repository
	leads LeadPipeline
}

func NewService(forms FormRepository, repo Repository, leads LeadPipeline) *Service {
	return &Service{forms: forms, repo: repo, leads: leads}
}

// Meta is the request-level context of a submit.
type Meta struct {
	IP        string
	UserAgent string
	UserID    *int64
}

// Submit resolves the form by slug, re-validates the payload server-side
// against the current live field definitions, and persists the submission
// with a frozen field snapshot. Duplicate submits create duplicate records:
// idempotency is deliberately not provided.
func (s *Service) Submit(ctx context.Context, slug string, req *SubmitRequest, meta Meta) (*domain.FormSubmission, error) {
	form, err := s.forms.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if form == nil || !form.IsPublished {
		return nil, ErrFormNotFound
	}

	// never trust client-side validation
	if errs := engine.ValidateVisible(form.Fields, req.Data); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	snapshot, err := copyFields(form.Fields)
	if err != nil {
		return nil, err
	}

	sub := &domain.FormSubmission{
		PublicID:    uuid.NewString(),
		FormID:      form.ID,
		FormVersion: form.Version,
		Snapshot:    snapshot,
		Data:        req.Data,
		SubmittedBy: meta.UserID,
		IP:          meta.IP,
		UserAgent:   meta.UserAgent,
		Page:        req.PageContext,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	if form.Purpose == domain.PurposeLeadCapture && s.leads != nil {
		if _, err := s.leads.CreateFromSubmission(ctx, form, sub); err != nil {
			// the submission stands on its own; a lead failure must not
			// surface as a failed submit to the visitor
			log.Printf("lead_pipeline_error form=%s submission=%d error=%q", form.Slug, sub.ID, err)
		}
	}

	return sub, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.FormSubmission, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByForm(ctx context.Context, formID int64, limit, offset int) ([]*domain.FormSubmission, int64, error) {
	return s.repo.ListByForm(ctx, formID, limit, offset)
}

// copyFields deep-copies the live field definitions through json so later
// edits of the form share nothing with the stored snapshot.
func copyFields(fields []domain.FormField) ([]domain.FormField, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var out []domain.FormField
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
