package form

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"eduforms/internal/domain"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Service owns form authoring and the public read side.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the schema and stores the form at version 1, unpublished.
func (s *Service) Create(ctx context.Context, req *FormRequest) (*domain.DynamicForm, error) {
	f := fromRequest(req)
	if err := ValidateSchema(f); err != nil {
		return nil, err
	}

	now := time.Now()
	f.Version = 1
	f.IsPublished = false
	f.CreatedAt = now
	f.UpdatedAt = now

	if err := s.repo.Create(ctx, f); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return f, nil
}

// Update replaces the form definition. A structural edit of the field set
// bumps the version; cosmetic edits (title, messages, assignments) do not.
// The version never goes down, so historical submissions always resolve
// their original field set through their own snapshot.
func (s *Service) Update(ctx context.Context, id int64, req *FormRequest) (*domain.DynamicForm, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	f := fromRequest(req)
	if err := ValidateSchema(f); err != nil {
		return nil, err
	}

	f.ID = existing.ID
	f.IsPublished = existing.IsPublished
	f.CreatedAt = existing.CreatedAt
	f.Version = existing.Version
	if structuralChange(existing.Fields, f.Fields) {
		f.Version = existing.Version + 1
	}

	if err := s.repo.Update(ctx, f); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return f, nil
}

func (s *Service) SetPublished(ctx context.Context, id int64, published bool) (*domain.DynamicForm, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrNotFound
	}
	if f.IsPublished == published {
		return f, nil
	}
	f.IsPublished = published
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.DynamicForm, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrNotFound
	}
	return f, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if f == nil {
		return ErrNotFound
	}
	// submissions keep their own snapshots, so deleting the live form never
	// orphans the interpretation of historical data
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*domain.DynamicForm, int64, error) {
	return s.repo.List(ctx, limit, offset)
}

// GetPublicBySlug serves the form to visitors. Unpublished and unknown
// forms are indistinguishable from outside.
func (s *Service) GetPublicBySlug(ctx context.Context, slug string) (*domain.DynamicForm, error) {
	f, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if f == nil || !f.IsPublished {
		return nil, ErrNotFound
	}
	return f, nil
}

// ListForPage returns every published placement matching the page, with the
// form embedded, for the trigger orchestrator to instantiate schedulers.
func (s *Service) ListForPage(ctx context.Context, pageType string, entityID *int64) ([]PagePlacement, error) {
	forms, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	placements := []PagePlacement{}
	for _, f := range forms {
		for _, a := range f.Assignments {
			if a.Matches(pageType, entityID) {
				placements = append(placements, PagePlacement{Assignment: a, Form: f})
			}
		}
	}
	return placements, nil
}

func fromRequest(req *FormRequest) *domain.DynamicForm {
	return &domain.DynamicForm{
		Title:            req.Title,
		Slug:             req.Slug,
		Description:      req.Description,
		Purpose:          req.Purpose,
		Fields:           req.Fields,
		PostSubmitAction: req.PostSubmitAction,
		SuccessMessage:   req.SuccessMessage,
		RedirectURL:      req.RedirectURL,
		Assignments:      req.Assignments,
		Visibility:       req.Visibility,
	}
}

// structuralChange reports whether the field set changed in a way that must
// bump the form version: any add, remove, reorder, or edit of a field,
// its validation included.
func structuralChange(old, new []domain.FormField) bool {
	return !reflect.DeepEqual(old, new)
}

// ValidateSchema checks a form definition at authoring time. All problems
// are collected into a single SchemaError.
func ValidateSchema(f *domain.DynamicForm) error {
	var issues []string
	add := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	if !slugPattern.MatchString(f.Slug) {
		add("slug %q is not URL-safe", f.Slug)
	}
	if !f.Purpose.Valid() {
		add("unknown purpose %q", f.Purpose)
	}
	if !f.PostSubmitAction.Valid() {
		add("unknown post-submit action %q", f.PostSubmitAction)
	}
	if (f.PostSubmitAction == domain.PostSubmitRedirect || f.PostSubmitAction == domain.PostSubmitBoth) && f.RedirectURL == "" {
		add("post-submit action %q requires a redirect URL", f.PostSubmitAction)
	}
	if len(f.Fields) == 0 {
		add("form needs at least one field")
	}

	names := make(map[string]bool, len(f.Fields))
	mappings := make(map[domain.LeadMapping]string)
	for _, fld := range f.Fields {
		if fld.Name == "" {
			add("field %q has no name", fld.Label)
			continue
		}
		if names[fld.Name] {
			add("duplicate field name %q", fld.Name)
		}
		names[fld.Name] = true

		if !fld.Type.Valid() {
			add("field %q has unknown type %q", fld.Name, fld.Type)
		}
		if fld.Type.NeedsOptions() && len(fld.Options) == 0 {
			add("field %q of type %q needs options", fld.Name, fld.Type)
		}
		if !fld.LeadMapping.Valid() {
			add("field %q has unknown lead mapping %q", fld.Name, fld.LeadMapping)
		}
		if fld.LeadMapping != domain.MapNone {
			if prev, dup := mappings[fld.LeadMapping]; dup {
				add("fields %q and %q both map to lead attribute %q", prev, fld.Name, fld.LeadMapping)
			}
			mappings[fld.LeadMapping] = fld.Name
		}
		if fld.Validation.Pattern != "" {
			if _, err := regexp.Compile(fld.Validation.Pattern); err != nil {
				add("field %q has an invalid pattern: %v", fld.Name, err)
			}
		}
	}

	for _, fld := range f.Fields {
		cond := fld.ConditionalOn
		if cond == nil || cond.FieldName == "" {
			continue
		}
		if cond.FieldName == fld.Name {
			add("field %q cannot depend on itself", fld.Name)
		} else if !names[cond.FieldName] {
			add("field %q depends on unknown field %q", fld.Name, cond.FieldName)
		}
	}

	for i, a := range f.Assignments {
		if a.PageType == "" {
			add("assignment %d has no page type", i)
		}
		if !a.DisplayAs.Valid() {
			add("assignment %d has unknown display mode %q", i, a.DisplayAs)
		}
		if !a.Trigger.Valid() {
			add("assignment %d has unknown trigger %q", i, a.Trigger)
		}
		if a.Trigger == domain.TriggerDelay && a.DelaySeconds <= 0 {
			add("assignment %d delay trigger needs delay_seconds > 0", i)
		}
		if a.Trigger == domain.TriggerScroll && (a.ScrollPercent <= 0 || a.ScrollPercent > 100) {
			add("assignment %d scroll trigger needs scroll_percent in (0,100]", i)
		}
	}

	if len(issues) > 0 {
		return &SchemaError{Issues: issues}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code == "23505"
	}
	// sqlite in dev/tests
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
