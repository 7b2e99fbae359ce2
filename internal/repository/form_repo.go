package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"eduforms/internal/domain"
)

type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

type formModel struct {
	ID               int64          `gorm:"column:id;primaryKey"`
	Title            string         `gorm:"column:title"`
	Slug             string         `gorm:"column:slug;uniqueIndex"`
	Description      string         `gorm:"column:description"`
	Purpose          string         `gorm:"column:purpose"`
	Fields           fieldList      `gorm:"column:fields;type:json"`
	PostSubmitAction string         `gorm:"column:post_submit_action"`
	SuccessMessage   string         `gorm:"column:success_message"`
	RedirectURL      string         `gorm:"column:redirect_url"`
	Assignments      assignmentList `gorm:"column:assigned_pages;type:json"`
	RequiresAuth     bool           `gorm:"column:requires_auth"`
	AllowedRoles     stringList     `gorm:"column:allowed_roles;type:json"`
	IsPublished      bool           `gorm:"column:is_published;index"`
	Version          int            `gorm:"column:version"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
}

func (formModel) TableName() string { return "dynamic_forms" }

func toDomainForm(m formModel) *domain.DynamicForm {
	return &domain.DynamicForm{
		ID:               m.ID,
		Title:            m.Title,
		Slug:             m.Slug,
		Description:      m.Description,
		Purpose:          domain.Purpose(m.Purpose),
		Fields:           m.Fields,
		PostSubmitAction: domain.PostSubmitAction(m.PostSubmitAction),
		SuccessMessage:   m.SuccessMessage,
		RedirectURL:      m.RedirectURL,
		Assignments:      m.Assignments,
		Visibility: domain.Visibility{
			RequiresAuth: m.RequiresAuth,
			AllowedRoles: m.AllowedRoles,
		},
		IsPublished: m.IsPublished,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toFormModel(f *domain.DynamicForm) formModel {
	return formModel{
		ID:               f.ID,
		Title:            f.Title,
		Slug:             f.Slug,
		Description:      f.Description,
		Purpose:          string(f.Purpose),
		Fields:           f.Fields,
		PostSubmitAction: string(f.PostSubmitAction),
		SuccessMessage:   f.SuccessMessage,
		RedirectURL:      f.RedirectURL,
		Assignments:      f.Assignments,
		RequiresAuth:     f.Visibility.RequiresAuth,
		AllowedRoles:     f.Visibility.AllowedRoles,
		IsPublished:      f.IsPublished,
		Version:          f.Version,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

func (r *FormRepository) Create(ctx context.Context, f *domain.DynamicForm) error {
	m := toFormModel(f)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	f.ID = m.ID
	f.CreatedAt = m.CreatedAt
	f.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *FormRepository) GetByID(ctx context.Context, id int64) (*domain.DynamicForm, error) {
	var m formModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainForm(m), nil
}

func (r *FormRepository) GetBySlug(ctx context.Context, slug string) (*domain.DynamicForm, error) {
	var m formModel
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainForm(m), nil
}

func (r *FormRepository) Update(ctx context.Context, f *domain.DynamicForm) error {
	m := toFormModel(f)
	m.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Model(&formModel{}).
		Where("id = ?", f.ID).
		Select("*").Omit("id", "created_at").
		Updates(&m).Error
	if err != nil {
		return err
	}
	f.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *FormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&formModel{}, id).Error
}

func (r *FormRepository) List(ctx context.Context, limit, offset int) ([]*domain.DynamicForm, int64, error) {
	var models []formModel
	var total int64

	if err := r.db.WithContext(ctx).Model(&formModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]*domain.DynamicForm, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainForm(m))
	}
	return out, total, nil
}

// ListPublished returns every published form. Page assignments live inside
// the form's json document, so for-page filtering happens in the service.
func (r *FormRepository) ListPublished(ctx context.Context) ([]*domain.DynamicForm, error) {
	var models []formModel
	err := r.db.WithContext(ctx).Where("is_published = ?", true).Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.DynamicForm, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainForm(m))
	}
	return out, nil
}
