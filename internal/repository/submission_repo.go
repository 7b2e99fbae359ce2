package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"eduforms/internal/domain"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

type submissionModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	PublicID     string    `gorm:"column:public_id;uniqueIndex"`
	FormID       int64     `gorm:"column:form_id;index"`
	FormVersion  int       `gorm:"column:form_version"`
	Snapshot     fieldList `gorm:"column:form_snapshot;type:json"`
	Data         valueMap  `gorm:"column:data;type:json"`
	SubmittedBy  *int64    `gorm:"column:submitted_by"`
	IP           string    `gorm:"column:ip_address"`
	UserAgent    string    `gorm:"column:user_agent"`
	PageType     string    `gorm:"column:page_type"`
	PageEntityID *int64    `gorm:"column:page_entity_id"`
	PageURL      string    `gorm:"column:page_url"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
}

func (submissionModel) TableName() string { return "form_submissions" }

func toDomainSubmission(m submissionModel) *domain.FormSubmission {
	return &domain.FormSubmission{
		ID:          m.ID,
		PublicID:    m.PublicID,
		FormID:      m.FormID,
		FormVersion: m.FormVersion,
		Snapshot:    m.Snapshot,
		Data:        m.Data,
		SubmittedBy: m.SubmittedBy,
		IP:          m.IP,
		UserAgent:   m.UserAgent,
		Page: domain.PageContext{
			PageType: m.PageType,
			EntityID: m.PageEntityID,
			URL:      m.PageURL,
		},
		CreatedAt: m.CreatedAt,
	}
}

// Create persists a submission. Records are append-only; nothing updates
// them afterwards.
func (r *SubmissionRepository) Create(ctx context.Context, s *domain.FormSubmission) error {
	m := submissionModel{
		PublicID:     s.PublicID,
		FormID:       s.FormID,
		FormVersion:  s.FormVersion,
		Snapshot:     s.Snapshot,
		Data:         s.Data,
		SubmittedBy:  s.SubmittedBy,
		IP:           s.IP,
		UserAgent:    s.UserAgent,
		PageType:     s.Page.PageType,
		PageEntityID: s.Page.EntityID,
		PageURL:      s.Page.URL,
		CreatedAt:    s.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	s.ID = m.ID
	s.CreatedAt = m.CreatedAt
	return nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*domain.FormSubmission, error) {
	var m submissionModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainSubmission(m), nil
}

func (r *SubmissionRepository) ListByForm(ctx context.Context, formID int64, limit, offset int) ([]*domain.FormSubmission, int64, error) {
	var models []submissionModel
	var total int64

	if err := r.db.WithContext(ctx).Model(&submissionModel{}).
		Where("form_id = ?", formID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]*domain.FormSubmission, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainSubmission(m))
	}
	return out, total, nil
}
