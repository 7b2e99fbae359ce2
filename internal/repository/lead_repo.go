package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"eduforms/internal/domain"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

type leadModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	Name               string     `gorm:"column:name"`
	Email              string     `gorm:"column:email;index"`
	Phone              string     `gorm:"column:phone"`
	Data               valueMap   `gorm:"column:data;type:json"`
	SourceFormID       *int64     `gorm:"column:source_form_id"`
	SourceSubmissionID *int64     `gorm:"column:source_submission_id"`
	SourceChannel      string     `gorm:"column:source_channel"`
	CollegeID          *int64     `gorm:"column:college_id"`
	CourseID           *int64     `gorm:"column:course_id"`
	Status             string     `gorm:"column:status;index"`
	History            changeList `gorm:"column:status_history;type:json"`
	AssignedTo         *int64     `gorm:"column:assigned_to;index"`
	Priority           string     `gorm:"column:priority;index"`
	Tags               stringList `gorm:"column:tags;type:json"`
	Notes              noteList   `gorm:"column:notes;type:json"`
	Revision           int64      `gorm:"column:revision"`
	CreatedAt          time.Time  `gorm:"column:created_at;index"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (leadModel) TableName() string { return "leads" }

func toDomainLead(m leadModel) *domain.Lead {
	return &domain.Lead{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
		Phone: m.Phone,
		Data:  m.Data,
		Source: domain.LeadSource{
			FormID:       m.SourceFormID,
			SubmissionID: m.SourceSubmissionID,
			Channel:      m.SourceChannel,
		},
		CollegeID:  m.CollegeID,
		CourseID:   m.CourseID,
		Status:     domain.LeadStatus(m.Status),
		History:    m.History,
		AssignedTo: m.AssignedTo,
		Priority:   domain.LeadPriority(m.Priority),
		Tags:       m.Tags,
		Notes:      m.Notes,
		Revision:   m.Revision,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toLeadModel(l *domain.Lead) leadModel {
	return leadModel{
		ID:                 l.ID,
		Name:               l.Name,
		Email:              l.Email,
		Phone:              l.Phone,
		Data:               l.Data,
		SourceFormID:       l.Source.FormID,
		SourceSubmissionID: l.Source.SubmissionID,
		SourceChannel:      l.Source.Channel,
		CollegeID:          l.CollegeID,
		CourseID:           l.CourseID,
		Status:             string(l.Status),
		History:            l.History,
		AssignedTo:         l.AssignedTo,
		Priority:           string(l.Priority),
		Tags:               l.Tags,
		Notes:              l.Notes,
		Revision:           l.Revision,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func (r *LeadRepository) Create(ctx context.Context, l *domain.Lead) error {
	m := toLeadModel(l)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	l.ID = m.ID
	return nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	var m leadModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainLead(m), nil
}

// LeadFilter narrows List results; nil members are ignored.
type LeadFilter struct {
	Status     *domain.LeadStatus
	Priority   *domain.LeadPriority
	AssignedTo *int64
}

func (r *LeadRepository) List(ctx context.Context, filter LeadFilter, limit, offset int) ([]*domain.Lead, int64, error) {
	q := r.db.WithContext(ctx).Model(&leadModel{})
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.Priority != nil {
		q = q.Where("priority = ?", string(*filter.Priority))
	}
	if filter.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *filter.AssignedTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []leadModel
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]*domain.Lead, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainLead(m))
	}
	return out, total, nil
}

// UpdateStatus applies a status transition under optimistic concurrency:
// the row is touched only when its revision still matches what the caller
// read. Returns false when another writer got there first.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id, revision int64, status domain.LeadStatus, history []domain.StatusChange) (bool, error) {
	res := r.db.WithContext(ctx).Model(&leadModel{}).
		Where("id = ? AND revision = ?", id, revision).
		Updates(map[string]any{
			"status":         string(status),
			"status_history": changeList(history),
			"revision":       revision + 1,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Assign sets the owner of a lead. Not a status change: no history entry
// and no revision bump contention with status writers is needed beyond the
// row update itself.
func (r *LeadRepository) Assign(ctx context.Context, id, userID int64) error {
	return r.db.WithContext(ctx).Model(&leadModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"assigned_to": userID,
			"updated_at":  time.Now(),
		}).Error
}

// AppendNote stores the grown note list.
func (r *LeadRepository) AppendNote(ctx context.Context, id int64, notes []domain.Note) error {
	return r.db.WithContext(ctx).Model(&leadModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"notes":      noteList(notes),
			"updated_at": time.Now(),
		}).Error
}

// UpdateDetails writes the mutable non-status attributes.
func (r *LeadRepository) UpdateDetails(ctx context.Context, l *domain.Lead) error {
	return r.db.WithContext(ctx).Model(&leadModel{}).
		Where("id = ?", l.ID).
		Updates(map[string]any{
			"priority":   string(l.Priority),
			"tags":       stringList(l.Tags),
			"college_id": l.CollegeID,
			"course_id":  l.CourseID,
			"updated_at": time.Now(),
		}).Error
}

func (r *LeadRepository) CountTotal(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&leadModel{}).Count(&n).Error
	return n, err
}

func (r *LeadRepository) CountByStatus(ctx context.Context) (map[domain.LeadStatus]int64, error) {
	rows, err := r.db.WithContext(ctx).Model(&leadModel{}).
		Select("status, COUNT(*) as n").Group("status").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.LeadStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.LeadStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *LeadRepository) CountByPriority(ctx context.Context) (map[domain.LeadPriority]int64, error) {
	rows, err := r.db.WithContext(ctx).Model(&leadModel{}).
		Select("priority, COUNT(*) as n").Group("priority").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.LeadPriority]int64)
	for rows.Next() {
		var priority string
		var n int64
		if err := rows.Scan(&priority, &n); err != nil {
			return nil, err
		}
		counts[domain.LeadPriority(priority)] = n
	}
	return counts, rows.Err()
}

// CountCreatedSince counts leads created at or after the given time.
func (r *LeadRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&leadModel{}).
		Where("created_at >= ?", since).Count(&n).Error
	return n, err
}
