package lead

import "eduforms/internal/domain"

// UpdateStatusRequest moves a lead through the pipeline.
type UpdateStatusRequest struct {
	Status domain.LeadStatus `json:"status" validate:"required"`
	Note   string            `json:"note"`
}

// AssignRequest hands a lead to a user.
type AssignRequest struct {
	UserID int64 `json:"user_id" validate:"required"`
}

// NoteRequest appends a free-text note.
type NoteRequest struct {
	Content string `json:"content" validate:"required"`
}

// UpdateRequest edits the mutable non-status attributes; nil members are
// left untouched.
type UpdateRequest struct {
	Priority  *domain.LeadPriority `json:"priority"`
	Tags      *[]string            `json:"tags"`
	CollegeID *int64               `json:"college"`
	CourseID  *int64               `json:"course"`
}

// ListResponse is the paginated lead listing.
type ListResponse struct {
	Leads []*domain.Lead `json:"leads"`
	Total int64          `json:"total"`
}

// StatsResponse is the read-only projection over the lead collection.
type StatsResponse struct {
	Total      int64                          `json:"total"`
	ByStatus   map[domain.LeadStatus]int64    `json:"by_status"`
	ByPriority map[domain.LeadPriority]int64  `json:"by_priority"`
	TodayCount int64                          `json:"today_count"`
	WeekCount  int64                          `json:"this_week_count"`
}
