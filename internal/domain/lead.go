package domain

import (
	"fmt"
	"time"
)

// LeadStatus is the pipeline position of a lead.
type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadConverted LeadStatus = "converted"
	LeadLost      LeadStatus = "lost"
	LeadClosed    LeadStatus = "closed"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadConverted, LeadLost, LeadClosed:
		return true
	}
	return false
}

// Terminal reports whether no further status transitions are accepted.
func (s LeadStatus) Terminal() bool {
	return s == LeadConverted || s == LeadLost || s == LeadClosed
}

type LeadPriority string

const (
	PriorityLow    LeadPriority = "low"
	PriorityMedium LeadPriority = "medium"
	PriorityHigh   LeadPriority = "high"
	PriorityUrgent LeadPriority = "urgent"
)

func (p LeadPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// StatusChange is one entry of the audit trail. Entries are appended and
// never mutated or removed.
type StatusChange struct {
	From      LeadStatus `json:"from"`
	To        LeadStatus `json:"to"`
	ChangedBy int64      `json:"changed_by"`
	ChangedAt time.Time  `json:"changed_at"`
	Note      string     `json:"note,omitempty"`
}

// Note is a free-text remark on a lead, append-only.
type Note struct {
	Content   string    `json:"content"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// LeadSource points back at the form/submission a lead came from. The
// submission never references the lead; the link runs this way only.
type LeadSource struct {
	FormID       *int64 `json:"form,omitempty"`
	SubmissionID *int64 `json:"submission,omitempty"`
	Channel      string `json:"channel"`
}

// Lead is a prospective customer. It is created by the submission pipeline
// and evolves independently afterward. Revision backs optimistic concurrency
// on status changes.
type Lead struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone"`
	Data       map[string]any `json:"data,omitempty"`
	Source     LeadSource     `json:"source"`
	CollegeID  *int64         `json:"college,omitempty"`
	CourseID   *int64         `json:"course,omitempty"`
	Status     LeadStatus     `json:"status"`
	History    []StatusChange `json:"status_history"`
	AssignedTo *int64         `json:"assigned_to,omitempty"`
	Priority   LeadPriority   `json:"priority"`
	Tags       []string       `json:"tags,omitempty"`
	Notes      []Note         `json:"notes,omitempty"`
	Revision   int64          `json:"revision"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// LeadFromSubmission maps a submission into a fresh lead using the snapshot
// fields' lead mappings. Unmapped fields land in the data bag keyed by field
// name. Fields are walked in declaration order, so if a legacy form carries
// duplicate mappings the last one wins.
func LeadFromSubmission(form *DynamicForm, sub *FormSubmission) *Lead {
	now := time.Now()
	lead := &Lead{
		Data:     make(map[string]any),
		Status:   LeadNew,
		Priority: PriorityMedium,
		Source: LeadSource{
			FormID:       &form.ID,
			SubmissionID: &sub.ID,
			Channel:      "form",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, f := range sub.Snapshot {
		v, ok := sub.Data[f.Name]
		if !ok {
			continue
		}
		switch f.LeadMapping {
		case MapName:
			lead.Name = toString(v)
		case MapEmail:
			lead.Email = toString(v)
		case MapPhone:
			lead.Phone = toString(v)
		case MapCollege:
			if id, ok := toInt64(v); ok {
				lead.CollegeID = &id
			}
		case MapCourse:
			if id, ok := toInt64(v); ok {
				lead.CourseID = &id
			}
		case MapMessage:
			lead.Data["message"] = v
		default:
			lead.Data[f.Name] = v
		}
	}

	return lead
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		var id int64
		if _, err := fmt.Sscan(n, &id); err == nil {
			return id, true
		}
	}
	return 0, false
}
