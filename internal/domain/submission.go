package domain

import "time"

// PageContext records where on the site a submission happened.
type PageContext struct {
	PageType string `json:"page_type"`
	EntityID *int64 `json:"entity_id,omitempty"`
	URL      string `json:"url,omitempty"`
}

// FormSubmission is an immutable record of one submit. Snapshot is a deep
// copy of the form's fields at submit time: later edits or deletion of the
// form never change how this record's columns are interpreted.
type FormSubmission struct {
	ID          int64          `json:"id"`
	PublicID    string         `json:"public_id"`
	FormID      int64          `json:"form_id"`
	FormVersion int            `json:"form_version"`
	Snapshot    []FormField    `json:"form_snapshot"`
	Data        map[string]any `json:"data"`
	SubmittedBy *int64         `json:"submitted_by,omitempty"`
	IP          string         `json:"-"`
	UserAgent   string         `json:"-"`
	Page        PageContext    `json:"page_context"`
	CreatedAt   time.Time      `json:"created_at"`
}
