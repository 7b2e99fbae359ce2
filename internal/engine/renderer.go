package engine

import (
	"errors"

	"eduforms/internal/domain"
)

var (
	ErrUnknownField  = errors.New("engine: field not defined on form")
	ErrSessionClosed = errors.New("engine: session already submitted")
	ErrBlocked       = errors.New("engine: validation errors block submit")
)

// RendererConfig tunes session behavior. ClearHiddenValues drops values of
// fields hidden at submit time from the payload; the default keeps them, so
// a field that is re-shown restores its prior answer either way.
type RendererConfig struct {
	ClearHiddenValues bool
}

// Outcome tells the caller what to do after a successful submit.
type Outcome struct {
	ShowMessage bool   `json:"show_message"`
	Message     string `json:"message,omitempty"`
	Redirect    bool   `json:"redirect"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// Session materializes one form for one visitor: ordered visible fields,
// live values, validation state, and a one-shot terminal submitted state.
// The schema is captured at construction; edits to the form after that do
// not affect an open session.
type Session struct {
	form      domain.DynamicForm
	cfg       RendererConfig
	values    map[string]any
	errs      FieldErrors
	submitted bool
}

// NewSession opens a session over the form as currently served. Field
// defaults seed the value map.
func NewSession(form domain.DynamicForm, cfg RendererConfig) *Session {
	s := &Session{
		form:   form,
		cfg:    cfg,
		values: make(map[string]any),
	}
	for _, f := range form.Fields {
		if f.DefaultValue != nil {
			s.values[f.Name] = f.DefaultValue
		}
	}
	return s
}

// VisibleFields returns the fields to render, in order, with conditional
// visibility applied against the current values.
func (s *Session) VisibleFields() []domain.FormField {
	var out []domain.FormField
	for _, f := range s.form.SortedFields() {
		if Visible(f, s.values) {
			out = append(out, f)
		}
	}
	return out
}

// SetValue records a field value. Visibility of every field is re-evaluated
// on the next read; hiding a dependency does not clear anything.
func (s *Session) SetValue(name string, value any) error {
	if s.submitted {
		return ErrSessionClosed
	}
	if _, ok := s.form.FieldByName(name); !ok {
		return ErrUnknownField
	}
	s.values[name] = value
	return nil
}

// Value reads back a recorded value.
func (s *Session) Value(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Validate runs all visible-field validators and caches the result.
func (s *Session) Validate() FieldErrors {
	s.errs = ValidateVisible(s.form.Fields, s.values)
	return s.errs
}

// Errors returns the last validation result.
func (s *Session) Errors() FieldErrors { return s.errs }

// Payload builds the submission payload. Submit is blocked until every
// visible field's validator passes; on success the {name: value} map is
// returned for the caller to post.
func (s *Session) Payload() (map[string]any, error) {
	if s.submitted {
		return nil, ErrSessionClosed
	}
	if errs := s.Validate(); len(errs) > 0 {
		return nil, ErrBlocked
	}

	out := make(map[string]any, len(s.values))
	for name, v := range s.values {
		if s.cfg.ClearHiddenValues {
			if f, ok := s.form.FieldByName(name); ok && !Visible(f, s.values) {
				continue
			}
		}
		out[name] = v
	}
	return out, nil
}

// AcknowledgeSuccess moves the session into its terminal submitted state and
// resolves the post-submit action. Terminal is one-shot: there is no way back
// short of building a fresh session.
func (s *Session) AcknowledgeSuccess() (Outcome, error) {
	if s.submitted {
		return Outcome{}, ErrSessionClosed
	}
	s.submitted = true

	o := Outcome{}
	switch s.form.PostSubmitAction {
	case domain.PostSubmitRedirect:
		o.Redirect = true
		o.RedirectURL = s.form.RedirectURL
	case domain.PostSubmitBoth:
		o.ShowMessage = true
		o.Message = s.form.SuccessMessage
		o.Redirect = true
		o.RedirectURL = s.form.RedirectURL
	default:
		o.ShowMessage = true
		o.Message = s.form.SuccessMessage
	}
	return o, nil
}

// AcknowledgeFailure reports a failed submit attempt. The session stays
// editable and every pending value is kept, so nothing is lost on retry.
func (s *Session) AcknowledgeFailure() {
	// values and errors intentionally untouched
}

// Submitted reports whether the session reached its terminal state.
func (s *Session) Submitted() bool { return s.submitted }
