package domain

import (
	"sort"
	"time"
)

// FieldType identifies the input kind of a form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldNumber   FieldType = "number"
	FieldDropdown FieldType = "dropdown"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
	FieldTextarea FieldType = "textarea"
	FieldDate     FieldType = "date"
	FieldFile     FieldType = "file"
	FieldHidden   FieldType = "hidden"
)

// fieldSpec carries the per-type traits the engine dispatches on. Keeping
// the set closed here means an unknown type is rejected when the schema is
// validated instead of silently falling through a switch default.
type fieldSpec struct {
	stringValued bool // length and pattern rules apply
	numeric      bool // min/max apply after coercion
	hasOptions   bool // options[] required at authoring time
}

var fieldSpecs = map[FieldType]fieldSpec{
	FieldText:     {stringValued: true},
	FieldEmail:    {stringValued: true},
	FieldPhone:    {stringValued: true},
	FieldNumber:   {numeric: true},
	FieldDropdown: {stringValued: true, hasOptions: true},
	FieldCheckbox: {},
	FieldRadio:    {stringValued: true, hasOptions: true},
	FieldTextarea: {stringValued: true},
	FieldDate:     {stringValued: true},
	FieldFile:     {},
	FieldHidden:   {stringValued: true},
}

func (t FieldType) Valid() bool {
	_, ok := fieldSpecs[t]
	return ok
}

// StringValued reports whether length and pattern rules apply to this type.
func (t FieldType) StringValued() bool { return fieldSpecs[t].stringValued }

// Numeric reports whether min/max bounds apply to this type.
func (t FieldType) Numeric() bool { return fieldSpecs[t].numeric }

// NeedsOptions reports whether the type requires a non-empty options list.
func (t FieldType) NeedsOptions() bool { return fieldSpecs[t].hasOptions }

// LeadMapping names the Lead attribute a field populates on lead-capture
// forms. The empty mapping routes the value into the lead's data bag only.
type LeadMapping string

const (
	MapNone    LeadMapping = ""
	MapName    LeadMapping = "name"
	MapEmail   LeadMapping = "email"
	MapPhone   LeadMapping = "phone"
	MapCollege LeadMapping = "college"
	MapCourse  LeadMapping = "course"
	MapMessage LeadMapping = "message"
)

func (m LeadMapping) Valid() bool {
	switch m {
	case MapNone, MapName, MapEmail, MapPhone, MapCollege, MapCourse, MapMessage:
		return true
	}
	return false
}

// Condition makes a field's visibility depend on another field's value.
// Equality is strict: no coercion between types.
type Condition struct {
	FieldName string `json:"field_name"`
	Value     any    `json:"value"`
}

// FieldValidation holds the declarative constraints of a field. All bounds
// are inclusive; nil means unconstrained.
type FieldValidation struct {
	Required      bool     `json:"required"`
	MinLength     *int     `json:"min_length,omitempty"`
	MaxLength     *int     `json:"max_length,omitempty"`
	Min           *float64 `json:"min,omitempty"`
	Max           *float64 `json:"max,omitempty"`
	Pattern       string   `json:"pattern,omitempty"`
	CustomMessage string   `json:"custom_message,omitempty"`
}

type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FormField is one input of a dynamic form. Name is the stable payload key
// and must be unique within the form.
type FormField struct {
	FieldID       string          `json:"field_id"`
	Type          FieldType       `json:"type"`
	Label         string          `json:"label"`
	Name          string          `json:"name"`
	Placeholder   string          `json:"placeholder,omitempty"`
	DefaultValue  any             `json:"default_value,omitempty"`
	Validation    FieldValidation `json:"validation"`
	Options       []FieldOption   `json:"options,omitempty"`
	Order         int             `json:"order"`
	ConditionalOn *Condition      `json:"conditional_on,omitempty"`
	LeadMapping   LeadMapping     `json:"lead_field_mapping,omitempty"`
}

// Purpose of a form decides what happens downstream of a submission.
type Purpose string

const (
	PurposeLeadCapture Purpose = "lead_capture"
	PurposeReview      Purpose = "review"
	PurposeGeneric     Purpose = "generic"
)

func (p Purpose) Valid() bool {
	return p == PurposeLeadCapture || p == PurposeReview || p == PurposeGeneric
}

type PostSubmitAction string

const (
	PostSubmitMessage  PostSubmitAction = "message"
	PostSubmitRedirect PostSubmitAction = "redirect"
	PostSubmitBoth     PostSubmitAction = "both"
)

func (a PostSubmitAction) Valid() bool {
	return a == PostSubmitMessage || a == PostSubmitRedirect || a == PostSubmitBoth
}

type DisplayMode string

const (
	DisplayPopup   DisplayMode = "popup"
	DisplayInline  DisplayMode = "inline"
	DisplaySlideIn DisplayMode = "slide_in"
)

func (d DisplayMode) Valid() bool {
	return d == DisplayPopup || d == DisplayInline || d == DisplaySlideIn
}

type TriggerKind string

const (
	TriggerImmediate  TriggerKind = "immediate"
	TriggerDelay      TriggerKind = "delay"
	TriggerScroll     TriggerKind = "scroll"
	TriggerExitIntent TriggerKind = "exit_intent"
)

func (t TriggerKind) Valid() bool {
	switch t {
	case TriggerImmediate, TriggerDelay, TriggerScroll, TriggerExitIntent:
		return true
	}
	return false
}

// PageAssignment places a form on a page type with a display/trigger config.
type PageAssignment struct {
	PageType      string      `json:"page_type"`
	EntityID      *int64      `json:"entity_id,omitempty"`
	DisplayAs     DisplayMode `json:"display_as"`
	Trigger       TriggerKind `json:"trigger"`
	DelaySeconds  int         `json:"delay_seconds,omitempty"`
	ScrollPercent int         `json:"scroll_percent,omitempty"`
	ShowOnce      bool        `json:"show_once"`
}

// Matches reports whether the assignment covers the given page. A nil
// EntityID assignment covers every entity of its page type.
func (a PageAssignment) Matches(pageType string, entityID *int64) bool {
	if a.PageType != pageType {
		return false
	}
	if a.EntityID == nil {
		return true
	}
	return entityID != nil && *a.EntityID == *entityID
}

type Visibility struct {
	RequiresAuth bool     `json:"requires_auth"`
	AllowedRoles []string `json:"allowed_roles,omitempty"`
}

// DynamicForm is the versioned schema of one form. Version increments on
// every structural edit and is never decremented; submissions recorded under
// an old version keep their own snapshot of the field set.
type DynamicForm struct {
	ID               int64            `json:"id"`
	Title            string           `json:"title"`
	Slug             string           `json:"slug"`
	Description      string           `json:"description,omitempty"`
	Purpose          Purpose          `json:"purpose"`
	Fields           []FormField      `json:"fields"`
	PostSubmitAction PostSubmitAction `json:"post_submit_action"`
	SuccessMessage   string           `json:"success_message,omitempty"`
	RedirectURL      string           `json:"redirect_url,omitempty"`
	Assignments      []PageAssignment `json:"assigned_pages,omitempty"`
	Visibility       Visibility       `json:"visibility"`
	IsPublished      bool             `json:"is_published"`
	Version          int              `json:"version"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// SortedFields returns the fields in render order: ascending Order, ties
// broken by declaration index.
func (f *DynamicForm) SortedFields() []FormField {
	out := make([]FormField, len(f.Fields))
	copy(out, f.Fields)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// FieldByName looks a field up by its payload key.
func (f *DynamicForm) FieldByName(name string) (FormField, bool) {
	for _, fld := range f.Fields {
		if fld.Name == name {
			return fld, true
		}
	}
	return FormField{}, false
}
