package engine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"eduforms/internal/domain"
)

// FieldErrors maps field name to the first failing rule's message. The form
// blocks submission while it is non-empty.
type FieldErrors map[string]string

// FieldValidator checks one field's value and returns an error message, or
// "" when the value passes.
type FieldValidator func(value any) string

// CompileField turns a field's declarative validation spec into a runtime
// check. Rules apply in a fixed order: required, length, numeric range,
// pattern. The first failure wins.
func CompileField(f domain.FormField) FieldValidator {
	v := f.Validation

	var pattern *regexp.Regexp
	patternBroken := false
	if v.Pattern != "" && f.Type.StringValued() {
		var err error
		pattern, err = regexp.Compile(v.Pattern)
		if err != nil {
			// Authoring validation rejects bad patterns up front; a form
			// persisted before that check still must not pass bad input.
			patternBroken = true
		}
	}

	return func(value any) string {
		if v.Required && isEmpty(value) {
			return fmt.Sprintf("%s is required", f.Label)
		}
		if isEmpty(value) {
			return ""
		}

		if f.Type.StringValued() {
			if s, ok := value.(string); ok {
				if v.MinLength != nil && len(s) < *v.MinLength {
					return fmt.Sprintf("%s must be at least %d characters", f.Label, *v.MinLength)
				}
				if v.MaxLength != nil && len(s) > *v.MaxLength {
					return fmt.Sprintf("%s must be at most %d characters", f.Label, *v.MaxLength)
				}
			}
		}

		if f.Type.Numeric() && (v.Min != nil || v.Max != nil) {
			n, ok := toFloat(value)
			if !ok {
				return fmt.Sprintf("%s must be a number", f.Label)
			}
			if v.Min != nil && n < *v.Min {
				return fmt.Sprintf("%s must be at least %v", f.Label, *v.Min)
			}
			if v.Max != nil && n > *v.Max {
				return fmt.Sprintf("%s must be at most %v", f.Label, *v.Max)
			}
		}

		if f.Type.StringValued() && v.Pattern != "" {
			if patternBroken || !pattern.MatchString(stringify(value)) {
				if v.CustomMessage != "" {
					return v.CustomMessage
				}
				return fmt.Sprintf("%s has an invalid format", f.Label)
			}
		}

		return ""
	}
}

// ValidateVisible runs every field's compiled validator against the value
// map. Hidden fields are exempt from all rules, required included. Fields
// are checked independently: one failure does not stop the others.
func ValidateVisible(fields []domain.FormField, values map[string]any) FieldErrors {
	errs := make(FieldErrors)
	for _, f := range fields {
		if !Visible(f, values) {
			continue
		}
		if msg := CompileField(f)(values[f.Name]); msg != "" {
			errs[f.Name] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// isEmpty implements the required-rule notion of "no value": nil, empty or
// blank string, and empty slice all count as empty.
func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
