package engine

import (
	"reflect"

	"eduforms/internal/domain"
)

// Visible decides whether a field is shown given the current value map.
// A field with no condition is always visible; otherwise it is visible iff
// the dependency's value strictly equals the expected value. Strict means no
// coercion: the string "true" never matches the boolean true.
//
// The dependency is looked up by last-known value, not by whether it is
// currently rendered. A hidden dependency's stale value still participates
// in the equality check; hiding a field does not clear its value. Conditional
// chains therefore follow last-known values.
func Visible(f domain.FormField, values map[string]any) bool {
	cond := f.ConditionalOn
	if cond == nil || cond.FieldName == "" {
		return true
	}
	got, ok := values[cond.FieldName]
	if !ok {
		return false
	}
	return equalStrict(got, cond.Value)
}

// equalStrict compares two dynamic values without any type coercion. Values
// of different dynamic types are never equal.
func equalStrict(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}
