package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eduforms/internal/domain"
)

func TestVisible_NoCondition(t *testing.T) {
	f := domain.FormField{Name: "email", Type: domain.FieldEmail}

	assert.True(t, Visible(f, map[string]any{}))
	assert.True(t, Visible(f, map[string]any{"anything": "at all"}))
}

func TestVisible_TogglesOnDependencyValue(t *testing.T) {
	f := domain.FormField{
		Name:          "course",
		Type:          domain.FieldDropdown,
		ConditionalOn: &domain.Condition{FieldName: "interested", Value: "yes"},
	}

	assert.False(t, Visible(f, map[string]any{}))
	assert.False(t, Visible(f, map[string]any{"interested": "no"}))
	assert.True(t, Visible(f, map[string]any{"interested": "yes"}))
}

func TestVisible_StrictEquality(t *testing.T) {
	f := domain.FormField{
		Name:          "details",
		ConditionalOn: &domain.Condition{FieldName: "count", Value: 5},
	}

	// string "5" must not match number 5
	assert.False(t, Visible(f, map[string]any{"count": "5"}))
	assert.True(t, Visible(f, map[string]any{"count": 5}))

	b := domain.FormField{
		Name:          "extra",
		ConditionalOn: &domain.Condition{FieldName: "agree", Value: true},
	}
	assert.False(t, Visible(b, map[string]any{"agree": "true"}))
	assert.True(t, Visible(b, map[string]any{"agree": true}))
}

func TestVisible_HiddenDependencyStaleValueStillCounts(t *testing.T) {
	// a depends on b, b depends on c. Hiding b (by changing c) does not
	// clear b's value, so a stays visible on b's last-known value.
	b := domain.FormField{
		Name:          "b",
		ConditionalOn: &domain.Condition{FieldName: "c", Value: "show-b"},
	}
	a := domain.FormField{
		Name:          "a",
		ConditionalOn: &domain.Condition{FieldName: "b", Value: "show-a"},
	}

	values := map[string]any{"c": "show-b", "b": "show-a"}
	assert.True(t, Visible(b, values))
	assert.True(t, Visible(a, values))

	values["c"] = "something-else"
	assert.False(t, Visible(b, values))
	assert.True(t, Visible(a, values), "stale value of hidden dependency must keep participating")
}
