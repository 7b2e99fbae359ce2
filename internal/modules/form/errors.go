package form

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound  = errors.New("form not found")
	ErrSlugTaken = errors.New("slug already in use")
)

// SchemaError collects every authoring problem found in one pass so the
// admin UI can show them all at once.
type SchemaError struct {
	Issues []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid form schema: %s", strings.Join(e.Issues, "; "))
}
