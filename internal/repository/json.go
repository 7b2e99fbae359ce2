package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"eduforms/internal/domain"
)

// JSON column wrappers. gorm stores these as json text on both sqlite and
// postgres; the Valuer/Scanner pair keeps the domain slices/maps intact.

func scanJSON(dest any, src any) error {
	switch b := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(b) == 0 {
			return nil
		}
		return json.Unmarshal(b, dest)
	case string:
		if b == "" {
			return nil
		}
		return json.Unmarshal([]byte(b), dest)
	}
	return fmt.Errorf("unsupported json column source %T", src)
}

type fieldList []domain.FormField

func (l fieldList) Value() (driver.Value, error) { return json.Marshal(l) }
func (l *fieldList) Scan(src any) error          { return scanJSON(l, src) }

type assignmentList []domain.PageAssignment

func (l assignmentList) Value() (driver.Value, error) { return json.Marshal(l) }
func (l *assignmentList) Scan(src any) error          { return scanJSON(l, src) }

type valueMap map[string]any

func (m valueMap) Value() (driver.Value, error) { return json.Marshal(m) }
func (m *valueMap) Scan(src any) error          { return scanJSON(m, src) }

type changeList []domain.StatusChange

func (l changeList) Value() (driver.Value, error) { return json.Marshal(l) }
func (l *changeList) Scan(src any) error          { return scanJSON(l, src) }

type noteList []domain.Note

func (l noteList) Value() (driver.Value, error) { return json.Marshal(l) }
func (l *noteList) Scan(src any) error          { return scanJSON(l, src) }

type stringList []string

func (l stringList) Value() (driver.Value, error) { return json.Marshal(l) }
func (l *stringList) Scan(src any) error          { return scanJSON(l, src) }
