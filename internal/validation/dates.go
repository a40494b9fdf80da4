package validation

import (
	"strings"
	"time"

	"taskboard/internal/domain"
)

// accepted due date layouts, tried in order
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDueDate coerces s into a timestamp without timezone. Values carrying an
// offset are converted to UTC first; values without one are taken as UTC wall time.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, domain.NewValidationError("dueDate must be a valid date")
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewValidationError("dueDate must be a valid date")
}
