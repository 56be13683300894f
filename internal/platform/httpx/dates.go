package httpx

import (
	"strings"
	"time"

	"employee-management/backend/internal/platform/errs"
)

// DateLayout is the calendar-date form accepted and returned by the API.
const DateLayout = "2006-01-02"

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns it in UTC.
// field names the input in the Validation error.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errs.Newf(errs.Validation, "%s must be a date (YYYY-MM-DD)", field)
}

// OptionalDate is ParseDate for an optional field: nil when s is nil or blank.
func OptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
