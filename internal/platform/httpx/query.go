package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"employee-management/backend/internal/platform/errs"
)

// QueryInt reads an optional integer query parameter. Absent or blank reads as 0.
func QueryInt(r *http.Request, name string) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Newf(errs.Validation, "%s must be a number", name)
	}
	return n, nil
}
