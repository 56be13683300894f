// Package httpx holds the JSON request and response helpers shared by every HTTP handler.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/sirupsen/logrus"

	"employee-management/backend/internal/logs"
	"employee-management/backend/internal/platform/errs"
)

// maxBodyBytes bounds request bodies decoded by Decode.
const maxBodyBytes = 1 << 20

// Validatable is implemented by request payloads that carry ozzo-validation rules.
type Validatable interface {
	Validate() error
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logs.Logger.WithError(err).Warn("encode response")
	}
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"message": msg})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind errs.Kind) int {
	switch kind {
	case errs.NotFound:
		return http.StatusNotFound
	case errs.Conflict:
		return http.StatusConflict
	case errs.Forbidden:
		return http.StatusForbidden
	case errs.Validation:
		return http.StatusBadRequest
	case errs.Unauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// WriteError maps err to a status and a {"message", ...details} body. Unexpected errors are logged
// with their cause and answered with the generic message only.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	e := errs.As(err)
	status := StatusFor(e.Kind)
	if e.Kind == errs.Unexpected {
		entry := logs.Logger.WithError(err)
		if r != nil {
			entry = entry.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path})
		}
		entry.Error("request failed")
		Message(w, status, "internal server error")
		return
	}
	body := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		body[k] = v
	}
	body["message"] = e.Message
	WriteJSON(w, status, body)
}

// Decode reads a JSON body into dst and runs its validation rules when dst implements Validatable.
// An empty body decodes to the zero value.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.Validation, "invalid JSON body", err)
	}
	if v, ok := dst.(Validatable); ok {
		return Validate(v)
	}
	return nil
}

// Validate runs v's rules and converts ozzo-validation errors into a Validation error with per-field details.
func Validate(v Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			fields[field] = ferr.Error()
		}
		return errs.New(errs.Validation, "validation failed").WithDetails(map[string]any{"errors": fields})
	}
	var inerr validation.InternalError
	if errors.As(err, &inerr) {
		return errs.Internal(err)
	}
	return errs.New(errs.Validation, err.Error())
}
