package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"employee-management/backend/internal/attendance/domain"
	"employee-management/backend/internal/attendance/service"
	identitydomain "employee-management/backend/internal/identity/domain"
	"employee-management/backend/internal/platform/httpx"
	"employee-management/backend/internal/server/middleware"
)

// Service is the subset of the attendance service used by the handlers.
type Service interface {
	CheckIn(ctx context.Context, callerID, employeeID string) (*domain.Record, error)
	CheckOut(ctx context.Context, callerID, employeeID string) (*domain.Record, error)
	Personal(ctx context.Context, caller service.Caller, id string, p service.Period) ([]*domain.Record, error)
	All(ctx context.Context, p service.Period, department string) ([]service.Entry, error)
}

// Handler serves /api/attendance.
type Handler struct {
	svc Service
}

// NewHandler returns an attendance Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RecordJSON is the wire form of an attendance record. Employee is set on report listings only.
type RecordJSON struct {
	ID         string                      `json:"id"`
	EmployeeID string                      `json:"employeeId"`
	Date       string                      `json:"date"`
	CheckIn    time.Time                   `json:"checkIn"`
	CheckOut   *time.Time                  `json:"checkOut"`
	Status     string                      `json:"status"`
	TotalHours float64                     `json:"totalHours"`
	Employee   *identitydomain.ProfileView `json:"employee,omitempty"`
}

func toJSON(r *domain.Record) RecordJSON {
	return RecordJSON{
		ID:         r.ID,
		EmployeeID: r.Subject.ID,
		Date:       r.Day.Format(httpx.DateLayout),
		CheckIn:    r.CheckIn,
		CheckOut:   r.CheckOut,
		Status:     string(r.Status),
		TotalHours: r.TotalHours,
	}
}

type checkRequest struct {
	EmployeeID string `json:"employeeId"`
}

// CheckIn handles POST /api/attendance/check-in.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	caller, _ := middleware.CallerFrom(r.Context())
	rec, err := h.svc.CheckIn(r.Context(), caller.PrincipalID, req.EmployeeID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Checked in successfully", "attendance": toJSON(rec)})
}

// CheckOut handles POST /api/attendance/check-out.
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	caller, _ := middleware.CallerFrom(r.Context())
	rec, err := h.svc.CheckOut(r.Context(), caller.PrincipalID, req.EmployeeID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Checked out successfully", "attendance": toJSON(rec)})
}

// Personal handles GET /api/attendance/personal/{id}?month=&year=.
func (h *Handler) Personal(w http.ResponseWriter, r *http.Request) {
	p, err := period(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	caller, _ := middleware.CallerFrom(r.Context())
	list, err := h.svc.Personal(r.Context(), service.Caller{PrincipalID: caller.PrincipalID, Role: caller.Role}, chi.URLParam(r, "id"), p)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out := make([]RecordJSON, 0, len(list))
	for _, rec := range list {
		out = append(out, toJSON(rec))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// All handles GET /api/attendance/all?date=&month=&year=&department=.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	p, err := period(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	list, err := h.svc.All(r.Context(), p, r.URL.Query().Get("department"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out := make([]RecordJSON, 0, len(list))
	for _, e := range list {
		j := toJSON(e.Record)
		if !e.View.Missing {
			v := e.View
			j.Employee = &v
		}
		out = append(out, j)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func period(r *http.Request) (service.Period, error) {
	var (
		p   service.Period
		err error
	)
	q := r.URL.Query()
	if s := q.Get("date"); s != "" {
		if p.Date, err = httpx.OptionalDate("date", &s); err != nil {
			return p, err
		}
	}
	if p.Month, err = httpx.QueryInt(r, "month"); err != nil {
		return p, err
	}
	if p.Year, err = httpx.QueryInt(r, "year"); err != nil {
		return p, err
	}
	return p, nil
}
