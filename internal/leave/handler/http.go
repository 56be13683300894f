package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	identitydomain "employee-management/backend/internal/identity/domain"
	"employee-management/backend/internal/leave/domain"
	"employee-management/backend/internal/leave/service"
	"employee-management/backend/internal/platform/httpx"
	"employee-management/backend/internal/server/middleware"
)

// Service is the subset of the leave service used by the handlers.
type Service interface {
	AddType(ctx context.Context, name, description string, daysPerYear int) (*domain.Type, error)
	ListTypes(ctx context.Context) ([]*domain.Type, error)
	Apply(ctx context.Context, callerID string, in service.ApplyInput) (*service.Entry, error)
	Personal(ctx context.Context, callerID, callerRole, id string) ([]*domain.Request, error)
	All(ctx context.Context) ([]service.Entry, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, deciderID string) (*service.Entry, error)
}

// Handler serves /api/leave.
type Handler struct {
	svc Service
}

// NewHandler returns a leave Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type typeJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DaysPerYear int    `json:"daysPerYear"`
}

func toTypeJSON(t *domain.Type) typeJSON {
	return typeJSON{ID: t.ID, Name: t.Name, Description: t.Description, DaysPerYear: t.DaysPerYear}
}

type leaveTypeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RequestJSON is the wire form of a leave request. Employee is set on listings that carry views.
type RequestJSON struct {
	ID         string                      `json:"id"`
	EmployeeID string                      `json:"employeeId"`
	LeaveType  leaveTypeRef                `json:"leaveType"`
	StartDate  string                      `json:"startDate"`
	EndDate    string                      `json:"endDate"`
	Reason     string                      `json:"reason"`
	Status     string                      `json:"status"`
	AppliedAt  time.Time                   `json:"appliedDate"`
	ApprovedBy *string                     `json:"approvedBy"`
	Employee   *identitydomain.ProfileView `json:"employee,omitempty"`
}

func toJSON(r *domain.Request) RequestJSON {
	return RequestJSON{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		LeaveType:  leaveTypeRef{ID: r.LeaveTypeID, Name: r.LeaveTypeName},
		StartDate:  r.StartDate.Format(httpx.DateLayout),
		EndDate:    r.EndDate.Format(httpx.DateLayout),
		Reason:     r.Reason,
		Status:     string(r.Status),
		AppliedAt:  r.AppliedAt,
		ApprovedBy: r.ApprovedBy,
	}
}

func entryJSON(e service.Entry) RequestJSON {
	j := toJSON(e.Request)
	if !e.View.Missing {
		v := e.View
		j.Employee = &v
	}
	return j
}

type addTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DaysPerYear int    `json:"daysPerYear"`
}

// AddType handles POST /api/leave/types.
func (h *Handler) AddType(w http.ResponseWriter, r *http.Request) {
	var req addTypeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	t, err := h.svc.AddType(r.Context(), req.Name, req.Description, req.DaysPerYear)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Leave type added successfully", "type": toTypeJSON(t)})
}

// ListTypes handles GET /api/leave/types.
func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.ListTypes(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out := make([]typeJSON, 0, len(types))
	for _, t := range types {
		out = append(out, toTypeJSON(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type applyRequest struct {
	EmployeeID  string  `json:"employeeId"`
	LeaveTypeID string  `json:"leaveTypeId"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Reason      string  `json:"reason"`
}

// Apply handles POST /api/leave/apply.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	start, err := httpx.OptionalDate("startDate", req.StartDate)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	end, err := httpx.OptionalDate("endDate", req.EndDate)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	caller, _ := middleware.CallerFrom(r.Context())
	e, err := h.svc.Apply(r.Context(), caller.PrincipalID, service.ApplyInput{
		EmployeeID:  req.EmployeeID,
		LeaveTypeID: req.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Reason:      req.Reason,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Leave application submitted", "leaveRequest": entryJSON(*e)})
}

// Personal handles GET /api/leave/personal/{id}.
func (h *Handler) Personal(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	list, err := h.svc.Personal(r.Context(), caller.PrincipalID, caller.Role, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out := make([]RequestJSON, 0, len(list))
	for _, req := range list {
		out = append(out, toJSON(req))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// All handles GET /api/leave/all.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.All(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out := make([]RequestJSON, 0, len(list))
	for _, e := range list {
		out = append(out, entryJSON(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/leave/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	caller, _ := middleware.CallerFrom(r.Context())
	e, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), domain.Status(req.Status), caller.PrincipalID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Leave " + strings.ToLower(req.Status) + " successfully",
		"request": entryJSON(*e),
	})
}
