package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	identitydomain "employee-management/backend/internal/identity/domain"
	"employee-management/backend/internal/platform/httpx"
	"employee-management/backend/internal/salary/service"
	"employee-management/backend/internal/server/middleware"
)

// Service is the subset of the salary service used by the handlers.
type Service interface {
	Set(ctx context.Context, callerID, callerRole string, in service.SetInput) (*service.Entry, error)
	Update(ctx context.Context, callerID, callerRole, id string, p service.Patch) (*service.Entry, error)
	List(ctx context.Context) ([]service.Entry, error)
	ForEmployee(ctx context.Context, employeeID string) (*service.Entry, error)
	Mine(ctx context.Context, callerID string) (*service.Entry, error)
}

// Handler serves /api/salary.
type Handler struct {
	svc Service
}

// NewHandler returns a salary Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// SalaryJSON is the wire form of a salary.
type SalaryJSON struct {
	ID          string                      `json:"id"`
	EmployeeID  string                      `json:"employeeId"`
	BasicSalary float64                     `json:"basicSalary"`
	Allowances  float64                     `json:"allowances"`
	Deductions  float64                     `json:"deductions"`
	NetSalary   float64                     `json:"netSalary"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
	Employee    *identitydomain.ProfileView `json:"employee,omitempty"`
}

func toJSON(e service.Entry) SalaryJSON {
	j := SalaryJSON{
		ID:          e.Salary.ID,
		EmployeeID:  e.Salary.EmployeeID,
		BasicSalary: e.Salary.Basic,
		Allowances:  e.Salary.Allowances,
		Deductions:  e.Salary.Deductions,
		NetSalary:   e.Salary.Net,
		UpdatedAt:   e.Salary.UpdatedAt,
	}
	if !e.View.Missing {
		v := e.View
		j.Employee = &v
	}
	return j
}

type setRequest struct {
	EmployeeID  string   `json:"employeeId"`
	BasicSalary *float64 `json:"basicSalary"`
	Allowances  float64  `json:"allowances"`
	Deductions  float64  `json:"deductions"`
}

// Set handles POST /api/salary.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	caller, _ := middleware.CallerFrom(r.Context())
	e, err := h.svc.Set(r.Context(), caller.PrincipalID, caller.Role, service.SetInput{
		EmployeeID: req.EmployeeID,
		Basic:      req.BasicSalary,
		Allowances: req.Allowances,
		Deductions: req.Deductions,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Salary set successfully", "salary": toJSON(*e)})
}

type updateRequest struct {
	BasicSalary *float64 `json:"basicSalary"`
	Allowances  *float64 `json:"allowances"`
	Deductions  *float64 `json:"deductions"`
}

// Update handles PUT /api/salary/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	caller, _ := middleware.CallerFrom(r.Context())
	e, err := h.svc.Update(r.Context(), caller.PrincipalID, caller.Role, chi.URLParam(r, "id"), service.Patch{
		Basic:      req.BasicSalary,
		Allowances: req.Allowances,
		Deductions: req.Deductions,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Salary updated successfully", "salary": toJSON(*e)})
}

// List handles GET /api/salary.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out := make([]SalaryJSON, 0, len(list))
	for _, e := range list {
		out = append(out, toJSON(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// ForEmployee handles GET /api/salary/employee/{employeeId}.
func (h *Handler) ForEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.ForEmployee(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toJSON(*e))
}

// Mine handles GET /api/salary/my-salary.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	e, err := h.svc.Mine(r.Context(), caller.PrincipalID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toJSON(*e))
}
