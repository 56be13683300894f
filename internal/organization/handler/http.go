package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	employeedomain "employee-management/backend/internal/employee/domain"
	"employee-management/backend/internal/organization/domain"
	"employee-management/backend/internal/platform/httpx"
)

// Service is the subset of the organization service used by the handlers.
type Service interface {
	CreateDepartment(ctx context.Context, name, description string) (*domain.Department, error)
	ListDepartments(ctx context.Context) ([]*domain.Department, error)
	UpdateDepartment(ctx context.Context, id, name, description string) (*domain.Department, error)
	DeleteDepartment(ctx context.Context, id string) error
	AssignEmployees(ctx context.Context, id string, employeeIDs []string) (*domain.Department, int64, error)

	CreateDesignation(ctx context.Context, name, description, department string) (*domain.Designation, error)
	ListDesignations(ctx context.Context, department string) ([]*domain.Designation, error)
	UpdateDesignation(ctx context.Context, id, name, description, department string) (*domain.Designation, error)
	DeleteDesignation(ctx context.Context, id string) error
	AssignDesignation(ctx context.Context, id, employeeID string) (*domain.Designation, *employeedomain.Employee, error)
}

// Handler serves /api/departments and /api/designations.
type Handler struct {
	svc Service
}

// NewHandler returns an organization Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type departmentJSON struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	EmployeeCount int       `json:"employeeCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toDepartmentJSON(d *domain.Department) departmentJSON {
	return departmentJSON{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		EmployeeCount: d.EmployeeCount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type designationJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Department  string    `json:"department"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toDesignationJSON(d *domain.Designation) designationJSON {
	return designationJSON{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Department:  d.Department,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type departmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateDepartment handles POST /api/departments.
func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	d, err := h.svc.CreateDepartment(r.Context(), req.Name, req.Description)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Department added successfully", "department": toDepartmentJSON(d)})
}

// ListDepartments handles GET /api/departments.
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListDepartments(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out := make([]departmentJSON, 0, len(list))
	for _, d := range list {
		out = append(out, toDepartmentJSON(d))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// UpdateDepartment handles PUT /api/departments/{id}.
func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	d, err := h.svc.UpdateDepartment(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Department updated successfully", "department": toDepartmentJSON(d)})
}

// DeleteDepartment handles DELETE /api/departments/{id}.
func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDepartment(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Department deleted successfully")
}

type assignEmployeesRequest struct {
	EmployeeIDs []string `json:"employeeIds"`
}

// AssignEmployees handles POST /api/departments/{id}/assign-employees.
func (h *Handler) AssignEmployees(w http.ResponseWriter, r *http.Request) {
	var req assignEmployeesRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	d, n, err := h.svc.AssignEmployees(r.Context(), chi.URLParam(r, "id"), req.EmployeeIDs)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":    "Employees assigned successfully",
		"department": toDepartmentJSON(d),
		"assigned":   n,
	})
}

type designationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Department  string `json:"department"`
}

// CreateDesignation handles POST /api/designations.
func (h *Handler) CreateDesignation(w http.ResponseWriter, r *http.Request) {
	var req designationRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	d, err := h.svc.CreateDesignation(r.Context(), req.Name, req.Description, req.Department)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Designation added successfully", "designation": toDesignationJSON(d)})
}

// ListDesignations handles GET /api/designations?department=.
func (h *Handler) ListDesignations(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListDesignations(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out := make([]designationJSON, 0, len(list))
	for _, d := range list {
		out = append(out, toDesignationJSON(d))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// UpdateDesignation handles PUT /api/designations/{id}.
func (h *Handler) UpdateDesignation(w http.ResponseWriter, r *http.Request) {
	var req designationRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	d, err := h.svc.UpdateDesignation(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description, req.Department)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Designation updated successfully", "designation": toDesignationJSON(d)})
}

// DeleteDesignation handles DELETE /api/designations/{id}.
func (h *Handler) DeleteDesignation(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDesignation(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Designation deleted successfully")
}

type assignDesignationRequest struct {
	EmployeeID string `json:"employeeId"`
}

// AssignDesignation handles POST /api/designations/{id}/assign-employee.
func (h *Handler) AssignDesignation(w http.ResponseWriter, r *http.Request) {
	var req assignDesignationRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	d, e, err := h.svc.AssignDesignation(r.Context(), chi.URLParam(r, "id"), req.EmployeeID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":  "Employee assigned to designation successfully",
		"employee": map[string]string{"id": e.ID, "name": e.Name, "designation": d.Name},
	})
}
