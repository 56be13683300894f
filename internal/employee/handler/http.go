package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"employee-management/backend/internal/employee/domain"
	"employee-management/backend/internal/employee/service"
	"employee-management/backend/internal/platform/httpx"
	"employee-management/backend/internal/server/middleware"
)

// Service is the subset of the employee service used by the handlers.
type Service interface {
	Create(ctx context.Context, in service.Input) (*domain.Employee, error)
	List(ctx context.Context, f domain.Filter) ([]*domain.Employee, error)
	Get(ctx context.Context, id string) (*domain.Employee, error)
	Update(ctx context.Context, id string, p service.Patch) (*domain.Employee, error)
	Delete(ctx context.Context, id, actorID string) error
	Profile(ctx context.Context, principalID string) (*domain.Employee, error)
	UpdateProfile(ctx context.Context, principalID string, name, phone *string) (*domain.Employee, error)
}

// Handler serves /api/employees.
type Handler struct {
	svc Service
}

// NewHandler returns an employees Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// DesignationJSON is the nested designation of an employee.
type DesignationJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EmployeeJSON is the public form of an employee profile.
type EmployeeJSON struct {
	ID          string           `json:"id"`
	PrincipalID *string          `json:"principalId,omitempty"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone"`
	Department  string           `json:"department"`
	Designation *DesignationJSON `json:"designation"`
	JoiningDate string           `json:"joiningDate"`
	Status      domain.Status    `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// ToJSON converts e to its public form.
func ToJSON(e *domain.Employee) EmployeeJSON {
	out := EmployeeJSON{
		ID:          e.ID,
		PrincipalID: e.PrincipalID,
		Name:        e.Name,
		Email:       e.Email,
		Phone:       e.Phone,
		Department:  e.Department,
		JoiningDate: e.JoiningDate.Format(httpx.DateLayout),
		Status:      e.Status,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.DesignationID != nil {
		out.Designation = &DesignationJSON{ID: *e.DesignationID, Name: e.DesignationName}
	}
	return out
}

type employeeRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Department  *string `json:"department"`
	Designation *string `json:"designation"`
	JoiningDate *string `json:"joiningDate"`
	Status      *string `json:"status"`
}

func (p employeeRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, is.Email),
		validation.Field(&p.Status, validation.In(string(domain.StatusActive), string(domain.StatusInactive))),
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Create handles POST /api/employees.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	joined, err := httpx.OptionalDate("joiningDate", req.JoiningDate)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	e, err := h.svc.Create(r.Context(), service.Input{
		Name:          deref(req.Name),
		Email:         deref(req.Email),
		Phone:         deref(req.Phone),
		Department:    deref(req.Department),
		DesignationID: deref(req.Designation),
		JoiningDate:   joined,
		Status:        domain.Status(deref(req.Status)),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Employee added successfully", "employee": ToJSON(e)})
}

// List handles GET /api/employees?search=&department=&designation=&status=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.List(r.Context(), domain.Filter{
		Search:        q.Get("search"),
		Department:    q.Get("department"),
		DesignationID: q.Get("designation"),
		Status:        domain.Status(q.Get("status")),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out := make([]EmployeeJSON, 0, len(list))
	for _, e := range list {
		out = append(out, ToJSON(e))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"total": len(out), "employees": out})
}

// Get handles GET /api/employees/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ToJSON(e))
}

// Update handles PUT /api/employees/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	joined, err := httpx.OptionalDate("joiningDate", req.JoiningDate)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p := service.Patch{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Department:    req.Department,
		DesignationID: req.Designation,
		JoiningDate:   joined,
	}
	if req.Status != nil {
		st := domain.Status(*req.Status)
		p.Status = &st
	}
	e, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Employee updated successfully", "employee": ToJSON(e)})
}

// Delete handles DELETE /api/employees/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), caller.PrincipalID); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Employee and all related data deleted successfully")
}

// Profile handles GET /api/employees/profile/me.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	e, err := h.svc.Profile(r.Context(), caller.PrincipalID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ToJSON(e))
}

type profileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// UpdateProfile handles PUT /api/employees/profile/me. Only name and phone are read from the body.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	var req profileRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	e, err := h.svc.UpdateProfile(r.Context(), caller.PrincipalID, req.Name, req.Phone)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Profile updated successfully", "employee": ToJSON(e)})
}
