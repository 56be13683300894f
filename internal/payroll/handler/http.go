package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	identitydomain "employee-management/backend/internal/identity/domain"
	"employee-management/backend/internal/payroll/domain"
	"employee-management/backend/internal/payroll/service"
	"employee-management/backend/internal/platform/httpx"
	"employee-management/backend/internal/server/middleware"
)

// Service is the subset of the payroll service used by the handlers.
type Service interface {
	Generate(ctx context.Context, callerID, month string, year int) (*service.GenerateResult, error)
	List(ctx context.Context, month string, year int) ([]service.Entry, error)
	ForEmployee(ctx context.Context, employeeID string) ([]*domain.Payroll, error)
	Mine(ctx context.Context, callerID string) ([]service.Entry, error)
	UpdateStatus(ctx context.Context, callerID, id string, status *domain.Status, paymentDate *time.Time) (*domain.Payroll, error)
}

// Handler serves /api/payroll.
type Handler struct {
	svc Service
}

// NewHandler returns a payroll Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// PayrollJSON is the wire form of a payroll record.
type PayrollJSON struct {
	ID          string                      `json:"id"`
	EmployeeID  string                      `json:"employeeId"`
	Month       string                      `json:"month"`
	Year        int                         `json:"year"`
	BasicSalary float64                     `json:"basicSalary"`
	Allowances  float64                     `json:"allowances"`
	Deductions  float64                     `json:"deductions"`
	NetSalary   float64                     `json:"netSalary"`
	Status      string                      `json:"status"`
	PaymentDate *time.Time                  `json:"paymentDate"`
	CreatedAt   time.Time                   `json:"createdAt"`
	Employee    *identitydomain.ProfileView `json:"employee,omitempty"`
}

func toJSON(p *domain.Payroll) PayrollJSON {
	return PayrollJSON{
		ID:          p.ID,
		EmployeeID:  p.EmployeeID,
		Month:       p.Month,
		Year:        p.Year,
		BasicSalary: p.Basic,
		Allowances:  p.Allowances,
		Deductions:  p.Deductions,
		NetSalary:   p.Net,
		Status:      string(p.Status),
		PaymentDate: p.PaymentDate,
		CreatedAt:   p.CreatedAt,
	}
}

func entriesJSON(list []service.Entry) []PayrollJSON {
	out := make([]PayrollJSON, 0, len(list))
	for _, e := range list {
		j := toJSON(e.Payroll)
		if !e.View.Missing {
			v := e.View
			j.Employee = &v
		}
		out = append(out, j)
	}
	return out
}

type generateRequest struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
}

// Generate handles POST /api/payroll/generate.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	caller, _ := middleware.CallerFrom(r.Context())
	res, err := h.svc.Generate(r.Context(), caller.PrincipalID, req.Month, req.Year)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	body := map[string]any{
		"message": fmt.Sprintf("Processed payroll generation. %d records created.", len(res.Created)),
	}
	if len(res.Errors) > 0 {
		body["errors"] = res.Errors
	}
	httpx.WriteJSON(w, http.StatusCreated, body)
}

// List handles GET /api/payroll?month=&year=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	year, err := httpx.QueryInt(r, "year")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	list, err := h.svc.List(r.Context(), r.URL.Query().Get("month"), year)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entriesJSON(list))
}

// ForEmployee handles GET /api/payroll/employee/{employeeId}.
func (h *Handler) ForEmployee(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ForEmployee(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out := make([]PayrollJSON, 0, len(list))
	for _, p := range list {
		out = append(out, toJSON(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Mine handles GET /api/payroll/my-history.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	list, err := h.svc.Mine(r.Context(), caller.PrincipalID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entriesJSON(list))
}

type statusRequest struct {
	Status      *string `json:"status"`
	PaymentDate *string `json:"paymentDate"`
}

// UpdateStatus handles PUT /api/payroll/{id}.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	paid, err := httpx.OptionalDate("paymentDate", req.PaymentDate)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var status *domain.Status
	if req.Status != nil && *req.Status != "" {
		s := domain.Status(*req.Status)
		status = &s
	}
	caller, _ := middleware.CallerFrom(r.Context())
	p, err := h.svc.UpdateStatus(r.Context(), caller.PrincipalID, chi.URLParam(r, "id"), status, paid)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Payroll status updated", "payroll": toJSON(p)})
}
