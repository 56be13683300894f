package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	employeedomain "employee-management/backend/internal/employee/domain"
	"employee-management/backend/internal/organization/domain"
	"employee-management/backend/internal/organization/service"
)

type stubService struct {
	assigned   []string
	listFilter string
}

func (s *stubService) CreateDepartment(ctx context.Context, name, description string) (*domain.Department, error) {
	if name == "" {
		return nil, service.ErrDepartmentNameRequired
	}
	return &domain.Department{ID: "dep-1", Name: name, Description: description}, nil
}

func (s *stubService) ListDepartments(ctx context.Context) ([]*domain.Department, error) {
	return []*domain.Department{{ID: "dep-1", Name: "Sales", EmployeeCount: 3}}, nil
}

func (s *stubService) UpdateDepartment(ctx context.Context, id, name, description string) (*domain.Department, error) {
	return nil, service.ErrDepartmentNotFound
}

func (s *stubService) DeleteDepartment(ctx context.Context, id string) error { return nil }

func (s *stubService) AssignEmployees(ctx context.Context, id string, employeeIDs []string) (*domain.Department, int64, error) {
	s.assigned = employeeIDs
	return &domain.Department{ID: id, Name: "Sales"}, int64(len(employeeIDs)), nil
}

func (s *stubService) CreateDesignation(ctx context.Context, name, description, department string) (*domain.Designation, error) {
	return &domain.Designation{ID: "des-1", Name: name, Department: department}, nil
}

func (s *stubService) ListDesignations(ctx context.Context, department string) ([]*domain.Designation, error) {
	s.listFilter = department
	return nil, nil
}

func (s *stubService) UpdateDesignation(ctx context.Context, id, name, description, department string) (*domain.Designation, error) {
	return &domain.Designation{ID: id, Name: name, Department: department}, nil
}

func (s *stubService) DeleteDesignation(ctx context.Context, id string) error {
	return service.ErrDesignationNotFound
}

func (s *stubService) AssignDesignation(ctx context.Context, id, employeeID string) (*domain.Designation, *employeedomain.Employee, error) {
	return &domain.Designation{ID: id, Name: "Engineer"}, &employeedomain.Employee{ID: employeeID, Name: "Ann"}, nil
}

func do(method, pattern, target, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal %q: %v", rec.Body.String(), err)
	}
}

func TestCreateDepartment(t *testing.T) {
	h := NewHandler(&stubService{})
	rec := do(http.MethodPost, "/departments", "/departments", `{"name":"Sales","description":"d"}`, h.CreateDepartment)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Department departmentJSON `json:"department"`
	}
	decode(t, rec, &body)
	if body.Department.Name != "Sales" {
		t.Errorf("department = %+v", body.Department)
	}

	rec = do(http.MethodPost, "/departments", "/departments", `{}`, h.CreateDepartment)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name: status = %d, want 400", rec.Code)
	}
}

func TestListDepartments_EmployeeCount(t *testing.T) {
	h := NewHandler(&stubService{})
	rec := do(http.MethodGet, "/departments", "/departments", "", h.ListDepartments)
	var out []departmentJSON
	decode(t, rec, &out)
	if len(out) != 1 || out[0].EmployeeCount != 3 {
		t.Errorf("departments = %+v", out)
	}
}

func TestUpdateDepartment_NotFound(t *testing.T) {
	h := NewHandler(&stubService{})
	rec := do(http.MethodPut, "/departments/{id}", "/departments/x", `{"name":"n"}`, h.UpdateDepartment)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAssignEmployees(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc)
	rec := do(http.MethodPost, "/departments/{id}/assign-employees", "/departments/dep-1/assign-employees",
		`{"employeeIds":["e-1","e-2"]}`, h.AssignEmployees)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Assigned int64 `json:"assigned"`
	}
	decode(t, rec, &body)
	if body.Assigned != 2 || len(svc.assigned) != 2 {
		t.Errorf("assigned = %d, ids = %v", body.Assigned, svc.assigned)
	}
}

func TestListDesignations_DepartmentFilter(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc)
	rec := do(http.MethodGet, "/designations", "/designations?department=Engineering", "", h.ListDesignations)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.listFilter != "Engineering" {
		t.Errorf("filter = %q", svc.listFilter)
	}
}

func TestDeleteDesignation_NotFound(t *testing.T) {
	h := NewHandler(&stubService{})
	rec := do(http.MethodDelete, "/designations/{id}", "/designations/x", "", h.DeleteDesignation)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAssignDesignation(t *testing.T) {
	h := NewHandler(&stubService{})
	rec := do(http.MethodPost, "/designations/{id}/assign-employee", "/designations/des-1/assign-employee",
		`{"employeeId":"e-1"}`, h.AssignDesignation)
	var body struct {
		Employee map[string]string `json:"employee"`
	}
	decode(t, rec, &body)
	if body.Employee["designation"] != "Engineer" || body.Employee["id"] != "e-1" {
		t.Errorf("employee = %v", body.Employee)
	}
}
