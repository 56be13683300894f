package domain

import "testing"

func TestDepartmentForRole(t *testing.T) {
	testCases := map[string]string{
		"ADMIN":    "Administration",
		"HR":       "Human Resources",
		"EMPLOYEE": "General",
		"":         "General",
	}
	for role, want := range testCases {
		if got := DepartmentForRole(role); got != want {
			t.Errorf("DepartmentForRole(%q) = %q, want %q", role, got, want)
		}
	}
}

func TestEmployee_Validate(t *testing.T) {
	e := &Employee{Name: "Asha", Email: "asha@x.com"}
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if e.Status != StatusActive {
		t.Errorf("Status = %q, want Active", e.Status)
	}
	if err := (&Employee{Email: "a@x.com"}).Validate(); err == nil {
		t.Error("missing name should fail")
	}
	if err := (&Employee{Name: "A", Email: "a@x.com", Status: "Retired"}).Validate(); err == nil {
		t.Error("unknown status should fail")
	}
}
