package domain

import "testing"

func TestParseName(t *testing.T) {
	testCases := []struct {
		in   string
		want Name
		ok   bool
	}{
		{"ADMIN", Admin, true},
		{"hr", HR, true},
		{" employee ", Employee, true},
		{"MANAGER", "MANAGER", false},
		{"", "", false},
	}
	for _, tc := range testCases {
		got, ok := ParseName(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseName(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRole_Has(t *testing.T) {
	r := &Role{Name: HR, Permissions: DefaultPermissions[HR]}
	if !r.Has(PermEmployeeCreate) {
		t.Error("HR should have EMPLOYEE_CREATE")
	}
	if r.Has(PermPayrollGenerate) {
		t.Error("HR should not have PAYROLL_GENERATE")
	}
	var nilRole *Role
	if nilRole.Has(PermEmployeeRead) {
		t.Error("nil role grants nothing")
	}
}

func TestDefaultPermissions_AdminHasAll(t *testing.T) {
	admin := &Role{Name: Admin, Permissions: DefaultPermissions[Admin]}
	for _, p := range AllPermissions {
		if !admin.Has(p) {
			t.Errorf("ADMIN missing %s", p)
		}
	}
}
