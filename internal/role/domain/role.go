package domain

import (
	"slices"
	"strings"
	"time"
)

// Name is one of the closed set of role names.
type Name string

const (
	Admin    Name = "ADMIN"
	HR       Name = "HR"
	Employee Name = "EMPLOYEE"
)

// Names lists every valid role name.
var Names = []Name{Admin, HR, Employee}

// ParseName uppercases s and reports whether it names a known role.
func ParseName(s string) (Name, bool) {
	n := Name(strings.ToUpper(strings.TrimSpace(s)))
	return n, slices.Contains(Names, n)
}

// Role carries a role name and its permission tokens. Permissions are data, not code.
type Role struct {
	ID          string
	Name        Name
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Has reports whether the role grants perm.
func (r *Role) Has(perm string) bool {
	if r == nil {
		return false
	}
	return slices.Contains(r.Permissions, perm)
}
