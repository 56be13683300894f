package domain

import (
	"errors"
	"strings"
	"time"
)

// Department is an organizational unit. Employees reference it by name.
type Department struct {
	ID          string
	Name        string
	Description string
	// EmployeeCount is filled on List reads only.
	EmployeeCount int
	Deleted       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate validates the department for persistence.
func (d *Department) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return errors.New("department name is required")
	}
	return nil
}

// Designation is a job title within a department. Names are unique per department among live rows.
type Designation struct {
	ID          string
	Name        string
	Description string
	Department  string
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the designation for persistence.
func (d *Designation) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Department = strings.TrimSpace(d.Department)
	if d.Name == "" {
		return errors.New("designation name is required")
	}
	if d.Department == "" {
		return errors.New("department is required")
	}
	return nil
}
