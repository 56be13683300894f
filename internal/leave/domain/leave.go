package domain

import (
	"errors"
	"strings"
	"time"
)

// Type is a kind of leave with its yearly allowance.
type Type struct {
	ID          string
	Name        string
	Description string
	DaysPerYear int
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the leave type for persistence.
func (t *Type) Validate() error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return errors.New("leave type name is required")
	}
	if t.DaysPerYear < 0 {
		return errors.New("days per year must not be negative")
	}
	return nil
}

// DefaultTypes are created by the listing when no leave type exists.
var DefaultTypes = []Type{
	{Name: "Sick Leave", Description: "Medical health issues", DaysPerYear: 12},
	{Name: "Casual Leave", Description: "Personal reasons", DaysPerYear: 10},
	{Name: "Annual Leave", Description: "Vacation", DaysPerYear: 20},
}

// SeedTypes are written by the seeder, overwriting same-name rows.
var SeedTypes = []Type{
	{Name: "Sick Leave", Description: "For medical reasons and health issues", DaysPerYear: 12},
	{Name: "Casual Leave", Description: "For personal reasons or short-term needs", DaysPerYear: 10},
	{Name: "Annual Leave", Description: "Vacation or planned long-term leaves", DaysPerYear: 20},
	{Name: "Maternity Leave", Description: "For expected mothers", DaysPerYear: 90},
	{Name: "Paternity Leave", Description: "For expected fathers", DaysPerYear: 15},
}

// Status is the state of a leave request.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// IsDecision reports whether s is a status a reviewer may set.
func (s Status) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// Request is an employee's application for leave. Dates are calendar days in UTC, both inclusive.
type Request struct {
	ID            string
	EmployeeID    string
	LeaveTypeID   string
	LeaveTypeName string
	StartDate     time.Time
	EndDate       time.Time
	Reason        string
	Status        Status
	AppliedAt     time.Time
	ApprovedBy    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate validates the request for persistence.
func (r *Request) Validate() error {
	if r.EmployeeID == "" || r.LeaveTypeID == "" || strings.TrimSpace(r.Reason) == "" {
		return errors.New("employee, leave type and reason are required")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return errors.New("start and end dates are required")
	}
	if r.EndDate.Before(r.StartDate) {
		return errors.New("end date is before start date")
	}
	return nil
}

// Days is the number of calendar days the request covers.
func (r *Request) Days() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}
