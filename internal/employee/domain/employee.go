package domain

import (
	"errors"
	"time"
)

// Status is the employment status of a profile.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Employee is the HR profile of a person. PrincipalID links it to the login account when one exists;
// Email is the legacy join key and stays unique.
type Employee struct {
	ID              string
	PrincipalID     *string
	Name            string
	Email           string
	Phone           string
	Department      string
	DesignationID   *string
	DesignationName string
	JoiningDate     time.Time
	Status          Status
	Deleted         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate validates the employee for persistence and fills the default status.
func (e *Employee) Validate() error {
	if e.Name == "" {
		return errors.New("name is required")
	}
	if e.Email == "" {
		return errors.New("email is required")
	}
	if e.Status == "" {
		e.Status = StatusActive
	}
	if !e.Status.Valid() {
		return errors.New("status must be Active or Inactive")
	}
	return nil
}

// Filter narrows List. Zero fields are ignored.
type Filter struct {
	// Search matches name, email, phone or department, case-insensitive.
	Search        string
	Department    string
	DesignationID string
	Status        Status
	// ExcludeRole drops profiles whose linked or email-matched principal has this role name.
	ExcludeRole string
}

// DepartmentForRole is the department given to a profile created from an account of the given role.
func DepartmentForRole(role string) string {
	switch role {
	case "ADMIN":
		return "Administration"
	case "HR":
		return "Human Resources"
	default:
		return "General"
	}
}
