package domain

import (
	"errors"
	"strings"
	"time"
)

// ApprovalState is the signup approval lifecycle state of a principal.
type ApprovalState string

const (
	StatePending  ApprovalState = "PENDING"
	StateApproved ApprovalState = "APPROVED"
	StateRejected ApprovalState = "REJECTED"
)

// Principal is an authentication account. PasswordHash and the reset token hash never leave the service layer.
type Principal struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	RoleID       string
	// RoleName is joined from roles on reads; empty when the row was built in memory.
	RoleName        string
	Active          bool
	ApprovalState   ApprovalState
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason string

	ResetTokenHash      string
	ResetTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail trims and lowercases an email address. Principals and employee profiles are joined on it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate validates the principal for persistence. Returns an error describing the first validation failure.
func (p *Principal) Validate() error {
	if p.Email == "" {
		return errors.New("email is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.RoleID == "" {
		return errors.New("role is required")
	}
	if p.ApprovalState == "" {
		p.ApprovalState = StatePending
	}
	return nil
}

// Decision is the outcome of a successful approval transition.
type Decision struct {
	State     ApprovalState
	DeciderID string
	At        time.Time
	Reason    string
}

// Filter narrows List.
type Filter struct {
	State ApprovalState
}
