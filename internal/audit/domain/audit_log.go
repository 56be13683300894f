package domain

import "time"

// AuditLog is one recorded action. PrincipalID is empty for unauthenticated calls such as a failed login.
type AuditLog struct {
	ID          string
	PrincipalID string
	Action      string
	Resource    string
	IP          string
	Metadata    string
	CreatedAt   time.Time
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	PrincipalID string
	Action      string
	Resource    string
	Limit       int
}
