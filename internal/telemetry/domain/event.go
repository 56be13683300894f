package domain

import "time"

// Activity event types.
const (
	EventLoginSuccess           = "login_success"
	EventLoginFailure           = "login_failure"
	EventLogout                 = "logout"
	EventSignup                 = "signup"
	EventPrincipalRegistered    = "principal_registered"
	EventPrincipalApproved      = "principal_approved"
	EventPrincipalRejected      = "principal_rejected"
	EventPasswordChanged        = "password_changed"
	EventPasswordResetRequested = "password_reset_requested"
	EventPasswordReset          = "password_reset"
	EventRefreshReuse           = "refresh_token_reuse"
	EventEmployeeDeleted        = "employee_deleted"
	EventLeaveApplied           = "leave_applied"
	EventLeaveDecided           = "leave_decided"
	EventSalarySet              = "salary_set"
	EventPayrollGenerated       = "payroll_generated"
	EventPayrollPaid            = "payroll_paid"
)

// DefaultSource is the source of events emitted by the API server.
const DefaultSource = "ems-api"

// Event is one activity event. Its JSON form is the Kafka message value consumed by the worker.
type Event struct {
	Type string `json:"eventType"`
	// PrincipalID is the acting account, if any.
	PrincipalID string `json:"principalId,omitempty"`
	// Subject is the id the event is about (e.g. the approved principal).
	Subject   string         `json:"subject,omitempty"`
	Source    string         `json:"source,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewEvent returns an Event stamped with the current time and the default source.
func NewEvent(eventType, principalID, subject string, metadata map[string]any) *Event {
	return &Event{
		Type:        eventType,
		PrincipalID: principalID,
		Subject:     subject,
		Source:      DefaultSource,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
}
