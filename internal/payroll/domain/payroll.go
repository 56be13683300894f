package domain

import (
	"strconv"
	"strings"
	"time"
)

// Status is the payment state of a payroll record.
type Status string

const (
	StatusPending Status = "Pending"
	StatusPaid    Status = "Paid"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// Payroll is one employee's pay for one month, copied from the salary at generation time.
type Payroll struct {
	ID          string
	EmployeeID  string
	Month       string
	Year        int
	Basic       float64
	Allowances  float64
	Deductions  float64
	Net         float64
	Status      Status
	PaymentDate *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SetStatus moves the record to s. Paid stamps the payment date, using at when paidAt is nil;
// Pending clears it.
func (p *Payroll) SetStatus(s Status, paidAt *time.Time, at time.Time) {
	p.Status = s
	switch s {
	case StatusPaid:
		t := at.UTC()
		if paidAt != nil {
			t = paidAt.UTC()
		}
		p.PaymentDate = &t
	case StatusPending:
		p.PaymentDate = nil
	}
	p.UpdatedAt = at.UTC()
}

// ParseMonth accepts an English month name in any case, or its number, and returns the canonical name.
func ParseMonth(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return "", false
		}
		return time.Month(n).String(), true
	}
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(s, m.String()) {
			return m.String(), true
		}
	}
	return "", false
}
