package domain

import (
	"errors"
	"math"
	"time"
)

// Salary is the standing pay configuration of one employee. Amounts carry two decimals.
type Salary struct {
	ID         string
	EmployeeID string
	Basic      float64
	Allowances float64
	Deductions float64
	Net        float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Compute rounds the components to cents and sets Net = Basic + Allowances - Deductions.
func (s *Salary) Compute() {
	s.Basic = Round(s.Basic)
	s.Allowances = Round(s.Allowances)
	s.Deductions = Round(s.Deductions)
	s.Net = Round(s.Basic + s.Allowances - s.Deductions)
}

// Validate computes Net and checks the amounts.
func (s *Salary) Validate() error {
	if s.EmployeeID == "" {
		return errors.New("employee is required")
	}
	if s.Basic < 0 || s.Allowances < 0 || s.Deductions < 0 {
		return errors.New("amounts must not be negative")
	}
	s.Compute()
	return nil
}

// Round rounds v to two decimals.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
