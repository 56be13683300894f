package domain

import (
	"errors"
	"math"
	"time"

	identitydomain "employee-management/backend/internal/identity/domain"
)

// Status is the attendance status of a day.
type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusAbsent  Status = "Absent"
)

// ErrAlreadyCheckedOut is returned by Close on a closed record.
var ErrAlreadyCheckedOut = errors.New("already checked out")

// Record is one subject's attendance for one UTC day. Subject is the employee profile when one exists,
// else the principal.
type Record struct {
	ID         string
	Subject    identitydomain.Ref
	Day        time.Time
	CheckIn    time.Time
	CheckOut   *time.Time
	Status     Status
	TotalHours float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Close checks the record out at t and computes TotalHours rounded to two decimals.
func (r *Record) Close(t time.Time) error {
	if r.CheckOut != nil {
		return ErrAlreadyCheckedOut
	}
	t = t.UTC()
	r.CheckOut = &t
	r.TotalHours = math.Round(t.Sub(r.CheckIn).Hours()*100) / 100
	r.UpdatedAt = t
	return nil
}

// Range is a half-open interval of days [From, To). Zero bounds are open.
type Range struct {
	From time.Time
	To   time.Time
}

// DayRange is the range covering the single day of t.
func DayRange(t time.Time) Range {
	d := Day(t)
	return Range{From: d, To: d.AddDate(0, 0, 1)}
}

// MonthRange is the range covering month of year.
func MonthRange(year int, month time.Month) Range {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Range{From: from, To: from.AddDate(0, 1, 0)}
}
