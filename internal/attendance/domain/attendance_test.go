package domain

import (
	"testing"
	"time"
)

func TestDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2026, 3, 5, 2, 0, 0, 0, loc)
	got := Day(in)
	want := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Day(%v) = %v, want %v", in, got, want)
	}
}

func TestClose(t *testing.T) {
	in := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	r := &Record{CheckIn: in}
	if err := r.Close(in.Add(8*time.Hour + 20*time.Minute)); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if r.TotalHours != 8.33 {
		t.Errorf("TotalHours = %v, want 8.33", r.TotalHours)
	}
	if err := r.Close(in.Add(9 * time.Hour)); err != ErrAlreadyCheckedOut {
		t.Errorf("second Close: want ErrAlreadyCheckedOut, got %v", err)
	}
}

func TestMonthRange(t *testing.T) {
	r := MonthRange(2026, time.December)
	if r.From.Format("2006-01-02") != "2026-12-01" || r.To.Format("2006-01-02") != "2027-01-01" {
		t.Errorf("MonthRange = %v..%v", r.From, r.To)
	}
}
