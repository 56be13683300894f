package domain

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	testCases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"March", "March", true},
		{" march ", "March", true},
		{"3", "March", true},
		{"12", "December", true},
		{"13", "", false},
		{"Mar", "", false},
		{"", "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseMonth(tc.in)
			if got != tc.want || ok != tc.ok {
				t.Errorf("ParseMonth(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestSetStatus(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	p := &Payroll{Status: StatusPending}

	p.SetStatus(StatusPaid, nil, now)
	if p.PaymentDate == nil || !p.PaymentDate.Equal(now) {
		t.Errorf("PaymentDate = %v, want %v", p.PaymentDate, now)
	}
	given := now.AddDate(0, 0, -2)
	p.SetStatus(StatusPaid, &given, now)
	if !p.PaymentDate.Equal(given) {
		t.Errorf("PaymentDate = %v, want %v", p.PaymentDate, given)
	}
	p.SetStatus(StatusPending, nil, now)
	if p.PaymentDate != nil {
		t.Errorf("Pending kept PaymentDate %v", p.PaymentDate)
	}
}
