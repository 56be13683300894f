package errs

import (
	"errors"
	"fmt"
	"testing"
)

var errSentinel = New(Conflict, "already decided")

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want Kind
	}{
		{"typed", New(NotFound, "missing"), NotFound},
		{"wrapped typed", fmt.Errorf("ctx: %w", New(Forbidden, "no")), Forbidden},
		{"untyped", errors.New("boom"), Unexpected},
		{"internal", Internal(errors.New("db down")), Unexpected},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("KindOf = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSentinelSurvivesDetails(t *testing.T) {
	err := errSentinel.WithDetails(map[string]any{"approvalStatus": "APPROVED"})
	if !errors.Is(err, errSentinel) {
		t.Error("errors.Is should match sentinel after WithDetails")
	}
	if errSentinel.Details != nil {
		t.Error("WithDetails must not mutate the sentinel")
	}
	if err.Details["approvalStatus"] != "APPROVED" {
		t.Errorf("details = %v", err.Details)
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)
	if !errors.Is(err, cause) {
		t.Error("Internal should unwrap to its cause")
	}
	if err.Message != "internal server error" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestAs_Untyped(t *testing.T) {
	e := As(errors.New("boom"))
	if e.Kind != Unexpected {
		t.Errorf("Kind = %v, want Unexpected", e.Kind)
	}
}

func TestKindString(t *testing.T) {
	if NotFound.String() != "not_found" || Unauthenticated.String() != "unauthenticated" || Kind(99).String() != "unexpected" {
		t.Error("unexpected Kind.String output")
	}
}
