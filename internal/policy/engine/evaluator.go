package engine

import "context"

// Rule is one policy table row. An operation is allowed when the caller's role is in Roles (or Roles is
// empty) and the caller's role grants Permission (or Permission is empty).
type Rule struct {
	Roles      []string `json:"roles,omitempty"`
	Permission string   `json:"permission,omitempty"`
}

// Table maps operation names to their rule. Operations missing from the table are denied.
type Table map[string]Rule

// Input is the authorization question for one call.
type Input struct {
	Operation   string   `json:"operation"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Evaluator decides whether a caller may run an operation.
type Evaluator interface {
	Allow(ctx context.Context, in Input) (bool, error)
	// Known reports whether the operation has a rule.
	Known(operation string) bool
}
