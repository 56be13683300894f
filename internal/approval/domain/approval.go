// Package domain holds the approval lifecycle of self-registered principals.
package domain

import principaldomain "employee-management/backend/internal/principal/domain"

// transitions lists the allowed moves. APPROVED and REJECTED are terminal.
var transitions = map[principaldomain.ApprovalState]map[principaldomain.ApprovalState]struct{}{
	principaldomain.StatePending: {
		principaldomain.StateApproved: {},
		principaldomain.StateRejected: {},
	},
}

// CanTransition reports whether a principal in from may move to to.
func CanTransition(from, to principaldomain.ApprovalState) bool {
	_, ok := transitions[from][to]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s principaldomain.ApprovalState) bool {
	return len(transitions[s]) == 0
}
