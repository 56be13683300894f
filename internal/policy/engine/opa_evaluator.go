package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/storage/inmem"
)

const allowQuery = "data.ems.authz.allow"

// authzPolicy reads the table from data.ems.operations. Both constraints of a row must hold.
const authzPolicy = `package ems.authz

default allow := false

allow if {
	rule := data.ems.operations[input.operation]
	role_ok(rule)
	permission_ok(rule)
}

role_ok(rule) if {
	count(object.get(rule, "roles", [])) == 0
}

role_ok(rule) if {
	input.role in rule.roles
}

permission_ok(rule) if {
	object.get(rule, "permission", "") == ""
}

permission_ok(rule) if {
	rule.permission in input.permissions
}
`

// OPAEvaluator answers authorization questions with a prepared Rego query over the policy table.
type OPAEvaluator struct {
	table Table
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles the authorization policy with table loaded as data.
func NewOPAEvaluator(ctx context.Context, table Table) (*OPAEvaluator, error) {
	data, err := tableData(table)
	if err != nil {
		return nil, err
	}
	pq, err := rego.New(
		rego.Query(allowQuery),
		rego.Module("authz.rego", authzPolicy),
		rego.Store(inmem.NewFromObject(data)),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare authz policy: %w", err)
	}
	return &OPAEvaluator{table: table, query: pq}, nil
}

// Known reports whether operation has a rule in the table.
func (e *OPAEvaluator) Known(operation string) bool {
	_, ok := e.table[operation]
	return ok
}

// Allow evaluates the policy for in. Undefined results deny.
func (e *OPAEvaluator) Allow(ctx context.Context, in Input) (bool, error) {
	perms := in.Permissions
	if perms == nil {
		perms = []string{}
	}
	input := map[string]any{
		"operation":   in.Operation,
		"role":        in.Role,
		"permissions": toAny(perms),
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("eval authz policy: %w", err)
	}
	return rs.Allowed(), nil
}

// HealthCheck verifies the prepared query evaluates. An unknown operation must come back denied.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	allowed, err := e.Allow(ctx, Input{Operation: "_healthcheck", Role: "ADMIN"})
	if err != nil {
		return err
	}
	if allowed {
		return fmt.Errorf("authz policy allowed an unknown operation")
	}
	return nil
}

// tableData converts table to plain JSON values under ems.operations for the in-memory store.
func tableData(table Table) (map[string]any, error) {
	raw, err := json.Marshal(map[string]any{"ems": map[string]any{"operations": table}})
	if err != nil {
		return nil, fmt.Errorf("encode policy table: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode policy table: %w", err)
	}
	return data, nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
