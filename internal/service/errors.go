package service

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports malformed caller input with field-level detail.
// No side effects have occurred when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// PreconditionError means the target record exists but is no longer in a
// state where the requested action applies. Distinct from ValidationError
// so callers can tell "your input was malformed" from "the record is no
// longer actionable".
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// NotFoundError means the referenced ad does not exist.
type NotFoundError struct {
	AdID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ad not found: %d", e.AdID)
}

// GatewayError wraps a failed call to an external gateway, including
// webhook signature verification failures. Retrying is the caller's
// decision, never this service's.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway failure during %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
