package keel

import (
	"fmt"
	"strings"
)

// Error codes for validation failures.
const (
	CodeRequired  = "required"
	CodeType      = "type"
	CodeLength    = "length"
	CodeChoice    = "choice"
	CodeFormat    = "format"
	CodeExistence = "existence"
	CodeStructure = "structure"
	CodeNamespace = "namespace"
	CodeExternal  = "external"
	CodeRemoved   = "removed"
	CodeInternal  = "internal"
)

// Issue is a single validation finding tied to a configuration key.
// Errors carry a Code from the taxonomy above; warnings leave it empty.
type Issue struct {
	Key     string // Field name (e.g. "plugins")
	Code    string // Error code (e.g. "type", "choice")
	Message string // Human-readable description with stable wording
}

// ValidationError aggregates the errors of one validation pass so the
// outcome can travel as a single error value.
type ValidationError struct {
	Issues []Issue
}

// Error formats the collected issues as a multi-line message.
func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config validation failed: no errors"
	}

	var b strings.Builder
	if len(e.Issues) == 1 {
		b.WriteString("config validation failed: 1 error\n")
	} else {
		fmt.Fprintf(&b, "config validation failed: %d errors\n", len(e.Issues))
	}

	for _, issue := range e.Issues {
		fmt.Fprintf(&b, "  - %s: %s (%s)\n", issue.Key, issue.Code, issue.Message)
	}

	return strings.TrimRight(b.String(), "\n")
}

// valueError is the failure produced by a single option's phase. It is
// collected into an Issue by Config.Validate, never surfaced inline.
type valueError struct {
	code string
	msg  string
}

func (e *valueError) Error() string { return e.msg }

// errValue creates a validation failure with the given code and message.
func errValue(code, format string, args ...any) error {
	return &valueError{code: code, msg: fmt.Sprintf(format, args...)}
}

// errRequired is the exact failure for a required field with no value.
func errRequired() error {
	return &valueError{code: CodeRequired, msg: "Required configuration not provided."}
}

// codeOf extracts the taxonomy code from an option failure.
func codeOf(err error) string {
	if ve, ok := err.(*valueError); ok {
		return ve.code
	}
	return CodeInternal
}

// rekey prefixes a nested option's failure so it stays unambiguous when
// bubbled to the enclosing config.
func rekey(prefix string, err error) error {
	return &valueError{code: codeOf(err), msg: prefix + err.Error()}
}
