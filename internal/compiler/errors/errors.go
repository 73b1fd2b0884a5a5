// Package errors provides the diagnostics of the typestate generator.
// Every diagnostic carries a stable code: SYN0xx for problems in the input
// (Go source, schema files, type expressions, flags) and GEN6xx for
// builders that cannot be generated.
package errors

import (
	"encoding/json"
	"strings"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
)

// ErrorCode is the stable identifier of a diagnostic
type ErrorCode string

// Category derives the category from the code prefix
func (c ErrorCode) Category() ErrorCategory {
	switch {
	case strings.HasPrefix(string(c), "SYN"):
		return CategorySyntax
	case strings.HasPrefix(string(c), "GEN"):
		return CategoryCodeGen
	default:
		return CategoryUnknown
	}
}

// ErrorCategory groups codes by the stage that reports them
type ErrorCategory string

const (
	CategorySyntax  ErrorCategory = "syntax"
	CategoryCodeGen ErrorCategory = "codegen"
	CategoryUnknown ErrorCategory = "unknown"
)

// ErrorSeverity tells whether a diagnostic stops generation
type ErrorSeverity string

const (
	// SeverityError stops generation of the package
	SeverityError ErrorSeverity = "error"
	// SeverityWarning is reported but output is still written
	SeverityWarning ErrorSeverity = "warning"
	SeverityInfo    ErrorSeverity = "info"
)

// CompilerError is one diagnostic
type CompilerError struct {
	Code     ErrorCode          `json:"code"`
	Category ErrorCategory      `json:"category"`
	Severity ErrorSeverity      `json:"severity"`
	Message  string             `json:"message"`
	Location ast.SourceLocation `json:"location"`

	// Actual is the offending input, when it is short enough to quote
	Actual string `json:"actual,omitempty"`
	// Suggestion is a hint for fixing the problem
	Suggestion string `json:"suggestion,omitempty"`
	// Examples are valid inputs for the construct that failed
	Examples []string `json:"examples,omitempty"`
}

// Error returns the one-line form, file:line:col: message [CODE]
func (e *CompilerError) Error() string {
	return FormatCompact(e)
}

// Format returns the multi-line form used in terminal output
func (e *CompilerError) Format() string {
	return FormatError(e)
}

// WithActual sets the offending input
func (e *CompilerError) WithActual(actual string) *CompilerError {
	e.Actual = actual
	return e
}

// WithSuggestion sets a hint for fixing the problem
func (e *CompilerError) WithSuggestion(suggestion string) *CompilerError {
	e.Suggestion = suggestion
	return e
}

// WithExamples sets valid inputs for the construct that failed
func (e *CompilerError) WithExamples(examples ...string) *CompilerError {
	e.Examples = examples
	return e
}

// ErrorList collects the diagnostics of a run
type ErrorList []*CompilerError

// Error lists the diagnostics, one per line
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	lines := make([]string, len(el))
	for i, err := range el {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}

// HasErrors reports whether any diagnostic has error severity
func (el ErrorList) HasErrors() bool {
	errs, _, _ := el.ErrorCount()
	return errs > 0
}

// HasWarnings reports whether any diagnostic has warning severity
func (el ErrorList) HasWarnings() bool {
	_, warnings, _ := el.ErrorCount()
	return warnings > 0
}

// Err returns the list as an error, or nil when it is empty.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// ToJSON returns the diagnostics as a JSON array, for editor integrations
func (el ErrorList) ToJSON() (string, error) {
	if el == nil {
		el = ErrorList{}
	}
	data, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ErrorCount returns the number of diagnostics by severity
func (el ErrorList) ErrorCount() (errors, warnings, info int) {
	for _, err := range el {
		switch err.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			info++
		}
	}
	return
}

func newError(code ErrorCode, message string, loc ast.SourceLocation) *CompilerError {
	return &CompilerError{
		Code:     code,
		Category: code.Category(),
		Severity: SeverityError,
		Message:  message,
		Location: loc,
	}
}
