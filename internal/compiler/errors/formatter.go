package errors

import (
	"fmt"
	"strings"
)

// FormatError renders a diagnostic over several lines:
//
//	models/user.go:12:2: error GEN609
//	  method UserBuilder.Build would be generated for both finalize method and build
//	  hint: rename one of the fields, or set finalize_method in typestate.yml
func FormatError(e *CompilerError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s %s\n", position(e), e.Severity, e.Code)
	fmt.Fprintf(&b, "  %s\n", e.Message)

	if e.Actual != "" && !strings.Contains(e.Message, e.Actual) {
		fmt.Fprintf(&b, "  got: %s\n", e.Actual)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  hint: %s\n", e.Suggestion)
	}
	for _, example := range e.Examples {
		fmt.Fprintf(&b, "  e.g. %s\n", example)
	}

	return b.String()
}

// FormatErrorList renders every diagnostic followed by a count
func FormatErrorList(list ErrorList) string {
	var b strings.Builder
	for _, err := range list {
		b.WriteString(FormatError(err))
	}

	errs, warnings, _ := list.ErrorCount()
	fmt.Fprintf(&b, "%d error(s), %d warning(s)\n", errs, warnings)
	return b.String()
}

// FormatCompact returns the one-line form, file:line:col: message [CODE]
func FormatCompact(e *CompilerError) string {
	return fmt.Sprintf("%s: %s [%s]", position(e), e.Message, e.Code)
}

// position renders the location the way go vet does, leaving out what
// is unknown
func position(e *CompilerError) string {
	loc := e.Location
	file := loc.File
	if file == "" {
		file = "<input>"
	}
	switch {
	case loc.Line == 0:
		return file
	case loc.Column == 0:
		return fmt.Sprintf("%s:%d", file, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", file, loc.Line, loc.Column)
	}
}
