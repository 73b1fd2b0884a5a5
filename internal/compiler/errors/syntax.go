package errors

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
)

// Input error codes
const (
	// ErrGoSyntax: a Go source file does not parse
	ErrGoSyntax ErrorCode = "SYN001"
	// ErrSchemaSyntax: an HCL schema file does not parse or decode
	ErrSchemaSyntax ErrorCode = "SYN002"
	// ErrInvalidTypeExpr: a schema field type is not a Go type expression
	ErrInvalidTypeExpr ErrorCode = "SYN003"
	// ErrUnknownType: a --type name is not declared in the package
	ErrUnknownType ErrorCode = "SYN004"
)

// NewGoSyntax reports a go/parser error
func NewGoSyntax(loc ast.SourceLocation, message string) *CompilerError {
	return newError(ErrGoSyntax, message, loc).
		WithSuggestion("fix the Go source so that it compiles, then generate again")
}

// NewSchemaSyntax reports an HCL diagnostic or a schema that does not fit
// its package
func NewSchemaSyntax(loc ast.SourceLocation, message string) *CompilerError {
	return newError(ErrSchemaSyntax, message, loc).
		WithExamples(`record "User" { field "ID" { type = "int64" } }`)
}

// NewInvalidTypeExpr reports a schema field whose type does not parse
func NewInvalidTypeExpr(loc ast.SourceLocation, field, expr string, reason error) *CompilerError {
	return newError(ErrInvalidTypeExpr, fmt.Sprintf("field %s: invalid type %q: %v", field, expr, reason), loc).
		WithActual(expr).
		WithSuggestion("write field types the way they appear in a Go struct").
		WithExamples("int64", "[]string", "option.Option[time.Time]")
}

// NewUnknownType reports a selected type the package does not declare.
// similar lists declared types close to name, if any.
func NewUnknownType(loc ast.SourceLocation, name, pkg string, similar []string) *CompilerError {
	err := newError(ErrUnknownType, fmt.Sprintf("type %s is not declared in package %s", name, pkg), loc).
		WithActual(name)
	if len(similar) > 0 {
		return err.WithSuggestion(fmt.Sprintf("Did you mean %s?", strings.Join(similar, ", ")))
	}
	return err.WithSuggestion("check --type against the type declarations of the package")
}
