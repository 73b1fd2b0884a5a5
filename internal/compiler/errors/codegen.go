package errors

import (
	"fmt"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
)

// Code generation error codes
const (
	// ErrCodeGenFailed: the generated source does not format
	ErrCodeGenFailed ErrorCode = "GEN600"
	// ErrInvalidGoIdentifier: a record or field name is not a Go identifier
	ErrInvalidGoIdentifier ErrorCode = "GEN601"
	// ErrMethodCollision: two methods of one builder would share a name
	ErrMethodCollision ErrorCode = "GEN609"
	// ErrDuplicateRecord: the same record is selected twice
	ErrDuplicateRecord ErrorCode = "GEN610"
	// ErrNameTaken: the package already declares a generated top-level name
	ErrNameTaken ErrorCode = "GEN611"
)

// NewCodeGenFailed reports output that go/format rejects
func NewCodeGenFailed(loc ast.SourceLocation, reason string) *CompilerError {
	return newError(ErrCodeGenFailed, "code generation failed: "+reason, loc).
		WithSuggestion("this is a generator bug, please report it with the input that triggered it")
}

// NewInvalidGoIdentifier reports a name no builder can be generated for
func NewInvalidGoIdentifier(loc ast.SourceLocation, name, reason string) *CompilerError {
	return newError(ErrInvalidGoIdentifier, fmt.Sprintf("%q is not usable as a Go identifier: %s", name, reason), loc).
		WithActual(name).
		WithSuggestion("use letters, digits and underscores, starting with a letter")
}

// NewMethodCollision reports two fields, or a field and the finalize
// method, that would produce the same method on builder
func NewMethodCollision(loc ast.SourceLocation, builder, method, first, second string) *CompilerError {
	return newError(ErrMethodCollision, fmt.Sprintf("method %s.%s would be generated for both %s and %s", builder, method, first, second), loc).
		WithSuggestion("rename one of the fields, or set finalize_method in typestate.yml")
}

// NewDuplicateRecord reports a record selected twice in one output
func NewDuplicateRecord(loc ast.SourceLocation, name string) *CompilerError {
	return newError(ErrDuplicateRecord, fmt.Sprintf("record %s is declared more than once", name), loc).
		WithSuggestion("record names must be unique within a package")
}

// NewNameTaken reports a generated declaration the package already has
func NewNameTaken(loc ast.SourceLocation, name, record string) *CompilerError {
	return newError(ErrNameTaken, fmt.Sprintf("cannot generate %s for %s: the package already declares it", name, record), loc).
		WithActual(name).
		WithSuggestion("remove or rename the existing declaration, or set constructor_prefix in typestate.yml")
}
