package codegen

import (
	"strings"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
)

// optionConstructor is the type name that marks a field as optional,
// compared ignoring case.
const optionConstructor = "option"

// Classify partitions fields into required and optional, keeping
// declaration order within each list. It never fails: anything that is
// not recognisably an option is required.
func Classify(fields []*ast.FieldNode) (required, optional []*ast.FieldNode) {
	for _, f := range fields {
		if IsOptional(f) {
			optional = append(optional, f)
		} else {
			required = append(required, f)
		}
	}
	return required, optional
}

// IsOptional reports whether the field's outermost type constructor is
// named option. The package qualifier does not count, so Option[T],
// option.Option[T] and mo.Option[T] all qualify. An option type without
// a type argument has no recoverable inner type and stays required.
func IsOptional(f *ast.FieldNode) bool {
	t := f.Type
	if t == nil || t.Kind != ast.TypeNamed {
		return false
	}
	return strings.EqualFold(t.Name, optionConstructor) && len(t.Args) > 0
}

// InnerType returns the value type of an optional field, or nil for a
// required one.
func InnerType(f *ast.FieldNode) *ast.TypeNode {
	if !IsOptional(f) {
		return nil
	}
	return f.Type.Args[0]
}

// Exclude returns every field whose name differs from name ignoring case,
// in declaration order.
func Exclude(fields []*ast.FieldNode, name string) []*ast.FieldNode {
	out := make([]*ast.FieldNode, 0, len(fields))
	for _, f := range fields {
		if !strings.EqualFold(f.Name, name) {
			out = append(out, f)
		}
	}
	return out
}
