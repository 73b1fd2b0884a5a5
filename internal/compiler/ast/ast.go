// Package ast defines the node types the typestate generator works on.
// A Program is one Go package worth of records, produced either from Go
// source or from an HCL schema file.
package ast

import "unicode"

// SourceLocation tracks the position of an AST node in source code
type SourceLocation struct {
	File   string // File name, empty when unknown
	Line   int    // Line number (1-indexed)
	Column int    // Column number (1-indexed)
}

// Node is the base interface for all AST nodes
type Node interface {
	Location() SourceLocation
	node()
}

// Program is the root node of the AST. It describes a single Go package.
type Program struct {
	Package string
	Imports []*ImportNode
	Records []*RecordNode

	// Declared holds the top-level identifiers the package already declares
	// outside of the generated output.
	Declared map[string]bool
}

func (p *Program) node() {}

// Location returns the source location of the program node in the AST.
func (p *Program) Location() SourceLocation {
	if len(p.Records) > 0 {
		return p.Records[0].Loc
	}
	return SourceLocation{Line: 1, Column: 1}
}

// IsDeclared reports whether name is a top-level identifier of the package.
func (p *Program) IsDeclared(name string) bool {
	return p.Declared != nil && p.Declared[name]
}

// ImportNode is an import available to the package's field types.
type ImportNode struct {
	Name string // Explicit alias, empty if none
	Path string
	Loc  SourceLocation
}

func (i *ImportNode) node() {}

// Location returns the source location of the import node in the AST.
func (i *ImportNode) Location() SourceLocation {
	return i.Loc
}

// RecordNode represents a type selected for builder generation
type RecordNode struct {
	Name       string
	Doc        []string
	TypeParams []*TypeParamNode
	Fields     []*FieldNode

	// Imports are the imports of the file declaring the record. Field type
	// qualifiers are resolved against them first, then against
	// Program.Imports.
	Imports []*ImportNode

	// IsStruct is false when the selected type is not a struct. Such
	// records produce no output.
	IsStruct bool

	// Declare asks the generator to emit the struct itself, for records
	// that only exist in a schema file.
	Declare bool

	Loc SourceLocation
}

func (r *RecordNode) node() {}

// Location returns the source location of the record node in the AST.
func (r *RecordNode) Location() SourceLocation {
	return r.Loc
}

// Exported reports whether the record name is exported.
func (r *RecordNode) Exported() bool {
	return IsExported(r.Name)
}

// TypeParamNode is one group of type parameters sharing a constraint,
// e.g. "K, V comparable".
type TypeParamNode struct {
	Names      []string
	Constraint string
	Qualifiers []string // package qualifiers used by the constraint
	Loc        SourceLocation
}

func (t *TypeParamNode) node() {}

// Location returns the source location of the type parameter node in the AST.
func (t *TypeParamNode) Location() SourceLocation {
	return t.Loc
}

// FieldNode represents a single struct field. Multi-name declarations are
// split into one FieldNode per name.
type FieldNode struct {
	Name     string
	Type     *TypeNode
	Doc      []string
	Tag      string // Raw struct tag including backquotes, empty if none
	Embedded bool
	Loc      SourceLocation
}

func (f *FieldNode) node() {}

// Location returns the source location of the field node in the AST.
func (f *FieldNode) Location() SourceLocation {
	return f.Loc
}

// TypeKind represents the outermost shape of a type expression
type TypeKind int

const (
	// TypeNamed is an identifier, possibly package-qualified and possibly
	// instantiated with type arguments (Option[string], time.Time).
	TypeNamed TypeKind = iota
	// TypePointer is *T
	TypePointer
	// TypeSlice is []T
	TypeSlice
	// TypeArray is [N]T
	TypeArray
	// TypeMap is map[K]V
	TypeMap
	// TypeChan is a channel type
	TypeChan
	// TypeFunc is a function type
	TypeFunc
	// TypeInterface is an interface literal
	TypeInterface
	// TypeStruct is a struct literal
	TypeStruct
	// TypeOther covers anything else (parenthesized, ellipsis, ...)
	TypeOther
)

// String returns the kind name used in logs and error messages.
func (k TypeKind) String() string {
	switch k {
	case TypeNamed:
		return "named"
	case TypePointer:
		return "pointer"
	case TypeSlice:
		return "slice"
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	case TypeChan:
		return "chan"
	case TypeFunc:
		return "func"
	case TypeInterface:
		return "interface"
	case TypeStruct:
		return "struct"
	default:
		return "other"
	}
}

// TypeNode represents a field type
type TypeNode struct {
	Kind TypeKind
	Expr string // Go source form, e.g. "option.Option[string]"

	// Name and Package are only set for TypeNamed: Package is the
	// qualifier ("option"), Name the type name ("Option").
	Name    string
	Package string

	// Args holds the type arguments of a TypeNamed
	Args []*TypeNode

	// Qualifiers lists every package qualifier referenced anywhere in
	// the expression, in first-seen order.
	Qualifiers []string

	Loc SourceLocation
}

func (t *TypeNode) node() {}

// Location returns the source location of the type node in the AST.
func (t *TypeNode) Location() SourceLocation {
	return t.Loc
}

// String returns the Go source form of the type.
func (t *TypeNode) String() string {
	return t.Expr
}

// IsExported reports whether name starts with an upper-case letter.
func IsExported(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
