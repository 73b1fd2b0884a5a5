package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
	"github.com/conduit-lang/typestate/internal/compiler/errors"
)

func parseSource(t *testing.T, opts Options, src string) (*ast.Program, errors.ErrorList) {
	t.Helper()
	p := New(opts)
	p.AddFile("models.go", []byte(src))
	return p.Parse()
}

func TestParse_DirectiveSelection(t *testing.T) {
	prog, errs := parseSource(t, Options{}, `package models

// User is selected.
//
//typestate:builder
type User struct {
	ID int64
}

// Plain is not selected.
type Plain struct {
	ID int64
}

type (
	//typestate:builder
	Grouped struct{ X int }

	Other struct{ Y int }
)
`)
	require.Empty(t, errs)

	assert.Equal(t, "models", prog.Package)
	require.Len(t, prog.Records, 2)
	assert.Equal(t, "User", prog.Records[0].Name)
	assert.Equal(t, "Grouped", prog.Records[1].Name)

	assert.Equal(t, []string{"// User is selected.", "//"}, prog.Records[0].Doc)
	assert.Equal(t, ast.SourceLocation{File: "models.go", Line: 6, Column: 6}, prog.Records[0].Loc)
}

func TestParse_CustomDirective(t *testing.T) {
	prog, errs := parseSource(t, Options{Directive: "gen:builder"}, `package models

//gen:builder
type A struct{ X int }

//typestate:builder
type B struct{ X int }
`)
	require.Empty(t, errs)
	require.Len(t, prog.Records, 1)
	assert.Equal(t, "A", prog.Records[0].Name)
}

func TestParse_TypeSelection(t *testing.T) {
	prog, errs := parseSource(t, Options{Types: []string{"Plain", "Usr"}}, `package models

//typestate:builder
type User struct{ ID int64 }

type Plain struct{ ID int64 }
`)

	require.Len(t, prog.Records, 1)
	assert.Equal(t, "Plain", prog.Records[0].Name)

	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrUnknownType, errs[0].Code)
	assert.Equal(t, "Did you mean User?", errs[0].Suggestion)
}

func TestParse_Fields(t *testing.T) {
	prog, errs := parseSource(t, Options{}, `package models

import (
	"time"

	opt "github.com/conduit-lang/typestate/pkg/option"
)

//typestate:builder
type Event struct {
	// ID identifies the event.
	ID       int64 ` + "`json:\"id\"`" + `
	From, To time.Time
	Note     opt.Option[string] // free text
	*Base
	Tags     map[string][]string
}
`)
	require.Empty(t, errs)
	require.Len(t, prog.Records, 1)

	record := prog.Records[0]
	assert.True(t, record.IsStruct)

	var names []string
	for _, f := range record.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"ID", "From", "To", "Note", "Base", "Tags"}, names)

	id := record.Fields[0]
	assert.Equal(t, []string{"// ID identifies the event."}, id.Doc)
	assert.Equal(t, "`json:\"id\"`", id.Tag)
	assert.Equal(t, ast.TypeNamed, id.Type.Kind)
	assert.Equal(t, "int64", id.Type.Name)

	assert.Equal(t, "time.Time", record.Fields[1].Type.Expr)
	assert.Equal(t, "time", record.Fields[2].Type.Package)

	note := record.Fields[3]
	assert.Equal(t, []string{"// free text"}, note.Doc)
	assert.Equal(t, "Option", note.Type.Name)
	assert.Equal(t, "opt", note.Type.Package)
	require.Len(t, note.Type.Args, 1)
	assert.Equal(t, "string", note.Type.Args[0].Expr)

	base := record.Fields[4]
	assert.True(t, base.Embedded)
	assert.Equal(t, ast.TypePointer, base.Type.Kind)

	assert.Equal(t, ast.TypeMap, record.Fields[5].Type.Kind)

	require.Len(t, record.Imports, 2)
	assert.Equal(t, "time", record.Imports[0].Path)
	assert.Equal(t, "opt", record.Imports[1].Name)
}

func TestParse_TypeParams(t *testing.T) {
	prog, errs := parseSource(t, Options{}, `package models

import "golang.org/x/exp/constraints"

//typestate:builder
type Range[K, V constraints.Ordered, S any] struct {
	Lo, Hi K
}
`)
	require.Empty(t, errs)

	params := prog.Records[0].TypeParams
	require.Len(t, params, 2)
	assert.Equal(t, []string{"K", "V"}, params[0].Names)
	assert.Equal(t, "constraints.Ordered", params[0].Constraint)
	assert.Equal(t, []string{"constraints"}, params[0].Qualifiers)
	assert.Equal(t, []string{"S"}, params[1].Names)
}

func TestParse_NonStruct(t *testing.T) {
	prog, errs := parseSource(t, Options{}, `package models

//typestate:builder
type Status int

//typestate:builder
type Shape interface{ Area() float64 }

//typestate:builder
type Alias = struct{ X int }
`)
	require.Empty(t, errs)
	require.Len(t, prog.Records, 3)
	for _, r := range prog.Records {
		assert.False(t, r.IsStruct, r.Name)
		assert.Empty(t, r.Fields)
	}
}

func TestParse_Declared(t *testing.T) {
	prog, _ := parseSource(t, Options{}, `package models

type CanBuild struct{}

var defaultName, fallback = "a", "b"

const limit = 3

func NewUserBuilder() {}

func (CanBuild) Method() {}
`)

	assert.True(t, prog.IsDeclared("CanBuild"))
	assert.True(t, prog.IsDeclared("defaultName"))
	assert.True(t, prog.IsDeclared("fallback"))
	assert.True(t, prog.IsDeclared("limit"))
	assert.True(t, prog.IsDeclared("NewUserBuilder"))
	assert.False(t, prog.IsDeclared("Method"))
}

func TestParse_OwnOutput(t *testing.T) {
	p := New(Options{})
	p.AddFile("builders.go", []byte(GeneratedMarker+` DO NOT EDIT.

package models

// CanBuild is shared.
type CanBuild struct{}

//typestate:builder
type Ignored struct{ X int }
`))
	p.AddFile("models.go", []byte(`package models

//typestate:builder
type User struct{ ID int }
`))

	prog, errs := p.Parse()
	require.Empty(t, errs)
	require.Len(t, prog.Records, 1)
	assert.Equal(t, "User", prog.Records[0].Name)
	assert.True(t, prog.IsDeclared("CanBuild"))
}

func TestParse_OtherPackageIgnored(t *testing.T) {
	p := New(Options{})
	p.AddFile("a.go", []byte("package models\n\n//typestate:builder\ntype A struct{ X int }\n"))
	p.AddFile("b.go", []byte("package other\n\n//typestate:builder\ntype B struct{ X int }\n"))

	prog, errs := p.Parse()
	require.Empty(t, errs)
	require.Len(t, prog.Records, 1)
	assert.Equal(t, "A", prog.Records[0].Name)
}

func TestParse_SyntaxError(t *testing.T) {
	_, errs := parseSource(t, Options{}, "package models\n\ntype User struct {\n\tID int64\n")

	require.NotEmpty(t, errs)
	assert.Equal(t, errors.ErrGoSyntax, errs[0].Code)
	assert.Equal(t, "models.go", errs[0].Location.File)
	assert.Greater(t, errs[0].Location.Line, 0)
}

func TestParseDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}

	write("user.go", "package models\n\n//typestate:builder\ntype User struct{ ID int }\n")
	write("user_test.go", "package models\n\n//typestate:builder\ntype Fixture struct{ ID int }\n")
	write("typestate_builders.go", "package models\n\ntype broken struct {\n")
	write("notes.txt", "not go")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.go"), 0o755))

	prog, errs := ParseDir(dir, Options{Skip: []string{"typestate_builders.go"}})
	require.Empty(t, errs)
	require.Len(t, prog.Records, 1)
	assert.Equal(t, "User", prog.Records[0].Name)
}

func TestParseDir_Missing(t *testing.T) {
	_, errs := ParseDir(filepath.Join(t.TempDir(), "missing"), Options{})
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrGoSyntax, errs[0].Code)
}

func TestIsDirective(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"//typestate:builder", true},
		{"//go:generate typestate generate", true},
		{"//nolint:all", true},
		{"// typestate:builder", false},
		{"// Note: a comment", false},
		{"//Foo:bar", false},
		{"/* block */", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, isDirective(tt.text))
		})
	}
}

func TestParseTypeExpr(t *testing.T) {
	tests := []struct {
		src     string
		kind    ast.TypeKind
		name    string
		pkg     string
		args    int
		wantErr bool
	}{
		{src: "string", kind: ast.TypeNamed, name: "string"},
		{src: "time.Duration", kind: ast.TypeNamed, name: "Duration", pkg: "time"},
		{src: "option.Option[string]", kind: ast.TypeNamed, name: "Option", pkg: "option", args: 1},
		{src: "Map[string, int]", kind: ast.TypeNamed, name: "Map", args: 2},
		{src: "*User", kind: ast.TypePointer},
		{src: "[]byte", kind: ast.TypeSlice},
		{src: "[4]int", kind: ast.TypeArray},
		{src: "map[string]int", kind: ast.TypeMap},
		{src: "chan<- int", kind: ast.TypeChan},
		{src: "func(int) error", kind: ast.TypeFunc},
		{src: "interface{}", kind: ast.TypeInterface},
		{src: "struct{ X int }", kind: ast.TypeStruct},
		{src: "", wantErr: true},
		{src: "42", wantErr: true},
		{src: "f()", wantErr: true},
		{src: "map[string", wantErr: true},
		{src: "a.b.c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := ParseTypeExpr(tt.src, ast.SourceLocation{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, node.Kind)
			assert.Equal(t, tt.name, node.Name)
			assert.Equal(t, tt.pkg, node.Package)
			assert.Len(t, node.Args, tt.args)
		})
	}
}

func TestDeclaredNames(t *testing.T) {
	names, err := DeclaredNames("out.go", []byte(`package models

type CanBuild struct{}

func NewUserBuilder() UserBuilderPhase1 { return UserBuilderPhase1{} }

type UserBuilderPhase1 struct{}

func (b UserBuilderPhase1) ID(id int) {}
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"CanBuild", "NewUserBuilder", "UserBuilderPhase1"}, names)

	_, err = DeclaredNames("out.go", []byte("package"))
	assert.Error(t, err)
}
