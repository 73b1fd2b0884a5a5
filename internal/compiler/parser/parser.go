// Package parser reads Go source and extracts the records the typestate
// generator builds builders for.
package parser

import (
	"fmt"
	goast "go/ast"
	goparser "go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
	"github.com/conduit-lang/typestate/internal/compiler/errors"
	utilstrings "github.com/conduit-lang/typestate/internal/util/strings"
)

// GeneratedMarker starts the header of every file the generator writes.
// Files carrying it are never read back as input.
const GeneratedMarker = "// Code generated by typestate."

// DefaultDirective selects a type for generation when it appears as a
// comment line in the type's documentation.
const DefaultDirective = "typestate:builder"

// Options controls which types are selected
type Options struct {
	// Types selects records by name. When empty, types carrying the
	// directive are selected.
	Types []string

	// Directive is the comment directive, without the leading "//".
	Directive string

	// Skip lists base names of files to ignore, typically the output file.
	Skip []string

	Logger *zap.Logger
}

// Parser turns the Go files of one package into an ast.Program
type Parser struct {
	fset    *token.FileSet
	opts    Options
	logger  *zap.Logger
	errors  errors.ErrorList
	program *ast.Program
	found   map[string]bool
	types   []string // every type declared by the parsed files
}

// New creates a parser with the given options
func New(opts Options) *Parser {
	if opts.Directive == "" {
		opts.Directive = DefaultDirective
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Parser{
		fset:   token.NewFileSet(),
		opts:   opts,
		logger: logger,
		program: &ast.Program{
			Records:  make([]*ast.RecordNode, 0),
			Declared: make(map[string]bool),
		},
		found: make(map[string]bool),
	}
}

// ParseDir parses every non-test Go file in dir.
func ParseDir(dir string, opts Options) (*ast.Program, errors.ErrorList) {
	p := New(opts)

	files, err := SourceFiles(dir, opts.Skip)
	if err != nil {
		return nil, errors.ErrorList{
			errors.NewGoSyntax(ast.SourceLocation{File: dir}, err.Error()),
		}
	}

	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			p.errors = append(p.errors, errors.NewGoSyntax(ast.SourceLocation{File: file}, err.Error()))
			continue
		}
		p.AddFile(file, src)
	}

	return p.Parse()
}

// SourceFiles lists the Go files of dir that are generator input, sorted
// by name.
func SourceFiles(dir string, skip []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read package directory: %w", err)
	}

	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[filepath.Base(name)] = true
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".go" {
			continue
		}
		if strings.HasSuffix(name, "_test.go") || skipped[name] {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}

	sort.Strings(files)
	return files, nil
}

// AddFile parses one file and collects its records. Errors are
// accumulated and reported by Parse.
func (p *Parser) AddFile(filename string, src []byte) {
	file, err := goparser.ParseFile(p.fset, filename, src, goparser.ParseComments)
	if err != nil {
		p.addSyntaxErrors(filename, err)
		return
	}

	if isOwnOutput(file) {
		// Earlier outputs may already declare shared names such as CanBuild
		p.logger.Debug("skipping generated file", zap.String("file", filename))
		p.collectDeclared(file)
		return
	}

	pkg := file.Name.Name
	if p.program.Package == "" {
		p.program.Package = pkg
	} else if p.program.Package != pkg {
		p.logger.Warn("ignoring file from another package",
			zap.String("file", filename),
			zap.String("package", pkg),
			zap.String("expected", p.program.Package))
		return
	}

	imports := p.imports(file)
	p.collectDeclared(file)

	for _, decl := range file.Decls {
		gen, ok := decl.(*goast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*goast.TypeSpec)
			p.types = append(p.types, ts.Name.Name)
			doc := ts.Doc
			if doc == nil && len(gen.Specs) == 1 {
				doc = gen.Doc
			}
			if !p.selected(ts.Name.Name, doc) {
				continue
			}

			record := p.record(ts, doc)
			record.Imports = imports
			p.found[record.Name] = true
			p.program.Records = append(p.program.Records, record)

			p.logger.Debug("selected record",
				zap.String("record", record.Name),
				zap.Bool("struct", record.IsStruct),
				zap.Int("fields", len(record.Fields)))
		}
	}
}

// Parse finishes parsing and returns the program and any errors
func (p *Parser) Parse() (*ast.Program, errors.ErrorList) {
	for _, name := range p.opts.Types {
		if !p.found[name] {
			similar := utilstrings.FindSimilar(name, p.types)
			p.errors = append(p.errors, errors.NewUnknownType(ast.SourceLocation{}, name, p.program.Package, similar))
		}
	}

	return p.program, p.errors
}

// DeclaredNames returns the top-level identifiers declared by Go source,
// typically a file about to be written.
func DeclaredNames(filename string, src []byte) ([]string, error) {
	p := New(Options{})
	file, err := goparser.ParseFile(p.fset, filename, src, goparser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	p.collectDeclared(file)
	names := make([]string, 0, len(p.program.Declared))
	for name := range p.program.Declared {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// selected reports whether the type named name takes part in generation
func (p *Parser) selected(name string, doc *goast.CommentGroup) bool {
	if len(p.opts.Types) > 0 {
		for _, t := range p.opts.Types {
			if t == name {
				return true
			}
		}
		return false
	}

	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == "//"+p.opts.Directive {
			return true
		}
	}
	return false
}

// record converts a type spec into a RecordNode
func (p *Parser) record(ts *goast.TypeSpec, doc *goast.CommentGroup) *ast.RecordNode {
	record := &ast.RecordNode{
		Name: ts.Name.Name,
		Doc:  p.docLines(doc),
		Loc:  p.location(ts.Pos()),
	}

	if ts.TypeParams != nil {
		for _, field := range ts.TypeParams.List {
			param := &ast.TypeParamNode{
				Constraint: types.ExprString(field.Type),
				Qualifiers: collectQualifiers(field.Type),
				Loc:        p.location(field.Pos()),
			}
			for _, name := range field.Names {
				param.Names = append(param.Names, name.Name)
			}
			record.TypeParams = append(record.TypeParams, param)
		}
	}

	st, ok := ts.Type.(*goast.StructType)
	if !ok || ts.Assign.IsValid() {
		// Aliases, interfaces and named non-struct types produce no output
		p.logger.Warn("selected type is not a struct, skipping",
			zap.String("record", record.Name),
			zap.String("file", record.Loc.File))
		return record
	}

	record.IsStruct = true
	for _, field := range st.Fields.List {
		record.Fields = append(record.Fields, p.fields(field)...)
	}

	return record
}

// fields converts one struct field declaration into one FieldNode per name
func (p *Parser) fields(field *goast.Field) []*ast.FieldNode {
	loc := p.location(field.Pos())
	typ := TypeFromExpr(field.Type, loc)

	doc := p.docLines(field.Doc)
	if len(doc) == 0 {
		doc = p.docLines(field.Comment)
	}

	tag := ""
	if field.Tag != nil {
		tag = field.Tag.Value
	}

	if len(field.Names) == 0 {
		return []*ast.FieldNode{{
			Name:     embeddedName(field.Type),
			Type:     typ,
			Doc:      doc,
			Tag:      tag,
			Embedded: true,
			Loc:      loc,
		}}
	}

	nodes := make([]*ast.FieldNode, 0, len(field.Names))
	for _, name := range field.Names {
		nodes = append(nodes, &ast.FieldNode{
			Name: name.Name,
			Type: typ,
			Doc:  doc,
			Tag:  tag,
			Loc:  p.location(name.Pos()),
		})
	}
	return nodes
}

// imports returns the imports of a file
func (p *Parser) imports(file *goast.File) []*ast.ImportNode {
	nodes := make([]*ast.ImportNode, 0, len(file.Imports))
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		node := &ast.ImportNode{Path: path, Loc: p.location(spec.Pos())}
		if spec.Name != nil {
			node.Name = spec.Name.Name
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// collectDeclared records the top-level identifiers of a file
func (p *Parser) collectDeclared(file *goast.File) {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *goast.FuncDecl:
			if d.Recv == nil {
				p.program.Declared[d.Name.Name] = true
			}
		case *goast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *goast.TypeSpec:
					p.program.Declared[s.Name.Name] = true
				case *goast.ValueSpec:
					for _, name := range s.Names {
						p.program.Declared[name.Name] = true
					}
				}
			}
		}
	}
}

// docLines returns the raw comment lines of a comment group, directives
// excluded. The lines keep their comment markers so they can be copied
// verbatim into generated code.
func (p *Parser) docLines(group *goast.CommentGroup) []string {
	if group == nil {
		return nil
	}

	var lines []string
	for _, c := range group.List {
		if isDirective(c.Text) {
			continue
		}
		lines = append(lines, c.Text)
	}
	return lines
}

func (p *Parser) location(pos token.Pos) ast.SourceLocation {
	position := p.fset.Position(pos)
	return ast.SourceLocation{
		File:   position.Filename,
		Line:   position.Line,
		Column: position.Column,
	}
}

// addSyntaxErrors converts go/parser errors into compiler errors
func (p *Parser) addSyntaxErrors(filename string, err error) {
	list, ok := err.(scanner.ErrorList)
	if !ok {
		p.errors = append(p.errors, errors.NewGoSyntax(ast.SourceLocation{File: filename}, err.Error()))
		return
	}

	for _, e := range list {
		loc := ast.SourceLocation{File: e.Pos.Filename, Line: e.Pos.Line, Column: e.Pos.Column}
		p.errors = append(p.errors, errors.NewGoSyntax(loc, e.Msg))
	}
}

// isDirective reports whether a comment is a machine-readable directive
// such as //go:generate or //typestate:builder.
func isDirective(text string) bool {
	if !strings.HasPrefix(text, "//") || strings.HasPrefix(text, "// ") {
		return false
	}
	body := text[2:]
	colon := strings.Index(body, ":")
	if colon <= 0 {
		return false
	}
	for _, r := range body[:colon] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// isOwnOutput reports whether file was written by this generator
func isOwnOutput(file *goast.File) bool {
	for _, group := range file.Comments {
		if group.Pos() > file.Package {
			break
		}
		for _, c := range group.List {
			if strings.HasPrefix(c.Text, GeneratedMarker) {
				return true
			}
		}
	}
	return false
}
