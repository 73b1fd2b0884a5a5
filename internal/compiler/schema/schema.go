// Package schema reads records declared in HCL schema files. Such records
// have no Go source; the generator emits their struct along with the
// builder.
package schema

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/zap"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
	"github.com/conduit-lang/typestate/internal/compiler/errors"
	"github.com/conduit-lang/typestate/internal/compiler/parser"
)

// DefaultGlob matches schema files in a package directory
const DefaultGlob = "*.typestate.hcl"

// schemaFile is the top-level structure of a schema file for decoding.
type schemaFile struct {
	Package string         `hcl:"package"`
	Imports []*importBlock `hcl:"import,block"`
	Records []*recordBlock `hcl:"record,block"`
}

type importBlock struct {
	Name string `hcl:"name,label"`
	Path string `hcl:"path"`
}

type recordBlock struct {
	Name       string        `hcl:"name,label"`
	Doc        string        `hcl:"doc,optional"`
	TypeParams string        `hcl:"type_params,optional"`
	Fields     []*fieldBlock `hcl:"field,block"`
}

// recordHeaders finds record blocks without decoding them, for their
// source ranges
var recordHeaders = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "record", LabelNames: []string{"name"}}},
}

type fieldBlock struct {
	Name string         `hcl:"name,label"`
	Type hcl.Expression `hcl:"type"`
	Doc  string         `hcl:"doc,optional"`
	Tag  string         `hcl:"tag,optional"`
}

// Loader turns schema files into programs
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a schema loader. A nil logger discards output.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadFile reads and decodes one schema file.
func (l *Loader) LoadFile(filename string) (*ast.Program, errors.ErrorList) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.ErrorList{
			errors.NewSchemaSyntax(ast.SourceLocation{File: filename}, err.Error()),
		}
	}
	return l.Parse(filename, src)
}

// Parse decodes schema source. Every record it declares is marked for
// struct emission.
func (l *Loader) Parse(filename string, src []byte) (*ast.Program, errors.ErrorList) {
	// hclparse caches by file name, so each call gets its own parser
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagnostics(diags)
	}

	var root schemaFile
	diags = gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return nil, diagnostics(diags)
	}

	var errs errors.ErrorList
	loc := ast.SourceLocation{File: filename, Line: 1, Column: 1}

	if !token.IsIdentifier(root.Package) || root.Package == "_" {
		errs = append(errs, errors.NewSchemaSyntax(loc, fmt.Sprintf("package must be a Go package name, got %q", root.Package)))
	}

	prog := &ast.Program{
		Package:  root.Package,
		Records:  make([]*ast.RecordNode, 0, len(root.Records)),
		Declared: make(map[string]bool),
	}

	for _, imp := range root.Imports {
		prog.Imports = append(prog.Imports, &ast.ImportNode{Name: imp.Name, Path: imp.Path, Loc: loc})
	}

	// Decoding succeeded, so the headers are the same blocks in the same order
	headers, _, _ := file.Body.PartialContent(recordHeaders)

	for i, block := range root.Records {
		var def hcl.Range
		if i < len(headers.Blocks) {
			def = headers.Blocks[i].DefRange
		}
		record, recordErrs := l.record(block, def, filename)
		if len(recordErrs) > 0 {
			errs = append(errs, recordErrs...)
			continue
		}
		record.Imports = prog.Imports
		prog.Records = append(prog.Records, record)

		l.logger.Debug("schema record",
			zap.String("record", record.Name),
			zap.String("file", filename),
			zap.Int("fields", len(record.Fields)))
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return prog, nil
}

// record converts a decoded record block
func (l *Loader) record(block *recordBlock, def hcl.Range, filename string) (*ast.RecordNode, errors.ErrorList) {
	var errs errors.ErrorList

	loc := rangeLocation(def)
	if loc.File == "" {
		loc.File = filename
	}

	record := &ast.RecordNode{
		Name:     block.Name,
		Doc:      commentLines(block.Doc),
		IsStruct: true,
		Declare:  true,
		Loc:      loc,
	}

	params, err := parser.ParseTypeParams(block.TypeParams, loc)
	if err != nil {
		errs = append(errs, errors.NewSchemaSyntax(loc, err.Error()))
	}
	record.TypeParams = params

	for _, f := range block.Fields {
		fieldLoc := rangeLocation(f.Type.Range())

		var typ string
		if diags := gohcl.DecodeExpression(f.Type, nil, &typ); diags.HasErrors() {
			errs = append(errs, diagnostics(diags)...)
			continue
		}

		node, err := parser.ParseTypeExpr(strings.TrimSpace(typ), fieldLoc)
		if err != nil {
			errs = append(errs, errors.NewInvalidTypeExpr(fieldLoc, f.Name, typ, err))
			continue
		}

		tag := ""
		if f.Tag != "" {
			tag = "`" + f.Tag + "`"
		}

		record.Fields = append(record.Fields, &ast.FieldNode{
			Name: f.Name,
			Type: node,
			Doc:  commentLines(f.Doc),
			Tag:  tag,
			Loc:  fieldLoc,
		})
	}

	return record, errs
}

// FindFiles lists the schema files of dir matching glob, sorted by name.
func FindFiles(dir, glob string) ([]string, error) {
	if glob == "" {
		glob = DefaultGlob
	}
	matches, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// OutputName returns the Go file generated for a schema file:
// user.typestate.hcl -> user_typestate.go
func OutputName(schemaPath string) string {
	base := filepath.Base(schemaPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, ".", "_")
	return filepath.Join(filepath.Dir(schemaPath), base+".go")
}

// diagnostics converts HCL diagnostics into compiler errors
func diagnostics(diags hcl.Diagnostics) errors.ErrorList {
	var errs errors.ErrorList
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}

		var loc ast.SourceLocation
		if d.Subject != nil {
			loc = rangeLocation(*d.Subject)
		}

		msg := d.Summary
		if d.Detail != "" {
			msg += ": " + d.Detail
		}
		errs = append(errs, errors.NewSchemaSyntax(loc, msg))
	}
	return errs
}

func rangeLocation(r hcl.Range) ast.SourceLocation {
	return ast.SourceLocation{
		File:   r.Filename,
		Line:   r.Start.Line,
		Column: r.Start.Column,
	}
}

// commentLines turns a doc string into Go comment lines
func commentLines(doc string) []string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			lines = append(lines, "//")
			continue
		}
		lines = append(lines, "// "+line)
	}
	return lines
}

