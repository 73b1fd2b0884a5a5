// Package codegen generates typestate builders for Go records.
//
// For a record T with R required fields it emits R+1 builder types, one
// per construction phase, so that required fields can only be supplied in
// declaration order, once each, and Build only exists once all of them
// have been supplied.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"path"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
	"github.com/conduit-lang/typestate/internal/compiler/errors"
	"github.com/conduit-lang/typestate/internal/compiler/parser"
)

// Options controls the names of generated declarations
type Options struct {
	// FinalizeMethod names the method turning a buildable builder into
	// the record
	FinalizeMethod string

	// ConstructorPrefix is prepended to "{T}Builder" for the entry point
	ConstructorPrefix string

	// OptionConstructor is the function of the option type's package
	// that wraps a value, e.g. option.Some
	OptionConstructor string

	// OptSuffix is appended to an optional field's setter name for the
	// variant taking an option
	OptSuffix string

	Logger *zap.Logger
}

// DefaultOptions returns the names used when nothing is configured
func DefaultOptions() Options {
	return Options{
		FinalizeMethod:    "Build",
		ConstructorPrefix: "New",
		OptionConstructor: "Some",
		OptSuffix:         "Opt",
	}
}

// Generator transforms records into builder source
type Generator struct {
	buf     *bytes.Buffer
	indent  int
	imports map[string]string // import path -> explicit name, "" if none
	opts    Options
	logger  *zap.Logger
}

// NewGenerator creates a new code generator. Empty option fields fall
// back to DefaultOptions.
func NewGenerator(opts Options) *Generator {
	defaults := DefaultOptions()
	if opts.FinalizeMethod == "" {
		opts.FinalizeMethod = defaults.FinalizeMethod
	}
	if opts.ConstructorPrefix == "" {
		opts.ConstructorPrefix = defaults.ConstructorPrefix
	}
	if opts.OptionConstructor == "" {
		opts.OptionConstructor = defaults.OptionConstructor
	}
	if opts.OptSuffix == "" {
		opts.OptSuffix = defaults.OptSuffix
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		buf:     &bytes.Buffer{},
		indent:  0,
		imports: make(map[string]string),
		opts:    opts,
		logger:  logger,
	}
}

// GenerateProgram generates the builder file for a package. It returns
// nil source when no record produces output.
func (g *Generator) GenerateProgram(prog *ast.Program) ([]byte, error) {
	g.reset()

	var errs errors.ErrorList
	var plans []*recordPlan
	seen := make(map[string]bool)

	for _, record := range prog.Records {
		if !record.IsStruct {
			g.logger.Info("not a struct, nothing to generate", zap.String("record", record.Name))
			continue
		}
		if seen[record.Name] {
			errs = append(errs, errors.NewDuplicateRecord(record.Loc, record.Name))
			continue
		}
		seen[record.Name] = true

		plan, planErrs := g.planRecord(record, prog)
		if len(planErrs) > 0 {
			errs = append(errs, planErrs...)
			continue
		}
		plans = append(plans, plan)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	if len(plans) == 0 {
		return nil, nil
	}

	for i, plan := range plans {
		if i > 0 {
			g.writeLine("")
		}
		g.collectImports(plan, prog)
		g.generateRecord(plan)

		g.logger.Debug("generated builder",
			zap.String("record", plan.record.Name),
			zap.Int("required", len(plan.required)),
			zap.Int("optional", len(plan.optional)))
	}

	body := g.buf.String()
	g.buf.Reset()

	g.writeLine("%s DO NOT EDIT.", parser.GeneratedMarker)
	g.writeLine("")
	g.writeLine("package %s", prog.Package)
	g.writeLine("")

	if len(g.imports) > 0 {
		g.writeImports()
		g.writeLine("")
	}

	if !prog.IsDeclared(TerminalMarker) {
		g.generateCanBuild()
		g.writeLine("")
	}

	g.buf.WriteString(body)

	src := g.buf.Bytes()
	formatted, err := format.Source(src)
	if err != nil {
		g.logger.Debug("unformatted output", zap.ByteString("source", src))
		return nil, errors.ErrorList{
			errors.NewCodeGenFailed(prog.Location(), fmt.Sprintf("generated source does not format: %v", err)),
		}
	}

	return formatted, nil
}

// GenerateRecord generates the declarations of a single record, without
// package clause, imports or the shared marker. It is mostly useful for
// inspecting the output of one record.
func (g *Generator) GenerateRecord(record *ast.RecordNode) (string, error) {
	g.reset()

	if !record.IsStruct {
		return "", nil
	}

	plan, errs := g.planRecord(record, nil)
	if len(errs) > 0 {
		return "", errs
	}

	g.generateRecord(plan)
	return g.buf.String(), nil
}

// generateRecord writes every declaration of one record: the entry point,
// then each phase type followed by the operations scoped to it.
func (g *Generator) generateRecord(plan *recordPlan) {
	if plan.record.Declare {
		g.generateStruct(plan.record)
		g.writeLine("")
	}

	g.generateEntryPoint(plan)

	for _, phase := range plan.phases {
		g.writeLine("")
		g.generatePhaseType(plan, phase)

		if phase.Terminal() {
			g.generateOptionalSetters(plan)
			g.generateFinalize(plan)
			continue
		}
		g.generateTransition(plan, phase)
	}
}

// reset clears the generator state
func (g *Generator) reset() {
	g.buf.Reset()
	g.indent = 0
	g.imports = make(map[string]string)
}

// writeLine writes a formatted line with proper indentation
func (g *Generator) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}

	// Add indentation
	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("\t")
	}

	// Write the formatted string
	if len(args) > 0 {
		g.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

// writeDoc writes comment lines copied from the source, or a generated
// one-line comment when there are none.
func (g *Generator) writeDoc(lines []string, format string, args ...interface{}) {
	if len(lines) == 0 {
		g.writeLine("// "+format, args...)
		return
	}
	for _, line := range lines {
		g.writeLine("%s", line)
	}
}

// collectImports adds the imports needed by a record's field types and
// type parameter constraints.
func (g *Generator) collectImports(plan *recordPlan, prog *ast.Program) {
	var quals []string
	for _, p := range plan.record.TypeParams {
		quals = append(quals, p.Qualifiers...)
	}
	for _, f := range plan.fields {
		quals = append(quals, f.Type.Qualifiers...)
	}

	for _, q := range quals {
		imp := resolveImport(q, plan.record.Imports)
		if imp == nil {
			imp = resolveImport(q, prog.Imports)
		}
		if imp == nil {
			g.logger.Warn("cannot resolve package qualifier, add an explicit import name",
				zap.String("record", plan.record.Name),
				zap.String("qualifier", q))
			continue
		}

		name := imp.Name
		if name == "" {
			name = q
		}
		if name == guessPackageName(imp.Path) {
			name = ""
		}
		g.imports[imp.Path] = name
	}
}

// writeImports writes the import block
func (g *Generator) writeImports() {
	g.writeLine("import (")
	g.indent++

	// Sort imports: stdlib first, then external
	var stdlibImports []string
	var externalImports []string

	for imp := range g.imports {
		if strings.Contains(imp, ".") {
			externalImports = append(externalImports, imp)
		} else {
			stdlibImports = append(stdlibImports, imp)
		}
	}

	for _, imp := range sortStrings(stdlibImports) {
		g.writeImport(imp)
	}

	// Add blank line if we have both types
	if len(stdlibImports) > 0 && len(externalImports) > 0 {
		g.writeLine("")
	}

	for _, imp := range sortStrings(externalImports) {
		g.writeImport(imp)
	}

	g.indent--
	g.writeLine(")")
}

func (g *Generator) writeImport(path string) {
	if name := g.imports[path]; name != "" {
		g.writeLine("%s %q", name, path)
		return
	}
	g.writeLine("%q", path)
}

// resolveImport finds the import a qualifier refers to
func resolveImport(qualifier string, imports []*ast.ImportNode) *ast.ImportNode {
	for _, imp := range imports {
		if imp.Name == qualifier {
			return imp
		}
	}
	for _, imp := range imports {
		if imp.Name == "" && guessPackageName(imp.Path) == qualifier {
			return imp
		}
	}
	return nil
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// guessPackageName derives the conventional package name from an import
// path: github.com/foo/bar/v2 -> bar, gopkg.in/yaml.v3 -> yaml,
// github.com/zclconf/go-cty -> cty.
func guessPackageName(importPath string) string {
	elem := path.Base(importPath)
	if majorVersion.MatchString(elem) {
		if parent := path.Dir(importPath); parent != "." {
			elem = path.Base(parent)
		}
	}

	if i := strings.Index(elem, ".v"); i > 0 && majorVersion.MatchString(elem[i+1:]) {
		elem = elem[:i]
	}
	elem = strings.TrimPrefix(elem, "go-")
	elem = strings.TrimSuffix(elem, "-go")
	elem = strings.TrimSuffix(elem, ".go")
	return strings.ReplaceAll(elem, "-", "")
}

// sortStrings is a simple bubble sort for string slices
func sortStrings(strs []string) []string {
	result := make([]string, len(strs))
	copy(result, strs)

	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[i] > result[j] {
				result[i], result[j] = result[j], result[i]
			}
		}
	}

	return result
}
