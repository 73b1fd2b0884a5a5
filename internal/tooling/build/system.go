// Package build runs the generator over package directories: it parses
// Go source and schema files, generates builders and writes the files
// whose content changed.
package build

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
	"github.com/conduit-lang/typestate/internal/compiler/cache"
	"github.com/conduit-lang/typestate/internal/compiler/codegen"
	"github.com/conduit-lang/typestate/internal/compiler/errors"
	"github.com/conduit-lang/typestate/internal/compiler/parser"
	"github.com/conduit-lang/typestate/internal/compiler/schema"
	"github.com/conduit-lang/typestate/internal/utils"
)

// DefaultOutput is the file builders of Go records are written to
const DefaultOutput = "typestate_builders.go"

// FileStatus is what happened to one output file
type FileStatus int

const (
	// StatusWritten means the file was created or its content replaced
	StatusWritten FileStatus = iota
	// StatusUnchanged means the file already held the generated content
	StatusUnchanged
	// StatusRemoved means a stale output with no records left was deleted
	StatusRemoved
	// StatusDryRun means the content was generated but not written
	StatusDryRun
)

func (s FileStatus) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusUnchanged:
		return "unchanged"
	case StatusRemoved:
		return "removed"
	case StatusDryRun:
		return "dry-run"
	default:
		return "unknown"
	}
}

// BuildOptions configures a run
type BuildOptions struct {
	// Dir is the package directory. A "/..." suffix covers every package
	// below it.
	Dir string

	// Output is the file name, relative to each package directory, that
	// builders of Go records are written to
	Output string

	// Types selects records by name instead of by directive
	Types []string

	Directive  string
	SchemaGlob string

	// DryRun generates without touching the file system
	DryRun bool

	Codegen codegen.Options
	Logger  *zap.Logger
}

// DefaultBuildOptions returns sensible defaults
func DefaultBuildOptions() *BuildOptions {
	return &BuildOptions{
		Dir:        ".",
		Output:     DefaultOutput,
		Directive:  parser.DefaultDirective,
		SchemaGlob: schema.DefaultGlob,
		Codegen:    codegen.DefaultOptions(),
	}
}

// GeneratedFile is one output of a run
type GeneratedFile struct {
	Path    string
	Source  []byte
	Status  FileStatus
	Records []string
}

// BuildResult contains information about a run
type BuildResult struct {
	Success  bool
	Files    []*GeneratedFile
	Packages int
	Duration time.Duration
	Errors   errors.ErrorList
}

// Records returns the number of records builders were generated for
func (r *BuildResult) Records() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Records)
	}
	return n
}

// Count returns the number of files with the given status
func (r *BuildResult) Count(status FileStatus) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// System coordinates the generation process.
// Thread-safety: a System runs one generation at a time; the watcher
// serializes calls to Run.
type System struct {
	options  *BuildOptions
	hasher   *cache.FileHasher
	programs *cache.ProgramCache
	schemas  *schema.Loader
	logger   *zap.Logger
}

// NewSystem creates a new build system
func NewSystem(opts *BuildOptions) (*System, error) {
	if opts == nil {
		opts = DefaultBuildOptions()
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	if opts.SchemaGlob == "" {
		opts.SchemaGlob = schema.DefaultGlob
	}

	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Codegen.Logger = logger

	return &System{
		options:  opts,
		hasher:   cache.NewFileHasher(),
		programs: cache.NewProgramCache(),
		schemas:  schema.NewLoader(logger),
		logger:   logger,
	}, nil
}

func validateOptions(opts *BuildOptions) error {
	if filepath.Ext(opts.Output) != ".go" || strings.HasSuffix(opts.Output, "_test.go") {
		return fmt.Errorf("output %q must be a non-test .go file", opts.Output)
	}
	if filepath.Base(opts.Output) != opts.Output {
		return fmt.Errorf("output %q must be a file name, not a path", opts.Output)
	}
	if _, recursive := utils.SplitRecursive(opts.Dir); recursive && len(opts.Types) > 0 {
		return fmt.Errorf("--type selects records of a single package and cannot be combined with %s", opts.Dir)
	}
	for _, name := range opts.Types {
		if !token.IsIdentifier(name) {
			return fmt.Errorf("type %q is not a Go identifier", name)
		}
	}
	return nil
}

// Options returns the options the system runs with
func (s *System) Options() *BuildOptions {
	return s.options
}

// Run generates builders for every package the options cover. Compiler
// errors are collected in the result and also returned as an
// errors.ErrorList; file system failures abort the run.
func (s *System) Run(ctx context.Context) (*BuildResult, error) {
	startTime := time.Now()
	result := &BuildResult{}

	dirs, err := s.packageDirs()
	if err != nil {
		return nil, fmt.Errorf("failed to find packages: %w", err)
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		files, errs, err := s.generatePackage(dir)
		if err != nil {
			return nil, err
		}
		result.Packages++
		result.Files = append(result.Files, files...)
		result.Errors = append(result.Errors, errs...)
	}

	result.Duration = time.Since(startTime)
	result.Success = !result.Errors.HasErrors()

	s.logger.Info("generation finished",
		zap.Int("packages", result.Packages),
		zap.Int("records", result.Records()),
		zap.Int("written", result.Count(StatusWritten)),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("duration", result.Duration))

	return result, result.Errors.Err()
}

// packageDirs resolves the directory option into package directories
func (s *System) packageDirs() ([]string, error) {
	root, recursive := utils.SplitRecursive(s.options.Dir)
	if !recursive {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", root)
		}
		return []string{root}, nil
	}
	return utils.FindPackageDirs(root, s.options.SchemaGlob)
}

// generatePackage generates the Go output and one output per schema file
// of a single directory. Names declared by one output are visible to the
// next, so the shared marker is declared exactly once.
func (s *System) generatePackage(dir string) ([]*GeneratedFile, errors.ErrorList, error) {
	logger := s.logger.With(zap.String("dir", dir))

	schemaFiles, err := schema.FindFiles(dir, s.options.SchemaGlob)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find schema files in %s: %w", dir, err)
	}

	// Outputs regenerated by this run must not count as declarations
	skip := []string{s.options.Output}
	for _, f := range schemaFiles {
		skip = append(skip, filepath.Base(schema.OutputName(f)))
	}

	prog, errs := parser.ParseDir(dir, parser.Options{
		Types:     s.options.Types,
		Directive: s.options.Directive,
		Skip:      skip,
		Logger:    logger,
	})
	if len(errs) > 0 {
		return nil, errs, nil
	}

	var files []*GeneratedFile
	declared := prog.Declared

	goFile, errs, err := s.generate(prog, filepath.Join(dir, s.options.Output), declared)
	if err != nil || len(errs) > 0 {
		return nil, errs, err
	}
	if goFile != nil {
		files = append(files, goFile)
	}

	for _, path := range schemaFiles {
		schemaProg, errs := s.loadSchema(path)
		if len(errs) > 0 {
			return files, errs, nil
		}

		if prog.Package != "" && schemaProg.Package != prog.Package {
			loc := ast.SourceLocation{File: path, Line: 1, Column: 1}
			msg := fmt.Sprintf("schema declares package %s but the directory holds package %s", schemaProg.Package, prog.Package)
			return files, errors.ErrorList{errors.NewSchemaSyntax(loc, msg)}, nil
		}

		file, errs, err := s.generate(schemaProg, schema.OutputName(path), declared)
		if err != nil || len(errs) > 0 {
			return files, errs, err
		}
		if file != nil {
			files = append(files, file)
		}
	}

	return files, nil, nil
}

// loadSchema parses a schema file, reusing the previous parse when the
// content did not change
func (s *System) loadSchema(path string) (*ast.Program, errors.ErrorList) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ErrorList{errors.NewSchemaSyntax(ast.SourceLocation{File: path}, err.Error())}
	}

	hash := s.hasher.HashContent(src)
	if prog, ok := s.programs.Lookup(path, hash); ok {
		s.logger.Debug("schema unchanged", zap.String("file", path))
		return prog, nil
	}

	prog, errs := s.schemas.Parse(path, src)
	if len(errs) > 0 {
		s.programs.Invalidate(path)
		return nil, errs
	}
	s.programs.Set(path, prog, hash)
	return prog, nil
}

// generate produces one output file. declared holds the names visible in
// the package and is extended with the names the output declares.
func (s *System) generate(prog *ast.Program, path string, declared map[string]bool) (*GeneratedFile, errors.ErrorList, error) {
	// The cached program is shared between runs, so declarations go on a copy
	scoped := *prog
	scoped.Declared = declared

	src, err := codegen.NewGenerator(s.options.Codegen).GenerateProgram(&scoped)
	if err != nil {
		if list, ok := err.(errors.ErrorList); ok {
			return nil, list, nil
		}
		return nil, nil, fmt.Errorf("failed to generate %s: %w", path, err)
	}

	if src == nil {
		return s.removeStale(path)
	}

	names, err := parser.DeclaredNames(path, src)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read back %s: %w", path, err)
	}
	for _, name := range names {
		declared[name] = true
	}

	file := &GeneratedFile{Path: path, Source: src}
	for _, r := range prog.Records {
		if r.IsStruct {
			file.Records = append(file.Records, r.Name)
		}
	}

	if err := s.write(file); err != nil {
		return nil, nil, err
	}

	s.logger.Debug("output generated",
		zap.String("file", path),
		zap.Strings("records", file.Records),
		zap.Stringer("status", file.Status))

	return file, nil, nil
}

// write stores a file unless its content is already on disk. The content
// goes to a temporary file first and is renamed into place.
func (s *System) write(file *GeneratedFile) error {
	if s.options.DryRun {
		file.Status = StatusDryRun
		return nil
	}

	unchanged, err := s.hasher.Unchanged(file.Path, file.Source)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", file.Path, err)
	}
	if unchanged {
		file.Status = StatusUnchanged
		return nil
	}

	tmp := file.Path + ".tmp"
	if err := os.WriteFile(tmp, file.Source, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", file.Path, err)
	}
	if err := os.Rename(tmp, file.Path); err != nil {
		os.Remove(tmp) // Clean up on failure
		return fmt.Errorf("failed to move %s into place: %w", file.Path, err)
	}

	file.Status = StatusWritten
	return nil
}

// removeStale deletes a previous output once nothing is generated into it.
// Files without the generated header are never touched.
func (s *System) removeStale(path string) (*GeneratedFile, errors.ErrorList, error) {
	generated, err := isGenerated(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !generated {
		return nil, nil, nil
	}

	file := &GeneratedFile{Path: path, Status: StatusRemoved}
	if s.options.DryRun {
		return file, nil, nil
	}
	if err := os.Remove(path); err != nil {
		return nil, nil, fmt.Errorf("failed to remove stale %s: %w", path, err)
	}

	s.logger.Info("removed stale output", zap.String("file", path))
	return file, nil, nil
}

// isGenerated reports whether the file at path starts with the generated
// header. A missing file is not generated.
func isGenerated(path string) (bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return false, nil
	}
	return bytes.HasPrefix(line, []byte(parser.GeneratedMarker)), nil
}
