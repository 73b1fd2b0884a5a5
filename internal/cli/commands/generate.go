package commands

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/typestate/internal/cli/ui"
	"github.com/conduit-lang/typestate/internal/compiler/errors"
	"github.com/conduit-lang/typestate/internal/tooling/build"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	var (
		types  []string
		dryRun bool
		show   bool
		format string
	)

	cmd := &cobra.Command{
		Use:     "generate [dir]",
		Aliases: []string{"gen", "g"},
		Short:   "Generate builders for a package",
		Long: `Generate typestate builders for the structs of a Go package and for the
records of its *.typestate.hcl schema files.

Structs are selected by a //typestate:builder line in their doc comment,
or by name with --type. A directory ending in /... covers every package
below it. Files are only rewritten when their content changes.`,
		Example: `  # Generate for the package in the working directory
  typestate generate

  # Generate for every package below ./internal
  typestate generate ./internal/...

  # Select structs by name instead of by directive
  typestate generate ./models --type Account,User

  # Show what would change without writing anything
  typestate generate --dry-run

  # Use from go:generate
  //go:generate typestate generate`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isErrorFormat(format) {
				return fmt.Errorf("invalid --errors %q: must be one of %s", format, strings.Join(errorFormats, ", "))
			}
			return runGenerate(cmd, targetDir(args), types, dryRun, show, format)
		},
	}

	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Struct names to generate builders for (ignores the directive)")
	cmd.Flags().StringP("output", "o", build.DefaultOutput, "Name of the generated file in each package")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate without writing files")
	cmd.Flags().BoolVar(&show, "print", false, "Print generated sources instead of the summary (implies --dry-run)")
	cmd.Flags().StringVar(&format, "errors", "pretty", "Error output format: "+strings.Join(errorFormats, ", "))

	return cmd
}

func runGenerate(cmd *cobra.Command, dir string, types []string, dryRun, show bool, format string) error {
	cfg, err := loadConfig(cmd, map[string]string{"output": "output"})
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose)
	defer logger.Sync()

	system, err := newSystem(cfg, dir, types, dryRun || show, logger)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.GenerateError(err.Error(), cfg.NoColor))
		return err
	}

	result, err := system.Run(cmd.Context())
	out := cmd.OutOrStdout()

	if result != nil {
		if show {
			printSources(out, result)
		} else {
			printSummary(out, result, cfg.NoColor)
		}
	}

	if err == nil {
		return nil
	}
	writeErrorsAs(cmd.ErrOrStderr(), err, format, cfg.NoColor)

	list, ok := compilerErrors(err)
	if !ok {
		return err
	}
	if !list.HasErrors() {
		return nil
	}
	errCount, _, _ := list.ErrorCount()
	return fmt.Errorf("generation failed with %d error(s)", errCount)
}

// errorFormats are the renderings --errors accepts. plain prints one
// "file:line:col: severity CODE" block per diagnostic, json an array.
var errorFormats = []string{"pretty", "plain", "json"}

func isErrorFormat(format string) bool {
	for _, f := range errorFormats {
		if f == format {
			return true
		}
	}
	return false
}

// writeErrorsAs renders the failure of a run in the requested format.
// Failures that are not compiler diagnostics are always pretty.
func writeErrorsAs(w io.Writer, err error, format string, noColor bool) {
	list, ok := compilerErrors(err)
	if !ok || format == "pretty" {
		writeErrors(w, err, noColor)
		return
	}

	if format == "json" {
		data, jerr := list.ToJSON()
		if jerr != nil {
			writeErrors(w, err, noColor)
			return
		}
		fmt.Fprintln(w, data)
		return
	}
	fmt.Fprint(w, errors.FormatErrorList(list))
}

// compilerErrors extracts the compiler errors of a run
func compilerErrors(err error) (errors.ErrorList, bool) {
	var list errors.ErrorList
	if stderrors.As(err, &list) {
		return list, true
	}
	return nil, false
}

func printSummary(w io.Writer, result *build.BuildResult, noColor bool) {
	if len(result.Files) == 0 {
		fmt.Fprint(w, ui.Info("No records selected. Mark a struct with //typestate:builder or pass --type.", noColor))
		return
	}

	table := ui.NewTable(w, noColor, "Status", "File", "Records")
	for _, f := range result.Files {
		table.AddRow(f.Status.String(), f.Path, strings.Join(f.Records, ", "))
	}
	table.Render()
	fmt.Fprintln(w)

	if !result.Success {
		return
	}
	fmt.Fprint(w, ui.FormatSuccess(fmt.Sprintf(
		"%d record(s) in %d package(s), %d file(s) written (%s)",
		result.Records(), result.Packages, result.Count(build.StatusWritten), result.Duration.Round(time.Microsecond),
	), noColor))
}

func printSources(w io.Writer, result *build.BuildResult) {
	for i, f := range result.Files {
		if f.Source == nil {
			continue
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "// %s\n", f.Path)
		w.Write(f.Source)
	}
}
