package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/typestate/internal/tooling/build"
	"github.com/conduit-lang/typestate/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Regenerate builders whenever sources change",
		Long: `Generate builders, then watch the package for changes and regenerate
after every burst of edits to .go or *.typestate.hcl files.

Generated files are ignored, so writing them does not trigger another run.
Compiler errors are printed and watching continues.`,
		Example: `  # Watch the package in the working directory
  typestate watch

  # Watch every package below ./internal
  typestate watch ./internal/...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, targetDir(args))
		},
	}

	cmd.Flags().StringP("output", "o", build.DefaultOutput, "Name of the generated file in each package")

	return cmd
}

func runWatch(cmd *cobra.Command, dir string) error {
	cfg, err := loadConfig(cmd, map[string]string{"output": "output"})
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose)
	defer logger.Sync()

	system, err := newSystem(cfg, dir, nil, false, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	banner := color.New(color.FgCyan, color.Bold)
	hint := color.New(color.FgYellow)
	if cfg.NoColor {
		banner.DisableColor()
		hint.DisableColor()
	}
	banner.Fprintf(out, "Watching %s\n", dir)
	hint.Fprintln(out, "Press Ctrl+C to stop")

	session := watch.NewSession(system, func(result *build.BuildResult, err error) {
		reportRun(out, errOut, result, err, cfg.NoColor)
	}, logger)

	if err := session.Run(ctx); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	done := color.New(color.FgGreen)
	if cfg.NoColor {
		done.DisableColor()
	}
	done.Fprintln(out, "Stopped watching")
	return nil
}

// reportRun prints one line per changed file of a watch run
func reportRun(out, errOut io.Writer, result *build.BuildResult, err error, noColor bool) {
	if err != nil {
		writeErrors(errOut, err, noColor)
	}
	if result == nil {
		return
	}

	written := color.New(color.FgGreen)
	if noColor {
		written.DisableColor()
	}
	for _, f := range result.Files {
		switch f.Status {
		case build.StatusWritten:
			written.Fprintf(out, "✓ %s (%s)\n", f.Path, strings.Join(f.Records, ", "))
		case build.StatusRemoved:
			fmt.Fprintf(out, "- %s\n", f.Path)
		}
	}
}
