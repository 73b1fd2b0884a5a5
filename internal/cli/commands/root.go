package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/conduit-lang/typestate/internal/cli/config"
	"github.com/conduit-lang/typestate/internal/cli/ui"
	"github.com/conduit-lang/typestate/internal/compiler/codegen"
	"github.com/conduit-lang/typestate/internal/tooling/build"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "typestate",
		Short: "Generate compile-time checked builders for Go structs",
		Long: color.CyanString(`typestate - builders that cannot be misused

For every selected struct, typestate writes a builder whose type changes
as required fields are set, in declaration order. Build() only exists once
every required field is set, so a missing field is a compile error.
Fields of an Option type are optional and can be set on the final builder.

Select structs with a //typestate:builder doc comment, with --type, or
declare them in *.typestate.hcl schema files.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every generation step")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().String("config-dir", ".", "Directory containing "+config.FileName)

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewInitCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the typestate version, Git commit, build date, and Go version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			noColor, _ := cmd.Flags().GetBool("no-color")
			kv := ui.NewKeyValueTable(cmd.OutOrStdout(), noColor)
			kv.AddRow("typestate version", Version)
			kv.AddRow("Git commit", GitCommit)
			kv.AddRow("Build date", BuildDate)
			kv.AddRow("Go version", goVer)
			kv.Render()
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

// loadConfig reads typestate.yml from --config-dir and applies the flags
// the command was given. flags maps config keys to flag names.
func loadConfig(cmd *cobra.Command, flags map[string]string) (*config.Config, error) {
	dir, _ := cmd.Flags().GetString("config-dir")
	v := config.New(dir)

	flags["verbose"] = "verbose"
	flags["no_color"] = "no-color"
	if err := bindFlags(v, cmd, flags); err != nil {
		return nil, err
	}

	cfg, err := config.Load(v)
	if err != nil {
		noColor, _ := cmd.Flags().GetBool("no-color")
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), noColor))
		return nil, err
	}
	return cfg, nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, flags map[string]string) error {
	for key, name := range flags {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

// newLogger returns a development logger when verbose, otherwise a no-op one
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newSystem builds the generation pipeline for dir from the configuration
func newSystem(cfg *config.Config, dir string, types []string, dryRun bool, logger *zap.Logger) (*build.System, error) {
	return build.NewSystem(&build.BuildOptions{
		Dir:        dir,
		Output:     cfg.Output,
		Types:      types,
		Directive:  cfg.Directive,
		SchemaGlob: cfg.SchemaGlob,
		DryRun:     dryRun,
		Codegen: codegen.Options{
			FinalizeMethod:    cfg.FinalizeMethod,
			ConstructorPrefix: cfg.ConstructorPrefix,
			OptionConstructor: cfg.OptionConstructor,
			OptSuffix:         cfg.OptSuffix,
		},
		Logger: logger,
	})
}

// targetDir returns the directory argument, or the working directory
func targetDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// writeErrors renders compiler errors, or any other failure, to w
func writeErrors(w io.Writer, err error, noColor bool) {
	if list, ok := compilerErrors(err); ok {
		fmt.Fprint(w, ui.CompilerErrors(list, noColor))
		return
	}
	fmt.Fprint(w, ui.GenerateError(err.Error(), noColor))
}
