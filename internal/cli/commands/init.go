package commands

import (
	"fmt"
	"go/token"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/typestate/internal/cli/config"
	"github.com/conduit-lang/typestate/internal/cli/ui"
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	var (
		yes   bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a " + config.FileName,
		Long: `Create a ` + config.FileName + ` holding the names typestate generates:
the output file, the finalize method, the constructor prefix and the
option constructor. Every setting can also be overridden with a
TYPESTATE_* environment variable.`,
		Example: `  # Answer the prompts
  typestate init

  # Write the defaults without prompting
  typestate init --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			dir, _ := cmd.Flags().GetString("config-dir")

			cfg := config.Default()
			if !yes {
				if err := askConfig(cfg); err != nil {
					return err
				}
			}

			path, err := config.Write(dir, cfg, force)
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), noColor))
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), ui.FormatSuccess("Created "+path, noColor))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Use the defaults without prompting")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing "+config.FileName)

	return cmd
}

// askConfig prompts for every setting, offering the current values
func askConfig(cfg *config.Config) error {
	questions := []*survey.Question{
		{
			Name:     "output",
			Prompt:   &survey.Input{Message: "Generated file name:", Default: cfg.Output},
			Validate: survey.Required,
		},
		{
			Name:     "finalize",
			Prompt:   &survey.Input{Message: "Finalize method:", Default: cfg.FinalizeMethod},
			Validate: identifier,
		},
		{
			Name:     "prefix",
			Prompt:   &survey.Input{Message: "Constructor prefix (New gives NewUserBuilder):", Default: cfg.ConstructorPrefix},
			Validate: identifier,
		},
		{
			Name: "option",
			Prompt: &survey.Input{
				Message: "Function wrapping a value in an option:",
				Default: cfg.OptionConstructor,
				Help:    "Called as <package>.<name>(v) on the package that declares the Option type",
			},
			Validate: identifier,
		},
	}

	answers := struct {
		Output   string `survey:"output"`
		Finalize string `survey:"finalize"`
		Prefix   string `survey:"prefix"`
		Option   string `survey:"option"`
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	cfg.Output = answers.Output
	cfg.FinalizeMethod = answers.Finalize
	cfg.ConstructorPrefix = answers.Prefix
	cfg.OptionConstructor = answers.Option
	return nil
}

// identifier is a survey validator accepting Go identifiers
func identifier(ans interface{}) error {
	s, _ := ans.(string)
	if !token.IsIdentifier(s) {
		return fmt.Errorf("%q is not a Go identifier", s)
	}
	return nil
}
