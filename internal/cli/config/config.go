package config

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory
const FileName = "typestate.yml"

// EnvPrefix prefixes environment overrides, e.g. TYPESTATE_OUTPUT
const EnvPrefix = "TYPESTATE"

// Config represents the typestate configuration
type Config struct {
	Output            string `mapstructure:"output" yaml:"output"`
	Directive         string `mapstructure:"directive" yaml:"directive"`
	FinalizeMethod    string `mapstructure:"finalize_method" yaml:"finalize_method"`
	ConstructorPrefix string `mapstructure:"constructor_prefix" yaml:"constructor_prefix"`
	OptionConstructor string `mapstructure:"option_constructor" yaml:"option_constructor"`
	OptSuffix         string `mapstructure:"opt_suffix" yaml:"opt_suffix"`
	SchemaGlob        string `mapstructure:"schema_glob" yaml:"schema_glob"`
	Verbose           bool   `mapstructure:"verbose" yaml:"verbose,omitempty"`
	NoColor           bool   `mapstructure:"no_color" yaml:"no_color,omitempty"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Output:            "typestate_builders.go",
		Directive:         "typestate:builder",
		FinalizeMethod:    "Build",
		ConstructorPrefix: "New",
		OptionConstructor: "Some",
		OptSuffix:         "Opt",
		SchemaGlob:        "*.typestate.hcl",
	}
}

// New returns a viper instance with defaults, the config file search path
// and environment overrides set up. Commands bind their flags to it before
// calling Load.
func New(dir string) *viper.Viper {
	v := viper.New()

	def := Default()
	v.SetDefault("output", def.Output)
	v.SetDefault("directive", def.Directive)
	v.SetDefault("finalize_method", def.FinalizeMethod)
	v.SetDefault("constructor_prefix", def.ConstructorPrefix)
	v.SetDefault("option_constructor", def.OptionConstructor)
	v.SetDefault("opt_suffix", def.OptSuffix)
	v.SetDefault("schema_glob", def.SchemaGlob)
	v.SetDefault("verbose", false)
	v.SetDefault("no_color", false)

	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	return v
}

// Load reads the config file, if any, and returns the validated result
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that every generated name is a Go identifier and that
// the output is a Go file
func (c *Config) Validate() error {
	idents := []struct {
		key, value string
	}{
		{"finalize_method", c.FinalizeMethod},
		{"constructor_prefix", c.ConstructorPrefix},
		{"option_constructor", c.OptionConstructor},
	}
	for _, id := range idents {
		if !token.IsIdentifier(id.value) {
			return fmt.Errorf("%s %q is not a valid Go identifier", id.key, id.value)
		}
	}
	// opt_suffix is appended to a setter name, so it may start with a digit
	if c.OptSuffix == "" || !token.IsIdentifier("X"+c.OptSuffix) {
		return fmt.Errorf("opt_suffix %q must be letters, digits or underscores", c.OptSuffix)
	}

	if filepath.Ext(c.Output) != ".go" || strings.HasSuffix(c.Output, "_test.go") {
		return fmt.Errorf("output %q must be a non-test .go file", c.Output)
	}
	if filepath.Base(c.Output) != c.Output {
		return fmt.Errorf("output %q must be a file name, not a path", c.Output)
	}

	if strings.TrimSpace(c.Directive) == "" || strings.ContainsAny(c.Directive, " \t") {
		return fmt.Errorf("directive %q must be a single word such as typestate:builder", c.Directive)
	}
	if _, err := filepath.Match(c.SchemaGlob, "x"); err != nil {
		return fmt.Errorf("schema_glob %q is not a valid pattern: %w", c.SchemaGlob, err)
	}

	return nil
}

// Write saves the configuration to dir/typestate.yml. An existing file is
// only replaced when overwrite is set.
func Write(dir string, cfg *Config, overwrite bool) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists", path)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
