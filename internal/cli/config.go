package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sprintchef/internal/config"
)

// ConfigValidation holds the result of config validate.
type ConfigValidation struct {
	Valid  bool                     `json:"valid"`
	Source string                   `json:"source"`
	Errors []config.ValidationError `json:"errors,omitempty"`
}

func (v ConfigValidation) String() string {
	if v.Valid {
		return fmt.Sprintf("✓ %s is valid", v.Source)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✗ %s has %d problem(s)\n", v.Source, len(v.Errors))
	for _, e := range v.Errors {
		fmt.Fprintf(&b, "\n  %s: %s\n    %s", e.Code, e.Field, e.Message)
	}
	return b.String()
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate balance configuration",
	}
	cmd.AddCommand(newConfigValidateCommand(rootOpts))
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	return cmd
}

func newConfigValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a balance file against the schema",
		Long: `Validate the effective balance configuration.

The configuration is built from the preset, the balance file (argument or
--config) and SPRINTCHEF_* environment overrides, then checked against the
embedded CUE schema and the cross-reference rules.

Exit codes:
  0 - Configuration is valid
  1 - Validation failed
  2 - File could not be read or parsed`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := *rootOpts
			if len(args) == 1 {
				opts.Config = args[0]
			}
			return runConfigValidate(&opts, cmd)
		},
	}
}

func runConfigValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := loadConfig(opts)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeLoadFailed, "failed to load configuration", err)
	}

	source := opts.Config
	if source == "" {
		source = "preset " + presetName(opts.Preset)
	}
	formatter.VerboseLog("Validating %s", source)

	result := ConfigValidation{Source: source, Errors: config.Validate(cfg)}
	result.Valid = len(result.Errors) == 0
	if result.Valid {
		return formatter.Success(result)
	}

	first := result.Errors[0]
	if err := formatter.Failure(first.Code, first.Message, result); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective balance configuration",
		Long: `Print the balance configuration after the preset, the --config file and
SPRINTCHEF_* environment overrides are applied. Text output is YAML that can
be edited and passed back with --config.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(rootOpts, cmd)
		},
	}
}

func runConfigShow(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := loadConfig(opts)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeLoadFailed, "failed to load configuration", err)
	}
	if formatter.Format == "json" {
		return formatter.Success(cfg)
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeGeneric, "failed to encode configuration", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func presetName(p string) string {
	if p == "" {
		return "default"
	}
	return p
}
