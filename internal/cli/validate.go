package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Javagedes/mu-plus/internal/settings"
)

// ValidationResult holds settings validation results.
type ValidationResult struct {
	Valid  bool                        `json:"valid"`
	Errors []*settings.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <settings-file>",
		Short: "Validate a platform settings file",
		Long: `Validate a platform settings YAML file against the settings schema.

Checks field names, types and value ranges without booting anything.

Example:
  memprot validate platform.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read settings file", err)
	}

	errs := settings.Validate(data)
	result := ValidationResult{Valid: len(errs) == 0, Errors: errs}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", path)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d error(s)\n", path, len(errs))
		for _, e := range errs {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", e)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "settings file is invalid")
	}
	return nil
}
