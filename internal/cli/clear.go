package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Javagedes/mu-plus/internal/nvram"
)

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the protection flag (reset to defaults)",
		Long: `Zero the memory-protection flag byte in an NVRAM database.

The triage core only ever sets the flag; clearing it is the explicit
reset-to-defaults path that re-enables protection enforcement on the
next boot.

Example:
  memprot clear --db ./nvram.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(rootOpts, database, cmd)
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "path to NVRAM database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runClear(opts *RootOptions, database string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	store, err := nvram.Open(database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open NVRAM database", err)
	}
	defer store.Close()

	if err := nvram.ClearProtectionFlag(store); err != nil {
		return WrapExitError(ExitCommandError, "failed to clear protection flag", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"cleared": database})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "protection flag cleared")
	return nil
}
