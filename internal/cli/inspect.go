package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Javagedes/mu-plus/internal/nvram"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Decode the protection flag from an NVRAM database",
		Long: `Read and decode the memory-protection flag byte from an NVRAM
database, the way firmware startup logic does when deciding whether to
enforce protections.

Examples:
  memprot inspect --db ./nvram.db
  memprot inspect --db ./nvram.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, database, cmd)
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "path to NVRAM database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runInspect(opts *RootOptions, database string, cmd *cobra.Command) error {
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

	flag, err := nvram.ReadProtectionFlag(store)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read protection flag", err)
	}

	if opts.Format == "json" {
		return formatter.Success(flag)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "protection flag: %s\n", flag)
	return nil
}
