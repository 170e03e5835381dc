package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Javagedes/mu-plus/internal/machine"
	"github.com/Javagedes/mu-plus/internal/nvram"
	"github.com/Javagedes/mu-plus/internal/settings"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Settings  string
	Database  string
	Fault     string
	ErrorCode uint64
	Rip       uint64
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Boot the simulated machine",
		Long: `Boot the simulated machine and follow warm resets until a session
completes or halts.

With --fault, the session payload performs a protection-violating access
at the given address. Under enforced protections this raises a page
fault: the triage core records the "protections off" flag in NVRAM and
warm-restarts, and the next session boots with protections disabled.

Examples:
  memprot run --settings platform.yaml --fault 0xdead0000
  memprot run --db ./nvram.db --fault 0x7fff1000 --error-code 0x2
  memprot run --db ./nvram.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMachine(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Settings, "settings", "", "path to platform settings YAML")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to NVRAM database (overrides settings; empty means volatile)")
	cmd.Flags().StringVar(&opts.Fault, "fault", "", "inject a page fault at this address (hex or decimal)")
	cmd.Flags().Uint64Var(&opts.ErrorCode, "error-code", 0x2, "page-fault error code for the injected fault")
	cmd.Flags().Uint64Var(&opts.Rip, "rip", 0, "instruction pointer reported for the injected fault")

	return cmd
}

func runMachine(opts *RunOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg := settings.Default()
	if opts.Settings != "" {
		loaded, err := settings.Load(opts.Settings)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load settings", err)
		}
		cfg = loaded
	}

	bank, closeBank, err := openBank(opts.Database, cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open NVRAM bank", err)
	}
	defer closeBank()

	var fault *machine.FaultSpec
	if opts.Fault != "" {
		addr, err := strconv.ParseUint(opts.Fault, 0, 64)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid fault address %q", opts.Fault), err)
		}
		fault = &machine.FaultSpec{Address: addr, ErrorCode: opts.ErrorCode, Rip: opts.Rip}
	}

	m := machine.New(cfg, bank, machine.WithLogger(newLogger(opts.RootOptions)))

	sessions, runErr := m.Run(fault)

	if opts.Format == "json" {
		payload := map[string]any{"sessions": sessions}
		if runErr != nil {
			payload["run_error"] = runErr.Error()
		}
		if err := formatter.Success(payload); err != nil {
			return err
		}
	} else {
		for i, s := range sessions {
			fmt.Fprintf(cmd.OutOrStdout(), "session %d (%s): protections=%v handler=%v outcome=%s",
				i+1, s.Token, s.Enforcing, s.HandlerArmed, s.Outcome)
			if s.Reset != nil {
				fmt.Fprintf(cmd.OutOrStdout(), " reset=%s", s.Reset.KindName)
			}
			if s.Diagnostic != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " diagnostic=%s", s.Diagnostic)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
		final := sessions[len(sessions)-1]
		fmt.Fprintf(cmd.OutOrStdout(), "protection flag: %s\n", final.Flag)
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "machine did not reach a stable session", runErr)
	}
	return nil
}

// openBank selects the NVRAM bank: an explicit --db path wins, then the
// settings path, then a volatile in-memory bank.
func openBank(override string, cfg *settings.Settings) (nvram.Bank, func(), error) {
	path := cfg.NVRAM.Path
	if override != "" {
		path = override
	}
	if path == "" {
		return nvram.NewMemBank(), func() {}, nil
	}

	store, err := nvram.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
