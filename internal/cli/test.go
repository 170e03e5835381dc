package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Javagedes/mu-plus/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern on scenario name)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run conformance scenarios through the harness.

Each scenario boots a fresh in-memory machine with deterministic session
tokens and checks its expectations against the session history.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  memprot test ./scenarios
  memprot test ./scenarios --filter "fault-*"
  memprot test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenarios, err := harness.LoadScenarioDir(scenariosDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}

	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(scenarios))}

	for _, scenario := range scenarios {
		if opts.Filter != "" {
			match, _ := filepath.Match(opts.Filter, scenario.Name)
			if !match {
				continue
			}
		}
		result.Total++

		formatter.VerboseLog("running scenario %s", scenario.Name)
		run, err := harness.Run(scenario)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("scenario %s failed to run", scenario.Name), err)
		}

		sr := ScenarioResult{Name: scenario.Name, Pass: run.Pass, Errors: run.Errors}
		if run.RunError != "" {
			sr.Pass = false
			sr.Errors = append(sr.Errors, run.RunError)
		}
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, sr := range result.Scenarios {
			status := "PASS"
			if !sr.Pass {
				status = "FAIL"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", status, sr.Name)
			for _, e := range sr.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "      %s\n", e)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d passed, %d failed, %d total\n",
			result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}
