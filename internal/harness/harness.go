// Package harness executes conformance scenarios against the boot
// simulator and the fault-triage core.
//
// A scenario configures one simulated platform (toggle, dispatch
// availability, injected fault), runs it across warm restarts, and
// asserts on the observable session history: outcomes, flag state,
// reset parameters, diagnostic codes. Session tokens are fixed so the
// resulting trace is deterministic and can be compared against golden
// files.
package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/Javagedes/mu-plus/internal/machine"
	"github.com/Javagedes/mu-plus/internal/nvram"
	"github.com/Javagedes/mu-plus/internal/reset"
	"github.com/Javagedes/mu-plus/internal/settings"
	"github.com/Javagedes/mu-plus/internal/testutil"
)

// Result is the outcome of running one scenario.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Errors lists the expectations that failed.
	Errors []string `json:"errors,omitempty"`

	// Sessions is the boot-session history, in order.
	Sessions []machine.SessionResult `json:"sessions"`

	// RunError records a simulator-level failure (e.g. the restart
	// ceiling tripping), if any.
	RunError string `json:"run_error,omitempty"`
}

// AddError records a failed expectation and marks the result failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Snapshot renders the result as indented JSON for golden comparison.
func (r *Result) Snapshot() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Run executes a scenario on a fresh in-memory machine with
// deterministic session tokens and evaluates its expectations.
// Diagnostic logging is discarded; pass a logger via RunWithLogger to
// see it.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with an explicit diagnostic sink.
func RunWithLogger(scenario *Scenario, log *slog.Logger) (*Result, error) {
	cfg := settings.Default()
	cfg.Protections.Enabled = scenario.ToggleEnabled()
	if scenario.MaxRestarts > 0 {
		cfg.Boot.MaxRestarts = scenario.MaxRestarts
	}

	opts := []machine.Option{
		machine.WithLogger(log),
		machine.WithTokenGenerator(testutil.NewFixedTokenGenerator("boot")),
	}
	if !scenario.DispatchPresent() {
		opts = append(opts, machine.WithoutDispatch())
	}

	m := machine.New(cfg, nvram.NewMemBank(), opts...)

	result := &Result{Scenario: scenario.Name, Pass: true}

	sessions, err := m.Run(scenario.Fault)
	result.Sessions = sessions
	if err != nil {
		result.RunError = err.Error()
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("scenario %s: no sessions ran", scenario.Name)
	}

	evaluate(scenario, result)
	return result, nil
}

// evaluate checks every expectation against the session history.
func evaluate(scenario *Scenario, result *Result) {
	expect := scenario.Expect
	sessions := result.Sessions
	first := sessions[0]
	last := sessions[len(sessions)-1]

	if len(expect.Outcomes) > 0 {
		got := make([]string, len(sessions))
		for i, s := range sessions {
			got[i] = string(s.Outcome)
		}
		if len(got) != len(expect.Outcomes) {
			result.AddError("outcome sequence %v, want %v", got, expect.Outcomes)
		} else {
			for i := range got {
				if got[i] != expect.Outcomes[i] {
					result.AddError("session %d outcome %q, want %q", i+1, got[i], expect.Outcomes[i])
				}
			}
		}
	}

	if expect.FinalFlagDisabled != nil && last.Flag.Disabled() != *expect.FinalFlagDisabled {
		result.AddError("final flag disabled=%v, want %v", last.Flag.Disabled(), *expect.FinalFlagDisabled)
	}

	resetCount := 0
	for i, s := range sessions {
		if s.Reset == nil {
			continue
		}
		resetCount++
		if expect.WarmResetsOnly && s.Reset.Kind != reset.Warm {
			result.AddError("session %d reset kind %q, want warm", i+1, s.Reset.KindName)
		}
	}
	if expect.ResetCount != nil && resetCount != *expect.ResetCount {
		result.AddError("reset count %d, want %d", resetCount, *expect.ResetCount)
	}

	if expect.Diagnostic != nil && first.Diagnostic != *expect.Diagnostic {
		result.AddError("first session diagnostic %q, want %q", first.Diagnostic, *expect.Diagnostic)
	}

	if expect.HandlerArmed != nil && first.HandlerArmed != *expect.HandlerArmed {
		result.AddError("first session handler armed=%v, want %v", first.HandlerArmed, *expect.HandlerArmed)
	}
}
