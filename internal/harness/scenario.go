package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Javagedes/mu-plus/internal/machine"
)

// Scenario defines a conformance test scenario: one platform
// configuration, at most one injected fault, and the expected
// multi-session outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Toggle is the global memory-protection toggle. Defaults to on.
	Toggle *bool `yaml:"toggle,omitempty"`

	// DispatchAvailable controls whether the platform produces the CPU
	// architectural protocol during boot. Defaults to true; false
	// simulates the subsystem never appearing.
	DispatchAvailable *bool `yaml:"dispatch_available,omitempty"`

	// MaxRestarts overrides the warm-restart ceiling.
	MaxRestarts int `yaml:"max_restarts,omitempty"`

	// Fault is the protection-violating access the payload performs.
	// Nil means a clean session.
	Fault *machine.FaultSpec `yaml:"fault,omitempty"`

	// Expect holds the assertions evaluated against the session history.
	Expect Expect `yaml:"expect"`
}

// Expect describes the assertions for a scenario.
type Expect struct {
	// Outcomes is the expected per-session outcome sequence.
	Outcomes []string `yaml:"outcomes,omitempty"`

	// FinalFlagDisabled asserts on the decoded flag after the last
	// session.
	FinalFlagDisabled *bool `yaml:"final_flag_disabled,omitempty"`

	// ResetCount asserts the total number of reset requests.
	ResetCount *int `yaml:"reset_count,omitempty"`

	// WarmResetsOnly asserts every observed reset was warm.
	WarmResetsOnly bool `yaml:"warm_resets_only,omitempty"`

	// Diagnostic asserts the triage diagnostic code of the first
	// session ("" asserts no diagnostic).
	Diagnostic *string `yaml:"diagnostic,omitempty"`

	// HandlerArmed asserts whether the fault handler was installed in
	// the first session.
	HandlerArmed *bool `yaml:"handler_armed,omitempty"`
}

// ToggleEnabled returns the toggle with its default applied.
func (s *Scenario) ToggleEnabled() bool {
	return s.Toggle == nil || *s.Toggle
}

// DispatchPresent returns DispatchAvailable with its default applied.
func (s *Scenario) DispatchPresent() bool {
	return s.DispatchAvailable == nil || *s.DispatchAvailable
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	return &s, nil
}

// LoadScenarioDir loads every *.yaml scenario in dir, sorted by file
// name for stable execution order.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan scenarios: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	sort.Strings(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
