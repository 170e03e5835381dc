package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares its JSON snapshot
// against the golden file testdata/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}

	snapshot, err := result.Snapshot()
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}

	g := goldie.New(t)
	g.Assert(t, scenario.Name, snapshot)

	return result
}
