package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios_Golden runs every shipped scenario and compares its
// trace against the checked-in golden file.
func TestScenarios_Golden(t *testing.T) {
	scenarios, err := LoadScenarioDir(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result := RunWithGolden(t, scenario)
			assert.True(t, result.Pass, "expectations failed: %v", result.Errors)
			assert.Empty(t, result.RunError)
		})
	}
}
