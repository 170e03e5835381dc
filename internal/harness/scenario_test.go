package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "fault-triage-roundtrip.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "fault-triage-roundtrip", s.Name)
	assert.True(t, s.ToggleEnabled())
	assert.True(t, s.DispatchPresent())
	require.NotNil(t, s.Fault)
	assert.Equal(t, uint64(0xdead0000), s.Fault.Address)
	assert.Equal(t, uint64(0x2), s.Fault.ErrorCode)
	assert.Equal(t, []string{"reset", "completed"}, s.Expect.Outcomes)
	require.NotNil(t, s.Expect.FinalFlagDisabled)
	assert.True(t, *s.Expect.FinalFlagDisabled)
}

func TestLoadScenario_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: minimal\n"), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.True(t, s.ToggleEnabled())
	assert.True(t, s.DispatchPresent())
	assert.Nil(t, s.Fault)
}

func TestLoadScenario_MissingName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("description: nameless\n"), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadScenarioDir(t *testing.T) {
	scenarios, err := LoadScenarioDir(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.Len(t, scenarios, 4)

	// Sorted by file name.
	assert.Equal(t, "clean-boot", scenarios[0].Name)
	assert.Equal(t, "dispatch-never-appears", scenarios[1].Name)
	assert.Equal(t, "fault-triage-roundtrip", scenarios[2].Name)
	assert.Equal(t, "toggle-disabled", scenarios[3].Name)
}

func TestLoadScenarioDir_Empty(t *testing.T) {
	_, err := LoadScenarioDir(t.TempDir())
	require.Error(t, err)
}
