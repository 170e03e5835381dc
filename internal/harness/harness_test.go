package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Javagedes/mu-plus/internal/machine"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
func strPtr(s string) *string {
	return &s
}

func TestRun_FaultTriageRoundtrip(t *testing.T) {
	scenario := &Scenario{
		Name:  "roundtrip",
		Fault: &machine.FaultSpec{Address: 0xdead0000, ErrorCode: 0x2},
		Expect: Expect{
			Outcomes:          []string{"reset", "completed"},
			FinalFlagDisabled: boolPtr(true),
			ResetCount:        intPtr(1),
			WarmResetsOnly:    true,
			HandlerArmed:      boolPtr(true),
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Sessions, 2)
	assert.Equal(t, "boot-1", result.Sessions[0].Token)
	assert.Equal(t, "boot-2", result.Sessions[1].Token)
}

func TestRun_FailedExpectationReported(t *testing.T) {
	scenario := &Scenario{
		Name:  "wrong-expectation",
		Fault: &machine.FaultSpec{Address: 0x1000},
		Expect: Expect{
			// A fault under enforced protections does reset; expecting
			// a clean completion must fail.
			Outcomes: []string{"completed"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.NotEmpty(t, result.Errors)
}

func TestRun_ToggleDisabled(t *testing.T) {
	scenario := &Scenario{
		Name:   "toggle-off",
		Toggle: boolPtr(false),
		Fault:  &machine.FaultSpec{Address: 0x1000},
		Expect: Expect{
			Outcomes:     []string{"completed"},
			ResetCount:   intPtr(0),
			HandlerArmed: boolPtr(false),
			Diagnostic:   strPtr(""),
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_DispatchNeverAppears(t *testing.T) {
	scenario := &Scenario{
		Name:              "no-dispatch",
		DispatchAvailable: boolPtr(false),
		Fault:             &machine.FaultSpec{Address: 0x1000},
		Expect: Expect{
			Outcomes:          []string{"halted"},
			FinalFlagDisabled: boolPtr(false),
			ResetCount:        intPtr(0),
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_OutcomeCountMismatch(t *testing.T) {
	scenario := &Scenario{
		Name: "count-mismatch",
		Expect: Expect{
			Outcomes: []string{"completed", "completed"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
}

func TestResult_Snapshot(t *testing.T) {
	result := &Result{Scenario: "snap", Pass: true}

	data, err := result.Snapshot()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario": "snap"`)
	assert.Equal(t, byte('\n'), data[len(data)-1])
}
