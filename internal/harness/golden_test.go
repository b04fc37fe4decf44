package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"running", "attribute_award"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_CanonicalForm(t *testing.T) {
	result := NewResult()
	result.AddInvocationTrace(OpClear, nil, 1)
	result.AddCompletionTrace(CaseRejected, map[string]interface{}{"reason": "no character"}, 2)

	data, err := NewSnapshot("tiny", result).Marshal()
	require.NoError(t, err)

	// empty trace fields are dropped and keys are sorted
	assert.Equal(t,
		`{"scenario_name":"tiny","state":{},"trace":[{"op":"clear","seq":1,"type":"invocation"},{"output_case":"rejected","result":{"reason":"no character"},"seq":2,"type":"completion"}]}`,
		string(data))
}
