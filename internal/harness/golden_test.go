package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios runs every scenario in the repository's testdata.
func TestScenarios(t *testing.T) {
	paths, err := FindScenarios("../../testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestAssertGolden_Error(t *testing.T) {
	s := moviesScenario(`{ movies { connection { edges { node { budget } } } } }`)
	s.Expect = &ExpectClause{Error: "UNKNOWN_FIELD"}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	require.True(t, result.Pass)

	require.NoError(t, AssertGolden(t, "unknown_field", result))
}

func TestSnapshot_Deterministic(t *testing.T) {
	s := moviesScenario(`{ a: movies { connection { edges { node { title id location { latitude } } } } } b: people { connection { edges { node { name } } } } }`)

	first, err := Run(context.Background(), s)
	require.NoError(t, err)
	second, err := Run(context.Background(), s)
	require.NoError(t, err)

	a, err := Snapshot("x", first)
	require.NoError(t, err)
	b, err := Snapshot("x", second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
