package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../../testdata/scenarios"

// goldenScenarioDir writes one golden scenario next to a copy of the movies
// schema and returns the directory.
func goldenScenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	schemaData, err := os.ReadFile(moviesSchema)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "movies.cue"), schemaData, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "people.yaml"), []byte(`
name: people
schema: movies.cue
query: "{ people { connection { edges { node { name } } } } }"
golden: true
`), 0o644))
	return dir
}

func TestTest_AllScenariosPass(t *testing.T) {
	stdout, _, err := execute(t, "test", scenariosDir)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "✓ movies_first_two\n")
	assert.Contains(t, stdout, "✓ unknown_field\n")
	assert.Contains(t, stdout, "failed")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTest_Filter(t *testing.T) {
	stdout, _, err := execute(t, "test", scenariosDir, "--filter", "movies_*", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "movies_first_two", resp.Data.Scenarios[0].Name)
}

func TestTest_UpdateThenCompare(t *testing.T) {
	dir := goldenScenarioDir(t)

	stdout, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "golden file missing")

	stdout, _, err = execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ people (golden updated)")

	golden := filepath.Join(dir, "golden", "people.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario":"people"`)

	_, _, err = execute(t, "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte(`{"scenario":"people"}`), 0o644))
	stdout, _, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "golden file mismatch")
}

func TestTest_FailingScenarioJSON(t *testing.T) {
	dir := goldenScenarioDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(`
name: wrong
schema: movies.cue
query: "{ people { connection { edges { node { name } } } } }"
expect:
  error: UNKNOWN_FIELD
`), 0o644))

	stdout, _, err := execute(t, "test", dir, "--filter", "wrong", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
}

func TestTest_LoadFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: [\n"), 0o644))

	stdout, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestTest_EmptyAndMissingDirs(t *testing.T) {
	stdout, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")

	_, _, err = execute(t, "test", filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("s", "golden", "a.golden"), goldenFilePath("s", "a"))
}
