package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moviesSchema = "../../testdata/schema/movies.cue"

// writeScenario writes content to a temp scenario file next to a copy of
// the movies schema and returns the scenario path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	schemaData, err := os.ReadFile(moviesSchema)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "movies.cue"), schemaData, 0o644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: titles
description: "Titles of movies"
schema: movies.cue
query: "{ movies { connection(first: $n) { edges { node { title } } } } }"
variables:
  n: 3
limits:
  max_depth: 2
assertions:
  - type: path_present
    root: movies
    path: movies.connection.edges.node.title
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "titles", scenario.Name)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "movies.cue"), scenario.Schema)
	assert.Equal(t, 3, scenario.Variables["n"])
	assert.Equal(t, 2, scenario.Limits.MaxDepth)
	assert.Nil(t, scenario.Expect)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertPathPresent, scenario.Assertions[0].Type)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
schema: movies.cue
query: "{ movies { connection { edges { node { title } } } } }"
assertion:
  - type: root_count
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "schema: movies.cue\nquery: \"{ x }\"\n",
			wantErr: "name is required",
		},
		{
			name:    "missing schema file",
			content: "name: a\nschema: nope.cue\nquery: \"{ x }\"\n",
			wantErr: "schema not found",
		},
		{
			name:    "missing query",
			content: "name: a\nschema: movies.cue\n",
			wantErr: "query is required",
		},
		{
			name:    "expect without code",
			content: "name: a\nschema: movies.cue\nquery: \"{ x }\"\nexpect:\n  message: boom\n",
			wantErr: "expect: error is required",
		},
		{
			name:    "expect with golden",
			content: "name: a\nschema: movies.cue\nquery: \"{ x }\"\ngolden: true\nexpect:\n  error: UNKNOWN_FIELD\n",
			wantErr: "cannot carry assertions or a golden file",
		},
		{
			name:    "unknown assertion",
			content: "name: a\nschema: movies.cue\nquery: \"{ x }\"\nassertions:\n  - type: trace_contains\n",
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name:    "path without root",
			content: "name: a\nschema: movies.cue\nquery: \"{ x }\"\nassertions:\n  - type: path_present\n    path: a.b\n",
			wantErr: "root and path are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"b.yaml", "a.yml", "nested/c.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	paths, err := FindScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.yaml"),
	}, paths)
}
