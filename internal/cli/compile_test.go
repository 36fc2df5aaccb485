package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_TextOutput(t *testing.T) {
	stdout, _, err := execute(t, "compile", "--schema", moviesSchema, "--query", titlesQuery)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "✓ Compiled 1 root operation(s)\n"), stdout)
	assert.Contains(t, stdout, "movies")
	assert.Contains(t, stdout, "Movie")
	assert.Contains(t, stdout, "title")
}

func TestCompile_JSONOutput(t *testing.T) {
	stdout, _, err := execute(t, "compile", "--schema", moviesSchema, "--query", titlesQuery, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status    string `json:"status"`
		RequestID string `json:"request_id"`
		Data      struct {
			Schema SchemaSource `json:"schema"`
			Result struct {
				RequestID      string `json:"requestId"`
				RootOperations []struct {
					Alias  string `json:"alias"`
					Kind   string `json:"kind"`
					Entity string `json:"entity"`
				} `json:"rootOperations"`
			} `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, resp.RequestID, resp.Data.Result.RequestID)
	assert.Equal(t, moviesSchema, resp.Data.Schema.Path)
	require.Len(t, resp.Data.Result.RootOperations, 1)
	assert.Equal(t, "Movie", resp.Data.Result.RootOperations[0].Entity)
	assert.Equal(t, "read", resp.Data.Result.RootOperations[0].Kind)
}

func TestCompile_QueryFileAndVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.graphql")
	require.NoError(t, os.WriteFile(path, []byte(
		`query People($n: Int) { people { connection(first: $n) { edges { node { name } } } } }`), 0o644))

	stdout, _, err := execute(t, "compile", "--schema", moviesSchema, path, "--variables", `{"n": 4}`, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"first": 4`)
	assert.Contains(t, stdout, `"operationName": "People"`)
}

func TestCompile_Stdin(t *testing.T) {
	cmd := NewRootCommand()
	var stdout strings.Builder
	cmd.SetOut(&stdout)
	cmd.SetErr(&strings.Builder{})
	cmd.SetIn(strings.NewReader(titlesQuery))
	cmd.SetArgs([]string{"compile", "--schema", moviesSchema, "-"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "✓ Compiled 1 root operation(s)")
}

func TestCompile_NodeWithoutMatch(t *testing.T) {
	// Studio:dbId:1
	stdout, _, err := execute(t, "compile", "--schema", moviesSchema, "--query", `{ node(id: "U3R1ZGlvOmRiSWQ6MQ==") { id } }`)
	require.NoError(t, err)
	assert.Contains(t, stdout, "node: null (id matches no entity)")
}

func TestCompile_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		query string
		args  []string
		code  string
	}{
		{"unknown field", `{ movies { connection { edges { node { budget } } } } }`, nil, "UNKNOWN_FIELD"},
		{"bad sort direction", `{ movies { connection(sort: {node: {title: UP}}) { edges { node { title } } } } }`, nil, "INVALID_SORT_DIRECTION"},
		{"depth limit", `{ movies { connection { edges { node { actors { connection { edges { node { name } } } } } } } } }`, []string{"--max-depth", "1"}, "LIMIT_EXCEEDED"},
		{"parse failure", `{ movies { `, nil, "GRAPHQL_PARSE_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"compile", "--schema", moviesSchema, "--query", tt.query, "--format", "json"}, tt.args...)
			stdout, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestCompile_CommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"no query", []string{"--schema", moviesSchema}, ErrCodeInvalidArgs},
		{"query and file", []string{"--schema", moviesSchema, "--query", titlesQuery, "q.graphql"}, ErrCodeInvalidArgs},
		{"missing query file", []string{"--schema", moviesSchema, "missing.graphql"}, ErrCodeInvalidArgs},
		{"bad variables", []string{"--schema", moviesSchema, "--query", titlesQuery, "--variables", "[1]"}, ErrCodeInvalidArgs},
		{"no schema", []string{"--query", titlesQuery}, ErrCodeInvalidArgs},
		{"missing schema", []string{"--schema", "missing.cue", "--query", titlesQuery}, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, append([]string{"compile", "--format", "json"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestCompile_WritesOutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ir.json")
	stdout, _, err := execute(t, "compile", "--schema", moviesSchema, "--query", titlesQuery, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote query IR to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Contains(t, result, "rootOperations")
}

func TestCompile_VerboseMetrics(t *testing.T) {
	_, stderr, err := execute(t, "compile", "--schema", moviesSchema, "--query", titlesQuery, "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Loaded schema with 3 entities")
	assert.Contains(t, stderr, "compiles_total")
}

func TestReadQuery(t *testing.T) {
	q, err := readQuery(&CompileOptions{Query: "{ x }"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "{ x }", q)

	q, err = readQuery(&CompileOptions{}, []string{"-"}, strings.NewReader("{ y }"))
	require.NoError(t, err)
	assert.Equal(t, "{ y }", q)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Empty(t, firstNonEmpty("", ""))
}

func TestCompile_SampleQuery(t *testing.T) {
	stdout, _, err := execute(t, "compile", "--schema", moviesSchema,
		"../../testdata/queries/movies_with_cast.graphql", "--variables", `{"since": 1999}`, "--format", "json")
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, `"operationName": "MoviesWithCast"`)
	assert.Contains(t, stdout, `"first": 5`)
	assert.Contains(t, stdout, `"cast"`)
}
