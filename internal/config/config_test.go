package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/resolvetree/internal/compiler"
)

func TestParseOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
schema: testdata/schema
log_level: debug
limits:
  max_depth: 4
`))
	require.NoError(t, err)

	assert.Equal(t, "testdata/schema", cfg.Schema)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.Format, "unset keys keep defaults")
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, compiler.Limits{MaxDepth: 4}, cfg.Limits)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("schema: x\nverbosity: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verbosity")
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad format", "format: xml\n", "format"},
		{"bad level", "log_level: loud\n", "log_level"},
		{"bad log format", "log_format: pretty\n", "log_format"},
		{"negative depth", "limits:\n  max_depth: -1\n", "limits.max_depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolvetree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
