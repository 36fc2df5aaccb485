package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/resolvetree/internal/testutil"
)

func TestCollectNames(t *testing.T) {
	names := CollectNames(testutil.MoviesModel())

	var owners []string
	for _, n := range names {
		owners = append(owners, n.Owner)
	}
	assert.Equal(t, []string{
		"Movie", "Movie.actors", "Movie.director",
		"Person", "Person.movies", "Person.friends",
		"Genre",
	}, owners)

	assert.Equal(t, "MovieConnection", names[0].Names.Connection)
	assert.Equal(t, "ActedIn", names[1].Names.Properties)
	assert.False(t, names[2].Names.HasProperties())
}

func TestNames_Text(t *testing.T) {
	stdout, _, err := execute(t, "names", moviesSchema)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Movie\n")
	assert.Contains(t, stdout, "  connection: MovieConnection\n")
	assert.Contains(t, stdout, "  properties: ActedIn\n")
}

func TestNames_JSON(t *testing.T) {
	stdout, _, err := execute(t, "names", moviesSchema, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data []OwnerNames `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data, 7)
	var owners []string
	for _, n := range resp.Data {
		owners = append(owners, n.Owner)
	}
	assert.Contains(t, owners, "Genre")
	assert.Contains(t, owners, "Person.friends")
}

func TestNames_MissingSchema(t *testing.T) {
	_, _, err := execute(t, "names", "missing.cue")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
