package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	s := Inspect(movieRead())

	assert.Equal(t, "Movie", s.Target)
	assert.Equal(t, 2, s.Depth)
	assert.Equal(t, 2, s.Reads)
	assert.Equal(t, 1, s.Traversals)
	assert.Equal(t, 5, s.Leaves)
	assert.Equal(t, 2, s.SortKeys)
	assert.Equal(t, []string{
		"movies.connection.edges.node.actors.connection.edges.node.name",
		"movies.connection.edges.node.actors.connection.edges.properties.screenTime",
		"movies.connection.edges.node.id",
		"movies.connection.edges.node.location",
		"movies.connection.edges.node.title",
	}, s.Paths)
}

func TestInspectWithoutConnection(t *testing.T) {
	s := Inspect(&ReadOperation{Alias: "movies", Target: "Movie"})
	assert.Equal(t, 1, s.Depth)
	assert.Equal(t, 1, s.Reads)
	assert.Zero(t, s.Leaves)
	assert.Empty(t, s.Paths)
}

func TestInspectNil(t *testing.T) {
	s := Inspect(nil)
	assert.Zero(t, s.Depth)
	assert.NotNil(t, s.Paths)
}

func TestFingerprint(t *testing.T) {
	fp1, err := Fingerprint(movieRead())
	require.NoError(t, err)
	fp2, err := Fingerprint(movieRead())
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2, "structurally identical trees hash the same")

	changed := movieRead()
	changed.Connection.Args.Sort[0].Node[0].Direction = Desc
	fp3, err := Fingerprint(changed)
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)
}
