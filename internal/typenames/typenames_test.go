package typenames

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/resolvetree/internal/testutil"
)

func TestForEntity(t *testing.T) {
	m := testutil.MoviesModel()

	names := For(m.Entity("Movie"))
	assert.Equal(t, Names{
		ConnectionOperation: "MovieOperation",
		Connection:          "MovieConnection",
		Edge:                "MovieEdge",
		Node:                "Movie",
		Where:               "MovieWhere",
		Sort:                "MovieSort",
		EdgeSort:            "MovieEdgeSort",
	}, names)
	assert.False(t, names.HasProperties())
}

func TestForRelationship(t *testing.T) {
	m := testutil.MoviesModel()

	names := For(m.Entity("Movie").FindRelationship("actors"))
	assert.Equal(t, Names{
		ConnectionOperation: "MovieActorsOperation",
		Connection:          "MovieActorsConnection",
		Edge:                "MovieActorsEdge",
		Node:                "Person",
		Properties:          "ActedIn",
		Where:               "MovieActorsWhere",
		Sort:                "PersonSort",
		EdgeSort:            "MovieActorsEdgeSort",
	}, names)
	assert.True(t, names.HasProperties())
}

func TestForRelationshipWithoutProperties(t *testing.T) {
	m := testutil.MoviesModel()

	names := For(m.Entity("Person").FindRelationship("friends"))
	assert.Equal(t, "PersonFriendsConnection", names.Connection)
	assert.Equal(t, "Person", names.Node)
	assert.Empty(t, names.Properties)
}

func TestForIsDeterministic(t *testing.T) {
	m := testutil.MoviesModel()
	rel := m.Entity("Person").FindRelationship("movies")
	assert.Equal(t, For(rel), For(rel))
	assert.Equal(t, "PersonMovies", RelationshipPrefix(rel))
}

func TestTyper(t *testing.T) {
	typer := NewTyper(testutil.MoviesModel())

	tests := []struct {
		parent, field, want string
	}{
		{"Query", "movies", "MovieOperation"},
		{"Query", "people", "PersonOperation"},
		{"Query", "genres", "GenreOperation"},
		{"Query", "node", "Node"},
		{"Node", "id", "ID"},
		{"MovieOperation", "connection", "MovieConnection"},
		{"MovieConnection", "edges", "MovieEdge"},
		{"MovieConnection", "pageInfo", "PageInfo"},
		{"MovieEdge", "node", "Movie"},
		{"MovieEdge", "cursor", "String"},
		{"Movie", "id", "ID"},
		{"Movie", "title", "String"},
		{"Movie", "tags", "String"},
		{"Movie", "location", "Point"},
		{"Movie", "actors", "MovieActorsOperation"},
		{"MovieActorsOperation", "connection", "MovieActorsConnection"},
		{"MovieActorsConnection", "edges", "MovieActorsEdge"},
		{"MovieActorsEdge", "node", "Person"},
		{"MovieActorsEdge", "properties", "ActedIn"},
		{"ActedIn", "screenTime", "Int"},
		{"Point", "longitude", "Float"},
		{"Point", "srid", "Int"},
		{"CartesianPoint", "z", "Float"},
		{"Person", "position", "CartesianPoint"},
	}

	for _, tt := range tests {
		got, ok := typer.FieldType(tt.parent, tt.field)
		require.True(t, ok, "%s.%s", tt.parent, tt.field)
		assert.Equal(t, tt.want, got, "%s.%s", tt.parent, tt.field)
	}
}

func TestTyperUnknownFields(t *testing.T) {
	typer := NewTyper(testutil.MoviesModel())

	_, ok := typer.FieldType("Person", "nickname")
	assert.False(t, ok)

	_, ok = typer.FieldType("Genre", "id")
	assert.False(t, ok, "Genre has no global id")

	_, ok = typer.FieldType("PersonFriendsEdge", "properties")
	assert.False(t, ok, "friends carries no properties")

	assert.True(t, typer.IsObject("MovieEdge"))
	assert.False(t, typer.IsObject("String"))
}
