package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResolvesModel(t *testing.T) {
	m, err := Build(validDefinition())
	require.NoError(t, err)

	movie := m.Entity("Movie")
	require.NotNil(t, movie)
	assert.Equal(t, "movies", movie.Plural)
	require.NotNil(t, movie.GlobalID)
	assert.Equal(t, "dbId", movie.GlobalID.Name)
	assert.Same(t, movie.FindAttribute("dbId"), movie.GlobalID)

	assert.True(t, movie.HasAttribute("title"))
	assert.False(t, movie.HasAttribute("actors"), "relationships are not attributes")
	assert.Nil(t, movie.FindAttribute("nickname"))

	location := movie.FindAttribute("location")
	require.NotNil(t, location)
	assert.Equal(t, KindPoint, location.Kind())

	actors := movie.FindRelationship("actors")
	require.NotNil(t, actors)
	assert.Same(t, m.Entity("Person"), actors.Target)
	assert.Same(t, movie, actors.Source)
	assert.Equal(t, DirectionIn, actors.Direction)
	assert.True(t, actors.HasProperties())
	assert.True(t, actors.HasAttribute("screenTime"))
	assert.False(t, actors.HasAttribute("name"))

	assert.Nil(t, movie.FindRelationship("title"))
}

func TestBuildLookups(t *testing.T) {
	m := MustBuild(validDefinition())

	assert.Same(t, m.Entity("Person"), m.EntityForRootField("people"))
	assert.Same(t, m.Entity("Movie"), m.EntityForRootField("movies"))
	assert.Nil(t, m.EntityForRootField("persons"))
	assert.Nil(t, m.Entity("Genre"))

	require.Len(t, m.Entities(), 2)
	assert.Equal(t, "Movie", m.Entities()[0].Name)
	assert.Equal(t, "Person", m.Entities()[1].Name)

	global := m.GlobalNodeEntities()
	require.Len(t, global, 1)
	assert.Equal(t, "Movie", global[0].Name)

	assert.Equal(t, "Movie", m.Definition().Entities[0].Name)
}

func TestBuildRelationshipWithoutProperties(t *testing.T) {
	def := validDefinition()
	def.Entities[1].Relationships = []RelationshipDefinition{
		{Name: "friends", Type: "FRIENDS_WITH", Direction: "OUT", Target: "Person"},
	}
	m := MustBuild(def)

	friends := m.Entity("Person").FindRelationship("friends")
	require.NotNil(t, friends)
	assert.False(t, friends.HasProperties())
	assert.Empty(t, friends.Attributes())
	assert.Same(t, m.Entity("Person"), friends.Target)
}

func TestBuildInvalid(t *testing.T) {
	def := validDefinition()
	def.Entities[0].Relationships[0].Target = "Actor"

	_, err := Build(def)
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, ErrUnknownTarget, verrs[0].Code)
}

func TestOwnerSealed(t *testing.T) {
	var _ Owner = (*Entity)(nil)
	var _ Owner = (*Relationship)(nil)
}
