package testutil

import "github.com/roach88/resolvetree/internal/schema"

// MoviesDefinition returns the movies schema used across package tests. It
// matches testdata/schema/movies.cue:
//
//	Movie  (global id dbId) title, released, tags, location: Point
//	       actors -> Person (ACTED_IN, IN, properties ActedIn)
//	       director -> Person (DIRECTED, IN)
//	Person (global id dbId, root field people) name, born, position: CartesianPoint
//	       movies -> Movie (ACTED_IN, OUT, properties ActedIn)
//	       friends -> Person (FRIENDS_WITH, OUT)
//	Genre  name
//	ActedIn screenTime: Int, role: String
//
// A fresh value is returned on every call so tests may mutate it.
func MoviesDefinition() *schema.Definition {
	return &schema.Definition{
		Entities: []schema.EntityDefinition{
			{
				Name:     "Movie",
				GlobalID: "dbId",
				Attributes: []schema.AttributeDefinition{
					{Name: "dbId", Type: "ID!"},
					{Name: "title", Type: "String!"},
					{Name: "released", Type: "Int"},
					{Name: "tags", Type: "[String!]"},
					{Name: "location", Type: "Point"},
				},
				Relationships: []schema.RelationshipDefinition{
					{Name: "actors", Type: "ACTED_IN", Direction: "IN", Target: "Person", Properties: "ActedIn"},
					{Name: "director", Type: "DIRECTED", Direction: "IN", Target: "Person"},
				},
			},
			{
				Name:     "Person",
				Plural:   "people",
				GlobalID: "dbId",
				Attributes: []schema.AttributeDefinition{
					{Name: "dbId", Type: "ID!"},
					{Name: "name", Type: "String!"},
					{Name: "born", Type: "Int"},
					{Name: "position", Type: "CartesianPoint"},
				},
				Relationships: []schema.RelationshipDefinition{
					{Name: "movies", Type: "ACTED_IN", Direction: "OUT", Target: "Movie", Properties: "ActedIn"},
					{Name: "friends", Type: "FRIENDS_WITH", Direction: "OUT", Target: "Person"},
				},
			},
			{
				Name:       "Genre",
				Attributes: []schema.AttributeDefinition{{Name: "name", Type: "String!"}},
			},
		},
		Properties: []schema.PropertiesDefinition{
			{
				Name: "ActedIn",
				Attributes: []schema.AttributeDefinition{
					{Name: "screenTime", Type: "Int"},
					{Name: "role", Type: "String"},
				},
			},
		},
	}
}

// MoviesModel builds MoviesDefinition. It panics if the fixture is invalid.
func MoviesModel() *schema.Model {
	return schema.MustBuild(MoviesDefinition())
}
