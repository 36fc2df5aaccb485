package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefinition() *Definition {
	return &Definition{
		Entities: []EntityDefinition{
			{
				Name:     "Movie",
				GlobalID: "dbId",
				Attributes: []AttributeDefinition{
					{Name: "dbId", Type: "ID!"},
					{Name: "title", Type: "String!"},
					{Name: "location", Type: "Point"},
				},
				Relationships: []RelationshipDefinition{
					{Name: "actors", Type: "ACTED_IN", Direction: "IN", Target: "Person", Properties: "ActedIn"},
				},
			},
			{
				Name:       "Person",
				Plural:     "people",
				Attributes: []AttributeDefinition{{Name: "name", Type: "String!"}},
			},
		},
		Properties: []PropertiesDefinition{
			{Name: "ActedIn", Attributes: []AttributeDefinition{{Name: "screenTime", Type: "Int"}}},
		},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateValidDefinition(t *testing.T) {
	assert.Empty(t, Validate(validDefinition()))
}

func TestValidateNil(t *testing.T) {
	errs := Validate(nil)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsupportedDefinition, errs[0].Code)
}

func TestValidateStructural(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
		code   string
		field  string
	}{
		{
			name:   "no entities",
			mutate: func(d *Definition) { d.Entities = []EntityDefinition{} },
			code:   ErrMissingField,
			field:  "entities",
		},
		{
			name:   "empty entity name",
			mutate: func(d *Definition) { d.Entities[1].Name = "" },
			code:   ErrMissingField,
			field:  "entities[1].name",
		},
		{
			name:   "invalid attribute name",
			mutate: func(d *Definition) { d.Entities[1].Attributes[0].Name = "full-name" },
			code:   ErrInvalidName,
			field:  "entities[1].attributes[0].name",
		},
		{
			name:   "invalid type string",
			mutate: func(d *Definition) { d.Entities[1].Attributes[0].Type = "[String" },
			code:   ErrInvalidType,
			field:  "entities[1].attributes[0].type",
		},
		{
			name:   "invalid direction",
			mutate: func(d *Definition) { d.Entities[0].Relationships[0].Direction = "in" },
			code:   ErrInvalidDirection,
			field:  "entities[0].relationships[0].direction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDefinition()
			tt.mutate(def)

			errs := Validate(def)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateSemantic(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
		code   string
	}{
		{
			name: "duplicate entity",
			mutate: func(d *Definition) {
				d.Entities = append(d.Entities, EntityDefinition{Name: "Movie", Plural: "films"})
			},
			code: ErrDuplicateName,
		},
		{
			name:   "properties type shares entity name",
			mutate: func(d *Definition) { d.Properties[0].Name = "Person"; d.Entities[0].Relationships[0].Properties = "Person" },
			code:   ErrDuplicateName,
		},
		{
			name: "duplicate attribute",
			mutate: func(d *Definition) {
				d.Entities[1].Attributes = append(d.Entities[1].Attributes, AttributeDefinition{Name: "name", Type: "String"})
			},
			code: ErrDuplicateName,
		},
		{
			name: "relationship shadows attribute",
			mutate: func(d *Definition) {
				d.Entities[0].Relationships[0].Name = "title"
			},
			code: ErrDuplicateName,
		},
		{
			name:   "unknown target",
			mutate: func(d *Definition) { d.Entities[0].Relationships[0].Target = "Actor" },
			code:   ErrUnknownTarget,
		},
		{
			name:   "unknown properties",
			mutate: func(d *Definition) { d.Entities[0].Relationships[0].Properties = "Role" },
			code:   ErrUnknownProperties,
		},
		{
			name:   "global id not an attribute",
			mutate: func(d *Definition) { d.Entities[0].GlobalID = "uuid" },
			code:   ErrInvalidGlobalID,
		},
		{
			name:   "global id is geospatial",
			mutate: func(d *Definition) { d.Entities[0].GlobalID = "location" },
			code:   ErrInvalidGlobalID,
		},
		{
			name: "id attribute shadowed by global id alias",
			mutate: func(d *Definition) {
				d.Entities[0].Attributes = append(d.Entities[0].Attributes, AttributeDefinition{Name: "id", Type: "ID"})
			},
			code: ErrInvalidGlobalID,
		},
		{
			name:   "reserved entity name",
			mutate: func(d *Definition) { d.Entities[1].Name = "PageInfo"; d.Entities[0].Relationships[0].Target = "PageInfo" },
			code:   ErrReservedName,
		},
		{
			name:   "root field collision",
			mutate: func(d *Definition) { d.Entities[1].Plural = "movies" },
			code:   ErrRootFieldCollision,
		},
		{
			name:   "root field node is reserved",
			mutate: func(d *Definition) { d.Entities[1].Plural = "node" },
			code:   ErrRootFieldCollision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDefinition()
			tt.mutate(def)

			errs := Validate(def)
			assert.Contains(t, codes(errs), tt.code, "errors: %v", errs)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	def := validDefinition()
	def.Entities[0].Relationships[0].Target = "Actor"
	def.Entities[0].Relationships[0].Properties = "Role"
	def.Entities[0].GlobalID = "uuid"

	errs := Validate(def)
	assert.ElementsMatch(t, []string{ErrUnknownTarget, ErrUnknownProperties, ErrInvalidGlobalID}, codes(errs))
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "entities[0].name", Message: "is required", Code: ErrMissingField}
	assert.Equal(t, "[E101] entities[0].name: is required", err.Error())

	all := ValidationErrors{err, {Field: "x", Message: "y", Code: ErrInvalidName}}
	assert.Equal(t, "[E101] entities[0].name: is required; [E102] x: y", all.Error())
}

func TestRootField(t *testing.T) {
	assert.Equal(t, "movies", RootField(EntityDefinition{Name: "Movie"}))
	assert.Equal(t, "actedIns", RootField(EntityDefinition{Name: "ActedIn"}))
	assert.Equal(t, "people", RootField(EntityDefinition{Name: "Person", Plural: "people"}))
}
