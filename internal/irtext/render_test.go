package irtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/resolvetree/internal/queryir"
	"github.com/roach88/resolvetree/internal/value"
)

func TestRender(t *testing.T) {
	first := int64(5)
	op := &queryir.ReadOperation{
		Alias:  "movies",
		Target: "Movie",
		Where: &queryir.WhereFilter{
			Predicates: value.Object{"title": value.Object{"equals": value.String("Matrix")}},
		},
		Connection: &queryir.Connection{
			Alias: "connection",
			Args: queryir.ConnectionArgs{
				First: &first,
				Sort:  []queryir.SortEdge{{Node: []queryir.SortField{{Field: "title", Direction: queryir.Asc}}}},
			},
			Edges: &queryir.Edge{
				Alias: "edges",
				Node: &queryir.Node{
					Alias: "node",
					Fields: map[string]queryir.NodeField{
						"title": &queryir.ScalarField{Name: "title", Alias: "title"},
						"id":    &queryir.ScalarField{Name: "dbId", Alias: "id", GlobalID: true},
						"location": &queryir.PointField{
							Name:      "location",
							Alias:     "location",
							Longitude: &queryir.ScalarField{Name: "longitude", Alias: "lon"},
							SRID:      &queryir.ScalarField{Name: "srid", Alias: "srid"},
						},
						"cast": &queryir.ReadOperation{
							Alias:  "cast",
							Target: "Person",
							Relationship: &queryir.RelationshipRef{
								Source: "Movie", Name: "actors", Type: "ACTED_IN", Direction: "IN", Properties: "ActedIn",
							},
							Connection: &queryir.Connection{
								Alias: "connection",
								Args: queryir.ConnectionArgs{Sort: []queryir.SortEdge{
									{Properties: []queryir.SortField{{Field: "screenTime", Direction: queryir.Desc}}},
								}},
								Edges: &queryir.Edge{
									Alias: "edges",
									Node: &queryir.Node{Alias: "node", Fields: map[string]queryir.NodeField{
										"name": &queryir.ScalarField{Name: "name", Alias: "name"},
									}},
									Properties: &queryir.EdgeProperties{Alias: "properties", Fields: map[string]queryir.LeafField{
										"screenTime": &queryir.ScalarField{Name: "screenTime", Alias: "screenTime"},
									}},
								},
							},
						},
					},
				},
			},
		},
	}

	got, err := Render(op)
	require.NoError(t, err)

	want := `movies: read Movie
  where {"predicates":{"title":{"equals":"Matrix"}}}
  connection first=5 sort=[{node.title ASC}]
    edges
      node
        cast: read Person via Movie.actors [ACTED_IN IN] properties ActedIn
          connection sort=[{properties.screenTime DESC}]
            edges
              node
                name
              properties
                screenTime
        id <- dbId (global id)
        location: Point {lon <- longitude, srid}
        title
`
	assert.Equal(t, want, got)
}

func TestRenderWithoutConnection(t *testing.T) {
	got, err := Render(&queryir.ReadOperation{Alias: "movies", Target: "Movie"})
	require.NoError(t, err)
	assert.Equal(t, "movies: read Movie\n", got)
}

func TestRenderScalarArgsAndAfter(t *testing.T) {
	after := "YXJyYXljb25uZWN0aW9uOjA="
	op := &queryir.ReadOperation{
		Alias:  "people",
		Target: "Person",
		Connection: &queryir.Connection{
			Alias: "c",
			Args:  queryir.ConnectionArgs{After: &after},
			Edges: &queryir.Edge{Alias: "edges", Node: &queryir.Node{Alias: "n", Fields: map[string]queryir.NodeField{
				"name":     &queryir.ScalarField{Name: "name", Alias: "name", Args: value.Object{"format": value.Enum("UPPER")}},
				"position": &queryir.CartesianPointField{Name: "position", Alias: "position"},
			}}},
		},
	}

	got, err := (&Renderer{Indent: "> "}).Render(op)
	require.NoError(t, err)
	assert.Equal(t, `> people: read Person
>   c after="YXJyYXljb25uZWN0aW9uOjA="
>     edges
>       n
>         name args={"format":{"$enum":"UPPER"}}
>         position: CartesianPoint {}
`, got)
}

func TestRenderNil(t *testing.T) {
	_, err := Render(nil)
	assert.Error(t, err)
}
