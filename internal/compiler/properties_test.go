package compiler

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/roach88/resolvetree/internal/queryir"
	"github.com/roach88/resolvetree/internal/schema"
	"github.com/roach88/resolvetree/internal/selection"
	"github.com/roach88/resolvetree/internal/testutil"
	"github.com/roach88/resolvetree/internal/typenames"
	"github.com/roach88/resolvetree/internal/value"
)

// peopleRead builds the selection tree people { connection { edges { node { ... } } } }
// around the given node fields.
func peopleRead(nodeFields ...*selection.Field) *selection.Field {
	names := typenames.For(testutil.MoviesModel().Entity("Person"))
	return &selection.Field{
		Name:  "people",
		Alias: "people",
		Fields: map[string]selection.Bucket{names.ConnectionOperation: {{
			Name:  "connection",
			Alias: "connection",
			Fields: map[string]selection.Bucket{names.Connection: {{
				Name:  "edges",
				Alias: "edges",
				Fields: map[string]selection.Bucket{names.Edge: {{
					Name:   "node",
					Alias:  "node",
					Fields: map[string]selection.Bucket{names.Node: nodeFields},
				}}},
			}}},
		}}},
	}
}

func isPersonField(p *schema.Entity, name string) bool {
	return p.HasAttribute(name) || p.FindRelationship(name) != nil ||
		(name == schema.GlobalIDField && p.GlobalID != nil)
}

func TestCompilerProperties(t *testing.T) {
	model := testutil.MoviesModel()
	person := model.Entity("Person")

	var attrNames []any
	for _, a := range person.Attributes() {
		attrNames = append(attrNames, a.Name)
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	// Rejection completeness: any name that is not a field of Person is
	// rejected, never dropped.
	properties.Property("unknown fields are rejected", prop.ForAll(
		func(name string) bool {
			field := peopleRead(
				&selection.Field{Name: "name", Alias: "name"},
				&selection.Field{Name: name, Alias: name},
			)
			op, err := ParseOperation(field, person)
			ufe, ok := err.(*UnknownFieldError)
			return op == nil && ok && ufe.Field == name && ufe.Owner == "Person"
		},
		gen.Identifier().SuchThat(func(s string) bool { return !isPersonField(person, s) }),
	))

	// Sort validation: only ASC and DESC are directions.
	properties.Property("invalid directions are rejected", prop.ForAll(
		func(dir string) bool {
			args := value.Object{"sort": value.Object{"node": value.Object{"name": value.String(dir)}}}
			_, err := DecodeConnectionArgs(args, person, nil)
			e, ok := err.(*InvalidSortDirectionError)
			return ok && e.Direction == dir && e.Field == "name"
		},
		gen.AnyString().SuchThat(func(s string) bool { return s != "ASC" && s != "DESC" }),
	))

	// Sort validation: keys outside Person's attributes are rejected.
	properties.Property("invalid sort fields are rejected", prop.ForAll(
		func(name string) bool {
			args := value.Object{"sort": value.Object{"node": value.Object{name: value.Enum("ASC")}}}
			_, err := DecodeConnectionArgs(args, person, nil)
			e, ok := err.(*InvalidSortFieldError)
			return ok && e.Field == name
		},
		gen.Identifier().SuchThat(func(s string) bool { return !person.HasAttribute(s) }),
	))

	// Round-trip shape: field map keys are exactly the requested aliases.
	properties.Property("field map keys are the requested aliases", prop.ForAll(
		func(picked []string) bool {
			var fields []*selection.Field
			var want []string
			for i, name := range picked {
				alias := name
				if i%2 == 1 {
					alias = name + "Alias"
				}
				if slices.Contains(want, alias) {
					continue
				}
				fields = append(fields, &selection.Field{Name: name, Alias: alias})
				want = append(want, alias)
			}

			op, err := ParseOperation(peopleRead(fields...), person)
			if err != nil {
				return false
			}
			var got []string
			for key := range op.Connection.Edges.Node.Fields {
				got = append(got, key)
			}
			slices.Sort(got)
			slices.Sort(want)
			return slices.Equal(got, want)
		},
		gen.SliceOf(gen.IntRange(0, len(attrNames)-1).Map(func(i int) string { return attrNames[i].(string) })),
	))

	// Idempotence: compiling twice yields identical trees.
	properties.Property("compilation is idempotent", prop.ForAll(
		func(picked []string) bool {
			var fields []*selection.Field
			for _, name := range picked {
				fields = append(fields, &selection.Field{Name: name, Alias: name})
			}
			a, errA := ParseOperation(peopleRead(fields...), person)
			b, errB := ParseOperation(peopleRead(fields...), person)
			return errA == nil && errB == nil && cmp.Equal(a, b)
		},
		gen.SliceOf(gen.IntRange(0, len(attrNames)-1).Map(func(i int) string { return attrNames[i].(string) })),
	))

	properties.TestingRun(t)
}

func TestGeoComponentsIndependentlyOptional(t *testing.T) {
	movie := testutil.MoviesModel().Entity("Movie")
	components := []string{"longitude", "latitude", "height", "crs", "srid"}

	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("only requested components are set", prop.ForAll(
		func(mask uint8) bool {
			var bucket selection.Bucket
			requested := make(map[string]bool)
			for i, c := range components {
				if mask&(1<<i) != 0 {
					bucket = append(bucket, &selection.Field{Name: c, Alias: c})
					requested[c] = true
				}
			}
			field := &selection.Field{Name: "location", Alias: "location",
				Fields: map[string]selection.Bucket{schema.PointType: bucket}}

			leaf, _, err := ClassifyField(field, movie)
			if err != nil {
				return false
			}
			pf := leaf.(*queryir.PointField)
			slots := map[string]*queryir.ScalarField{
				"longitude": pf.Longitude, "latitude": pf.Latitude, "height": pf.Height,
				"crs": pf.CRS, "srid": pf.SRID,
			}
			for c, slot := range slots {
				if requested[c] != (slot != nil) {
					return false
				}
			}
			return true
		},
		gen.UInt8Range(0, 31),
	))

	properties.TestingRun(t)
}
