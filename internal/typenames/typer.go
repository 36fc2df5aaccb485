package typenames

import "github.com/roach88/resolvetree/internal/schema"

// Typer resolves the output type of a field selected under a parent type.
// The selection adapter uses it to key child buckets by type name.
type Typer struct {
	fields map[string]map[string]string
}

// NewTyper indexes every selectable field of the read API built from m.
func NewTyper(m *schema.Model) *Typer {
	t := &Typer{fields: make(map[string]map[string]string)}

	t.add(Query, NodeField, NodeInterface)
	t.add(NodeInterface, schema.GlobalIDField, ID)
	for _, k := range []schema.Kind{schema.KindPoint, schema.KindCartesianPoint} {
		name := schema.PointType
		if k == schema.KindCartesianPoint {
			name = schema.CartesianPointType
		}
		for _, sf := range k.Subfields() {
			t.add(name, sf.Name, sf.Type)
		}
	}

	for _, e := range m.Entities() {
		names := For(e)
		t.add(Query, e.Plural, names.ConnectionOperation)
		t.addConnection(names)

		if e.GlobalID != nil {
			t.add(e.Name, schema.GlobalIDField, ID)
		}
		for _, a := range e.Attributes() {
			t.add(e.Name, a.Name, a.Type.Name)
		}
		for _, r := range e.Relationships() {
			rn := For(r)
			t.add(e.Name, r.Name, rn.ConnectionOperation)
			t.addConnection(rn)
			if rn.HasProperties() {
				t.add(rn.Edge, PropertiesField, rn.Properties)
				for _, a := range r.Attributes() {
					t.add(rn.Properties, a.Name, a.Type.Name)
				}
			}
		}
	}
	return t
}

func (t *Typer) addConnection(n Names) {
	t.add(n.ConnectionOperation, ConnectionField, n.Connection)
	t.add(n.Connection, EdgesField, n.Edge)
	t.add(n.Connection, PageInfoField, PageInfo)
	t.add(n.Edge, NodeField, n.Node)
	t.add(n.Edge, CursorField, String)
}

func (t *Typer) add(parent, field, typ string) {
	m, ok := t.fields[parent]
	if !ok {
		m = make(map[string]string)
		t.fields[parent] = m
	}
	m[field] = typ
}

// FieldType returns the type name of field on parent. The second result is
// false when parent has no such field.
func (t *Typer) FieldType(parent, field string) (string, bool) {
	typ, ok := t.fields[parent][field]
	return typ, ok
}

// IsObject reports whether typeName has selectable fields.
func (t *Typer) IsObject(typeName string) bool {
	_, ok := t.fields[typeName]
	return ok
}
