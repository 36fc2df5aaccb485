package schema

// Direction is the traversal direction of a relationship from its source.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Attribute is a named, typed property of an entity or relationship.
type Attribute struct {
	Name string
	Type TypeRef
}

// Kind returns the element kind of the attribute's type.
func (a *Attribute) Kind() Kind {
	return a.Type.Kind()
}

// Owner is a sealed sum of *Entity and *Relationship: anything fields can be
// selected on. Only this package implements it.
type Owner interface {
	owner() // Sealed - only Entity and Relationship implement it

	// FindAttribute returns the attribute with the given name, or nil.
	FindAttribute(name string) *Attribute

	// HasAttribute reports whether an attribute with the given name exists.
	HasAttribute(name string) bool
}

// attributeSet is the ordered attribute storage shared by both owners.
type attributeSet struct {
	attributes []*Attribute
	byName     map[string]*Attribute
}

func newAttributeSet(defs []AttributeDefinition) (attributeSet, error) {
	set := attributeSet{
		attributes: make([]*Attribute, 0, len(defs)),
		byName:     make(map[string]*Attribute, len(defs)),
	}
	for _, def := range defs {
		ref, err := ParseTypeRef(def.Type)
		if err != nil {
			return attributeSet{}, err
		}
		attr := &Attribute{Name: def.Name, Type: ref}
		set.attributes = append(set.attributes, attr)
		set.byName[def.Name] = attr
	}
	return set, nil
}

func (s *attributeSet) FindAttribute(name string) *Attribute {
	return s.byName[name]
}

func (s *attributeSet) HasAttribute(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Attributes returns attributes in declaration order.
func (s *attributeSet) Attributes() []*Attribute {
	return s.attributes
}

// Entity is a graph node type.
type Entity struct {
	Name string

	// Plural is the root query field that reads this entity.
	Plural string

	// GlobalID is the attribute exposed through the "id" alias and the node
	// lookup, or nil when the entity is not globally addressable.
	GlobalID *Attribute

	attributeSet
	relationships []*Relationship
	relByName     map[string]*Relationship
}

func (*Entity) owner() {}

// FindRelationship returns the relationship with the given name, or nil.
func (e *Entity) FindRelationship(name string) *Relationship {
	return e.relByName[name]
}

// Relationships returns relationships in declaration order.
func (e *Entity) Relationships() []*Relationship {
	return e.relationships
}

// Relationship is a directed edge type from Source to Target, optionally
// carrying its own attributes through a declared properties type.
type Relationship struct {
	Name      string
	Type      string
	Direction Direction
	Source    *Entity
	Target    *Entity

	// PropertiesType is the declared properties type name, empty if none.
	PropertiesType string

	attributeSet
}

func (*Relationship) owner() {}

// HasProperties reports whether the relationship declares edge properties.
func (r *Relationship) HasProperties() bool {
	return r.PropertiesType != ""
}

// Model is a built, validated schema.
type Model struct {
	def         Definition
	entities    []*Entity
	byName      map[string]*Entity
	byRootField map[string]*Entity
}

// Entity returns the entity with the given name, or nil.
func (m *Model) Entity(name string) *Entity {
	return m.byName[name]
}

// Entities returns entities in declaration order.
func (m *Model) Entities() []*Entity {
	return m.entities
}

// EntityForRootField returns the entity read by a root query field, or nil.
func (m *Model) EntityForRootField(field string) *Entity {
	return m.byRootField[field]
}

// GlobalNodeEntities returns the entities that declare a global identifier,
// in declaration order. These are the candidates of a node lookup.
func (m *Model) GlobalNodeEntities() []*Entity {
	var out []*Entity
	for _, e := range m.entities {
		if e.GlobalID != nil {
			out = append(out, e)
		}
	}
	return out
}

// Definition returns the definition the model was built from.
func (m *Model) Definition() Definition {
	return m.def
}
