package schema

import "fmt"

// Build validates a definition and resolves it into a Model: relationship
// targets become entity pointers, properties types become relationship
// attribute sets and global id names become typed attributes.
func Build(def *Definition) (*Model, error) {
	if errs := Validate(def); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	m := &Model{
		def:         *def,
		entities:    make([]*Entity, 0, len(def.Entities)),
		byName:      make(map[string]*Entity, len(def.Entities)),
		byRootField: make(map[string]*Entity, len(def.Entities)),
	}

	// First pass: entities and their attributes, so that targets can be
	// resolved regardless of declaration order.
	for _, ed := range def.Entities {
		attrs, err := newAttributeSet(ed.Attributes)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", ed.Name, err)
		}
		e := &Entity{
			Name:         ed.Name,
			Plural:       RootField(ed),
			attributeSet: attrs,
			relByName:    make(map[string]*Relationship, len(ed.Relationships)),
		}
		if ed.GlobalID != "" {
			e.GlobalID = e.FindAttribute(ed.GlobalID)
		}
		m.entities = append(m.entities, e)
		m.byName[e.Name] = e
		m.byRootField[e.Plural] = e
	}

	// Second pass: relationships.
	for i, ed := range def.Entities {
		source := m.entities[i]
		for _, rd := range ed.Relationships {
			rel := &Relationship{
				Name:           rd.Name,
				Type:           rd.Type,
				Direction:      Direction(rd.Direction),
				Source:         source,
				Target:         m.byName[rd.Target],
				PropertiesType: rd.Properties,
			}
			var propAttrs []AttributeDefinition
			if rd.Properties != "" {
				propAttrs = def.findProperties(rd.Properties).Attributes
			}
			attrs, err := newAttributeSet(propAttrs)
			if err != nil {
				return nil, fmt.Errorf("relationship %s.%s: %w", source.Name, rd.Name, err)
			}
			rel.attributeSet = attrs

			source.relationships = append(source.relationships, rel)
			source.relByName[rel.Name] = rel
		}
	}

	return m, nil
}

// MustBuild is like Build but panics on error.
// Use only in tests or with definitions known to be valid.
func MustBuild(def *Definition) *Model {
	m, err := Build(def)
	if err != nil {
		panic(err)
	}
	return m
}
