package compiler

import (
	"slices"

	"github.com/roach88/resolvetree/internal/queryir"
	"github.com/roach88/resolvetree/internal/schema"
	"github.com/roach88/resolvetree/internal/selection"
)

// ClassifyField decides what a field selected on owner is.
//
// Exactly one of the results is set:
//   - a leaf for an attribute (or the "id" alias of an entity's global id),
//   - the relationship for a traversal, which the caller recurses into,
//   - an *UnknownFieldError otherwise.
//
// Relationships are only traversable from entities. On a relationship owner
// (edge properties) every non-attribute name is unknown.
func ClassifyField(field *selection.Field, owner schema.Owner) (queryir.LeafField, *schema.Relationship, error) {
	entity, isEntity := owner.(*schema.Entity)

	if isEntity && field.Name == schema.GlobalIDField && entity.GlobalID != nil {
		if err := rejectForeign(field, nil, nil); err != nil {
			return nil, nil, err
		}
		return &queryir.ScalarField{
			Name:     entity.GlobalID.Name,
			Alias:    field.Alias,
			Args:     field.Args,
			GlobalID: true,
		}, nil, nil
	}

	if attr := owner.FindAttribute(field.Name); attr != nil {
		leaf, err := classifyAttribute(field, attr)
		return leaf, nil, err
	}

	if isEntity {
		if rel := entity.FindRelationship(field.Name); rel != nil {
			return nil, rel, nil
		}
	}

	return nil, nil, &UnknownFieldError{Field: field.Name, Owner: ownerName(owner)}
}

func classifyAttribute(field *selection.Field, attr *schema.Attribute) (queryir.LeafField, error) {
	switch attr.Kind() {
	case schema.KindPoint:
		return pointField(field)
	case schema.KindCartesianPoint:
		return cartesianPointField(field)
	default:
		if err := rejectForeign(field, nil, nil); err != nil {
			return nil, err
		}
		return &queryir.ScalarField{Name: attr.Name, Alias: field.Alias, Args: field.Args}, nil
	}
}

// pointField resolves the requested components of a Point. Components the
// client did not select stay nil.
func pointField(field *selection.Field) (queryir.LeafField, error) {
	pf := &queryir.PointField{Name: field.Name, Alias: field.Alias}
	// Ordered as schema.PointSubfields.
	slots := []**queryir.ScalarField{&pf.Longitude, &pf.Latitude, &pf.Height, &pf.CRS, &pf.SRID}
	if err := fillComponents(field, schema.PointType, schema.PointSubfields, slots); err != nil {
		return nil, err
	}
	return pf, nil
}

// cartesianPointField resolves the requested components of a CartesianPoint.
func cartesianPointField(field *selection.Field) (queryir.LeafField, error) {
	cf := &queryir.CartesianPointField{Name: field.Name, Alias: field.Alias}
	// Ordered as schema.CartesianPointSubfields.
	slots := []**queryir.ScalarField{&cf.X, &cf.Y, &cf.Z, &cf.CRS, &cf.SRID}
	if err := fillComponents(field, schema.CartesianPointType, schema.CartesianPointSubfields, slots); err != nil {
		return nil, err
	}
	return cf, nil
}

// fillComponents stores each selected component of a spatial field in the
// slot at the same index as its subfield.
func fillComponents(field *selection.Field, typeName string, subfields []schema.Subfield, slots []**queryir.ScalarField) error {
	bucket, err := typedBucket(field, typeName)
	if err != nil {
		return err
	}
	for _, sub := range bucket {
		i := slices.IndexFunc(subfields, func(s schema.Subfield) bool { return s.Name == sub.Name })
		if i < 0 {
			return &UnknownFieldError{Field: sub.Name, Owner: typeName}
		}
		if err := setComponent(slots[i], sub, typeName); err != nil {
			return err
		}
	}
	return nil
}

// setComponent fills a component slot. Selecting a component again under
// the same alias is a no-op; under another alias it is an error.
func setComponent(slot **queryir.ScalarField, sub *selection.Field, owner string) error {
	if prev := *slot; prev != nil {
		if prev.Alias == sub.Alias {
			return nil
		}
		return &DuplicateComponentError{
			Component: sub.Name,
			Owner:     owner,
			Aliases:   [2]string{prev.Alias, sub.Alias},
		}
	}
	*slot = &queryir.ScalarField{Name: sub.Name, Alias: sub.Alias, Args: sub.Args}
	return nil
}

// ownerName is the client-facing type name of an owner: the entity name, or
// the properties type of a relationship.
func ownerName(owner schema.Owner) string {
	switch o := owner.(type) {
	case *schema.Entity:
		return o.Name
	case *schema.Relationship:
		if o.PropertiesType != "" {
			return o.PropertiesType
		}
		return o.Source.Name + "." + o.Name
	default:
		return ""
	}
}
