package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileCUE parses a CUE value into a Definition.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is the schema root, holding "entity" and optional "properties"
// structs:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`entity: Person: attribute: name: "String!"`)
//	def, err := CompileCUE(v)
func CompileCUE(v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &Definition{}

	entitiesVal := v.LookupPath(cue.ParsePath("entity"))
	if !entitiesVal.Exists() {
		return nil, &LoadError{
			Code:    ErrMissingField,
			Message: "entity: at least one entity is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := entitiesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		entity, err := CompileEntity(iter.Value())
		if err != nil {
			return nil, err
		}
		def.Entities = append(def.Entities, entity)
	}

	propsVal := v.LookupPath(cue.ParsePath("properties"))
	if propsVal.Exists() {
		iter, err := propsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			attrs, err := parseAttributes(iter.Value())
			if err != nil {
				return nil, err
			}
			def.Properties = append(def.Properties, PropertiesDefinition{
				Name:       iter.Label(),
				Attributes: attrs,
			})
		}
	}

	return def, nil
}

// CompileEntity parses one entity struct. The entity name is taken from the
// struct label, e.g. the value at path "entity.Movie".
func CompileEntity(v cue.Value) (EntityDefinition, error) {
	var entity EntityDefinition
	if err := v.Err(); err != nil {
		return entity, formatCUEError(err)
	}

	// Parse entity name from struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		entity.Name = labels[len(labels)-1].String()
	}

	var err error
	if entity.Plural, err = optionalString(v, "plural"); err != nil {
		return entity, err
	}
	if entity.GlobalID, err = optionalString(v, "globalId"); err != nil {
		return entity, err
	}

	attrVal := v.LookupPath(cue.ParsePath("attribute"))
	if attrVal.Exists() {
		entity.Attributes, err = parseAttributes(attrVal)
		if err != nil {
			return entity, err
		}
	}

	entity.Relationships, err = parseRelationships(v)
	if err != nil {
		return entity, err
	}

	return entity, nil
}

// parseAttributes reads a struct of name: "Type" pairs in declaration order.
func parseAttributes(v cue.Value) ([]AttributeDefinition, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var attrs []AttributeDefinition
	for iter.Next() {
		typeStr, err := iter.Value().String()
		if err != nil {
			return nil, &LoadError{
				Code:    ErrInvalidType,
				Message: fmt.Sprintf("attribute %q: type must be a string such as \"String!\"", iter.Label()),
				Pos:     iter.Value().Pos(),
			}
		}
		attrs = append(attrs, AttributeDefinition{Name: iter.Label(), Type: typeStr})
	}
	return attrs, nil
}

// parseRelationships extracts relationship definitions from an entity.
func parseRelationships(v cue.Value) ([]RelationshipDefinition, error) {
	relVal := v.LookupPath(cue.ParsePath("relationship"))
	if !relVal.Exists() {
		return nil, nil // relationships are optional
	}

	iter, err := relVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var rels []RelationshipDefinition
	for iter.Next() {
		name := iter.Label()
		rv := iter.Value()

		rel := RelationshipDefinition{Name: name}
		for _, f := range []struct {
			key      string
			dst      *string
			required bool
		}{
			{"type", &rel.Type, true},
			{"direction", &rel.Direction, true},
			{"target", &rel.Target, true},
			{"properties", &rel.Properties, false},
		} {
			s, err := optionalString(rv, f.key)
			if err != nil {
				return nil, err
			}
			if s == "" && f.required {
				return nil, &LoadError{
					Code:    ErrMissingField,
					Message: fmt.Sprintf("relationship.%s.%s is required", name, f.key),
					Pos:     rv.Pos(),
				}
			}
			*f.dst = s
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

func optionalString(v cue.Value, key string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(key))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// LoadError is a schema loading error with source position.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &LoadError{
			Code:    ErrCodeBuildFailed,
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
