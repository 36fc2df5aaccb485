package compiler

import (
	"fmt"

	"github.com/roach88/resolvetree/internal/queryir"
	"github.com/roach88/resolvetree/internal/schema"
	"github.com/roach88/resolvetree/internal/selection"
	"github.com/roach88/resolvetree/internal/typenames"
	"github.com/roach88/resolvetree/internal/value"
)

// Predicate operator used to pin the global identifier.
const opEquals = "equals"

// ParseGlobalNodeOperation compiles a node lookup with the default Compiler.
func ParseGlobalNodeOperation(field *selection.Field, entity *schema.Entity, rawID string) (*queryir.ReadOperation, error) {
	return defaultCompiler.ParseGlobalNodeOperation(field, entity, rawID)
}

// ParseGlobalNodeOperation compiles field, a node(id:) selection already
// resolved to entity, into a single-result ReadOperation.
//
// rawID is the decoded identifier value. The read is pinned to it through
// the entity's global id attribute and limited to one edge. Fields may be
// selected through the generic Node interface or the concrete entity type;
// when both select the same response key the entity's selection wins.
// Fragments on other Node entities registered through WithModel are
// skipped. Any other type condition is an *UnknownFieldError.
func (c *Compiler) ParseGlobalNodeOperation(field *selection.Field, entity *schema.Entity, rawID string) (*queryir.ReadOperation, error) {
	if entity.GlobalID == nil {
		return nil, &InvalidArgumentError{
			Argument: schema.GlobalIDField,
			Message:  fmt.Sprintf("type %q is not globally addressable", entity.Name),
		}
	}

	p := c.rootParser(entity)
	if err := p.budget.enter(p.depth); err != nil {
		return nil, err
	}

	bucket, err := p.nodeBucket(field, func(typeName string) bool {
		return c.nodeTypes[typeName]
	})
	if err != nil {
		return nil, err
	}
	node, err := p.node(typenames.NodeField, bucket)
	if err != nil {
		return nil, err
	}

	first := int64(1)
	op := p.read(field.Alias)
	op.Where = &queryir.WhereFilter{
		Predicates: value.Object{
			entity.GlobalID.Name: value.Object{opEquals: value.String(rawID)},
		},
	}
	op.Connection = &queryir.Connection{
		Alias: typenames.ConnectionField,
		Args:  queryir.ConnectionArgs{First: &first},
		Edges: &queryir.Edge{
			Alias: typenames.EdgesField,
			Node:  node,
		},
	}
	return op, nil
}
