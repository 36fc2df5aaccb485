package compiler

import (
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/resolvetree/internal/queryir"
	"github.com/roach88/resolvetree/internal/schema"
	"github.com/roach88/resolvetree/internal/selection"
	"github.com/roach88/resolvetree/internal/typenames"
)

// Compiler turns selection trees into query IR.
//
// A Compiler holds only configuration. Every call builds its own parser
// state, so one Compiler may be used from many goroutines.
type Compiler struct {
	logger    *slog.Logger
	limits    Limits
	nodeTypes map[string]bool // Entities implementing Node
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger for debug events during descent.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLimits sets the per-compile limits.
func WithLimits(l Limits) Option {
	return func(c *Compiler) {
		c.limits = l
	}
}

// WithModel records the globally addressable entities of m. A node(id:)
// selection may then carry fragments on any of them; fragments on the
// entities other than the one resolved are skipped.
func WithModel(m *schema.Model) Option {
	return func(c *Compiler) {
		c.nodeTypes = make(map[string]bool)
		for _, e := range m.GlobalNodeEntities() {
			c.nodeTypes[e.Name] = true
		}
	}
}

// New creates a Compiler. Without options it logs nowhere and has no limits.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCompiler = New()

// ParseOperation compiles a root read of entity with the default Compiler.
func ParseOperation(field *selection.Field, entity *schema.Entity) (*queryir.ReadOperation, error) {
	return defaultCompiler.ParseOperation(field, entity)
}

// ParseOperation compiles field, a root selection reading entity, into a
// ReadOperation.
//
// A field without a "connection" child yields a ReadOperation whose
// Connection is nil. Every error is terminal: no partial IR is returned.
func (c *Compiler) ParseOperation(field *selection.Field, entity *schema.Entity) (*queryir.ReadOperation, error) {
	p := c.rootParser(entity)
	if err := p.budget.enter(p.depth); err != nil {
		return nil, err
	}
	return p.operation(field)
}

func (c *Compiler) rootParser(entity *schema.Entity) *parser {
	return &parser{
		logger: c.logger,
		budget: newBudget(c.limits),
		names:  typenames.For(entity),
		target: entity,
		depth:  1,
	}
}

// parser is scoped to one owner: the root entity, or a relationship being
// traversed. Descending into a relationship creates a new parser.
type parser struct {
	logger *slog.Logger
	budget *budget

	names  typenames.Names
	target *schema.Entity       // Entity whose fields node selections name
	rel    *schema.Relationship // Relationship in scope, nil at the root
	depth  int
}

// descend returns a parser scoped to rel, a relationship of p.target.
func (p *parser) descend(rel *schema.Relationship) (*parser, error) {
	child := &parser{
		logger: p.logger,
		budget: p.budget,
		names:  typenames.For(rel),
		target: rel.Target,
		rel:    rel,
		depth:  p.depth + 1,
	}
	p.logger.Debug("descending into relationship",
		"source", rel.Source.Name,
		"relationship", rel.Name,
		"target", rel.Target.Name,
		"depth", child.depth,
	)
	if err := p.budget.enter(child.depth); err != nil {
		return nil, err
	}
	return child, nil
}

func (p *parser) read(alias string) *queryir.ReadOperation {
	op := &queryir.ReadOperation{Alias: alias, Target: p.target.Name}
	if p.rel != nil {
		op.Relationship = &queryir.RelationshipRef{
			Source:     p.rel.Source.Name,
			Name:       p.rel.Name,
			Type:       p.rel.Type,
			Direction:  string(p.rel.Direction),
			Properties: p.rel.PropertiesType,
		}
	}
	return op
}

// operation handles the bucket of the connection operation type.
func (p *parser) operation(field *selection.Field) (*queryir.ReadOperation, error) {
	op := p.read(field.Alias)

	bucket, err := typedBucket(field, p.names.ConnectionOperation)
	if err != nil {
		return nil, err
	}
	if err := expectOnly(bucket, p.names.ConnectionOperation, typenames.ConnectionField); err != nil {
		return nil, err
	}
	connField := bucket.ByName(typenames.ConnectionField)
	if connField == nil {
		return op, nil
	}

	where, err := DecodeWhere(field.Args)
	if err != nil {
		return nil, err
	}
	op.Where = where

	conn, err := p.connection(connField)
	if err != nil {
		return nil, err
	}
	op.Connection = conn
	return op, nil
}

func (p *parser) connection(field *selection.Field) (*queryir.Connection, error) {
	args, err := DecodeConnectionArgs(field.Args, p.target, p.rel)
	if err != nil {
		return nil, err
	}
	conn := &queryir.Connection{Alias: field.Alias, Args: args}

	bucket, err := typedBucket(field, p.names.Connection)
	if err != nil {
		return nil, err
	}
	if err := expectOnly(bucket, p.names.Connection, typenames.EdgesField, typenames.PageInfoField); err != nil {
		return nil, err
	}
	if edgesField := bucket.ByName(typenames.EdgesField); edgesField != nil {
		edge, err := p.edges(edgesField)
		if err != nil {
			return nil, err
		}
		conn.Edges = edge
	}
	return conn, nil
}

func (p *parser) edges(field *selection.Field) (*queryir.Edge, error) {
	edge := &queryir.Edge{Alias: field.Alias}

	allowed := []string{typenames.NodeField, typenames.CursorField}
	if p.names.HasProperties() {
		allowed = append(allowed, typenames.PropertiesField)
	}
	bucket, err := typedBucket(field, p.names.Edge)
	if err != nil {
		return nil, err
	}
	if err := expectOnly(bucket, p.names.Edge, allowed...); err != nil {
		return nil, err
	}

	if nodeField := bucket.ByName(typenames.NodeField); nodeField != nil {
		nodeBucket, err := p.nodeBucket(nodeField, nil)
		if err != nil {
			return nil, err
		}
		node, err := p.node(nodeField.Alias, nodeBucket)
		if err != nil {
			return nil, err
		}
		edge.Node = node
	}

	if p.names.HasProperties() {
		if propsField := bucket.ByName(typenames.PropertiesField); propsField != nil {
			props, err := p.edgeProperties(propsField)
			if err != nil {
				return nil, err
			}
			edge.Properties = props
		}
	}
	return edge, nil
}

// node classifies every field selected on the target entity.
func (p *parser) node(alias string, bucket selection.Bucket) (*queryir.Node, error) {
	node := &queryir.Node{Alias: alias, Fields: make(map[string]queryir.NodeField, len(bucket))}
	for _, f := range bucket {
		if err := p.budget.field(); err != nil {
			return nil, err
		}
		leaf, rel, err := ClassifyField(f, p.target)
		if err != nil {
			return nil, err
		}
		if leaf != nil {
			node.Fields[f.Alias] = leaf
			continue
		}

		child, err := p.descend(rel)
		if err != nil {
			return nil, err
		}
		nested, err := child.operation(f)
		if err != nil {
			return nil, err
		}
		node.Fields[f.Alias] = nested
	}
	return node, nil
}

// edgeProperties classifies fields selected on the relationship's
// properties type. Only leaves are legal here.
func (p *parser) edgeProperties(field *selection.Field) (*queryir.EdgeProperties, error) {
	bucket, err := typedBucket(field, p.names.Properties)
	if err != nil {
		return nil, err
	}
	props := &queryir.EdgeProperties{Alias: field.Alias, Fields: make(map[string]queryir.LeafField, len(bucket))}
	for _, f := range bucket {
		if err := p.budget.field(); err != nil {
			return nil, err
		}
		leaf, _, err := ClassifyField(f, p.rel)
		if err != nil {
			return nil, err
		}
		props.Fields[f.Alias] = leaf
	}
	return props, nil
}

// expectOnly rejects fields of a synthetic type other than the allowed
// names.
func expectOnly(bucket selection.Bucket, typeName string, allowed ...string) error {
	for _, f := range bucket {
		if !slices.Contains(allowed, f.Name) {
			return &UnknownFieldError{Field: f.Name, Owner: typeName}
		}
	}
	return nil
}

// nodeBucket returns the fields selected on the target entity. A target
// with a global id also accepts "id" through the Node interface; the
// entity's own selection wins on a shared response key. Fragments on any
// other type are rejected unless skip reports them.
func (p *parser) nodeBucket(field *selection.Field, skip func(typeName string) bool) (selection.Bucket, error) {
	accepted := []string{p.names.Node}
	if p.target.GlobalID != nil {
		accepted = append(accepted, typenames.NodeInterface)
	}
	if err := rejectForeign(field, accepted, skip); err != nil {
		return nil, err
	}
	iface := field.Bucket(typenames.NodeInterface)
	if err := expectOnly(iface, typenames.NodeInterface, schema.GlobalIDField); err != nil {
		return nil, err
	}
	return selection.Merge(iface, field.Bucket(p.names.Node)), nil
}

// typedBucket returns the children of field selected on typeName. Children
// under any other type condition are unknown on that type.
func typedBucket(field *selection.Field, typeName string) (selection.Bucket, error) {
	if err := rejectForeign(field, []string{typeName}, nil); err != nil {
		return nil, err
	}
	return field.Bucket(typeName), nil
}

// rejectForeign fails on the first non-empty bucket of field keyed by a
// type that is neither accepted nor skipped. Keys are visited in sorted
// order so the reported field is stable.
func rejectForeign(field *selection.Field, accepted []string, skip func(typeName string) bool) error {
	for _, typeName := range slices.Sorted(maps.Keys(field.Fields)) {
		bucket := field.Fields[typeName]
		if len(bucket) == 0 || slices.Contains(accepted, typeName) {
			continue
		}
		if skip != nil && skip(typeName) {
			continue
		}
		return &UnknownFieldError{Field: bucket[0].Name, Owner: typeName}
	}
	return nil
}
