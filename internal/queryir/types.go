package queryir

import (
	"encoding/json"

	"github.com/roach88/resolvetree/internal/value"
)

// Field kinds used as the JSON "kind" discriminator.
const (
	KindRead           = "read"
	KindScalar         = "scalar"
	KindPoint          = "point"
	KindCartesianPoint = "cartesianPoint"
)

// NodeField is a value in a Node's field map.
//
// This is a sealed interface - only types in this package implement it.
//
// NodeField types:
//   - *ScalarField, *PointField, *CartesianPointField (leaves)
//   - *ReadOperation (relationship traversal)
type NodeField interface {
	nodeField() // Marker method - seals interface to this package
}

// LeafField is a field that never traverses further: a scalar or a
// geospatial composite. Edge properties hold only leaves.
type LeafField interface {
	NodeField
	leafField() // Marker method - seals interface to this package
}

// ReadOperation is a root or nested read.
//
// At the root it reads Target directly. Inside a Node it is a traversal of
// Relationship from the enclosing entity to Target.
type ReadOperation struct {
	Alias        string           `json:"alias"`
	Target       string           `json:"target"`
	Relationship *RelationshipRef `json:"relationship,omitempty"`
	Where        *WhereFilter     `json:"where,omitempty"`
	Connection   *Connection      `json:"connection,omitempty"`
}

func (*ReadOperation) nodeField() {}

// MarshalJSON adds the kind discriminator.
func (r *ReadOperation) MarshalJSON() ([]byte, error) {
	type alias ReadOperation
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{KindRead, (*alias)(r)})
}

// RelationshipRef identifies the relationship a nested read traverses.
type RelationshipRef struct {
	Source     string `json:"source"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Direction  string `json:"direction"`
	Properties string `json:"properties,omitempty"`
}

// Connection is the paginated wrapper around edges.
type Connection struct {
	Alias string         `json:"alias"`
	Args  ConnectionArgs `json:"args"`
	Edges *Edge          `json:"edges,omitempty"`
}

// ConnectionArgs are the decoded connection arguments. Sort precedence is
// positional.
type ConnectionArgs struct {
	Sort  []SortEdge `json:"sort,omitempty"`
	First *int64     `json:"first,omitempty"`
	After *string    `json:"after,omitempty"`
}

// Edge holds the selected node and, for relationships with declared
// properties, the selected edge properties.
type Edge struct {
	Alias      string          `json:"alias"`
	Node       *Node           `json:"node,omitempty"`
	Properties *EdgeProperties `json:"properties,omitempty"`
}

// Node holds the fields selected on the target entity, keyed by response
// key.
type Node struct {
	Alias  string               `json:"alias"`
	Fields map[string]NodeField `json:"fields"`
}

// EdgeProperties holds the relationship attributes selected on an edge,
// keyed by response key.
type EdgeProperties struct {
	Alias  string               `json:"alias"`
	Fields map[string]LeafField `json:"fields"`
}

// ScalarField selects one attribute. Name is the stored attribute name,
// which differs from the client-facing name for the global id alias.
type ScalarField struct {
	Name     string       `json:"name"`
	Alias    string       `json:"alias"`
	Args     value.Object `json:"args,omitempty"`
	GlobalID bool         `json:"globalId,omitempty"`
}

func (*ScalarField) nodeField() {}
func (*ScalarField) leafField() {}

// MarshalJSON adds the kind discriminator.
func (f *ScalarField) MarshalJSON() ([]byte, error) {
	type alias ScalarField
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{KindScalar, (*alias)(f)})
}

// PointField selects a geographic point. Each component is nil unless the
// client requested it.
type PointField struct {
	Name      string       `json:"name"`
	Alias     string       `json:"alias"`
	Longitude *ScalarField `json:"longitude,omitempty"`
	Latitude  *ScalarField `json:"latitude,omitempty"`
	Height    *ScalarField `json:"height,omitempty"`
	CRS       *ScalarField `json:"crs,omitempty"`
	SRID      *ScalarField `json:"srid,omitempty"`
}

func (*PointField) nodeField() {}
func (*PointField) leafField() {}

// MarshalJSON adds the kind discriminator.
func (f *PointField) MarshalJSON() ([]byte, error) {
	type alias PointField
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{KindPoint, (*alias)(f)})
}

// CartesianPointField selects a cartesian point. Each component is nil
// unless the client requested it.
type CartesianPointField struct {
	Name  string       `json:"name"`
	Alias string       `json:"alias"`
	X     *ScalarField `json:"x,omitempty"`
	Y     *ScalarField `json:"y,omitempty"`
	Z     *ScalarField `json:"z,omitempty"`
	CRS   *ScalarField `json:"crs,omitempty"`
	SRID  *ScalarField `json:"srid,omitempty"`
}

func (*CartesianPointField) nodeField() {}
func (*CartesianPointField) leafField() {}

// MarshalJSON adds the kind discriminator.
func (f *CartesianPointField) MarshalJSON() ([]byte, error) {
	type alias CartesianPointField
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{KindCartesianPoint, (*alias)(f)})
}

// WhereFilter is the shape of a where argument: predicates combined with
// optional logical composition. Predicate leaves are passed through
// unvalidated; the query builder owns their semantics.
type WhereFilter struct {
	Predicates value.Object   `json:"predicates,omitempty"`
	And        []*WhereFilter `json:"AND,omitempty"`
	Or         []*WhereFilter `json:"OR,omitempty"`
	Not        *WhereFilter   `json:"NOT,omitempty"`
}

// SortDirection is ASC or DESC.
type SortDirection string

const (
	Asc  SortDirection = "ASC"
	Desc SortDirection = "DESC"
)

// SortField orders by one attribute.
type SortField struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// SortEdge is one entry of a connection sort: node-side keys and, for
// relationships with properties, edge-side keys.
type SortEdge struct {
	Node       []SortField `json:"node,omitempty"`
	Properties []SortField `json:"properties,omitempty"`
}
