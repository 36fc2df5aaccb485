// Package typenames derives the synthetic type names of the read API from
// schema identity.
//
// Every name the compiler uses to pick a selection bucket comes from For, so
// a naming convention change is a change to this package only.
package typenames

import (
	"github.com/ettle/strcase"

	"github.com/roach88/resolvetree/internal/schema"
)

// Fixed type and field names of the read API.
const (
	Query           = "Query"
	NodeInterface   = "Node"
	PageInfo        = "PageInfo"
	ID              = "ID"
	String          = "String"
	ConnectionField = "connection"
	EdgesField      = "edges"
	NodeField       = "node"
	PropertiesField = "properties"
	PageInfoField   = "pageInfo"
	CursorField     = "cursor"
)

const (
	operationSuffix  = "Operation"
	connectionSuffix = "Connection"
	edgeSuffix       = "Edge"
	whereSuffix      = "Where"
	sortSuffix       = "Sort"
	edgeSortSuffix   = "EdgeSort"
)

// Names are the synthetic type names derived for one owner.
type Names struct {
	ConnectionOperation string `json:"connectionOperation"`
	Connection          string `json:"connection"`
	Edge                string `json:"edge"`
	Node                string `json:"node"`

	// Properties is the edge properties type, empty when the owner carries
	// no properties.
	Properties string `json:"properties,omitempty"`

	Where    string `json:"where"`
	Sort     string `json:"sort"`
	EdgeSort string `json:"edgeSort"`
}

// HasProperties reports whether a properties type exists for the owner.
func (n Names) HasProperties() bool {
	return n.Properties != ""
}

// For returns the names for an entity or a relationship:
//
//	Movie         MovieOperation, MovieConnection, MovieEdge, node Movie
//	Movie.actors  MovieActorsOperation, MovieActorsConnection, MovieActorsEdge,
//	              node Person, properties ActedIn
func For(owner schema.Owner) Names {
	switch o := owner.(type) {
	case *schema.Entity:
		return forEntity(o)
	case *schema.Relationship:
		return forRelationship(o)
	default:
		return Names{}
	}
}

func forEntity(e *schema.Entity) Names {
	return Names{
		ConnectionOperation: e.Name + operationSuffix,
		Connection:          e.Name + connectionSuffix,
		Edge:                e.Name + edgeSuffix,
		Node:                e.Name,
		Where:               e.Name + whereSuffix,
		Sort:                e.Name + sortSuffix,
		EdgeSort:            e.Name + edgeSortSuffix,
	}
}

func forRelationship(r *schema.Relationship) Names {
	prefix := RelationshipPrefix(r)
	return Names{
		ConnectionOperation: prefix + operationSuffix,
		Connection:          prefix + connectionSuffix,
		Edge:                prefix + edgeSuffix,
		Node:                r.Target.Name,
		Properties:          r.PropertiesType,
		Where:               prefix + whereSuffix,
		Sort:                r.Target.Name + sortSuffix,
		EdgeSort:            prefix + edgeSortSuffix,
	}
}

// RelationshipPrefix is the source entity name followed by the pascal-cased
// relationship name, e.g. MovieActors.
func RelationshipPrefix(r *schema.Relationship) string {
	return r.Source.Name + strcase.ToPascal(r.Name)
}
