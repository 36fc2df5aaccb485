package compiler

import (
	"fmt"

	"github.com/roach88/resolvetree/internal/queryir"
	"github.com/roach88/resolvetree/internal/schema"
	"github.com/roach88/resolvetree/internal/value"
)

// Argument and logical operator names.
const (
	argWhere = "where"
	argSort  = "sort"
	argFirst = "first"
	argAfter = "after"

	opAnd = "AND"
	opOr  = "OR"
	opNot = "NOT"

	sortEdges      = "edges"
	sortNode       = "node"
	sortProperties = "properties"
)

// DecodeWhere decodes the where argument of args.
//
// Only the shape is checked: the filter must be an object whose AND and OR
// entries are lists of objects and whose NOT entry is an object. Every other
// key is a predicate and passes through unvalidated; the query builder owns
// predicate semantics. An absent or null where yields nil.
func DecodeWhere(args value.Object) (*queryir.WhereFilter, error) {
	raw, ok := args.Get(argWhere)
	if !ok || value.IsNull(raw) {
		return nil, nil
	}
	return decodeFilter(argWhere, raw)
}

func decodeFilter(path string, raw value.Value) (*queryir.WhereFilter, error) {
	obj, ok := raw.(value.Object)
	if !ok {
		return nil, &InvalidArgumentError{
			Argument: path,
			Message:  fmt.Sprintf("expected an object, got %s", value.TypeName(raw)),
		}
	}

	f := &queryir.WhereFilter{}
	for _, key := range obj.SortedKeys() {
		v := obj[key]
		switch key {
		case opAnd, opOr:
			list, err := decodeFilterList(path+"."+key, v)
			if err != nil {
				return nil, err
			}
			if key == opAnd {
				f.And = list
			} else {
				f.Or = list
			}
		case opNot:
			if value.IsNull(v) {
				continue
			}
			not, err := decodeFilter(path+"."+key, v)
			if err != nil {
				return nil, err
			}
			f.Not = not
		default:
			if f.Predicates == nil {
				f.Predicates = make(value.Object)
			}
			f.Predicates[key] = v
		}
	}
	return f, nil
}

func decodeFilterList(path string, raw value.Value) ([]*queryir.WhereFilter, error) {
	if value.IsNull(raw) {
		return nil, nil
	}
	list, ok := raw.(value.List)
	if !ok {
		return nil, &InvalidArgumentError{
			Argument: path,
			Message:  fmt.Sprintf("expected a list of objects, got %s", value.TypeName(raw)),
		}
	}
	out := make([]*queryir.WhereFilter, 0, len(list))
	for i, item := range list {
		f, err := decodeFilter(fmt.Sprintf("%s[%d]", path, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// DecodeConnectionArgs decodes sort, first and after.
//
// first must be a non-negative integer and after a string; both pass through
// otherwise unchanged. sort is a list of entries (a single entry may be given
// without the list). Each entry is {edges: {node, properties}} or
// {node, properties}; an entry with neither key is shorthand for its node
// part. Node keys must be attributes of target, properties keys attributes
// of rel, which must then be non-nil and declare properties. Entry order is
// kept; keys inside one object are decoded in sorted order.
func DecodeConnectionArgs(args value.Object, target *schema.Entity, rel *schema.Relationship) (queryir.ConnectionArgs, error) {
	var out queryir.ConnectionArgs

	if raw, ok := args.Get(argFirst); ok && !value.IsNull(raw) {
		n, ok := raw.(value.Int)
		if !ok || n < 0 {
			return queryir.ConnectionArgs{}, &InvalidArgumentError{
				Argument: argFirst,
				Message:  "expected a non-negative integer",
			}
		}
		first := int64(n)
		out.First = &first
	}

	if raw, ok := args.Get(argAfter); ok && !value.IsNull(raw) {
		s, ok := raw.(value.String)
		if !ok {
			return queryir.ConnectionArgs{}, &InvalidArgumentError{
				Argument: argAfter,
				Message:  fmt.Sprintf("expected a string cursor, got %s", value.TypeName(raw)),
			}
		}
		after := string(s)
		out.After = &after
	}

	if raw, ok := args.Get(argSort); ok && !value.IsNull(raw) {
		sort, err := decodeSort(raw, target, rel)
		if err != nil {
			return queryir.ConnectionArgs{}, err
		}
		out.Sort = sort
	}

	return out, nil
}

func decodeSort(raw value.Value, target *schema.Entity, rel *schema.Relationship) ([]queryir.SortEdge, error) {
	var entries value.List
	switch v := raw.(type) {
	case value.List:
		entries = v
	case value.Object:
		entries = value.List{v}
	default:
		return nil, &InvalidArgumentError{
			Argument: argSort,
			Message:  fmt.Sprintf("expected an object or a list of objects, got %s", value.TypeName(raw)),
		}
	}

	out := make([]queryir.SortEdge, 0, len(entries))
	for i, entry := range entries {
		se, err := decodeSortEntry(fmt.Sprintf("%s[%d]", argSort, i), entry, target, rel)
		if err != nil {
			return nil, err
		}
		out = append(out, se)
	}
	return out, nil
}

func decodeSortEntry(path string, raw value.Value, target *schema.Entity, rel *schema.Relationship) (queryir.SortEdge, error) {
	obj, ok := raw.(value.Object)
	if !ok {
		return queryir.SortEdge{}, &InvalidArgumentError{
			Argument: path,
			Message:  fmt.Sprintf("expected an object, got %s", value.TypeName(raw)),
		}
	}

	if edges, ok := obj[sortEdges]; ok {
		if len(obj) > 1 {
			return queryir.SortEdge{}, &InvalidArgumentError{
				Argument: path,
				Message:  "edges cannot be combined with other sort keys",
			}
		}
		path += "." + sortEdges
		inner, ok := edges.(value.Object)
		if !ok {
			return queryir.SortEdge{}, &InvalidArgumentError{
				Argument: path,
				Message:  fmt.Sprintf("expected an object, got %s", value.TypeName(edges)),
			}
		}
		obj = inner
	}

	_, hasNode := obj[sortNode]
	_, hasProps := obj[sortProperties]
	if !hasNode && !hasProps {
		fields, err := DecodeSortFields(obj, target)
		if err != nil {
			return queryir.SortEdge{}, err
		}
		return queryir.SortEdge{Node: fields}, nil
	}

	var se queryir.SortEdge
	for _, key := range obj.SortedKeys() {
		v := obj[key]
		switch key {
		case sortNode:
			fields, err := DecodeSortFields(v, target)
			if err != nil {
				return queryir.SortEdge{}, err
			}
			se.Node = fields
		case sortProperties:
			if rel == nil || !rel.HasProperties() {
				owner := target.Name
				if rel != nil {
					owner = ownerName(rel)
				}
				return queryir.SortEdge{}, &InvalidSortFieldError{Field: sortProperties, Owner: owner}
			}
			fields, err := DecodeSortFields(v, rel)
			if err != nil {
				return queryir.SortEdge{}, err
			}
			se.Properties = fields
		default:
			return queryir.SortEdge{}, &InvalidArgumentError{
				Argument: path + "." + key,
				Message:  "expected node or properties",
			}
		}
	}
	return se, nil
}

// DecodeSortFields decodes one {field: direction} object against owner.
//
// Keys are decoded in sorted order. The direction of each key is checked
// before the key itself, so {screenTime: "down"} is an
// *InvalidSortDirectionError whatever the owner.
func DecodeSortFields(raw value.Value, owner schema.Owner) ([]queryir.SortField, error) {
	if value.IsNull(raw) {
		return nil, nil
	}
	obj, ok := raw.(value.Object)
	if !ok {
		return nil, &InvalidArgumentError{
			Argument: argSort,
			Message:  fmt.Sprintf("expected an object of field directions, got %s", value.TypeName(raw)),
		}
	}

	out := make([]queryir.SortField, 0, len(obj))
	for _, key := range obj.SortedKeys() {
		dir, err := sortDirection(key, obj[key])
		if err != nil {
			return nil, err
		}
		if !owner.HasAttribute(key) {
			return nil, &InvalidSortFieldError{Field: key, Owner: ownerName(owner)}
		}
		out = append(out, queryir.SortField{Field: key, Direction: dir})
	}
	return out, nil
}

// sortDirection accepts exactly "ASC" or "DESC", given as a string or an
// enum value.
func sortDirection(field string, raw value.Value) (queryir.SortDirection, error) {
	s, ok := value.AsString(raw)
	if !ok {
		data, err := value.Marshal(raw)
		if err != nil {
			return "", err
		}
		return "", &InvalidSortDirectionError{Field: field, Direction: string(data)}
	}

	switch dir := queryir.SortDirection(s); dir {
	case queryir.Asc, queryir.Desc:
		return dir, nil
	default:
		return "", &InvalidSortDirectionError{Field: field, Direction: s}
	}
}
