// Package selection holds the selection tree: the client's requested fields,
// with their arguments and sub-selections keyed by the type name under which
// they were selected.
//
// The same field name can appear under different synthetic types at
// different depths (a relationship's "connection" versus the root entity's),
// so children are stored per type name rather than in one flat map. Parse
// builds the tree from GraphQL request text.
package selection

import "github.com/roach88/resolvetree/internal/value"

// Field is one selected field.
type Field struct {
	// Name is the schema field name.
	Name string

	// Alias is the response key: the alias if given, otherwise Name.
	Alias string

	// Args are the resolved argument values. Arguments whose variable was
	// not provided are absent.
	Args value.Object

	// Fields are the child selections keyed by the type name they were
	// selected under.
	Fields map[string]Bucket
}

// Bucket returns the children selected under typeName. It never fails: a
// type that was not selected yields an empty bucket.
func (f *Field) Bucket(typeName string) Bucket {
	if f == nil {
		return nil
	}
	return f.Fields[typeName]
}

// Arg returns the argument value stored under name.
func (f *Field) Arg(name string) (value.Value, bool) {
	return f.Args.Get(name)
}

// Bucket is an ordered list of fields selected under one type, keyed by
// response key.
type Bucket []*Field

// ByName returns the first field with the given schema name, or nil.
func (b Bucket) ByName(name string) *Field {
	for _, f := range b {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// ByAlias returns the field with the given response key, or nil.
func (b Bucket) ByAlias(alias string) *Field {
	for _, f := range b {
		if f.Alias == alias {
			return f
		}
	}
	return nil
}

// Merge combines buckets. A field in a later bucket replaces an earlier
// field with the same response key; the position of the first occurrence is
// kept.
func Merge(buckets ...Bucket) Bucket {
	var out Bucket
	index := make(map[string]int)
	for _, b := range buckets {
		for _, f := range b {
			if i, ok := index[f.Alias]; ok {
				out[i] = f
				continue
			}
			index[f.Alias] = len(out)
			out = append(out, f)
		}
	}
	return out
}

// add appends f to the bucket, merging it into an existing field with the
// same response key as GraphQL field merging requires.
func (b Bucket) add(f *Field) Bucket {
	existing := b.ByAlias(f.Alias)
	if existing == nil {
		return append(b, f)
	}
	for typeName, children := range f.Fields {
		if existing.Fields == nil {
			existing.Fields = make(map[string]Bucket)
		}
		merged := existing.Fields[typeName]
		for _, child := range children {
			merged = merged.add(child)
		}
		existing.Fields[typeName] = merged
	}
	return b
}
