// Package queryir defines the query intermediate representation (IR): the
// typed tree the compiler produces for one read request and the downstream
// query builder consumes.
//
// TREE SHAPE:
//
// The IR mirrors the shape clients may request:
//
//	ReadOperation (where)
//	└── Connection (sort, first, after)
//	    └── Edge
//	        ├── Node: field → LeafField | *ReadOperation (relationship traversal)
//	        └── EdgeProperties: field → LeafField (relationships with properties only)
//
// Every optional child is a nil pointer when the client did not select it.
// An Edge of a relationship without declared properties never carries
// EdgeProperties, not even an empty one.
//
// SEALED INTERFACES:
//
// NodeField and LeafField are sealed interfaces using the marker method
// pattern. Only types in this package can implement them, which enables
// exhaustive type switches in query builders:
//
//	switch f := field.(type) {
//	case *ScalarField:
//	case *PointField:
//	case *CartesianPointField:
//	case *ReadOperation:
//	    // recurse into the traversal
//	}
//
// The IR holds names, not schema pointers, so it can be compared, hashed and
// serialized without the schema it was compiled against. JSON encoding tags
// every field value with a "kind" discriminator.
//
// LIFECYCLE:
//
// An IR tree is built once per request and never mutated afterwards. It is
// safe to share between goroutines once built.
package queryir
