// Package schema holds the property-graph schema model the compiler resolves
// selections against.
//
// A schema is authored as a Definition (CUE or YAML), validated, and then
// built into an immutable Model:
//
//	def, err := schema.LoadCUE("testdata/schema")
//	model, err := schema.Build(def)
//	movie := model.Entity("Movie")
//	actors := movie.FindRelationship("actors") // actors.Target == model.Entity("Person")
//
// The Model is safe for concurrent readers. Nothing in this package mutates a
// Model after Build returns.
//
// Entities and relationships both satisfy the sealed Owner interface so that
// callers resolving fields can be written once for either kind of owner.
package schema
