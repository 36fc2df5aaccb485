// Package harness runs conformance scenarios through the compile engine.
//
// A scenario names a schema, a GraphQL request and what compiling it must
// produce: either an error code or a compiled result that satisfies the
// assertions and, optionally, matches a golden snapshot.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: movies_with_actors
//	description: "Traversal with edge properties"
//	schema: ../schema/movies.cue
//	query: |
//	  query($n: Int) { movies { connection(first: $n) { edges { node { title } } } } }
//	variables:
//	  n: 3
//	limits:
//	  max_depth: 4
//	expect:
//	  error: UNKNOWN_FIELD
//	  message: 'unknown field "budget"'
//	assertions:
//	  - type: path_present
//	    root: movies
//	    path: movies.connection.edges.node.title
//	  - type: depth
//	    root: movies
//	    count: 1
//
// The schema path is resolved relative to the scenario file.
//
// # Assertion Types
//
//   - path_present: A leaf response path appears in the root's IR
//   - path_absent: A leaf response path does not appear
//   - depth: The root's IR nests exactly count reads on its deepest path
//   - traversals: The root's IR traverses exactly count relationships
//   - root_count: The request compiles to exactly count root operations
//
// # Deterministic Testing
//
// Every run uses a fixed request id and a step clock, so the same scenario
// always produces byte-identical snapshots for golden comparison.
package harness
