package queryir

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/resolvetree/internal/value"
)

// Summary describes the size and shape of an IR tree.
type Summary struct {
	// Target is the entity read at the root.
	Target string `json:"target"`

	// Depth is the number of nested reads on the deepest path; a root read
	// without traversals has depth 1.
	Depth int `json:"depth"`

	// Reads counts ReadOperations, including the root.
	Reads int `json:"reads"`

	// Leaves counts leaf fields in nodes and edge properties.
	Leaves int `json:"leaves"`

	// Traversals counts relationship traversals.
	Traversals int `json:"traversals"`

	// SortKeys counts sort fields across all connections.
	SortKeys int `json:"sortKeys"`

	// Paths are the response paths of every leaf, sorted.
	Paths []string `json:"paths"`
}

// Inspect walks an IR tree and summarizes it.
//
// Inspect is a pure function with no side effects.
func Inspect(op *ReadOperation) Summary {
	if op == nil {
		return Summary{Paths: []string{}}
	}
	in := &inspector{paths: []string{}}
	in.read(op, op.Alias, 1)
	slices.Sort(in.paths)

	return Summary{
		Target:     op.Target,
		Depth:      in.depth,
		Reads:      in.reads,
		Leaves:     in.leaves,
		Traversals: in.reads - 1,
		SortKeys:   in.sortKeys,
		Paths:      in.paths,
	}
}

// inspector accumulates counts during traversal.
type inspector struct {
	depth    int
	reads    int
	leaves   int
	sortKeys int
	paths    []string
}

func (in *inspector) read(op *ReadOperation, path string, depth int) {
	in.reads++
	in.depth = max(in.depth, depth)

	conn := op.Connection
	if conn == nil {
		return
	}
	for _, s := range conn.Args.Sort {
		in.sortKeys += len(s.Node) + len(s.Properties)
	}
	if conn.Edges == nil {
		return
	}

	edgePath := join(path, conn.Alias, conn.Edges.Alias)
	if node := conn.Edges.Node; node != nil {
		nodePath := join(edgePath, node.Alias)
		for key, f := range node.Fields {
			switch field := f.(type) {
			case *ReadOperation:
				in.read(field, join(nodePath, key), depth+1)
			default:
				in.leaf(join(nodePath, key))
			}
		}
	}
	if props := conn.Edges.Properties; props != nil {
		propsPath := join(edgePath, props.Alias)
		for key := range props.Fields {
			in.leaf(join(propsPath, key))
		}
	}
}

func (in *inspector) leaf(path string) {
	in.leaves++
	in.paths = append(in.paths, path)
}

func join(parts ...string) string {
	return strings.Join(parts, ".")
}

// Fingerprint returns a content hash of the IR tree. Structurally identical
// trees have identical fingerprints.
func Fingerprint(op *ReadOperation) (string, error) {
	data, err := json.Marshal(op)
	if err != nil {
		return "", fmt.Errorf("marshal IR: %w", err)
	}
	v, err := value.Unmarshal(data)
	if err != nil {
		return "", fmt.Errorf("decode IR: %w", err)
	}
	return value.Fingerprint(value.DomainIR, v)
}
