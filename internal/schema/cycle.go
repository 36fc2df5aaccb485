package schema

import (
	"fmt"
	"strings"
)

// CycleWarning describes a relationship cycle in the schema graph.
//
// Cycles are legal: self-relationships (Person.friends) and mutual
// relationships (Movie.actors / Person.movies) are common. They only mean
// that selection depth is bounded by the client, so operators should pick
// a depth limit.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["Movie", "Person", "Movie"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // always "info"
}

// AnalyzeCycles finds relationship cycles between entities.
//
// The algorithm:
//  1. Build entity → target entity graph from relationships
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle
//
// A schema without cycles returns an empty list.
func AnalyzeCycles(m *Model) []CycleWarning {
	graph, order := buildEntityGraph(m)
	if len(graph) == 0 {
		return []CycleWarning{}
	}

	sccs := tarjanSCC(graph, order)

	warnings := []CycleWarning{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, sccToWarning(scc, graph, order))
		}
	}
	return warnings
}

// entityGraph maps entity name → target entity names.
type entityGraph map[string][]string

func buildEntityGraph(m *Model) (entityGraph, []string) {
	graph := make(entityGraph)
	order := make([]string, 0, len(m.Entities()))
	for _, e := range m.Entities() {
		order = append(order, e.Name)
		graph[e.Name] = []string{} // ensures node exists in graph
		for _, r := range e.Relationships() {
			graph[e.Name] = append(graph[e.Name], r.Target.Name)
		}
	}
	return graph, order
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph entityGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in declaration order so results are deterministic.
func tarjanSCC(graph entityGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// If v is a root node, pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func sccToWarning(scc []string, graph entityGraph, order []string) CycleWarning {
	if len(scc) == 1 {
		name := scc[0]
		return CycleWarning{
			Path:    []string{name, name},
			Message: fmt.Sprintf("Self-referencing entity: %s → %s", name, name),
			Level:   "info",
		}
	}

	path := reconstructCyclePath(scc, graph, order)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Relationship cycle: %s", strings.Join(path, " → ")),
		Level:   "info",
	}
}

// reconstructCyclePath walks edges inside the SCC from its earliest declared
// member until it returns to the start.
func reconstructCyclePath(scc []string, graph entityGraph, order []string) []string {
	sccSet := make(map[string]bool, len(scc))
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	for _, name := range order {
		if sccSet[name] {
			start = name
			break
		}
	}

	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
