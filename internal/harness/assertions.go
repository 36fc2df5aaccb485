package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/resolvetree/internal/engine"
	"github.com/roach88/resolvetree/internal/queryir"
)

// AssertionError is returned when an assertion fails.
// It includes the inspected paths to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Paths    []string // Leaf paths of the inspected root, if any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Paths) > 0 {
		fmt.Fprintf(&buf, "\nLeaf paths:\n")
		for _, p := range e.Paths {
			fmt.Fprintf(&buf, "  %s\n", p)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against a compiled result and
// returns the failure messages.
func EvaluateAssertions(res *engine.Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(res, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(res *engine.Result, a Assertion) error {
	if a.Type == AssertRootCount {
		if got := len(res.RootOperations); got != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d root operations", a.Count),
				Actual:   fmt.Sprintf("%d root operations", got),
			}
		}
		return nil
	}

	root := findRoot(res, a.Root)
	if root == nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("root operation %q", a.Root),
			Actual:   "not found",
		}
	}
	summary := queryir.Inspect(root.Read)

	switch a.Type {
	case AssertPathPresent:
		if !slices.Contains(summary.Paths, a.Path) {
			return &AssertionError{Type: a.Type, Expected: a.Path, Actual: "path not found", Paths: summary.Paths}
		}
	case AssertPathAbsent:
		if slices.Contains(summary.Paths, a.Path) {
			return &AssertionError{Type: a.Type, Expected: "no " + a.Path, Actual: "path found", Paths: summary.Paths}
		}
	case AssertDepth:
		if summary.Depth != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("depth %d", a.Count),
				Actual:   fmt.Sprintf("depth %d", summary.Depth),
			}
		}
	case AssertTraversals:
		if summary.Traversals != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d traversals", a.Count),
				Actual:   fmt.Sprintf("%d traversals", summary.Traversals),
			}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func findRoot(res *engine.Result, alias string) *engine.RootOperation {
	for i := range res.RootOperations {
		if res.RootOperations[i].Alias == alias {
			return &res.RootOperations[i]
		}
	}
	return nil
}
