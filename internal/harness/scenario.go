package harness

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/resolvetree/internal/compiler"
)

// Scenario defines one compile conformance case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the path of the schema (.cue, .yaml or a CUE directory).
	// Relative paths are resolved against the scenario file's directory.
	Schema string `yaml:"schema"`

	// Query is the GraphQL request text.
	Query string `yaml:"query"`

	// Variables are the request variables.
	Variables map[string]any `yaml:"variables,omitempty"`

	// OperationName selects the operation when the query defines several.
	OperationName string `yaml:"operation_name,omitempty"`

	// Limits bounds the compile. Zero values mean unlimited.
	Limits compiler.Limits `yaml:"limits,omitempty"`

	// Expect describes an expected compile failure. Nil means the request
	// must compile.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the compiled IR.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Golden compares the compiled result against testdata/golden/<name>.golden.
	Golden bool `yaml:"golden,omitempty"`
}

// ExpectClause specifies an expected compile error.
type ExpectClause struct {
	// Error is the expected error code, e.g. "UNKNOWN_FIELD".
	Error string `yaml:"error"`

	// Message is a substring the error message must contain.
	Message string `yaml:"message,omitempty"`
}

// Assertion validates the compiled IR.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Root is the alias of the root operation to inspect.
	Root string `yaml:"root,omitempty"`

	// Path is a dotted leaf response path (path_present, path_absent).
	Path string `yaml:"path,omitempty"`

	// Count is the expected number (depth, traversals, root_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertPathPresent = "path_present"
	AssertPathAbsent  = "path_absent"
	AssertDepth       = "depth"
	AssertTraversals  = "traversals"
	AssertRootCount   = "root_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the scenario files under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan scenarios: %w", err)
	}
	slices.Sort(paths)
	return paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
		return fmt.Errorf("schema not found: %s", s.Schema)
	}

	if s.Query == "" {
		return fmt.Errorf("query is required")
	}

	if s.Expect != nil {
		if s.Expect.Error == "" {
			return fmt.Errorf("expect: error is required")
		}
		if len(s.Assertions) > 0 || s.Golden {
			return fmt.Errorf("expect: a failing scenario cannot carry assertions or a golden file")
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPathPresent, AssertPathAbsent:
		if a.Root == "" || a.Path == "" {
			return fmt.Errorf("assertions[%d]: root and path are required for %s", index, a.Type)
		}
	case AssertDepth, AssertTraversals:
		if a.Root == "" {
			return fmt.Errorf("assertions[%d]: root is required for %s", index, a.Type)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertRootCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for root_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
