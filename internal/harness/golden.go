package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/resolvetree/internal/value"
)

// Snapshot renders a result as canonical JSON for golden comparison.
// Compiled results and failures both snapshot; validation messages do not.
func Snapshot(name string, result *Result) ([]byte, error) {
	snap := map[string]any{"scenario": name}
	if result.Compiled != nil {
		snap["result"] = result.Compiled
	} else {
		snap["error"] = map[string]any{"code": result.ErrorCode, "message": result.ErrorMessage}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	v, err := value.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return value.MarshalCanonical(v)
}

// AssertGolden compares the given result against testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./... -update
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

// RunWithGolden executes a scenario, fails t on any validation error, and
// compares the result against its golden file when the scenario asks for one.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, msg)
	}
	if !scenario.Golden {
		return nil
	}
	return AssertGolden(t, scenario.Name, result)
}
