package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/resolvetree/internal/engine"
	"github.com/roach88/resolvetree/internal/schema"
	"github.com/roach88/resolvetree/internal/testutil"
	"github.com/roach88/resolvetree/internal/value"
)

// RequestID is the fixed request id of every scenario compile.
const RequestID = "scenario"

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger passed to the engine.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run executes a scenario and returns the result.
//
// An error is returned only when the scenario cannot be executed (for
// example its schema does not load). Compile failures and failed assertions
// are reported in the Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	def, err := schema.Load(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	model, err := schema.Build(def)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}

	variables, err := convertVariables(scenario.Variables)
	if err != nil {
		return nil, fmt.Errorf("failed to convert variables: %w", err)
	}

	eng := engine.New(model,
		engine.WithLogger(cfg.logger),
		engine.WithLimits(scenario.Limits),
		engine.WithRequestIDGenerator(testutil.NewFixedRequestIDGenerator(RequestID)),
		engine.WithClock(testutil.NewStepClock(time.Unix(0, 0).UTC(), time.Millisecond)),
	)

	result := NewResult()
	compiled, err := eng.Compile(ctx, engine.Request{
		Query:         scenario.Query,
		Variables:     variables,
		OperationName: scenario.OperationName,
	})
	if err != nil {
		result.ErrorCode = engine.ErrorCode(err)
		result.ErrorMessage = err.Error()
		checkExpectedError(scenario.Expect, result)
		cfg.logger.Info("scenario compiled with error",
			"scenario", scenario.Name,
			"code", result.ErrorCode,
			"pass", result.Pass,
		)
		return result, nil
	}

	result.Compiled = compiled
	if scenario.Expect != nil {
		result.AddError(fmt.Sprintf("expected error %s, but the request compiled", scenario.Expect.Error))
	}
	for _, msg := range EvaluateAssertions(compiled, scenario.Assertions) {
		result.AddError(msg)
	}

	cfg.logger.Info("scenario compiled",
		"scenario", scenario.Name,
		"root_operations", len(compiled.RootOperations),
		"pass", result.Pass,
	)
	return result, nil
}

func checkExpectedError(expect *ExpectClause, result *Result) {
	if expect == nil {
		result.AddError(fmt.Sprintf("unexpected error %s: %s", result.ErrorCode, result.ErrorMessage))
		return
	}
	if expect.Error != result.ErrorCode {
		result.AddError(fmt.Sprintf("expected error %s, got %s: %s", expect.Error, result.ErrorCode, result.ErrorMessage))
		return
	}
	if expect.Message != "" && !strings.Contains(result.ErrorMessage, expect.Message) {
		result.AddError(fmt.Sprintf("expected error message containing %q, got %q", expect.Message, result.ErrorMessage))
	}
}

// convertVariables converts YAML-decoded variables into request values.
func convertVariables(vars map[string]any) (value.Object, error) {
	if len(vars) == 0 {
		return nil, nil
	}
	obj := make(value.Object, len(vars))
	for key, raw := range vars {
		v, err := value.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", key, err)
		}
		obj[key] = v
	}
	return obj, nil
}
