package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/resolvetree/internal/compiler"
	"github.com/roach88/resolvetree/internal/globalid"
	"github.com/roach88/resolvetree/internal/metrics"
	"github.com/roach88/resolvetree/internal/queryir"
	"github.com/roach88/resolvetree/internal/schema"
	"github.com/roach88/resolvetree/internal/selection"
	"github.com/roach88/resolvetree/internal/typenames"
	"github.com/roach88/resolvetree/internal/value"
)

// Clock supplies the time used to measure compile duration.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Root operation kinds.
const (
	KindRead = "read"
	KindNode = "node"
)

// Engine compiles GraphQL read requests against one schema model.
//
// The model, typer and compiler are immutable after New, so Compile is safe
// to call from many goroutines.
type Engine struct {
	model    *schema.Model
	typer    *typenames.Typer
	compiler *compiler.Compiler
	logger   *slog.Logger
	metrics  *metrics.Registry
	ids      RequestIDGenerator
	clock    Clock
	limits   compiler.Limits
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The compiler logs through it too.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records compiles into r.
func WithMetrics(r *metrics.Registry) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithLimits sets the per-compile limits.
func WithLimits(l compiler.Limits) Option {
	return func(e *Engine) {
		e.limits = l
	}
}

// WithRequestIDGenerator sets the request id generator.
func WithRequestIDGenerator(g RequestIDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock sets the clock used for compile duration.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an Engine for model.
func New(model *schema.Model, opts ...Option) *Engine {
	e := &Engine{
		model:  model,
		typer:  typenames.NewTyper(model),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ids:    UUIDv7Generator{},
		clock:  systemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.compiler = compiler.New(
		compiler.WithLogger(e.logger),
		compiler.WithLimits(e.limits),
		compiler.WithModel(model),
	)
	return e
}

// Model returns the schema model the engine compiles against.
func (e *Engine) Model() *schema.Model {
	return e.model
}

// Request is one GraphQL request.
type Request struct {
	Query         string       `json:"query"`
	Variables     value.Object `json:"variables,omitempty"`
	OperationName string       `json:"operationName,omitempty"`
}

// Result is a compiled request.
type Result struct {
	RequestID      string          `json:"requestId"`
	OperationName  string          `json:"operationName,omitempty"`
	RootOperations []RootOperation `json:"rootOperations"`
}

// RootOperation is one compiled root field.
type RootOperation struct {
	// Alias is the response key of the root field.
	Alias string `json:"alias"`

	// Field is the root field name: an entity's plural or "node".
	Field string `json:"field"`

	// Kind is KindRead or KindNode.
	Kind string `json:"kind"`

	// Entity is the entity read, empty for a node lookup that matched none.
	Entity string `json:"entity,omitempty"`

	// Read is the compiled IR. It is nil for a node lookup whose id names no
	// globally addressable entity; that field resolves to null.
	Read *queryir.ReadOperation `json:"read"`
}

// Compile parses req and compiles every root field.
//
// All errors are terminal. Compile errors are the compiler's typed errors,
// request text problems are *selection.ParseError; FormatError renders
// either for clients.
func (e *Engine) Compile(ctx context.Context, req Request) (*Result, error) {
	start := e.clock.Now()
	requestID := e.ids.Generate()
	logger := e.logger.With("request_id", requestID)

	result, err := e.compile(ctx, req, requestID)
	elapsed := e.clock.Now().Sub(start)

	if err != nil {
		code := ErrorCode(err)
		e.metrics.ObserveCompile(code, elapsed)
		logger.Debug("compile failed", "code", code, "error", err)
		return nil, err
	}

	e.metrics.ObserveCompile("", elapsed)
	logger.Debug("compile succeeded",
		"root_operations", len(result.RootOperations),
		"duration", elapsed,
	)
	return result, nil
}

func (e *Engine) compile(ctx context.Context, req Request, requestID string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	op, err := selection.Parse(req.Query, selection.Options{
		Variables:     req.Variables,
		OperationName: req.OperationName,
		Typer:         e.typer,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		RequestID:      requestID,
		OperationName:  op.Name,
		RootOperations: make([]RootOperation, 0, len(op.Fields())),
	}
	for _, field := range op.Fields() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		root, err := e.compileRoot(field)
		if err != nil {
			return nil, err
		}
		if root.Read != nil {
			summary := queryir.Inspect(root.Read)
			e.metrics.ObserveRead(root.Kind, root.Entity, summary.Depth, summary.Leaves)
		}
		result.RootOperations = append(result.RootOperations, root)
	}
	return result, nil
}

func (e *Engine) compileRoot(field *selection.Field) (RootOperation, error) {
	if field.Name == typenames.NodeField {
		return e.compileNode(field)
	}

	entity := e.model.EntityForRootField(field.Name)
	if entity == nil {
		return RootOperation{}, &compiler.UnknownFieldError{Field: field.Name, Owner: typenames.Query}
	}
	read, err := e.compiler.ParseOperation(field, entity)
	if err != nil {
		return RootOperation{}, err
	}
	return RootOperation{
		Alias:  field.Alias,
		Field:  field.Name,
		Kind:   KindRead,
		Entity: entity.Name,
		Read:   read,
	}, nil
}

// compileNode resolves node(id:) to one globally addressable entity.
func (e *Engine) compileNode(field *selection.Field) (RootOperation, error) {
	root := RootOperation{Alias: field.Alias, Field: field.Name, Kind: KindNode}

	raw, ok := field.Arg(schema.GlobalIDField)
	if !ok || value.IsNull(raw) {
		return RootOperation{}, &compiler.InvalidArgumentError{
			Argument: schema.GlobalIDField,
			Message:  "node requires an id",
		}
	}
	encoded, ok := raw.(value.String)
	if !ok {
		return RootOperation{}, &compiler.InvalidArgumentError{
			Argument: schema.GlobalIDField,
			Message:  fmt.Sprintf("expected a string, got %s", value.TypeName(raw)),
		}
	}
	id, err := globalid.Decode(string(encoded))
	if err != nil {
		return RootOperation{}, &compiler.InvalidArgumentError{
			Argument: schema.GlobalIDField,
			Message:  err.Error(),
		}
	}

	for _, entity := range e.model.GlobalNodeEntities() {
		if entity.Name != id.TypeName || entity.GlobalID.Name != id.Field {
			continue
		}
		read, err := e.compiler.ParseGlobalNodeOperation(field, entity, id.Value)
		if err != nil {
			return RootOperation{}, err
		}
		root.Entity = entity.Name
		root.Read = read
		return root, nil
	}

	e.logger.Debug("node id matches no entity", "type", id.TypeName, "field", id.Field)
	return root, nil
}
