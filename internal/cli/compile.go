package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/resolvetree/internal/engine"
	"github.com/roach88/resolvetree/internal/irtext"
	"github.com/roach88/resolvetree/internal/metrics"
	"github.com/roach88/resolvetree/internal/value"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Schema    string // schema path, or snapshot reference with --db
	DB        string // snapshot store path
	Query     string // inline query text
	Variables string // variables as a JSON object
	Operation string // operation name
	Output    string // output file path
	MaxDepth  int
	MaxFields int
}

// CompileOutput is the JSON payload of a successful compile.
type CompileOutput struct {
	Schema SchemaSource   `json:"schema"`
	Result *engine.Result `json:"result"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [query-file]",
		Short: "Compile a GraphQL read request to query IR",
		Long: `Compile a GraphQL read request against a schema and print the query IR.

The request is read from query-file ("-" for stdin) or --query. The schema is
a CUE directory, .cue or .yaml file given with --schema; with --db, --schema
names a stored snapshot instead (hash, hash prefix, label or "latest").

Exit codes:
  0 - Request compiled
  1 - Request or schema rejected
  2 - Command error (missing files, store errors, etc.)

Examples:
  resolvetree compile --schema ./schema query.graphql
  resolvetree compile --schema movies.cue --query '{ movies { connection { edges { node { title } } } } }'
  resolvetree compile --db snapshots.db --schema latest query.graphql --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "schema path, or snapshot reference with --db")
	cmd.Flags().StringVar(&opts.DB, "db", "", "schema snapshot store")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "query text")
	cmd.Flags().StringVar(&opts.Variables, "variables", "", "variables as a JSON object")
	cmd.Flags().StringVar(&opts.Operation, "operation", "", "operation name")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the result as JSON to this file")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "maximum nested reads (0 = config or unlimited)")
	cmd.Flags().IntVar(&opts.MaxFields, "max-fields", 0, "maximum selected fields (0 = config or unlimited)")

	return cmd
}

func runCompile(opts *CompileOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	query, err := readQuery(opts, args, cmd.InOrStdin())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs, err.Error(), nil)
	}
	var variables value.Object
	if opts.Variables != "" {
		variables, err = value.UnmarshalObject([]byte(opts.Variables))
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs, fmt.Sprintf("parsing --variables: %v", err), nil)
		}
	}

	schemaRef := firstNonEmpty(opts.Schema, opts.Config.Schema)
	dbPath := firstNonEmpty(opts.DB, opts.Config.Database)
	model, source, err := loadModel(ctx, schemaRef, dbPath)
	if err != nil {
		return reportFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded schema with %d entities", len(model.Entities()))

	limits := opts.Config.Limits
	if opts.MaxDepth > 0 {
		limits.MaxDepth = opts.MaxDepth
	}
	if opts.MaxFields > 0 {
		limits.MaxFields = opts.MaxFields
	}

	reg := prometheus.NewRegistry()
	eng := engine.New(model,
		engine.WithLogger(opts.logger()),
		engine.WithMetrics(metrics.New(reg)),
		engine.WithLimits(limits),
	)

	result, err := eng.Compile(ctx, engine.Request{
		Query:         query,
		Variables:     variables,
		OperationName: opts.Operation,
	})
	logMetrics(formatter, reg)
	if err != nil {
		fe := engine.FormatError(err)
		return formatter.Fail(ExitFailure, engine.ErrorCode(err), fe.Message, fe)
	}

	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, source, result, opts.Output)
}

// readQuery returns the request text from --query or the query file.
func readQuery(opts *CompileOptions, args []string, stdin io.Reader) (string, error) {
	switch {
	case opts.Query != "" && len(args) > 0:
		return "", fmt.Errorf("give either --query or a query file, not both")
	case opts.Query != "":
		return opts.Query, nil
	case len(args) == 0:
		return "", fmt.Errorf("no query given: pass a query file, \"-\" for stdin, or --query")
	case args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading query file: %w", err)
		}
		return string(data), nil
	}
}

// outputCompileSuccess outputs the compiled request.
func outputCompileSuccess(formatter *OutputFormatter, source SchemaSource, result *engine.Result, outputFile string) error {
	if formatter.JSON() {
		return formatter.Respond(CLIResponse{
			Status:    "ok",
			Data:      CompileOutput{Schema: source, Result: result},
			RequestID: result.RequestID,
		})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d root operation(s)\n\n", len(result.RootOperations))
	for _, root := range result.RootOperations {
		if root.Read == nil {
			fmt.Fprintf(w, "%s: null (id matches no entity)\n\n", root.Alias)
			continue
		}
		text, err := irtext.Render(root.Read)
		if err != nil {
			return formatter.Fail(ExitCommandError, engine.ErrCodeInternal, err.Error(), nil)
		}
		fmt.Fprintln(w, text)
	}

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote query IR to %s\n", outputFile)
	}
	return nil
}

// logMetrics prints the compile counters in verbose mode.
func logMetrics(formatter *OutputFormatter, reg *prometheus.Registry) {
	if !formatter.Verbose {
		return
	}
	families, err := reg.Gather()
	if err != nil {
		formatter.VerboseLog("gathering metrics: %v", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				formatter.VerboseLog("%s%s %g", mf.GetName(), labelString(m.GetLabel()), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				formatter.VerboseLog("%s%s count=%d sum=%g", mf.GetName(), labelString(m.GetLabel()),
					m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			}
		}
	}
}

func labelString[L interface {
	GetName() string
	GetValue() string
}](labels []L) string {
	if len(labels) == 0 {
		return ""
	}
	s := "{"
	for i, l := range labels {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%s=%q", l.GetName(), l.GetValue())
	}
	return s + "}"
}

// writeResultToFile writes the compile result as indented JSON.
func writeResultToFile(result *engine.Result, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
