package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/resolvetree/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                     `json:"valid"`
	Entities int                      `json:"entities"`
	Errors   []schema.ValidationError `json:"errors,omitempty"`
	Cycles   []schema.CycleWarning    `json:"cycles,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [schema]",
		Short: "Validate a schema definition",
		Long: `Validate a schema definition (CUE directory, .cue or .yaml file).

Reports every structural and semantic error, and lists relationship cycles
as information: cycles are legal but make selection depth client-bounded,
so a max_depth limit is worth configuring.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config.Schema
			if len(args) > 0 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	def, err := loadDefinition(path)
	if err != nil {
		return reportFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded %d entities from %s", len(def.Entities), path)

	result := ValidationResult{Entities: len(def.Entities)}
	model, err := schema.Build(def)
	if err != nil {
		var verrs schema.ValidationErrors
		if !errors.As(err, &verrs) {
			return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
		}
		result.Errors = verrs
		return outputValidationErrors(formatter, result)
	}

	result.Valid = true
	result.Cycles = schema.AnalyzeCycles(model)
	return outputValidateSuccess(formatter, result)
}

// outputValidateSuccess outputs successful validation.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Schema is valid (%d entities)\n", result.Entities)
	for _, c := range result.Cycles {
		fmt.Fprintf(formatter.Writer, "  info: cycle %s\n", strings.Join(c.Path, " → "))
	}
	return nil
}

// outputValidationErrors outputs validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		first := result.Errors[0]
		if err := formatter.Respond(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: first.Code, Message: first.Error()},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", e.Code, e.Field, e.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
