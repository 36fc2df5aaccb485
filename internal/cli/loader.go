package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/resolvetree/internal/schema"
	"github.com/roach88/resolvetree/internal/store"
)

// SchemaSource describes where a model was loaded from.
type SchemaSource struct {
	Path  string `json:"path,omitempty"`
	Hash  string `json:"hash,omitempty"`
	Label string `json:"label,omitempty"`
}

// LoadFailure is a schema loading failure ready for output.
type LoadFailure struct {
	Exit    int
	Code    string
	Message string
	Details interface{}
}

func (e *LoadFailure) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// report outputs the failure through formatter and returns the exit error.
func (e *LoadFailure) report(formatter *OutputFormatter) error {
	return formatter.Fail(e.Exit, e.Code, e.Message, e.Details)
}

// loadDefinition reads a schema definition from a path.
func loadDefinition(path string) (*schema.Definition, error) {
	if path == "" {
		return nil, &LoadFailure{Exit: ExitCommandError, Code: ErrCodeInvalidArgs, Message: "no schema given: use --schema or set schema in the config file"}
	}
	def, err := schema.Load(path)
	if err != nil {
		var loadErr *schema.LoadError
		if errors.As(err, &loadErr) {
			exit := ExitFailure
			if loadErr.Code == schema.ErrCodeNotFound {
				exit = ExitCommandError
			}
			return nil, &LoadFailure{Exit: exit, Code: loadErr.Code, Message: loadErr.Error()}
		}
		return nil, &LoadFailure{Exit: ExitFailure, Code: ErrCodeGeneric, Message: err.Error()}
	}
	return def, nil
}

// buildModel resolves def, reporting validation errors as a failure.
func buildModel(def *schema.Definition) (*schema.Model, error) {
	model, err := schema.Build(def)
	if err != nil {
		var verrs schema.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, &LoadFailure{
				Exit:    ExitFailure,
				Code:    verrs[0].Code,
				Message: fmt.Sprintf("schema has %d validation error(s)", len(verrs)),
				Details: []schema.ValidationError(verrs),
			}
		}
		return nil, &LoadFailure{Exit: ExitFailure, Code: ErrCodeGeneric, Message: err.Error()}
	}
	return model, nil
}

// loadModel loads a model from a schema path, or from the snapshot store at
// dbPath when one is given. With a store, ref is a snapshot reference and
// defaults to the latest snapshot.
func loadModel(ctx context.Context, ref, dbPath string) (*schema.Model, SchemaSource, error) {
	if dbPath == "" {
		def, err := loadDefinition(ref)
		if err != nil {
			return nil, SchemaSource{}, err
		}
		model, err := buildModel(def)
		return model, SchemaSource{Path: ref}, err
	}

	st, err := openStore(dbPath)
	if err != nil {
		return nil, SchemaSource{}, err
	}
	defer st.Close()

	if ref == "" {
		ref = "latest"
	}
	snap, err := st.GetSchema(ctx, ref)
	if err != nil {
		exit := ExitCommandError
		code := ErrCodeStore
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrAmbiguous) {
			code = ErrCodeNotFound
		}
		return nil, SchemaSource{}, &LoadFailure{Exit: exit, Code: code, Message: err.Error()}
	}
	model, err := buildModel(snap.Definition)
	return model, SchemaSource{Hash: snap.Hash, Label: snap.Label}, err
}

func openStore(dbPath string) (*store.Store, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, &LoadFailure{Exit: ExitCommandError, Code: ErrCodeStore, Message: fmt.Sprintf("opening snapshot store: %v", err)}
	}
	return st, nil
}

// reportFailure outputs err through formatter. LoadFailures keep their code
// and exit status; anything else is a generic command error.
func reportFailure(formatter *OutputFormatter, err error) error {
	var lf *LoadFailure
	if errors.As(err, &lf) {
		return lf.report(formatter)
	}
	return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}
