package engine

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/roach88/resolvetree/internal/compiler"
	"github.com/roach88/resolvetree/internal/selection"
)

// Codes for errors that do not come from the compiler.
const (
	ErrCodeParseFailed = "GRAPHQL_PARSE_FAILED"
	ErrCodeCanceled    = "CANCELED"
	ErrCodeInternal    = "INTERNAL"
)

// ErrorCode returns the client-facing code of a Compile error.
func ErrorCode(err error) string {
	if code := compiler.CodeOf(err); code != "" {
		return string(code)
	}
	var pe *selection.ParseError
	switch {
	case errors.As(err, &pe):
		return ErrCodeParseFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeCanceled
	default:
		return ErrCodeInternal
	}
}

// FormatError renders a Compile error as a GraphQL error with
// extensions.code set. Parse errors keep their source locations.
func FormatError(err error) gqlerrors.FormattedError {
	fe := gqlerrors.FormatError(err)
	fe.Message = err.Error()

	var pe *selection.ParseError
	if errors.As(err, &pe) {
		fe.Message = pe.Message
		fe.Locations = pe.Locations
	}
	fe.Extensions = map[string]interface{}{"code": ErrorCode(err)}
	return fe
}
