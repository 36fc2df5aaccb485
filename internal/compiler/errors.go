package compiler

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes compile errors. It is surfaced to clients as the
// GraphQL error extension "code".
type ErrorCode string

const (
	// ErrCodeUnknownField indicates a selected field is neither an attribute
	// nor a relationship of its owner.
	ErrCodeUnknownField ErrorCode = "UNKNOWN_FIELD"

	// ErrCodeInvalidSortField indicates a sort key names a missing attribute.
	ErrCodeInvalidSortField ErrorCode = "INVALID_SORT_FIELD"

	// ErrCodeInvalidSortDirection indicates a direction other than ASC or DESC.
	ErrCodeInvalidSortDirection ErrorCode = "INVALID_SORT_DIRECTION"

	// ErrCodeInvalidArgument indicates an argument of the wrong shape.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeLimitExceeded indicates the selection exceeds a compile limit.
	ErrCodeLimitExceeded ErrorCode = "LIMIT_EXCEEDED"

	// ErrCodeDuplicateComponent indicates one spatial component selected
	// under two response keys.
	ErrCodeDuplicateComponent ErrorCode = "DUPLICATE_COMPONENT"
)

// Error is implemented by every compile error.
type Error interface {
	error
	Code() ErrorCode
}

// UnknownFieldError is returned when a selected field matches neither an
// attribute nor a relationship of the owning type.
type UnknownFieldError struct {
	Field string // The selected field name
	Owner string // The owning type name
}

// Error implements the error interface.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q on type %q", e.Field, e.Owner)
}

// Code returns ErrCodeUnknownField.
func (e *UnknownFieldError) Code() ErrorCode { return ErrCodeUnknownField }

// InvalidSortFieldError is returned when a sort key references a field that
// is not an attribute of the sorted entity or relationship.
type InvalidSortFieldError struct {
	Field string // The sort key
	Owner string // The entity or properties type the key was checked against
}

// Error implements the error interface.
func (e *InvalidSortFieldError) Error() string {
	if e.Owner == "" {
		return fmt.Sprintf("invalid sort field %q", e.Field)
	}
	return fmt.Sprintf("invalid sort field %q on type %q", e.Field, e.Owner)
}

// Code returns ErrCodeInvalidSortField.
func (e *InvalidSortFieldError) Code() ErrorCode { return ErrCodeInvalidSortField }

// InvalidSortDirectionError is returned when a sort direction is not exactly
// "ASC" or "DESC".
type InvalidSortDirectionError struct {
	Field     string // The sort key
	Direction string // The offending direction value
}

// Error implements the error interface.
func (e *InvalidSortDirectionError) Error() string {
	return fmt.Sprintf("invalid sort direction %q for field %q: must be ASC or DESC", e.Direction, e.Field)
}

// Code returns ErrCodeInvalidSortDirection.
func (e *InvalidSortDirectionError) Code() ErrorCode { return ErrCodeInvalidSortDirection }

// InvalidArgumentError is returned when an argument value has the wrong
// shape, such as a where that is not an object or a negative first.
type InvalidArgumentError struct {
	Argument string // Path of the argument, e.g. "sort[1].node"
	Message  string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Argument, e.Message)
}

// Code returns ErrCodeInvalidArgument.
func (e *InvalidArgumentError) Code() ErrorCode { return ErrCodeInvalidArgument }

// LimitExceededError is returned when a selection exceeds a configured
// compile limit.
type LimitExceededError struct {
	Limit string // "depth" or "fields"
	Value int    // Observed value
	Max   int    // Configured maximum
}

// Error implements the error interface.
func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("selection exceeds max %s: %d > %d", e.Limit, e.Value, e.Max)
}

// Code returns ErrCodeLimitExceeded.
func (e *LimitExceededError) Code() ErrorCode { return ErrCodeLimitExceeded }

// DuplicateComponentError is returned when a Point or CartesianPoint
// component is selected under more than one alias. A spatial value is
// projected as one map, so each component has a single response key.
type DuplicateComponentError struct {
	Component string // The component name, e.g. "latitude"
	Owner     string // "Point" or "CartesianPoint"
	Aliases   [2]string
}

// Error implements the error interface.
func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("component %q of type %q selected as both %q and %q",
		e.Component, e.Owner, e.Aliases[0], e.Aliases[1])
}

// Code returns ErrCodeDuplicateComponent.
func (e *DuplicateComponentError) Code() ErrorCode { return ErrCodeDuplicateComponent }

// IsUnknownField returns true if the error is an UnknownFieldError.
// Uses errors.As to handle wrapped errors.
func IsUnknownField(err error) bool {
	var e *UnknownFieldError
	return errors.As(err, &e)
}

// IsInvalidSortField returns true if the error is an InvalidSortFieldError.
func IsInvalidSortField(err error) bool {
	var e *InvalidSortFieldError
	return errors.As(err, &e)
}

// IsInvalidSortDirection returns true if the error is an
// InvalidSortDirectionError.
func IsInvalidSortDirection(err error) bool {
	var e *InvalidSortDirectionError
	return errors.As(err, &e)
}

// IsInvalidArgument returns true if the error is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var e *InvalidArgumentError
	return errors.As(err, &e)
}

// IsLimitExceeded returns true if the error is a LimitExceededError.
func IsLimitExceeded(err error) bool {
	var e *LimitExceededError
	return errors.As(err, &e)
}

// IsDuplicateComponent returns true if the error is a DuplicateComponentError.
func IsDuplicateComponent(err error) bool {
	var e *DuplicateComponentError
	return errors.As(err, &e)
}

// CodeOf returns the code of a compile error, or "" if err is not one.
func CodeOf(err error) ErrorCode {
	var e Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return ""
}
