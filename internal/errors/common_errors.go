package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the kind of pipeline failure
type ErrorType string

const (
	ErrTypeSourceUnreadable     ErrorType = "SOURCE_UNREADABLE"
	ErrTypeSchemaMismatch       ErrorType = "SCHEMA_MISMATCH"
	ErrTypeAlreadyProcessed     ErrorType = "ALREADY_PROCESSED"
	ErrTypeVerificationFailed   ErrorType = "PERSISTENCE_VERIFICATION_FAILED"
	ErrTypeIdentifierNonConform ErrorType = "IDENTIFIER_NON_CONFORMING"
	ErrTypeInvalidYearTag       ErrorType = "INVALID_YEAR_TAG"
	ErrTypeConfig               ErrorType = "CONFIG"
)

// Context keys used across the pipeline.
const (
	CtxPath     = "path"
	CtxYear     = "year"
	CtxKind     = "kind"
	CtxExpected = "expected"
	CtxFound    = "found"
	CtxMissing  = "missing"
	CtxRow      = "row"
	CtxColumn   = "column"
)

// AppError represents a typed pipeline error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError of the same Type, so a bare
// &AppError{Type: ErrTypeAlreadyProcessed} works as a sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Message == "" || t.Message == e.Message)
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrSourceUnreadable   = &AppError{Type: ErrTypeSourceUnreadable}
	ErrSchemaMismatch     = &AppError{Type: ErrTypeSchemaMismatch}
	ErrAlreadyProcessed   = &AppError{Type: ErrTypeAlreadyProcessed}
	ErrVerificationFailed = &AppError{Type: ErrTypeVerificationFailed}
	ErrInvalidYearTag     = &AppError{Type: ErrTypeInvalidYearTag}
	ErrConfig             = &AppError{Type: ErrTypeConfig}
)

// Is reports whether any error in err's chain is an AppError of the given type.
func Is(err error, errType ErrorType) bool {
	return stderrors.Is(err, &AppError{Type: errType})
}

// TypeOf returns the type of the outermost AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// NewSourceUnreadableError reports a raw file or artifact that is missing or cannot be parsed
func NewSourceUnreadableError(path string, cause error) *AppError {
	return NewAppError(ErrTypeSourceUnreadable, "source unreadable", cause).
		WithContext(CtxPath, path)
}

// NewSchemaMismatchError reports raw columns that do not satisfy the expected layout
func NewSchemaMismatchError(message string, expected, found interface{}) *AppError {
	return NewAppError(ErrTypeSchemaMismatch, message, nil).
		WithContext(CtxExpected, expected).
		WithContext(CtxFound, found)
}

// NewAlreadyProcessedError reports an existing yearly artifact
func NewAlreadyProcessedError(path string, year string) *AppError {
	return NewAppError(ErrTypeAlreadyProcessed, "artifact already exists", nil).
		WithContext(CtxPath, path).
		WithContext(CtxYear, year)
}

// NewVerificationError reports a round-trip mismatch after persisting an artifact
func NewVerificationError(path string, diff string) *AppError {
	return NewAppError(ErrTypeVerificationFailed, "round-trip mismatch", fmt.Errorf("%s", diff)).
		WithContext(CtxPath, path)
}

// NewInvalidYearTagError reports an unknown year tag
func NewInvalidYearTagError(tag string) *AppError {
	return NewAppError(ErrTypeInvalidYearTag, fmt.Sprintf("unknown year tag %q", tag), nil).
		WithContext(CtxYear, tag)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
