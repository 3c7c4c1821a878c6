package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of a conversion or loading error
type ErrorType string

const (
	ErrTypeConfig            ErrorType = "config"
	ErrTypeSchemaMismatch    ErrorType = "schema_mismatch"
	ErrTypeOrderMismatch     ErrorType = "order_mismatch"
	ErrTypeUnsupportedFormat ErrorType = "unsupported_format"
	ErrTypeIntegrity         ErrorType = "integrity"
	ErrTypeNotFound          ErrorType = "not_found"
	ErrTypeNotUnique         ErrorType = "not_unique"
	ErrTypeNotATar           ErrorType = "not_a_tar"
	ErrTypeMissingManifest   ErrorType = "missing_manifest"
	ErrTypeInternal          ErrorType = "internal"
)

// ConversionError represents a failure of the converter or the loader.
// Stage, Resource and Version name what failed so the message can be acted on
// without a debugger.
type ConversionError struct {
	Type     ErrorType
	Stage    string
	Resource string
	Version  string
	Message  string
	Cause    error
	Context  map[string]interface{}
}

// Error implements the error interface
func (e *ConversionError) Error() string {
	if e == nil {
		return "unknown conversion error"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.Type)
	if e.Stage != "" {
		b.WriteString(e.Stage)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)

	var where []string
	if e.Resource != "" {
		where = append(where, "resource="+e.Resource)
	}
	if e.Version != "" {
		where = append(where, "version="+e.Version)
	}
	if len(where) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(where, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to reach the cause
func (e *ConversionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches sentinel errors by type, so errors.Is(err, ErrNotFound) works
// for any not-found error regardless of message.
func (e *ConversionError) Is(target error) bool {
	t, ok := target.(*ConversionError)
	if !ok || e == nil {
		return false
	}
	return t.Message == "" && t.Stage == "" && t.Resource == "" && t.Type == e.Type
}

// WithContext adds context to the error
func (e *ConversionError) WithContext(key string, value interface{}) *ConversionError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithStage sets the stage if it is not already set
func (e *ConversionError) WithStage(stage string) *ConversionError {
	if e.Stage == "" {
		e.Stage = stage
	}
	return e
}

// WithResource sets the resource name
func (e *ConversionError) WithResource(resource string) *ConversionError {
	e.Resource = resource
	return e
}

// WithVersion sets the dataset version
func (e *ConversionError) WithVersion(version string) *ConversionError {
	e.Version = version
	return e
}

// Sentinels for errors.Is
var (
	ErrConfig            = &ConversionError{Type: ErrTypeConfig}
	ErrSchemaMismatch    = &ConversionError{Type: ErrTypeSchemaMismatch}
	ErrOrderMismatch     = &ConversionError{Type: ErrTypeOrderMismatch}
	ErrUnsupportedFormat = &ConversionError{Type: ErrTypeUnsupportedFormat}
	ErrIntegrity         = &ConversionError{Type: ErrTypeIntegrity}
	ErrNotFound          = &ConversionError{Type: ErrTypeNotFound}
	ErrNotUnique         = &ConversionError{Type: ErrTypeNotUnique}
	ErrNotATar           = &ConversionError{Type: ErrTypeNotATar}
	ErrMissingManifest   = &ConversionError{Type: ErrTypeMissingManifest}
	ErrInternal          = &ConversionError{Type: ErrTypeInternal}
)

// NewConversionError creates a conversion error of the given type
func NewConversionError(errType ErrorType, message string, cause error) *ConversionError {
	return &ConversionError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError reports an unknown version or missing registry key
func NewConfigError(message string, cause error) *ConversionError {
	return NewConversionError(ErrTypeConfig, message, cause)
}

// NewSchemaMismatch reports raw headers that do not satisfy the mapping
func NewSchemaMismatch(message string) *ConversionError {
	return NewConversionError(ErrTypeSchemaMismatch, message, nil)
}

// NewOrderMismatch wraps a positional axis disagreement
func NewOrderMismatch(cause error) *ConversionError {
	return NewConversionError(ErrTypeOrderMismatch, "axis order disagrees with principal production", cause)
}

// NewUnsupportedFormat reports a source format a stage cannot read
func NewUnsupportedFormat(format, stage string) *ConversionError {
	e := NewConversionError(ErrTypeUnsupportedFormat, fmt.Sprintf("unsupported format %q", format), nil)
	e.Stage = stage
	return e
}

// NewIntegrityError reports a manifest that does not match the archive
func NewIntegrityError(resource, message string) *ConversionError {
	e := NewConversionError(ErrTypeIntegrity, message, nil)
	e.Resource = resource
	return e
}

// NewNotFoundError reports a resource missing from a manifest
func NewNotFoundError(resource string) *ConversionError {
	e := NewConversionError(ErrTypeNotFound, fmt.Sprintf("resource %q not found in datapackage", resource), nil)
	e.Resource = resource
	return e
}

// NewNotUniqueError reports a resource name listed more than once
func NewNotUniqueError(resource string, count int) *ConversionError {
	e := NewConversionError(ErrTypeNotUnique, fmt.Sprintf("resource %q listed %d times in datapackage", resource, count), nil)
	e.Resource = resource
	return e
}

// NewInternalError reports a broken internal invariant
func NewInternalError(message string, cause error) *ConversionError {
	return NewConversionError(ErrTypeInternal, message, cause)
}

// GetErrorType returns the type of err, or "" when err is not a ConversionError
func GetErrorType(err error) ErrorType {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ""
}
