// Package errors provides the structured error types used across assetcat.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeBuild      ErrorType = "build"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// AssetError is a structured error type with context.
type AssetError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Path    string
	Context map[string]interface{}
	// Recoverable errors let the pipeline continue with the next source.
	Recoverable bool
}

// Error implements the error interface.
func (e *AssetError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Path != "" {
		parts = append(parts, e.Path+":")
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *AssetError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code.
func (e *AssetError) Is(target error) bool {
	var t *AssetError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *AssetError) WithContext(key string, value interface{}) *AssetError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath attaches the file or directory the error is about.
func (e *AssetError) WithPath(path string) *AssetError {
	e.Path = path

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *AssetError {
	return &AssetError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewBuildError creates a build error.
func NewBuildError(code, message string, cause error) *AssetError {
	return &AssetError{
		Type:        ErrorTypeBuild,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *AssetError {
	return &AssetError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *AssetError {
	return &AssetError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *AssetError {
	return &AssetError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ae *AssetError
	if errors.As(err, &ae) {
		return ae.Recoverable
	}

	return false
}

// IsConfigError checks if an error is configuration-related.
func IsConfigError(err error) bool {
	return hasType(err, ErrorTypeConfig)
}

// IsIOError checks if an error is I/O-related.
func IsIOError(err error) bool {
	return hasType(err, ErrorTypeIO)
}

// IsBuildError checks if an error is build-related.
func IsBuildError(err error) bool {
	return hasType(err, ErrorTypeBuild)
}

func hasType(err error, t ErrorType) bool {
	var ae *AssetError
	if errors.As(err, &ae) {
		return ae.Type == t
	}

	return false
}

// Logger is the subset of the logging interface the handler needs.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// ErrorHandler routes errors to the logger by severity.
type ErrorHandler struct {
	logger Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs recoverable errors as warnings and everything else as errors.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var ae *AssetError
	if !errors.As(err, &ae) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	fields := []interface{}{"type", ae.Type, "code", ae.Code}
	if ae.Path != "" {
		fields = append(fields, "path", ae.Path)
	}

	if ae.Recoverable {
		h.logger.Warn(ctx, err, ae.Message, fields...)
	} else {
		h.logger.Error(ctx, err, ae.Message, fields...)
	}
}

// Common error codes.
const (
	ErrCodeSourceDirMissing = "ERR_SOURCE_DIR_MISSING"
	ErrCodeSourceMissing    = "ERR_SOURCE_MISSING"
	ErrCodeSourceEmpty      = "ERR_SOURCE_EMPTY"
	ErrCodeReadFailed       = "ERR_READ_FAILED"
	ErrCodeWriteFailed      = "ERR_WRITE_FAILED"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeInvalidMode      = "ERR_INVALID_MODE"
	ErrCodePathTraversal    = "ERR_PATH_TRAVERSAL"
	ErrCodeCanceled         = "ERR_CANCELED"
	ErrCodeInternal         = "ERR_INTERNAL"
)

// ErrSourceDirMissing reports a source root that does not exist.
func ErrSourceDirMissing(dir string) *AssetError {
	return NewIOError(ErrCodeSourceDirMissing, "source directory does not exist", nil).WithPath(dir)
}

// ErrSourceMissing reports a configured source file that does not exist.
func ErrSourceMissing(path string) *AssetError {
	return NewBuildError(ErrCodeSourceMissing, "source file not found", nil).WithPath(path)
}

// ErrSourceEmpty reports a configured source file with no content.
func ErrSourceEmpty(path string) *AssetError {
	return NewBuildError(ErrCodeSourceEmpty, "source file is empty", nil).WithPath(path)
}

// ErrReadFailed reports a source that exists but could not be read.
func ErrReadFailed(path string, cause error) *AssetError {
	return NewBuildError(ErrCodeReadFailed, "failed to read source", cause).WithPath(path)
}

// ErrWriteFailed reports a bundle that could not be written.
func ErrWriteFailed(path string, cause error) *AssetError {
	return NewIOError(ErrCodeWriteFailed, "failed to write bundle", cause).WithPath(path)
}

// ErrConfigInvalid reports a rejected configuration value.
func ErrConfigInvalid(field, message string) *AssetError {
	return NewConfigError(ErrCodeConfigInvalid, field+": "+message).WithContext("field", field)
}

// ErrPathTraversal reports a configured path escaping its root.
func ErrPathTraversal(path string) *AssetError {
	return NewConfigError(ErrCodePathTraversal, "path escapes its root").WithPath(path)
}
