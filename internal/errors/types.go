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
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeInternal   ErrorType = "internal"
)

// FrontNoteError is a structured error type with context.
type FrontNoteError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	FilePath    string
	Line        int
	Recoverable bool
}

// Error implements the error interface.
func (e *FrontNoteError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *FrontNoteError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *FrontNoteError) Is(target error) bool {
	var t *FrontNoteError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *FrontNoteError) WithContext(key string, value interface{}) *FrontNoteError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds file location information.
func (e *FrontNoteError) WithLocation(filePath string, line int) *FrontNoteError {
	e.FilePath = filePath
	e.Line = line

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *FrontNoteError {
	return &FrontNoteError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *FrontNoteError {
	return &FrontNoteError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *FrontNoteError {
	return &FrontNoteError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewRenderError creates a template or markdown rendering error.
func NewRenderError(code, message string, cause error) *FrontNoteError {
	return &FrontNoteError{
		Type:        ErrorTypeRender,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *FrontNoteError {
	return &FrontNoteError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsRecoverable checks if an error is recoverable. Watch mode keeps running
// after recoverable errors.
func IsRecoverable(err error) bool {
	var fe *FrontNoteError
	if errors.As(err, &fe) {
		return fe.Recoverable
	}

	return false
}

// IsIOError checks if an error is I/O related.
func IsIOError(err error) bool {
	return hasType(err, ErrorTypeIO)
}

// IsConfigError checks if an error is configuration related.
func IsConfigError(err error) bool {
	return hasType(err, ErrorTypeConfig)
}

// IsRenderError checks if an error comes from page rendering.
func IsRenderError(err error) bool {
	return hasType(err, ErrorTypeRender)
}

func hasType(err error, t ErrorType) bool {
	var fe *FrontNoteError
	if errors.As(err, &fe) {
		return fe.Type == t
	}

	return false
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err with a message chosen by its type. Recoverable errors
// are logged as warnings.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var fe *FrontNoteError
	if !errors.As(err, &fe) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	fields := []interface{}{"type", fe.Type, "code", fe.Code}
	if fe.FilePath != "" {
		fields = append(fields, "file", fe.FilePath)
	}

	msg := Message(err)
	if fe.Recoverable {
		h.logger.Warn(ctx, fe, msg, fields...)
		return
	}
	h.logger.Error(ctx, fe, msg, fields...)
}

// Message returns a short log message naming the kind of err.
func Message(err error) string {
	switch {
	case IsIOError(err):
		return "File operation failed"
	case IsConfigError(err):
		return "Invalid configuration"
	case IsRenderError(err):
		return "Rendering failed"
	case IsRecoverable(err):
		return "Recoverable error occurred"
	default:
		return "Error occurred"
	}
}

// Common error codes.
const (
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeReadFailed       = "ERR_READ_FAILED"
	ErrCodeWriteFailed      = "ERR_WRITE_FAILED"
	ErrCodeCopyFailed       = "ERR_COPY_FAILED"
	ErrCodeInvalidPattern   = "ERR_INVALID_PATTERN"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeTemplateInvalid  = "ERR_TEMPLATE_INVALID"
	ErrCodeRenderFailed     = "ERR_RENDER_FAILED"
	ErrCodeCacheFailed      = "ERR_CACHE_FAILED"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
	ErrCodeInternalError    = "ERR_INTERNAL"
)

// FieldValidationError describes one invalid configuration field.
type FieldValidationError struct {
	FieldName    string
	FieldValue   interface{}
	ErrorMessage string
	HelpText     []string
}

// Error implements the error interface.
func (fve *FieldValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", fve.FieldName, fve.ErrorMessage)
}

// NewFieldValidationError creates a new field validation error.
func NewFieldValidationError(
	field string,
	value interface{},
	message string,
	suggestions ...string,
) *FieldValidationError {
	return &FieldValidationError{
		FieldName:    field,
		FieldValue:   value,
		ErrorMessage: message,
		HelpText:     suggestions,
	}
}

// ValidationErrorCollection represents a collection of validation errors.
type ValidationErrorCollection struct {
	Errors []*FieldValidationError
}

// Error implements the error interface.
func (vec *ValidationErrorCollection) Error() string {
	if len(vec.Errors) == 0 {
		return "no validation errors"
	}
	if len(vec.Errors) == 1 {
		return vec.Errors[0].Error()
	}

	return fmt.Sprintf("validation failed with %d errors", len(vec.Errors))
}

// AddField adds a field validation error to the collection.
func (vec *ValidationErrorCollection) AddField(
	field string,
	value interface{},
	message string,
	suggestions ...string,
) {
	vec.Errors = append(vec.Errors, NewFieldValidationError(field, value, message, suggestions...))
}

// HasErrors returns true if there are any validation errors.
func (vec *ValidationErrorCollection) HasErrors() bool {
	return len(vec.Errors) > 0
}

// ToFrontNoteError converts the collection to a config error, nil when
// the collection is empty.
func (vec *ValidationErrorCollection) ToFrontNoteError() *FrontNoteError {
	if !vec.HasErrors() {
		return nil
	}

	messages := make([]string, 0, len(vec.Errors))
	context := make(map[string]interface{}, len(vec.Errors))

	for _, err := range vec.Errors {
		messages = append(messages, err.Error())
		context[err.FieldName] = map[string]interface{}{
			"value":       err.FieldValue,
			"suggestions": err.HelpText,
		}
	}

	fe := NewConfigError(ErrCodeConfigInvalid, strings.Join(messages, "; "), nil)
	fe.Context = context
	return fe
}

// ErrFileNotFound creates a missing file error.
func ErrFileNotFound(path string, cause error) *FrontNoteError {
	return NewIOError(ErrCodeFileNotFound, "file not found", cause).WithLocation(path, 0)
}

// ErrReadFailed creates a read failure error.
func ErrReadFailed(path string, cause error) *FrontNoteError {
	return NewIOError(ErrCodeReadFailed, "read failed", cause).WithLocation(path, 0)
}

// ErrWriteFailed creates a write failure error.
func ErrWriteFailed(path string, cause error) *FrontNoteError {
	return NewIOError(ErrCodeWriteFailed, "write failed", cause).WithLocation(path, 0)
}

// ErrInvalidPattern creates an invalid glob pattern error.
func ErrInvalidPattern(pattern string, cause error) *FrontNoteError {
	err := NewValidationError(ErrCodeInvalidPattern, "invalid pattern: "+pattern)
	err.Cause = cause
	return err
}
