package errors

import (
	"context"
	"fmt"
	"io/fs"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontNoteErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *FrontNoteError
		expected string
	}{
		{
			name:     "message only",
			err:      &FrontNoteError{Message: "boom"},
			expected: "boom",
		},
		{
			name:     "code and location",
			err:      NewIOError(ErrCodeReadFailed, "read failed", nil).WithLocation("a.css", 3),
			expected: "[ERR_READ_FAILED] a.css:3 read failed",
		},
		{
			name:     "with cause",
			err:      NewIOError(ErrCodeReadFailed, "read failed", fs.ErrPermission),
			expected: "[ERR_READ_FAILED] read failed: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestFrontNoteErrorUnwrapAndIs(t *testing.T) {
	err := ErrReadFailed("a.css", fs.ErrNotExist)
	wrapped := fmt.Errorf("scan: %w", err)

	assert.True(t, Is(wrapped, fs.ErrNotExist))
	assert.True(t, Is(wrapped, &FrontNoteError{Type: ErrorTypeIO, Code: ErrCodeReadFailed}))
	assert.False(t, Is(wrapped, &FrontNoteError{Type: ErrorTypeIO, Code: ErrCodeWriteFailed}))

	var fe *FrontNoteError
	require.True(t, As(wrapped, &fe))
	assert.Equal(t, "a.css", fe.FilePath)
}

func TestTypeHelpers(t *testing.T) {
	ioErr := NewIOError(ErrCodeReadFailed, "x", nil)
	cfgErr := NewConfigError(ErrCodeConfigInvalid, "x", nil)
	renderErr := NewRenderError(ErrCodeRenderFailed, "x", nil)
	plain := fmt.Errorf("plain")

	assert.True(t, IsIOError(ioErr))
	assert.False(t, IsIOError(cfgErr))
	assert.True(t, IsConfigError(cfgErr))
	assert.True(t, IsRenderError(renderErr))
	assert.False(t, IsRenderError(plain))

	assert.True(t, IsRecoverable(renderErr))
	assert.True(t, IsRecoverable(NewValidationError(ErrCodeValidationFailed, "x")))
	assert.False(t, IsRecoverable(ioErr))
	assert.False(t, IsRecoverable(plain))

	assert.Equal(t, "Error occurred", Message(NewInternalError(ErrCodeInternalError, "x", nil)))
	assert.Equal(t, "Error occurred", Message(plain))
}

func TestWithContext(t *testing.T) {
	err := NewInternalError(ErrCodeInternalError, "x", nil).
		WithContext("pages", 3).
		WithContext("out", "guide")

	assert.Equal(t, 3, err.Context["pages"])
	assert.Equal(t, "guide", err.Context["out"])
}

func TestErrInvalidPattern(t *testing.T) {
	cause := fmt.Errorf("unexpected end")
	err := ErrInvalidPattern("[a", cause)

	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "[a")
}

func TestValidationErrorCollection(t *testing.T) {
	var vec ValidationErrorCollection
	assert.False(t, vec.HasErrors())
	assert.Nil(t, vec.ToFrontNoteError())
	assert.Equal(t, "no validation errors", vec.Error())

	vec.AddField("server.port", 70000, "port out of range", "use 0-65535")
	assert.Equal(t, "validation error in field 'server.port': port out of range", vec.Error())

	vec.AddField("out", "", "must not be empty")
	assert.Equal(t, "validation failed with 2 errors", vec.Error())

	fe := vec.ToFrontNoteError()
	require.NotNil(t, fe)
	assert.Equal(t, ErrorTypeConfig, fe.Type)
	assert.Equal(t, ErrCodeConfigInvalid, fe.Code)
	assert.Contains(t, fe.Message, "server.port")
	assert.Contains(t, fe.Message, "out")
	assert.Contains(t, fe.Context, "server.port")
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
	errs  []string
}

func (l *recordingLogger) Error(_ context.Context, _ error, msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, msg)
}

func (l *recordingLogger) Warn(_ context.Context, _ error, msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func TestErrorHandler(t *testing.T) {
	logger := &recordingLogger{}
	h := NewErrorHandler(logger)
	ctx := context.Background()

	h.Handle(ctx, nil)
	h.Handle(ctx, NewRenderError(ErrCodeRenderFailed, "bad template", nil))
	h.Handle(ctx, NewIOError(ErrCodeWriteFailed, "disk full", nil))
	h.Handle(ctx, NewConfigError(ErrCodeConfigInvalid, "bad port", nil))
	h.Handle(ctx, NewValidationError(ErrCodeValidationFailed, "bad overview"))
	h.Handle(ctx, fmt.Errorf("plain"))

	assert.Equal(t, []string{"Rendering failed", "Recoverable error occurred"}, logger.warns)
	assert.Equal(t, []string{"File operation failed", "Invalid configuration", "Unhandled error occurred"}, logger.errs)

	assert.NotPanics(t, func() { NewErrorHandler(nil).Handle(ctx, fmt.Errorf("x")) })
}

func TestErrorSeverityString(t *testing.T) {
	testCases := []struct {
		severity ErrorSeverity
		expected string
	}{
		{ErrorSeverityInfo, "info"},
		{ErrorSeverityWarning, "warning"},
		{ErrorSeverityError, "error"},
		{ErrorSeverity(999), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.severity.String())
		})
	}
}

func TestDiagnosticError(t *testing.T) {
	d := Diagnostic{File: "a.css", Line: 4, Message: "unterminated block", Severity: ErrorSeverityWarning}
	assert.Equal(t, "a.css:4: warning: unterminated block", d.Error())

	d.Line = 0
	assert.Equal(t, "a.css: warning: unterminated block", d.Error())
}

func TestErrorCollector(t *testing.T) {
	collector := NewErrorCollector()
	assert.NoError(t, collector.Err())

	collector.Add(Diagnostic{File: "b.css", Line: 2, Message: "x", Severity: ErrorSeverityWarning})
	collector.Add(Diagnostic{File: "a.css", Line: 9, Message: "y", Severity: ErrorSeverityWarning})
	collector.Add(Diagnostic{File: "a.css", Line: 1, Message: "z", Severity: ErrorSeverityWarning})
	collector.AddError(nil)
	assert.NoError(t, collector.Err(), "diagnostics are not errors")

	diags := collector.Diagnostics()
	require.Len(t, diags, 3)
	assert.Equal(t, "z", diags[0].Message)
	assert.Equal(t, "y", diags[1].Message)
	assert.Equal(t, "x", diags[2].Message)
	assert.False(t, diags[0].Timestamp.IsZero())

	first := fmt.Errorf("first")
	collector.AddError(first)
	collector.AddError(fmt.Errorf("second"))
	assert.Len(t, collector.Errors(), 2)
	assert.ErrorIs(t, collector.Err(), first)

	collector.Clear()
	assert.Empty(t, collector.Errors())
	assert.Empty(t, collector.Diagnostics())
}
