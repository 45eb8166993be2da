package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error with wrapped error",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "failed to read input",
				Err:     errors.New("file not found"),
			},
			expected: "input: failed to read input: file not found",
		},
		{
			name: "error without wrapped error",
			appError: &AppError{
				Type:    ErrorTypeParsing,
				Message: "invalid JSON syntax",
				Err:     nil,
			},
			expected: "parsing: invalid JSON syntax",
		},
		{
			name: "error with stage",
			appError: &AppError{
				Type:    ErrorTypeProcessing,
				Stage:   "flatten",
				Message: "stage failed",
				Err:     ErrUnexpected,
			},
			expected: "processing[flatten]: stage failed: unexpected processing error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	appErr := &AppError{
		Type:    ErrorTypeInput,
		Message: "test message",
		Err:     wrappedErr,
	}

	result := appErr.Unwrap()
	assert.Equal(t, wrappedErr, result)
}

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		target   error
		expected bool
	}{
		{
			name:     "same type",
			appError: &AppError{Type: ErrorTypeValidation, Message: "test message"},
			target:   &AppError{Type: ErrorTypeValidation, Message: "different message", Err: errors.New("some error")},
			expected: true,
		},
		{
			name:     "different type",
			appError: &AppError{Type: ErrorTypeInput, Message: "test message"},
			target:   &AppError{Type: ErrorTypeParsing, Message: "test message"},
			expected: false,
		},
		{
			name:     "not an AppError",
			appError: &AppError{Type: ErrorTypeInput, Message: "test message"},
			target:   errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Is(tt.target)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppError_WrapsSentinels(t *testing.T) {
	err := NewValidationError("top-level value is an object", ErrNotAnArray)
	assert.True(t, errors.Is(err, ErrNotAnArray))
	assert.False(t, errors.Is(err, ErrEmptyArray))

	wrapped := fmt.Errorf("submission: %w", NewValidationError("empty", ErrEmptyArray))
	assert.True(t, IsWarning(wrapped))
	assert.False(t, IsWarning(err))
}

func TestInvalidElementsError(t *testing.T) {
	err := NewValidationError("non-object elements", &InvalidElementsError{Indices: []int{0, 1}})

	assert.True(t, errors.Is(err, ErrInvalidElements))

	var elemErr *InvalidElementsError
	if assert.True(t, errors.As(err, &elemErr)) {
		assert.Equal(t, []int{0, 1}, elemErr.Indices)
	}
	assert.Contains(t, err.Error(), "offending indices: [0, 1]")
}

func TestUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "input error",
			err:      NewInputError("failed to read file", nil),
			expected: "Input error: failed to read file",
		},
		{
			name:     "parsing error",
			err:      NewParsingError("JSON syntax error at line 1, column 5", ErrInvalidJSON),
			expected: "JSON parsing error: JSON syntax error at line 1, column 5. Check quotes, commas and brackets.\n" + expectedFormat,
		},
		{
			name:     "not an array",
			err:      NewValidationError("top-level value is an object", ErrNotAnArray),
			expected: "Validation error: the JSON must be a list of objects (array).\n" + expectedFormat,
		},
		{
			name:     "empty array",
			err:      NewValidationError("array has no elements", ErrEmptyArray),
			expected: "Warning: the list is empty. Add at least one JSON object.",
		},
		{
			name:     "invalid elements",
			err:      NewValidationError("non-object elements", &InvalidElementsError{Indices: []int{0, 1}}),
			expected: "Validation error: every element of the list must be a JSON object. Offending indices: [0, 1]",
		},
		{
			name:     "processing error",
			err:      NewProcessingError("build", "failed to build table", errors.New("boom")),
			expected: "Unexpected error while processing the data: failed to build table\nTechnical detail: boom",
		},
		{
			name:     "export error",
			err:      NewExportError("failed to write CSV", nil),
			expected: "Export error: failed to write CSV",
		},
		{
			name:     "output error",
			err:      NewOutputError("failed to write output", nil),
			expected: "Output error: failed to write output",
		},
		{
			name:     "config error",
			err:      NewConfigError("unknown export format \"xml\"", nil),
			expected: "Configuration error: unknown export format \"xml\"",
		},
		{
			name:     "standard error - empty input",
			err:      ErrEmptyInput,
			expected: "Error: The input is empty. Please provide valid JSON data.",
		},
		{
			name:     "standard error - invalid JSON",
			err:      ErrInvalidJSON,
			expected: "Error: The input contains invalid JSON. Please check your JSON syntax.",
		},
		{
			name:     "unknown error",
			err:      errors.New("some unknown error"),
			expected: "Error: some unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := UserFriendlyError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
