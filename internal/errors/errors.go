package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrMultipleJSON    = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrNotAnArray      = errors.New("JSON must be an array of objects")
	ErrEmptyArray      = errors.New("the array is empty")
	ErrInvalidElements = errors.New("every array element must be a JSON object")
	ErrUnexpected      = errors.New("unexpected processing error")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeProcessing ErrorType = "processing"
	ErrorTypeExport     ErrorType = "export"
	ErrorTypeOutput     ErrorType = "output"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type ErrorType
	// Stage names the pipeline stage that failed, if any.
	Stage   string
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	prefix := string(e.Type)
	if e.Stage != "" {
		prefix = fmt.Sprintf("%s[%s]", e.Type, e.Stage)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// InvalidElementsError lists the array positions that are not objects.
type InvalidElementsError struct {
	Indices []int
}

func (e *InvalidElementsError) Error() string {
	return fmt.Sprintf("%s; offending indices: %s", ErrInvalidElements, FormatIndices(e.Indices))
}

// Is makes errors.Is(err, ErrInvalidElements) match.
func (e *InvalidElementsError) Is(target error) bool {
	return target == ErrInvalidElements
}

// FormatIndices renders indices as a bracketed list, e.g. [0, 1].
func FormatIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a new error for input that parsed but has the wrong shape
func NewValidationError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Err:     err,
	}
}

// NewProcessingError creates a new error raised inside a pipeline stage
func NewProcessingError(stage, message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeProcessing,
		Stage:   stage,
		Message: message,
		Err:     err,
	}
}

// NewExportError creates a new error related to serializing the table
func NewExportError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExport,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// IsWarning reports whether err is a soft condition that should stop the
// current submission without being treated as a failure.
func IsWarning(err error) bool {
	return errors.Is(err, ErrEmptyArray)
}

const expectedFormat = `Expected format (array): [{"id": 1, "name": "Ana"}, {"id": 2, "name": "Bruno"}]`

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s. Check quotes, commas and brackets.\n%s", appErr.Message, expectedFormat)
		case ErrorTypeValidation:
			return validationMessage(appErr)
		case ErrorTypeProcessing:
			msg := fmt.Sprintf("Unexpected error while processing the data: %s", appErr.Message)
			if appErr.Err != nil {
				msg += fmt.Sprintf("\nTechnical detail: %v", appErr.Err)
			}
			return msg
		case ErrorTypeExport:
			return fmt.Sprintf("Export error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON array."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}

func validationMessage(appErr *AppError) string {
	var elemErr *InvalidElementsError
	switch {
	case errors.As(appErr, &elemErr):
		return fmt.Sprintf("Validation error: every element of the list must be a JSON object. Offending indices: %s", FormatIndices(elemErr.Indices))
	case errors.Is(appErr, ErrNotAnArray):
		return fmt.Sprintf("Validation error: the JSON must be a list of objects (array).\n%s", expectedFormat)
	case errors.Is(appErr, ErrEmptyArray):
		return "Warning: the list is empty. Add at least one JSON object."
	default:
		return fmt.Sprintf("Validation error: %s", appErr.Message)
	}
}
