package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCategory classifies the type of error
type ErrorCategory string

const (
	// ClientError indicates the error was caused by the caller's input
	ClientError ErrorCategory = "CLIENT_ERROR"
	// ServerError indicates the error was caused by this server
	ServerError ErrorCategory = "SERVER_ERROR"
	// ExternalError indicates the error was caused by an external dependency
	ExternalError ErrorCategory = "EXTERNAL_ERROR"
)

// ErrorCode represents a structured error code
type ErrorCode string

const (
	// Client errors
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeMissingParameter  ErrorCode = "MISSING_PARAMETER"
	CodeNoMatch           ErrorCode = "NO_MATCHING_INSTANCE"
	CodeUnsupportedEngine ErrorCode = "UNSUPPORTED_ENGINE"

	// Server errors
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeTimeout       ErrorCode = "TIMEOUT"

	// External errors
	CodeAWSError          ErrorCode = "AWS_API_ERROR"
	CodeInferenceError    ErrorCode = "INFERENCE_ERROR"
	CodeMalformedResponse ErrorCode = "MALFORMED_INFERENCE_OUTPUT"
)

// StructuredError represents a detailed error with category, code, and recovery suggestion
type StructuredError struct {
	Code       ErrorCode     `json:"code"`
	Category   ErrorCategory `json:"category"`
	Message    string        `json:"message"`
	Details    interface{}   `json:"details,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// Error implements the error interface
func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Category, e.Message)
}

// ToJSON converts the error to JSON string
func (e *StructuredError) ToJSON() string {
	bytes, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"code":"%s","category":"%s","message":"%s"}`, e.Code, e.Category, e.Message)
	}
	return string(bytes)
}

// New creates a new structured error
func New(code ErrorCode, category ErrorCategory, message string) *StructuredError {
	return &StructuredError{
		Code:     code,
		Category: category,
		Message:  message,
	}
}

// WithDetails adds details to the error
func (e *StructuredError) WithDetails(details interface{}) *StructuredError {
	e.Details = details
	return e
}

// WithSuggestion adds a recovery suggestion to the error
func (e *StructuredError) WithSuggestion(suggestion string) *StructuredError {
	e.Suggestion = suggestion
	return e
}

// Common error constructors

// NewInvalidInput creates an invalid input error
func NewInvalidInput(message string) *StructuredError {
	return New(CodeInvalidInput, ClientError, message).
		WithSuggestion("Check the input parameters and try again")
}

// NewMissingParameter creates a missing parameter error
func NewMissingParameter(param string) *StructuredError {
	return New(CodeMissingParameter, ClientError, fmt.Sprintf("Required parameter '%s' is missing", param)).
		WithSuggestion(fmt.Sprintf("Provide the '%s' parameter", param))
}

// NewNoMatchingInstance creates a resolution-failure error. This is a typed
// outcome, not a fault: no candidate identifier could be matched to the input.
func NewNoMatchingInstance(name string) *StructuredError {
	return New(CodeNoMatch, ClientError, "No matching RDS instance found").
		WithDetails(map[string]interface{}{"database_name": name}).
		WithSuggestion("Check the database name, or use the exact DB instance identifier")
}

// NewUnsupportedEngine creates an error for engine families without a slow-query parser
func NewUnsupportedEngine(engine string) *StructuredError {
	return New(CodeUnsupportedEngine, ClientError, fmt.Sprintf("Unsupported database engine: %s", engine)).
		WithSuggestion("Slow query retrieval supports MySQL and PostgreSQL engines only")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *StructuredError {
	return New(CodeInternalError, ServerError, message).
		WithSuggestion("Try again later or contact support if the issue persists")
}

// NewTimeout creates a timeout error
func NewTimeout(operation string) *StructuredError {
	return New(CodeTimeout, ServerError, fmt.Sprintf("Operation '%s' timed out", operation)).
		WithSuggestion("Try again or adjust timeout settings")
}

// NewAWSError wraps a failure from the AWS control plane or metrics APIs
func NewAWSError(service string, err error) *StructuredError {
	return New(CodeAWSError, ExternalError, fmt.Sprintf("%s API error: %v", service, err)).
		WithDetails(map[string]interface{}{"service": service}).
		WithSuggestion("Check AWS credentials, region, and instance status")
}

// NewInferenceError wraps a failure from the inference service
func NewInferenceError(err error) *StructuredError {
	return New(CodeInferenceError, ExternalError, fmt.Sprintf("inference call failed: %v", err)).
		WithSuggestion("Check the OpenAI API key, or retry with the exact instance identifier")
}

// NewMalformedInferenceOutput flags a non-JSON or otherwise unusable inference response.
// Treated as a resolution failure, never propagated as a fatal error.
func NewMalformedInferenceOutput(message string) *StructuredError {
	return New(CodeMalformedResponse, ExternalError, message).
		WithSuggestion("Retry, or use the exact DB instance identifier")
}
