package domain

import (
	"fmt"
	"time"
)

// Error codes for different failure scenarios
const (
	ErrInvalidInput     = "INVALID_INPUT"
	ErrInputFormat      = "INPUT_FORMAT_ERROR"
	ErrSchemaValidation = "SCHEMA_VALIDATION_ERROR"
	ErrExternalAPI      = "EXTERNAL_API_ERROR"
	ErrDatabaseError    = "DATABASE_ERROR"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
)

// EngineError represents a standardized error response
type EngineError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewEngineError creates a new EngineError with timestamp
func NewEngineError(code, message, details, requestID string) *EngineError {
	return &EngineError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// SchemaValidationError reports the first report field that violated the
// output schema. It signals an internal contract violation, not a user-input
// problem, and is collected per-drug rather than aborting a run.
type SchemaValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("schema validation failed for field '%s': %s", e.Field, e.Message)
}

// NewSchemaValidationError creates a new SchemaValidationError
func NewSchemaValidationError(field, message string) *SchemaValidationError {
	return &SchemaValidationError{Field: field, Message: message}
}
