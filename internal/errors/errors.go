package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeExternal   ErrorType = "external"
)

// Engine error codes. These are the terminal outcomes a swipe-engine
// caller can branch on; only STORAGE_UNAVAILABLE is retryable.
const (
	CodeSelfSwipe          = "SELF_SWIPE"
	CodeAlreadySwiped      = "ALREADY_SWIPED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidAction      = "INVALID_ACTION"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
)

// AppError represents a structured application error
type AppError struct {
	Type          ErrorType              `json:"type"`
	Code          string                 `json:"code"`
	Message       string                 `json:"message"`
	Details       string                 `json:"details,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Cause         error                  `json:"-"` // Original error, not serialized
	HTTPStatus    int                    `json:"-"` // HTTP status code for API responses
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ToJSON converts the error to JSON format
func (e *AppError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Timestamp:  time.Now().UTC(),
		HTTPStatus: getDefaultHTTPStatus(errorType),
	}
}

// NewAppErrorWithCause creates a new application error with an underlying cause
func NewAppErrorWithCause(errorType ErrorType, code, message string, cause error) *AppError {
	err := NewAppError(errorType, code, message)
	err.Cause = cause
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// WithCorrelationID adds a correlation ID to the error
func (e *AppError) WithCorrelationID(correlationID string) *AppError {
	e.CorrelationID = correlationID
	return e
}

// WithDetails adds additional details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// getDefaultHTTPStatus returns the default HTTP status for an error type
func getDefaultHTTPStatus(errorType ErrorType) int {
	switch errorType {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Engine error constructors

// NewSelfSwipeError is returned when a user swipes on their own profile
func NewSelfSwipeError(userID string) *AppError {
	return NewAppError(ErrorTypeValidation, CodeSelfSwipe, "Cannot swipe on your own profile").
		WithMetadata("user_id", userID)
}

// NewAlreadySwipedError is returned when a directed swipe pair already exists.
// Repeat swipes are always rejected, even with a different action.
func NewAlreadySwipedError(actorID, targetID string) *AppError {
	return NewAppError(ErrorTypeConflict, CodeAlreadySwiped, "Already swiped on this user").
		WithMetadata("actor_id", actorID).
		WithMetadata("target_id", targetID)
}

// NewUserNotFoundError is returned when the actor or target has no profile
func NewUserNotFoundError(userID string) *AppError {
	return NewAppError(ErrorTypeNotFound, CodeUserNotFound, "User not found").
		WithMetadata("user_id", userID)
}

// NewInvalidActionError is returned for an unrecognized swipe action value
func NewInvalidActionError(action string) *AppError {
	return NewAppError(ErrorTypeValidation, CodeInvalidAction, "Unrecognized swipe action").
		WithMetadata("action", action)
}

// NewStorageUnavailableError wraps a transient storage failure. This is
// the only error kind eligible for caller-directed retry.
func NewStorageUnavailableError(operation string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorTypeStorage, CodeStorageUnavailable,
		fmt.Sprintf("Storage operation failed: %s", operation), cause).
		WithMetadata("operation", operation)
}

// Generic constructors

// NewValidationError creates a validation error
func NewValidationError(field, message string) *AppError {
	return NewAppError(ErrorTypeValidation, "VALIDATION_ERROR", message).
		WithMetadata("field", field)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrorTypeNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource)).
		WithMetadata("resource", resource)
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorTypeInternal, "INTERNAL_ERROR", message, cause)
}

// NewExternalError creates an external service error
func NewExternalError(service, operation string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorTypeExternal, "EXTERNAL_ERROR",
		fmt.Sprintf("External service error: %s", service), cause).
		WithMetadata("service", service).
		WithMetadata("operation", operation)
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsCode checks if an error carries a specific engine error code
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsAppError extracts an AppError from the error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsRetryable reports whether the caller may retry the request.
// Only transient storage failures qualify.
func IsRetryable(err error) bool {
	return IsCode(err, CodeStorageUnavailable)
}
