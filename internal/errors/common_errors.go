package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeConnection ErrorType = "CONNECTION"
	ErrTypePath       ErrorType = "PATH"
	ErrTypeProtocol   ErrorType = "PROTOCOL"
	ErrTypeTimeout    ErrorType = "TIMEOUT"
	ErrTypeCancelled  ErrorType = "CANCELLED"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// kindNames are the stable classification names shown in reports
var kindNames = map[ErrorType]string{
	ErrTypeConnection: "ConnectionError",
	ErrTypePath:       "PathError",
	ErrTypeProtocol:   "ProtocolError",
	ErrTypeTimeout:    "TimeoutError",
	ErrTypeCancelled:  "CancelledError",
	ErrTypeStorage:    "StorageError",
	ErrTypeValidation: "ValidationError",
	ErrTypeConfig:     "ConfigError",
}

// Kind returns the human-readable classification for the type
func (t ErrorType) Kind() string {
	if name, ok := kindNames[t]; ok {
		return name
	}
	return "Error"
}

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Detail renders the report form: classification, message, then cause.
//
//	PathError: path not found: file does not exist
func (e *AppError) Detail() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type.Kind(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.Kind(), e.Message)
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

// Helper functions for common error types

// NewConnectionError creates an error for a failed dial or authentication
func NewConnectionError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConnection, message, cause)
}

// NewPathError creates an error for a missing or forbidden remote path
func NewPathError(message string, cause error) *AppError {
	return NewAppError(ErrTypePath, message, cause)
}

// NewProtocolError creates an error for a transport fault after connecting
func NewProtocolError(message string, cause error) *AppError {
	return NewAppError(ErrTypeProtocol, message, cause)
}

// NewTimeoutError creates an error for an expired network deadline
func NewTimeoutError(message string, cause error) *AppError {
	return NewAppError(ErrTypeTimeout, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in the chain, or "" if none
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err wraps an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}
