package models

import (
	"context"
	"fmt"
	"net/http"

	pkgerrors "github.com/kyvra-tech/shard-node-dashboard/pkg/errors"
)

// ErrorCode represents a custom error code for the application
type ErrorCode string

const (
	// General errors
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"
	ErrCodeConflict   ErrorCode = "CONFLICT"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// Store errors
	ErrCodePersistence ErrorCode = "PERSISTENCE_ERROR"

	// Node-specific errors
	ErrCodeNodeNotFound ErrorCode = "NODE_NOT_FOUND"
	ErrCodeNameConflict ErrorCode = "NAME_CONFLICT"
	ErrCodeRPC          ErrorCode = "RPC_ERROR"
	ErrCodeRPCTimeout   ErrorCode = "RPC_TIMEOUT"
)

// AppError represents a structured application error
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Internal   error                  `json:"-"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the internal error for error chain support
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is maps error codes onto the shared sentinels, so callers can match
// with errors.Is without depending on concrete codes.
func (e *AppError) Is(target error) bool {
	switch target {
	case pkgerrors.ErrNotFound:
		return e.Code == ErrCodeNotFound || e.Code == ErrCodeNodeNotFound
	case pkgerrors.ErrConflict:
		return e.Code == ErrCodeConflict || e.Code == ErrCodeNameConflict
	case pkgerrors.ErrInvalidInput:
		return e.Code == ErrCodeValidation || e.Code == ErrCodeBadRequest
	case pkgerrors.ErrPersistence:
		return e.Code == ErrCodePersistence
	case pkgerrors.ErrRPC:
		return e.Code == ErrCodeRPC || e.Code == ErrCodeRPCTimeout
	case pkgerrors.ErrTimeout:
		return e.Code == ErrCodeRPCTimeout
	}
	return false
}

// WithDetails adds details to the error
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

// Common error constructors

func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

func NewValidationError(message string, details string) *AppError {
	appErr := &AppError{
		Code:       ErrCodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
	return appErr.WithDetails(details)
}

func NewPersistenceError(message string, err error) *AppError {
	return &AppError{
		Code:       ErrCodePersistence,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

func NewNodeNotFoundError(name string) *AppError {
	appErr := &AppError{
		Code:       ErrCodeNodeNotFound,
		Message:    "Node is not registered",
		StatusCode: http.StatusNotFound,
	}
	return appErr.WithMetadata("name", name)
}

func NewNameConflictError(name string) *AppError {
	appErr := &AppError{
		Code:       ErrCodeNameConflict,
		Message:    "A node with this name already exists",
		StatusCode: http.StatusConflict,
	}
	return appErr.WithMetadata("name", name)
}

// NewRPCError classifies a failed node call. A deadline expiry is
// reported as a timeout rather than a generic RPC failure.
func NewRPCError(method string, err error) *AppError {
	appErr := &AppError{
		Code:       ErrCodeRPC,
		Message:    "Node RPC call failed",
		StatusCode: http.StatusBadGateway,
		Internal:   err,
	}
	if pkgerrors.Is(err, context.DeadlineExceeded) {
		appErr.Code = ErrCodeRPCTimeout
		appErr.Message = "Node RPC call timed out"
		appErr.StatusCode = http.StatusGatewayTimeout
	}
	return appErr.WithMetadata("method", method)
}
