// Package errors defines custom error types and error handling utilities for jwksd.
// This package provides structured error types that map to stable error codes and
// HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ================================================================================
// Error Codes
// ================================================================================

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

const (
	// CodeUnsupportedAlgorithm marks a generation request for an algorithm
	// outside the closed supported set. Caller error, never retried.
	CodeUnsupportedAlgorithm ErrorCode = "unsupported_algorithm"

	// CodeGenerationError marks a cryptographic primitive failure. Fatal for
	// the request and never retried automatically: retrying a broken
	// primitive risks masking entropy problems.
	CodeGenerationError ErrorCode = "generation_error"

	// CodeEncodingError marks an internal invariant violation in JWK
	// encoding. Treated as a bug, surfaced, never silently coerced.
	CodeEncodingError ErrorCode = "encoding_error"

	// CodeNotFound marks a lookup or delete of an unknown key id.
	CodeNotFound ErrorCode = "not_found"

	// CodeAlreadyDeleted marks a repeated soft delete. Callers performing an
	// idempotent delete should treat it as a non-fatal success signal.
	CodeAlreadyDeleted ErrorCode = "already_deleted"

	// CodeKeyGone marks a key whose private material has been purged but
	// whose record is still retrievable.
	CodeKeyGone ErrorCode = "key_gone"

	// CodePersistenceError marks a store-layer failure, propagated unchanged.
	CodePersistenceError ErrorCode = "persistence_error"

	// CodeInvalidRequest marks a malformed request from the API layer.
	CodeInvalidRequest ErrorCode = "invalid_request"

	// CodeInternal marks any other unexpected condition.
	CodeInternal ErrorCode = "internal_error"
)

// ================================================================================
// AppError
// ================================================================================

// AppError is a structured application error carrying a stable code, an HTTP
// mapping, and an optional wrapped cause.
type AppError struct {
	code       ErrorCode
	httpStatus int
	message    string
	cause      error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the stable error code.
func (e *AppError) Code() ErrorCode {
	return e.code
}

// HTTPStatus returns the HTTP status code this error maps to.
func (e *AppError) HTTPStatus() int {
	return e.httpStatus
}

// Unwrap returns the underlying cause for error chain support.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause returns a copy of the error with a wrapped cause attached.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.cause = cause
	return &clone
}

// Is reports code equality, so errors.Is works against the sentinel
// constructors below regardless of attached causes.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.code == t.code
}

// NewError creates a new AppError with the given parameters.
func NewError(code ErrorCode, httpStatus int, message string) *AppError {
	return &AppError{code: code, httpStatus: httpStatus, message: message}
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrUnsupportedAlgorithm creates an unsupported_algorithm error.
func ErrUnsupportedAlgorithm(alg string) *AppError {
	return NewError(CodeUnsupportedAlgorithm, http.StatusBadRequest,
		fmt.Sprintf("unsupported algorithm: %q", alg))
}

// ErrGeneration creates a generation_error for a primitive failure.
func ErrGeneration(alg string, cause error) *AppError {
	return NewError(CodeGenerationError, http.StatusInternalServerError,
		fmt.Sprintf("key generation failed for %s", alg)).WithCause(cause)
}

// ErrEncoding creates an encoding_error for inconsistent public material.
func ErrEncoding(detail string) *AppError {
	return NewError(CodeEncodingError, http.StatusInternalServerError,
		fmt.Sprintf("jwk encoding invariant violated: %s", detail))
}

// ErrKeyNotFound creates a not_found error for a key id.
func ErrKeyNotFound(id string) *AppError {
	return NewError(CodeNotFound, http.StatusNotFound,
		fmt.Sprintf("key not found: %s", id))
}

// ErrAlreadyDeleted creates an already_deleted error for a key id.
func ErrAlreadyDeleted(id string) *AppError {
	return NewError(CodeAlreadyDeleted, http.StatusConflict,
		fmt.Sprintf("key already deleted: %s", id))
}

// ErrKeyGone creates a key_gone error for a private-expired key.
func ErrKeyGone(id string) *AppError {
	return NewError(CodeKeyGone, http.StatusGone,
		fmt.Sprintf("private key expired: %s", id))
}

// ErrPersistence wraps a store-layer failure.
func ErrPersistence(op string, cause error) *AppError {
	return NewError(CodePersistenceError, http.StatusInternalServerError,
		fmt.Sprintf("store operation %s failed", op)).WithCause(cause)
}

// ErrInvalidRequest creates an invalid_request error.
func ErrInvalidRequest(message string) *AppError {
	return NewError(CodeInvalidRequest, http.StatusBadRequest, message)
}

// ErrInternal creates a generic internal error.
func ErrInternal(message string) *AppError {
	return NewError(CodeInternal, http.StatusInternalServerError, message)
}

// ================================================================================
// Error Inspection Utilities
// ================================================================================

// AsAppError attempts to extract an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// CodeOf returns the code of the error, or CodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code()
	}
	return CodeInternal
}

// IsNotFound reports whether the error is a not_found error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsAlreadyDeleted reports whether the error is an already_deleted error.
func IsAlreadyDeleted(err error) bool {
	return CodeOf(err) == CodeAlreadyDeleted
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse is the JSON body returned for failed HTTP requests.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// ToErrorResponse converts any error to its HTTP response representation and
// status code. Foreign errors collapse to a generic internal error so that
// store internals never leak to clients.
func ToErrorResponse(err error) (int, *ErrorResponse) {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus(), &ErrorResponse{
			Error:            string(appErr.Code()),
			ErrorDescription: appErr.Error(),
		}
	}
	return http.StatusInternalServerError, &ErrorResponse{
		Error:            string(CodeInternal),
		ErrorDescription: "an unexpected error occurred",
	}
}
