// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Bookworm.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: Reading-pipeline failures (kind mismatch, corrupt record, page limits)
    have dedicated constructors so callers can match on [AppError.Code].
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeNotFound             = "NOT_FOUND"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeValidation           = "VALIDATION_ERROR"
	CodeInternal             = "INTERNAL_ERROR"
	CodeKindMismatch         = "KIND_MISMATCH"
	CodeCorruptRecord        = "CORRUPT_RECORD"
	CodeTooManyPages         = "TOO_MANY_PAGES"
	CodePageNotFound         = "PAGE_NOT_FOUND"
	CodeEmptyDocumentRequest = "EMPTY_DOCUMENT_REQUEST"
	CodeGraphCycleDetected   = "GRAPH_CYCLE_DETECTED"
)

// AppError is the canonical error type for the Bookworm API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "KIND_MISMATCH").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Chapter chapter-1") // Returns "Chapter chapter-1 not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// KindMismatch creates a 400 [AppError] for an identifier used against the
// wrong collection (e.g. a chapter id passed where a book id is expected).
func KindMismatch(id, expected, actual string) *AppError {
	return &AppError{
		Code:       CodeKindMismatch,
		Message:    fmt.Sprintf("Invalid ID type for %q: expected %s but got %s", id, expected, actual),
		HTTPStatus: http.StatusBadRequest,
	}
}

// TooManyPages creates a 400 [AppError] stating the page ceiling that was exceeded.
func TooManyPages(requested, limit int) *AppError {
	return &AppError{
		Code:       CodeTooManyPages,
		Message:    fmt.Sprintf("Requested %d pages; at most %d pages can be assembled at once", requested, limit),
		HTTPStatus: http.StatusBadRequest,
	}
}

// EmptyDocumentRequest creates a 400 [AppError] for an assembly request without pages.
func EmptyDocumentRequest() *AppError {
	return &AppError{
		Code:       CodeEmptyDocumentRequest,
		Message:    "At least one page is required to assemble a document",
		HTTPStatus: http.StatusBadRequest,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// CorruptRecord creates a 500 [AppError] for a stored record that violates its
// structural invariants. These indicate bad ingested data and should alert.
func CorruptRecord(resource string, cause error) *AppError {
	return &AppError{
		Code:       CodeCorruptRecord,
		Message:    resource + " is corrupt",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// PageNotFound creates a 500 [AppError] for a page file missing during assembly.
func PageNotFound(pageFileID string) *AppError {
	return &AppError{
		Code:       CodePageNotFound,
		Message:    "Page file not found: " + pageFileID,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// GraphCycleDetected creates a 500 [AppError] for a chapter graph that refers back
// to one of its own ancestors.
func GraphCycleDetected(path []string, repeated string) *AppError {
	return &AppError{
		Code:       CodeGraphCycleDetected,
		Message:    "Chapter graph cycle detected at " + repeated,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      fmt.Errorf("cycle: %v -> %s", path, repeated),
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
