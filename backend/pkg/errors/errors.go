package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeArchive represents message archive read errors
	ErrorTypeArchive ErrorType = "archive"
	// ErrorTypeIdentity represents identity cache errors
	ErrorTypeIdentity ErrorType = "identity"
	// ErrorTypeLookup represents directory lookup errors
	ErrorTypeLookup ErrorType = "lookup"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeRender represents output writing errors
	ErrorTypeRender ErrorType = "render"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Archive Errors

// ErrArchiveUnreadable is returned when a subject folder cannot be listed at all.
// It is the only archive condition that aborts an analysis.
type ErrArchiveUnreadable struct {
	*BaseError
	Folder string
}

func NewArchiveUnreadable(folder string, err error) *ErrArchiveUnreadable {
	return &ErrArchiveUnreadable{
		BaseError: NewBaseError(ErrorTypeArchive, fmt.Sprintf("cannot read subject folder: %s", folder), err),
		Folder:    folder,
	}
}

// ErrArchiveFileMalformed is returned when an archive file is not a JSON array
type ErrArchiveFileMalformed struct {
	*BaseError
	Path string
}

func NewArchiveFileMalformed(path string, err error) *ErrArchiveFileMalformed {
	return &ErrArchiveFileMalformed{
		BaseError: NewBaseError(ErrorTypeArchive, fmt.Sprintf("malformed archive file: %s", path), err),
		Path:      path,
	}
}

// ErrProfileMalformed is returned when profile.json exists but cannot be decoded
type ErrProfileMalformed struct {
	*BaseError
	Path string
}

func NewProfileMalformed(path string, err error) *ErrProfileMalformed {
	return &ErrProfileMalformed{
		BaseError: NewBaseError(ErrorTypeArchive, fmt.Sprintf("malformed subject profile: %s", path), err),
		Path:      path,
	}
}

// Identity Errors

// ErrIdentityCacheUnreadable is returned when the identity cache exists but cannot be loaded
type ErrIdentityCacheUnreadable struct {
	*BaseError
	Path string
}

func NewIdentityCacheUnreadable(path string, err error) *ErrIdentityCacheUnreadable {
	return &ErrIdentityCacheUnreadable{
		BaseError: NewBaseError(ErrorTypeIdentity, fmt.Sprintf("cannot load identity cache: %s", path), err),
		Path:      path,
	}
}

// ErrIdentityCacheWriteFailed is returned when the merged cache cannot be persisted
type ErrIdentityCacheWriteFailed struct {
	*BaseError
	Path string
}

func NewIdentityCacheWriteFailed(path string, err error) *ErrIdentityCacheWriteFailed {
	return &ErrIdentityCacheWriteFailed{
		BaseError: NewBaseError(ErrorTypeIdentity, fmt.Sprintf("cannot write identity cache: %s", path), err),
		Path:      path,
	}
}

// Lookup Errors

// ErrLookupFailed is returned when the directory service call for one user fails
type ErrLookupFailed struct {
	*BaseError
	UserID int64
}

func NewLookupFailed(userID int64, err error) *ErrLookupFailed {
	return &ErrLookupFailed{
		BaseError: NewBaseError(ErrorTypeLookup, fmt.Sprintf("lookup failed for user %d", userID), err),
		UserID:    userID,
	}
}

// ErrLookupRejected is returned when the directory service answers with an API-level error
type ErrLookupRejected struct {
	*BaseError
	UserID      int64
	StatusCode  int
	Description string
}

func NewLookupRejected(userID int64, statusCode int, description string) *ErrLookupRejected {
	return &ErrLookupRejected{
		BaseError:   NewBaseError(ErrorTypeLookup, fmt.Sprintf("lookup rejected for user %d (%d): %s", userID, statusCode, description), nil),
		UserID:      userID,
		StatusCode:  statusCode,
		Description: description,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", query), err),
		Query:     query,
	}
}

// Render Errors

// ErrOutputWriteFailed is returned when an analysis result cannot be persisted
type ErrOutputWriteFailed struct {
	*BaseError
	Path string
}

func NewOutputWriteFailed(path string, err error) *ErrOutputWriteFailed {
	return &ErrOutputWriteFailed{
		BaseError: NewBaseError(ErrorTypeRender, fmt.Sprintf("cannot write output: %s", path), err),
		Path:      path,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// Kind returns the error category
func (e *BaseError) Kind() ErrorType {
	return e.Type
}

// IsErrorType checks if an error, or anything it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if typed, ok := err.(interface{ Kind() ErrorType }); ok && typed.Kind() == errType {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsArchiveUnreadable reports whether err means the subject folder could not be read.
func IsArchiveUnreadable(err error) bool {
	var target *ErrArchiveUnreadable
	return errors.As(err, &target)
}
