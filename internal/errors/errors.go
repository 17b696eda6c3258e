package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a capitol error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrEmptyChamber     ErrorCode = "EMPTY_CHAMBER"     // 422
	ErrMissingSponsor   ErrorCode = "MISSING_SPONSOR"   // 422
	ErrCancelled        ErrorCode = "CANCELLED"         // 499
	ErrInternal         ErrorCode = "INTERNAL"          // 500
	ErrUpstream         ErrorCode = "UPSTREAM"          // 502
	ErrSchemaValidation ErrorCode = "SCHEMA_VALIDATION" // 502
)

// CapitolError represents a structured error with code, status, and details.
type CapitolError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *CapitolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *CapitolError {
	return &CapitolError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing bill or sync run.
func NewNotFound(kind, identifier string) *CapitolError {
	return &CapitolError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing file path.
func NewFileNotFound(path string) *CapitolError {
	return &CapitolError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewEmptyChamber creates a 422 error when a majority is requested for a chamber with no legislators.
func NewEmptyChamber(chamber string) *CapitolError {
	return &CapitolError{
		Code:    ErrEmptyChamber,
		Status:  422,
		Message: fmt.Sprintf("no legislators found for chamber %q", chamber),
		Details: map[string]any{"chamber": chamber},
	}
}

// NewMissingSponsor creates a 422 error for a bill without a primary sponsor.
func NewMissingSponsor(billType, number string) *CapitolError {
	return &CapitolError{
		Code:    ErrMissingSponsor,
		Status:  422,
		Message: fmt.Sprintf("bill %s %s has no sponsors", billType, number),
		Details: map[string]any{"bill_type": billType, "bill_number": number},
	}
}

// NewCancelled creates a 499 error when an operation is cancelled by its context.
func NewCancelled(op string) *CapitolError {
	return &CapitolError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *CapitolError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &CapitolError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// NewUpstream creates a 502 error for a non-OK response from the congress.gov API.
// The url must already have credentials removed.
func NewUpstream(httpStatus int, url string) *CapitolError {
	return &CapitolError{
		Code:    ErrUpstream,
		Status:  502,
		Message: fmt.Sprintf("upstream returned HTTP %d", httpStatus),
		Details: map[string]any{"http_status": httpStatus, "url": url},
	}
}

// NewUpstreamTransport creates a 502 error for a request that never produced a response.
func NewUpstreamTransport(url string, err error) *CapitolError {
	return &CapitolError{
		Code:    ErrUpstream,
		Status:  502,
		Message: fmt.Sprintf("upstream request failed: %v", err),
		Details: map[string]any{"url": url},
	}
}

// NewSchemaValidation creates a 502 error when an upstream payload does not match the expected shape.
func NewSchemaValidation(url string, fields []string, err error) *CapitolError {
	details := map[string]any{"url": url}
	if len(fields) > 0 {
		details["fields"] = fields
	}
	return &CapitolError{
		Code:    ErrSchemaValidation,
		Status:  502,
		Message: fmt.Sprintf("unexpected payload shape: %v", err),
		Details: details,
	}
}

// As returns the CapitolError in err's chain, if any.
func As(err error) (*CapitolError, bool) {
	var cErr *CapitolError
	if stderrors.As(err, &cErr) {
		return cErr, true
	}
	return nil, false
}

// Is checks if an error is (or wraps) a CapitolError with the given code.
func Is(err error, code ErrorCode) bool {
	if cErr, ok := As(err); ok {
		return cErr.Code == code
	}
	return false
}

// CodeOf returns the error code of err, or ErrInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if cErr, ok := As(err); ok {
		return cErr.Code
	}
	return ErrInternal
}
