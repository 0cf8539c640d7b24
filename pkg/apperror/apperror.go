package apperror

import (
	"errors"
	"net/http"
)

// AppError carries an error code, a human-readable message and the HTTP
// status the boundary should answer with.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Error codes used across the API.
const (
	CodeInvalidPeriod       = "INVALID_PERIOD"
	CodeSprintUnavailable   = "SPRINT_NOT_AVAILABLE"
	CodeInvalidQuery        = "INVALID_QUERY"
	CodeTrackerAuth         = "PROJECT_NOT_ACCESSIBLE"
	CodeTrackerConfig       = "TRACKER_CONFIG_ERROR"
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeUnexpected          = "UNEXPECTED_ERROR"
)

// NewInvalidPeriod reports a malformed or out-of-range period spec.
func NewInvalidPeriod(message string) *AppError {
	return &AppError{Code: CodeInvalidPeriod, Message: message, Status: http.StatusUnprocessableEntity}
}

// NewSprintUnavailable reports that no qualifying board or sprint exists for
// the project. It is a distinct case from NewInvalidPeriod so the boundary
// never has to sniff message text to pick a code.
func NewSprintUnavailable(message string) *AppError {
	return &AppError{Code: CodeSprintUnavailable, Message: message, Status: http.StatusUnprocessableEntity}
}

// NewSprintUnavailableDetail attaches the underlying lookup detail.
func NewSprintUnavailableDetail(message, details string) *AppError {
	return &AppError{Code: CodeSprintUnavailable, Message: message, Details: details, Status: http.StatusUnprocessableEntity}
}

// NewInvalidQuery reports a query the tracker rejected as malformed.
func NewInvalidQuery(message string) *AppError {
	return &AppError{Code: CodeInvalidQuery, Message: message, Status: http.StatusBadRequest}
}

// NewTrackerAuth reports rejected tracker credentials or authorization.
func NewTrackerAuth(message string) *AppError {
	return &AppError{Code: CodeTrackerAuth, Message: message, Status: http.StatusUnauthorized}
}

// NewTrackerConfig reports an unconfigured tracker client.
func NewTrackerConfig(message string) *AppError {
	return &AppError{Code: CodeTrackerConfig, Message: message, Status: http.StatusInternalServerError}
}

func NewBadRequest(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, Status: http.StatusBadRequest}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, Status: http.StatusForbidden}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, Status: http.StatusNotFound}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Status: http.StatusConflict}
}

func NewUnexpected(message string) *AppError {
	return &AppError{Code: CodeUnexpected, Message: message, Status: http.StatusInternalServerError}
}

// Map resolves any error to an AppError. Typed errors pass through unchanged;
// everything else becomes UNEXPECTED_ERROR with the original message attached
// for diagnostics.
func Map(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewUnexpected(err.Error())
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
