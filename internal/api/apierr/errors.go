package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/treasurehunt-go/internal/model"
	"github.com/mcoot/treasurehunt-go/internal/services/auth"
	"github.com/mcoot/treasurehunt-go/internal/services/hunt"
	"github.com/mcoot/treasurehunt-go/internal/storage"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// CurrentLevel is set on WRONG_CODE so clients can re-sync
	CurrentLevel *int `json:"current_level,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodeNotFound           = "NOT_FOUND"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeProgressConflict   = "PROGRESS_CONFLICT"
	CodeAlreadyCompleted   = "ALREADY_COMPLETED"
	CodeNoSuchLevel        = "NO_SUCH_LEVEL"
	CodeWrongCode          = "WRONG_CODE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var wrongCode *hunt.WrongCodeError
	if errors.As(err, &wrongCode) {
		level := wrongCode.CurrentLevel
		return &httpError{http.StatusBadRequest, APIError{
			Code:         CodeWrongCode,
			Message:      "Wrong code! This is not the correct location.",
			CurrentLevel: &level,
		}}
	}

	switch {
	// Map model errors
	case errors.Is(err, model.ErrAccountNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeNotFound, Message: "User not found"}}
	case errors.Is(err, model.ErrClueNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeNotFound, Message: "Clue not found"}}
	case errors.Is(err, model.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{Code: CodeUsernameExists, Message: "Username already exists"}}
	case errors.Is(err, model.ErrCannotModifyAdmin):
		return &httpError{http.StatusForbidden, APIError{Code: CodeForbidden, Message: "cannot modify admin"}}
	case errors.Is(err, model.ErrAccountDisabled):
		return &httpError{http.StatusForbidden, APIError{Code: CodeAccountDisabled, Message: "Account is disabled"}}
	case errors.Is(err, model.ErrAlreadyCompleted):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadyCompleted, Message: "Game already completed"}}
	case errors.Is(err, model.ErrNoSuchLevel):
		return &httpError{http.StatusConflict, APIError{Code: CodeNoSuchLevel, Message: "No more levels"}}
	case errors.Is(err, model.ErrWrongCode):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeWrongCode, Message: "Wrong code! This is not the correct location."}}
	case errors.Is(err, model.ErrInvalidInput):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: "Username and password required"}}

	// Map storage errors
	case errors.Is(err, storage.ErrProgressConflict):
		return &httpError{http.StatusConflict, APIError{Code: CodeProgressConflict, Message: "Progress changed, please retry"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeInvalidCredentials, Message: "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewForbiddenError creates a forbidden error for non-admin callers
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{Code: CodeForbidden, Message: "Admin access required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
