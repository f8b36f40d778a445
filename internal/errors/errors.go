package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrTodoNotFound is returned when a todo item is not found.
	ErrTodoNotFound = errors.New("todo not found")
	// ErrForbidden is returned when a user touches a todo owned by someone else.
	ErrForbidden = errors.New("forbidden")
	// ErrEmailTaken is returned when signing up with an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidSession is returned when a session token is missing, expired or revoked.
	ErrInvalidSession = errors.New("invalid or expired session")
	// ErrEmptyText is returned when todo text is empty after trimming.
	ErrEmptyText = errors.New("todo text must not be empty")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrTodoNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "TODO_NOT_FOUND")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidSession):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_SESSION")
	case errors.Is(err, ErrEmptyText):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMPTY_TEXT")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
