package errors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrBadRequest          = errors.New("bad request")
	ErrInternalServer      = errors.New("internal server error")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateIdentity   = errors.New("email or username already taken")
	ErrInvalidParticipants = errors.New("conversation requires two distinct users")
	ErrInvalidSender       = errors.New("sender is not a participant of the conversation")
	ErrEmptyContent        = errors.New("message content is empty")
	ErrRateLimited         = errors.New("rate limit exceeded")
)

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

// HTTPStatusFromError maps an error chain onto the status code of the first
// sentinel it wraps. Unclassified errors are 500.
func HTTPStatusFromError(err error) int {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrInvalidSender):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicateIdentity):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidParticipants), errors.Is(err, ErrEmptyContent):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

var public = []error{
	ErrNotFound, ErrUnauthenticated, ErrForbidden, ErrBadRequest,
	ErrInvalidCredentials, ErrDuplicateIdentity, ErrInvalidParticipants,
	ErrInvalidSender, ErrEmptyContent, ErrRateLimited,
}

// PublicMessage returns the text safe to show a client. Validation failures
// keep their full message, anything unclassified collapses to a generic one.
func PublicMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	for _, sentinel := range public {
		if errors.Is(err, sentinel) {
			return err.Error()
		}
	}
	return ErrInternalServer.Error()
}
