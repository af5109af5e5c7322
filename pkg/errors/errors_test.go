package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get conversation: %w", ErrNotFound), http.StatusNotFound},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"duplicate identity", fmt.Errorf("create user: %w", ErrDuplicateIdentity), http.StatusConflict},
		{"invalid participants", ErrInvalidParticipants, http.StatusBadRequest},
		{"invalid sender", ErrInvalidSender, http.StatusForbidden},
		{"empty content", ErrEmptyContent, http.StatusBadRequest},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"api error", NewAPIError("teapot", http.StatusTeapot), http.StatusTeapot},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromError(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "bad request: email is required",
		PublicMessage(fmt.Errorf("%w: email is required", ErrBadRequest)))
	assert.Equal(t, ErrInternalServer.Error(),
		PublicMessage(fmt.Errorf("query users: %w", errors.New("dial tcp: refused"))))
	assert.Equal(t, "teapot", PublicMessage(NewAPIError("teapot", http.StatusTeapot)))
}
