package backend

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   errorResponse
		kind   Kind
	}{
		{"unauthorized", http.StatusUnauthorized, errorResponse{Code: 209, Error: "invalid session token"}, KindUnauthorized},
		{"forbidden", http.StatusForbidden, errorResponse{}, KindUnauthorized},
		{"validation", http.StatusBadRequest, errorResponse{Code: 202, Error: "username already taken"}, KindValidation},
		{"unprocessable", http.StatusUnprocessableEntity, errorResponse{}, KindValidation},
		{"server", http.StatusInternalServerError, errorResponse{}, KindServer},
		{"bad gateway", http.StatusBadGateway, errorResponse{}, KindServer},
		{"teapot", http.StatusTeapot, errorResponse{}, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyStatus(tt.status, tt.body)
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.status, err.Status)
			assert.Equal(t, tt.body.Code, err.Code)
		})
	}
}

func TestClassifyStatus_MessageFallsBackToStatusText(t *testing.T) {
	err := classifyStatus(http.StatusInternalServerError, errorResponse{})
	assert.Contains(t, err.Error(), "Internal Server Error")
}

func TestClassifyTransport(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := classifyTransport(cause)

	assert.Equal(t, KindNetwork, err.Kind)
	assert.ErrorIs(t, err, cause)
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("feed fetch failed: %w", &Error{Kind: KindServer, Message: "boom"})
	assert.Equal(t, KindServer, KindOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain error")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "network", KindNetwork.String())
	assert.Equal(t, "unauthorized", KindUnauthorized.String())
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "server", KindServer.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
