package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a backend failure so callers can switch over a small,
// stable set of cases instead of inspecting transport-level error shapes.
type Kind int

const (
	// KindUnknown covers failures that fit no other category.
	KindUnknown Kind = iota
	// KindNetwork means the backend could not be reached at all.
	KindNetwork
	// KindUnauthorized means the session is missing, invalid, or expired,
	// or the supplied credentials were rejected.
	KindUnauthorized
	// KindValidation means the backend rejected the request as malformed
	// (for example a duplicate username on signup).
	KindValidation
	// KindServer means the backend failed internally.
	KindServer
)

// String returns a short lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is a classified backend failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status of the response, 0 for transport failures.
	Status int
	// Code is the backend's own error code, 0 if none was returned.
	Code int

	cause error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("backend: %s error", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf extracts the classification from err, or KindUnknown when err is
// not a backend error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

// classifyTransport maps an error from issuing the HTTP request itself.
// Everything the transport reports (DNS failure, refused connection,
// timeout, cancelled context) counts as the network being unreachable.
func classifyTransport(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: "backend unreachable",
		cause:   err,
	}
}

// classifyStatus maps a non-2xx HTTP response to the error taxonomy.
// body carries the backend's decoded error payload when one was present.
func classifyStatus(status int, body errorResponse) *Error {
	kind := KindUnknown
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindUnauthorized
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = KindValidation
	case status >= 500:
		kind = KindServer
	}

	msg := body.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	return &Error{
		Kind:    kind,
		Message: msg,
		Status:  status,
		Code:    body.Code,
	}
}
