package client

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/resume-studio/internal/actions"
	"github.com/jonathan/resume-studio/internal/types"
)

// APIError is a non-2xx response from the backing service.
// Fields carries server-side validation failures, flattened to dotted paths.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Fields     []types.FieldError
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return fmt.Sprintf("api error: %s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is lets callers test 404 and 401 responses against the actions sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case actions.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case actions.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// TransportError is a failure to reach the backing service or read its response.
type TransportError struct {
	Method string
	URL    string
	Cause  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s %s: %v", e.Method, e.URL, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
