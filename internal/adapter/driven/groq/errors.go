package groq

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
)

const maxErrorBody = 64 << 10

// APIError is a failure reported by the remote service, either as a non-2xx
// status or as an error object inside the event stream (StatusCode 0).
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("groq api error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Type != "" {
		fmt.Fprintf(&b, " [%s]", e.Type)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is lets callers match the status classes with errors.Is against the port
// sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case driven.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case driven.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

type errorEnvelope struct {
	Error *errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

func (b *errorBody) toAPIError(status int) *APIError {
	e := &APIError{StatusCode: status, Type: b.Type, Message: b.Message}
	if b.Code != nil {
		e.Code = fmt.Sprint(b.Code)
	}
	return e
}

// decodeAPIError builds an APIError from a non-success response. The caller
// closes the body.
func decodeAPIError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("reading error response (status %d): %w", resp.StatusCode, err)
	}

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		return env.Error.toAPIError(resp.StatusCode)
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
