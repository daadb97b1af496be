package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/sony/gobreaker/v2"
)

var (
	// ErrNotFound is returned when the API answers 404.
	ErrNotFound = errors.New("client: resource not found")
	// ErrInvalidCredentials is returned when an admin login is rejected.
	ErrInvalidCredentials = errors.New("client: invalid credentials")
	// ErrMalformedPayload is returned when a response does not decode or fails validation.
	ErrMalformedPayload = errors.New("client: malformed payload")
	// ErrCircuitOpen is returned while the breaker rejects calls to a failing API.
	ErrCircuitOpen = gobreaker.ErrOpenState
)

// APIError is a non-2xx answer from the API. Fields carries per-field validation messages
// when the API sent them.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

// errorEnvelope matches the server's error body. "message" is accepted as well as "error".
type errorEnvelope struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// parseResponseError reads a non-2xx response into an *APIError. The body is consumed and closed.
func parseResponseError(resp *http.Response) *APIError {
	defer func() { _ = resp.Body.Close() }()

	apiErr := &APIError{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		apiErr.Message = fmt.Sprintf("API returned status %d (failed to read body: %v)", resp.StatusCode, err)
		return apiErr
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && (env.Error != "" || env.Message != "") {
		apiErr.Message = env.Error
		if apiErr.Message == "" {
			apiErr.Message = env.Message
		}
		apiErr.Fields = env.Fields
		return apiErr
	}

	apiErr.Message = fmt.Sprintf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	return apiErr
}
