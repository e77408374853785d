package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	// Body is the raw response body, kept for callers that echo it.
	Body []byte
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

func newAPIError(status int, raw []byte) *APIError {
	message := detailMessage(raw)
	if message == "" {
		message = fmt.Sprintf("API error: %d", status)
	}
	return &APIError{StatusCode: status, Message: message, Body: raw}
}

// detailMessage extracts the {"detail": ...} field. Validation failures
// carry a list of {"msg": ...} entries instead of a string.
func detailMessage(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(body.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &entries); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if msg := strings.TrimSpace(entry.Msg); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, "; ")
}
