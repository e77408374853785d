package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/geonosis/console/internal/apiclient"
	"github.com/geonosis/console/internal/projectform"
)

type Output string

const (
	OutputText Output = "text"
	OutputJSON Output = "json"
)

type cliError struct {
	status  int
	message string
	rawJSON []byte
}

func (e *cliError) Error() string {
	return e.message
}

func isValidOutput(v string) bool {
	return v == string(OutputText) || v == string(OutputJSON)
}

func FormatError(output Output, status int, message string) string {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = http.StatusText(status)
	}

	if output == OutputJSON {
		payload := map[string]any{
			"status": status,
			"error":  msg,
		}
		raw, _ := json.Marshal(payload)
		return string(raw)
	}

	return fmt.Sprintf("error (%d): %s", status, msg)
}

// wrapRequestError maps the outcome of a client call onto a cliError.
// Backend statuses are preserved; anything that never produced a response
// is reported as a bad gateway.
func wrapRequestError(err error) error {
	if err == nil {
		return nil
	}

	var cErr *cliError
	if errors.As(err, &cErr) {
		return cErr
	}

	var validationErr *projectform.ValidationError
	if errors.As(err, &validationErr) {
		return &cliError{status: http.StatusUnprocessableEntity, message: validationErr.Message}
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		out := &cliError{status: apiErr.StatusCode, message: apiErr.Message}
		if json.Valid(apiErr.Body) {
			out.rawJSON = compactJSON(apiErr.Body)
		}
		return out
	}

	return &cliError{status: http.StatusBadGateway, message: err.Error()}
}

func compactJSON(raw []byte) []byte {
	var out bytes.Buffer
	if err := json.Compact(&out, raw); err != nil {
		return raw
	}
	return out.Bytes()
}
