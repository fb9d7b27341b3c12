package atlassian

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error represents a non-success Atlassian REST response.
// Body holds the response payload exactly as received.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	status := http.StatusText(e.StatusCode)
	if status == "" {
		status = "Unknown Status"
	}

	body := e.Body
	if strings.TrimSpace(body) == "" {
		body = "<empty body>"
	}

	return fmt.Sprintf("Confluence API error (%d %s): %s", e.StatusCode, status, body)
}

func newError(status int, body []byte) error {
	return &Error{StatusCode: status, Body: string(body)}
}

// StatusCode reports the HTTP status carried by err, or 0 when err is not an *Error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
