package auth

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/ylchen07/confluence-mcp/internal/config"
)

// Transport injects the Confluence basic authentication header into outbound requests.
// The header value is derived once, when the Transport is built.
type Transport struct {
	base       http.RoundTripper
	authHeader string
}

// NewTransport creates a new auth transport wrapping the provided RoundTripper.
func NewTransport(base http.RoundTripper, creds config.ServiceCredentials) (*Transport, error) {
	if strings.TrimSpace(creds.Email) == "" || strings.TrimSpace(creds.APIToken) == "" {
		return nil, fmt.Errorf("auth: email and api token are required")
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, authHeader: BasicHeader(creds)}, nil
}

// BasicHeader returns the Authorization header value for creds.
func BasicHeader(creds config.ServiceCredentials) string {
	token := base64.StdEncoding.EncodeToString([]byte(creds.Email + ":" + creds.APIToken))
	return "Basic " + token
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", t.authHeader)
	clone.Header.Set("Accept", "application/json")
	return t.base.RoundTrip(clone)
}

