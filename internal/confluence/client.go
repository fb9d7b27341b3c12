package confluence

import (
	"fmt"
	"strings"

	"github.com/ylchen07/confluence-mcp/internal/atlassian"
	"github.com/ylchen07/confluence-mcp/internal/config"
)

const apiPrefix = "/wiki/api/v2"

// NewClient creates a Confluence v2 REST client for site.
// The site is the tenant root (https://<tenant>.atlassian.net); a trailing
// /wiki is tolerated and a missing scheme defaults to https.
func NewClient(site string, creds config.ServiceCredentials, opts ...atlassian.Option) (*atlassian.Client, error) {
	base := APIBase(site)
	if base == "" {
		return nil, fmt.Errorf("confluence: site is required")
	}

	client, err := atlassian.NewClient(base, creds, opts...)
	if err != nil {
		return nil, fmt.Errorf("confluence: %w", err)
	}

	return client, nil
}

// SiteURL normalises site to an absolute URL without a trailing slash.
func SiteURL(site string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(site), "/")
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}

	return "https://" + trimmed
}

// APIBase returns the v2 REST root for site.
func APIBase(site string) string {
	trimmed := SiteURL(site)
	if trimmed == "" {
		return ""
	}
	if strings.HasSuffix(trimmed, apiPrefix) {
		return trimmed
	}
	return strings.TrimSuffix(trimmed, "/wiki") + apiPrefix
}
