package integration

import (
	"os"
	"strings"
	"testing"

	"github.com/ylchen07/confluence-mcp/internal/config"
	"github.com/ylchen07/confluence-mcp/internal/confluence"
)

// requireIntegration skips the test unless MCP_INTEGRATION is set.
func requireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("MCP_INTEGRATION") == "" {
		t.Skip("MCP_INTEGRATION not set; skipping integration tests")
	}
}

// requireEnv returns the value of key or skips the test when it is empty.
func requireEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Skipf("%s not set", key)
	}
	return val
}

// setupConfluenceService builds a live service from the same configuration the
// server uses. The test is skipped when no site is configured.
func setupConfluenceService(t *testing.T) (*confluence.Service, string) {
	t.Helper()

	if strings.TrimSpace(os.Getenv("CONFLUENCE_BASE_URL")) == "" {
		t.Skip("CONFLUENCE_BASE_URL not set")
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Skipf("confluence configuration incomplete: %v", err)
	}

	client, err := confluence.NewClient(cfg.BaseURL, cfg.Credential)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	return confluence.NewService(client), confluence.SiteURL(cfg.BaseURL)
}

// skipIfEmpty skips the test if the provided slice is empty with a helpful message.
func skipIfEmpty[T any](t *testing.T, items []T, itemType string) {
	t.Helper()
	if len(items) == 0 {
		t.Skipf("no %s found; cannot proceed with test", itemType)
	}
}
