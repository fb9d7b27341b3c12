package confluence

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ylchen07/confluence-mcp/internal/atlassian"
)

// Service exposes the Confluence page endpoints used by the MCP server.
// Every method performs exactly one request and never retries.
type Service struct {
	client *atlassian.Client
}

// NewService constructs a Confluence service.
func NewService(client *atlassian.Client) *Service {
	return &Service{client: client}
}

// GetPage fetches a page together with its storage-format body.
func (s *Service) GetPage(ctx context.Context, pageID string) (*Page, error) {
	query := url.Values{}
	query.Set("body-format", RepresentationStorage)

	var page Page
	if err := s.client.Get(ctx, apiPath("pages", pageID), query, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// GetPagesBySpace lists up to limit pages of a space.
func (s *Service) GetPagesBySpace(ctx context.Context, spaceID string, limit int) (*PageListResponse, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var response PageListResponse
	if err := s.client.Get(ctx, apiPath("spaces", spaceID, "pages"), query, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// CreatePage creates a page. The service assigns its id, status and first version.
func (s *Service) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	var created Page
	if err := s.client.Post(ctx, apiPath("pages"), req, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

// UpdatePage replaces the title and body of pageID.
// The service rejects req when its version number is not the page's next one.
func (s *Service) UpdatePage(ctx context.Context, pageID string, req UpdatePageRequest) (*Page, error) {
	if req.ID != "" && req.ID != pageID {
		return nil, fmt.Errorf("confluence: request id %q does not match page %q", req.ID, pageID)
	}

	var updated Page
	if err := s.client.Put(ctx, apiPath("pages", pageID), req, &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

// apiPath joins path segments relative to the client's API root.
func apiPath(parts ...string) string {
	builder := strings.Builder{}

	for _, part := range parts {
		if trimmed := strings.Trim(part, "/"); trimmed != "" {
			builder.WriteByte('/')
			builder.WriteString(trimmed)
		}
	}

	return builder.String()
}
