package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ylchen07/confluence-mcp/internal/atlassian"
	"github.com/ylchen07/confluence-mcp/internal/confluence"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// DefaultPageLimit is used by get_pages_by_space when no limit is given.
	DefaultPageLimit = 25
	// MaxPageLimit is the largest page size the listing endpoint accepts.
	MaxPageLimit = 250
)

// PageService is the subset of confluence.Service the tools depend on.
type PageService interface {
	GetPage(ctx context.Context, pageID string) (*confluence.Page, error)
	GetPagesBySpace(ctx context.Context, spaceID string, limit int) (*confluence.PageListResponse, error)
	CreatePage(ctx context.Context, req confluence.CreatePageRequest) (*confluence.Page, error)
	UpdatePage(ctx context.Context, pageID string, req confluence.UpdatePageRequest) (*confluence.Page, error)
}

// ConfluenceTools wires Confluence services into MCP tools.
type ConfluenceTools struct {
	service PageService
	baseURL string
	logger  *slog.Logger
}

// NewConfluenceTools registers Confluence tools on the server.
func NewConfluenceTools(s *server.MCPServer, service PageService, baseURL string, logger *slog.Logger) *ConfluenceTools {
	if logger == nil {
		logger = slog.Default()
	}

	ct := &ConfluenceTools{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}

	s.AddTool(
		mcp.NewTool(
			"get_page",
			mcp.WithDescription("Get a Confluence page by its ID. Returns the page title, content, version, and metadata."),
			mcp.WithInputSchema[GetPageArgs](),
			mcp.WithOutputSchema[PageDetailResult](),
		),
		mcp.NewTypedToolHandler(ct.handleGetPage),
	)

	s.AddTool(
		mcp.NewTool(
			"get_pages_by_space",
			mcp.WithDescription("List pages in a Confluence space. Returns a list of pages with their titles, IDs, and basic metadata."),
			mcp.WithInputSchema[GetPagesBySpaceArgs](),
			mcp.WithOutputSchema[PageListResult](),
		),
		mcp.NewTypedToolHandler(ct.handleGetPagesBySpace),
	)

	s.AddTool(
		mcp.NewTool(
			"create_page",
			mcp.WithDescription("Create a new Confluence page. Requires space ID, title, and content in Confluence storage format (HTML-like). Optionally specify a parent page ID."),
			mcp.WithInputSchema[CreatePageArgs](),
			mcp.WithOutputSchema[PageSummary](),
		),
		mcp.NewTypedToolHandler(ct.handleCreatePage),
	)

	s.AddTool(
		mcp.NewTool(
			"update_page",
			mcp.WithDescription("Update an existing Confluence page. Requires page ID, new title, new content, and current version number. Optionally include a version message describing the changes."),
			mcp.WithInputSchema[UpdatePageArgs](),
			mcp.WithOutputSchema[PageSummary](),
		),
		mcp.NewTypedToolHandler(ct.handleUpdatePage),
	)

	return ct
}

// GetPageArgs parameters for get_page.
type GetPageArgs struct {
	PageID string `json:"page_id" jsonschema:"required" jsonschema_description:"The page ID to retrieve"`
}

// GetPagesBySpaceArgs parameters for get_pages_by_space.
type GetPagesBySpaceArgs struct {
	SpaceID string `json:"space_id" jsonschema:"required" jsonschema_description:"The space ID to list pages from"`
	Limit   *int   `json:"limit,omitempty" jsonschema_description:"Maximum number of pages to return (default 25, max 250)" jsonschema:"minimum=1,maximum=250"`
}

// CreatePageArgs parameters for create_page.
type CreatePageArgs struct {
	SpaceID  string `json:"space_id" jsonschema:"required" jsonschema_description:"The space ID where the page will be created"`
	Title    string `json:"title" jsonschema:"required" jsonschema_description:"The title of the new page"`
	Body     string `json:"body" jsonschema:"required" jsonschema_description:"The body content in Confluence storage format (HTML-like format)"`
	ParentID string `json:"parent_id,omitempty" jsonschema_description:"Optional parent page ID"`
}

// UpdatePageArgs parameters for update_page.
type UpdatePageArgs struct {
	PageID         string `json:"page_id" jsonschema:"required" jsonschema_description:"The page ID to update"`
	Title          string `json:"title" jsonschema:"required" jsonschema_description:"The new title for the page"`
	Body           string `json:"body" jsonschema:"required" jsonschema_description:"The new body content in Confluence storage format"`
	VersionNumber  int    `json:"version_number" jsonschema:"required,minimum=0" jsonschema_description:"The current version number of the page (required for optimistic locking)"`
	VersionMessage string `json:"version_message,omitempty" jsonschema_description:"Optional version message describing the changes"`
}

// PageSummary is the structured form of a page returned alongside the text block.
type PageSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	SpaceID  string `json:"spaceId,omitempty"`
	ParentID string `json:"parentId,omitempty"`
	Version  int    `json:"version"`
	URL      string `json:"url,omitempty"`
}

// PageDetailResult is the structured get_page response.
type PageDetailResult struct {
	Page    PageSummary `json:"page"`
	Content string      `json:"content,omitempty"`
}

// PageListResult is the structured get_pages_by_space response.
type PageListResult struct {
	SpaceID string        `json:"spaceId"`
	Pages   []PageSummary `json:"pages"`
	HasMore bool          `json:"hasMore"`
}

// EffectiveLimit applies the default and the upper bound to a requested page size.
func EffectiveLimit(limit *int) int {
	if limit == nil {
		return DefaultPageLimit
	}
	return min(*limit, MaxPageLimit)
}

func (c *ConfluenceTools) handleGetPage(ctx context.Context, _ mcp.CallToolRequest, args GetPageArgs) (*mcp.CallToolResult, error) {
	page, err := c.service.GetPage(ctx, args.PageID)
	if err != nil {
		return c.failure("get_page", "Failed to get page", err), nil
	}

	content, _ := page.StorageValue()
	result := PageDetailResult{Page: c.summarise(page), Content: content}
	return mcp.NewToolResultStructured(result, confluence.FormatPage(page)), nil
}

func (c *ConfluenceTools) handleGetPagesBySpace(ctx context.Context, _ mcp.CallToolRequest, args GetPagesBySpaceArgs) (*mcp.CallToolResult, error) {
	limit := EffectiveLimit(args.Limit)

	resp, err := c.service.GetPagesBySpace(ctx, args.SpaceID, limit)
	if err != nil {
		return c.failure("get_pages_by_space", "Failed to get pages", err), nil
	}

	result := PageListResult{
		SpaceID: args.SpaceID,
		Pages:   make([]PageSummary, 0, len(resp.Results)),
		HasMore: resp.HasMore(),
	}
	for i := range resp.Results {
		result.Pages = append(result.Pages, c.summarise(&resp.Results[i]))
	}

	return mcp.NewToolResultStructured(result, confluence.FormatPageList(resp, args.SpaceID)), nil
}

func (c *ConfluenceTools) handleCreatePage(ctx context.Context, _ mcp.CallToolRequest, args CreatePageArgs) (*mcp.CallToolResult, error) {
	req := confluence.NewCreatePageRequest(args.SpaceID, args.Title, args.Body, args.ParentID)

	created, err := c.service.CreatePage(ctx, req)
	if err != nil {
		return c.failure("create_page", "Failed to create page", err), nil
	}

	c.logger.Info("confluence page created", slog.String("id", created.ID), slog.String("space", args.SpaceID))
	return mcp.NewToolResultStructured(c.summarise(created), confluence.FormatPageCreated(created)), nil
}

func (c *ConfluenceTools) handleUpdatePage(ctx context.Context, _ mcp.CallToolRequest, args UpdatePageArgs) (*mcp.CallToolResult, error) {
	if args.VersionNumber < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update page: version_number must not be negative, got %d", args.VersionNumber)), nil
	}

	req := confluence.NewUpdatePageRequest(args.PageID, args.Title, args.Body, args.VersionNumber, args.VersionMessage)

	updated, err := c.service.UpdatePage(ctx, args.PageID, req)
	if err != nil {
		return c.failure("update_page", "Failed to update page", err), nil
	}

	c.logger.Info("confluence page updated", slog.String("id", updated.ID), slog.Int("version", updated.VersionNumber()))
	return mcp.NewToolResultStructured(c.summarise(updated), confluence.FormatPageUpdated(updated)), nil
}

// failure logs err and converts it into an error result for the caller.
func (c *ConfluenceTools) failure(tool, prefix string, err error) *mcp.CallToolResult {
	c.logger.Warn("confluence tool failed",
		slog.String("tool", tool),
		slog.Int("status", atlassian.StatusCode(err)),
		slog.Any("error", err),
	)
	return mcp.NewToolResultErrorFromErr(prefix, err)
}

func (c *ConfluenceTools) summarise(page *confluence.Page) PageSummary {
	summary := PageSummary{
		ID:      page.ID,
		Title:   page.Title,
		Status:  page.Status,
		Version: page.VersionNumber(),
	}
	if page.SpaceID != nil {
		summary.SpaceID = *page.SpaceID
	}
	if page.ParentID != nil {
		summary.ParentID = *page.ParentID
	}
	if link := page.WebUI(); link != "" {
		summary.URL = c.absolute(link)
	}
	return summary
}

// absolute resolves a webui link, which the API returns relative to the /wiki root.
func (c *ConfluenceTools) absolute(link string) string {
	if c.baseURL == "" || strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return c.baseURL + "/" + strings.TrimLeft(link, "/")
}
