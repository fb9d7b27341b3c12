package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ylchen07/confluence-mcp/internal/atlassian"
	"github.com/ylchen07/confluence-mcp/internal/config"
	"github.com/ylchen07/confluence-mcp/internal/confluence"
)

type fakePageService struct {
	mu         sync.Mutex
	lastLimit  int
	lastCreate confluence.CreatePageRequest
	lastUpdate confluence.UpdatePageRequest
	lastPageID string
	page       *confluence.Page
	list       *confluence.PageListResponse
	err        error
}

func (f *fakePageService) GetPage(_ context.Context, pageID string) (*confluence.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPageID = pageID
	return f.page, f.err
}

func (f *fakePageService) GetPagesBySpace(_ context.Context, _ string, limit int) (*confluence.PageListResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	if f.list == nil && f.err == nil {
		return &confluence.PageListResponse{}, nil
	}
	return f.list, f.err
}

func (f *fakePageService) CreatePage(_ context.Context, req confluence.CreatePageRequest) (*confluence.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCreate = req
	return f.page, f.err
}

func (f *fakePageService) UpdatePage(_ context.Context, pageID string, req confluence.UpdatePageRequest) (*confluence.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPageID = pageID
	f.lastUpdate = req
	return f.page, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTools(t *testing.T, svc PageService) (*server.MCPServer, *ConfluenceTools) {
	t.Helper()
	srv := server.NewMCPServer("test", "0.0.1")
	ct := NewConfluenceTools(srv, svc, "https://example.atlassian.net/wiki", quietLogger())
	return srv, ct
}

// callTool dispatches through the registered handler so argument binding is exercised.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	tool, ok := srv.ListTools()[name]
	require.True(t, ok, "tool %q not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "tool handlers never return Go errors")
	require.NotNil(t, res)
	return res
}

func intPtr(v int) *int { return &v }

func TestEffectiveLimit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		limit *int
		want  int
	}{
		{"default", nil, 25},
		{"small", intPtr(1), 1},
		{"under max", intPtr(100), 100},
		{"at max", intPtr(250), 250},
		{"over max", intPtr(251), 250},
		{"far over max", intPtr(10000), 250},
		{"zero passes through", intPtr(0), 0},
		{"negative passes through", intPtr(-5), -5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, EffectiveLimit(tc.limit))
		})
	}
}

func TestHandleGetPagesBySpaceClampsLimit(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		args map[string]any
		want int
	}{
		{map[string]any{"space_id": "S"}, 25},
		{map[string]any{"space_id": "S", "limit": 40}, 40},
		{map[string]any{"space_id": "S", "limit": 999}, 250},
		{map[string]any{"space_id": "S", "limit": 0}, 0},
		{map[string]any{"space_id": "S", "limit": -5}, -5},
	} {
		svc := &fakePageService{}
		srv, _ := newTools(t, svc)

		res := callTool(t, srv, "get_pages_by_space", tc.args)
		assert.False(t, res.IsError)
		assert.Equal(t, tc.want, svc.lastLimit)
	}
}

func TestHandleUpdatePageSendsNextVersion(t *testing.T) {
	t.Parallel()

	for _, current := range []int{0, 1, 5, 99} {
		svc := &fakePageService{page: &confluence.Page{ID: "42", Status: "current", Title: "T", Version: &confluence.Version{Number: current + 1}}}
		srv, _ := newTools(t, svc)

		res := callTool(t, srv, "update_page", map[string]any{
			"page_id":         "42",
			"title":           "T",
			"body":            "<p>b</p>",
			"version_number":  current,
			"version_message": "edit",
		})
		require.False(t, res.IsError, firstText(res))

		assert.Equal(t, "42", svc.lastPageID)
		assert.Equal(t, current+1, svc.lastUpdate.Version.Number)
		require.NotNil(t, svc.lastUpdate.Version.Message)
		assert.Equal(t, "edit", *svc.lastUpdate.Version.Message)
	}
}

func TestHandleUpdatePageRejectsNegativeVersion(t *testing.T) {
	t.Parallel()

	svc := &fakePageService{}
	srv, _ := newTools(t, svc)

	res := callTool(t, srv, "update_page", map[string]any{
		"page_id":        "42",
		"title":          "T",
		"body":           "<p>b</p>",
		"version_number": -1,
	})
	require.True(t, res.IsError)
	assert.Equal(t, "Failed to update page: version_number must not be negative, got -1", firstText(res))
	assert.Empty(t, svc.lastPageID)
}

func TestHandleCreatePageOptionalParent(t *testing.T) {
	t.Parallel()

	svc := &fakePageService{page: &confluence.Page{ID: "7", Status: "current", Title: "New"}}
	srv, _ := newTools(t, svc)

	res := callTool(t, srv, "create_page", map[string]any{"space_id": "S", "title": "New", "body": "<p/>"})
	require.False(t, res.IsError)
	assert.Nil(t, svc.lastCreate.ParentID)
	assert.Contains(t, firstText(res), "Page created successfully!")

	res = callTool(t, srv, "create_page", map[string]any{"space_id": "S", "title": "New", "body": "<p/>", "parent_id": "3"})
	require.False(t, res.IsError)
	require.NotNil(t, svc.lastCreate.ParentID)
	assert.Equal(t, "3", *svc.lastCreate.ParentID)
}

func TestHandlersConvertErrorsToText(t *testing.T) {
	t.Parallel()

	remote := &atlassian.Error{StatusCode: http.StatusConflict, Body: `{"errors":[{"title":"stale version"}]}`}

	cases := []struct {
		tool   string
		args   map[string]any
		prefix string
	}{
		{"get_page", map[string]any{"page_id": "1"}, "Failed to get page: "},
		{"get_pages_by_space", map[string]any{"space_id": "S"}, "Failed to get pages: "},
		{"create_page", map[string]any{"space_id": "S", "title": "t", "body": "b"}, "Failed to create page: "},
		{"update_page", map[string]any{"page_id": "1", "title": "t", "body": "b", "version_number": 1}, "Failed to update page: "},
	}

	for _, tc := range cases {
		srv, _ := newTools(t, &fakePageService{err: remote})

		res := callTool(t, srv, tc.tool, tc.args)
		require.True(t, res.IsError, tc.tool)
		text := firstText(res)
		assert.True(t, strings.HasPrefix(text, tc.prefix), text)
		assert.Contains(t, text, "409")
		assert.Contains(t, text, remote.Body)
	}
}

func TestHandlerTransportError(t *testing.T) {
	t.Parallel()

	srv, _ := newTools(t, &fakePageService{err: errors.New("atlassian: send request: dial tcp: connection refused")})

	res := callTool(t, srv, "get_page", map[string]any{"page_id": "1"})
	require.True(t, res.IsError)
	assert.Equal(t, "Failed to get page: atlassian: send request: dial tcp: connection refused", firstText(res))
}

func TestHandlerRejectsMistypedArguments(t *testing.T) {
	t.Parallel()

	svc := &fakePageService{}
	srv, _ := newTools(t, svc)

	res := callTool(t, srv, "update_page", map[string]any{
		"page_id":        "1",
		"title":          "t",
		"body":           "b",
		"version_number": "five",
	})
	assert.True(t, res.IsError)
	assert.Empty(t, svc.lastPageID)
}

func TestSummariseResolvesWebUILinks(t *testing.T) {
	t.Parallel()

	_, ct := newTools(t, &fakePageService{})
	link := "/spaces/S/pages/1/Home"
	space := "S"

	summary := ct.summarise(&confluence.Page{
		ID:      "1",
		Title:   "Home",
		Status:  "current",
		SpaceID: &space,
		Version: &confluence.Version{Number: 2},
		Links:   &confluence.PageLinks{WebUI: &link},
	})

	assert.Equal(t, PageSummary{
		ID:      "1",
		Title:   "Home",
		Status:  "current",
		SpaceID: "S",
		Version: 2,
		URL:     "https://example.atlassian.net/wiki/spaces/S/pages/1/Home",
	}, summary)
}

// confluenceStub serves canned v2 API responses and records the last request body.
type confluenceStub struct {
	mu       sync.Mutex
	lastBody map[string]any
	handler  func(w http.ResponseWriter, r *http.Request)
}

func newEndToEnd(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*server.MCPServer, *confluenceStub) {
	t.Helper()

	stub := &confluenceStub{handler: handler}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			stub.mu.Lock()
			stub.lastBody = body
			stub.mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		stub.handler(w, r)
	}))
	t.Cleanup(ts.Close)

	client, err := confluence.NewClient(ts.URL, config.ServiceCredentials{Email: "bot@example.com", APIToken: "tok"},
		atlassian.WithLogger(quietLogger()))
	require.NoError(t, err)

	srv := NewServer(Dependencies{
		ConfluenceService: confluence.NewService(client),
		ConfluenceBaseURL: ts.URL + "/wiki",
		Logger:            quietLogger(),
	})
	return srv, stub
}

func TestEndToEndGetPageSparse(t *testing.T) {
	t.Parallel()

	srv, _ := newEndToEnd(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/api/v2/pages/123", r.URL.Path)
		assert.Equal(t, "storage", r.URL.Query().Get("body-format"))
		_, _ = io.WriteString(w, `{"id":"123","status":"current","title":"Home","version":{"number":3}}`)
	})

	res := callTool(t, srv, "get_page", map[string]any{"page_id": "123"})
	require.False(t, res.IsError, firstText(res))

	text := firstText(res)
	for _, want := range []string{"Home", "ID: 123", "Version: 3", "No content", "Not available"} {
		assert.Contains(t, text, want)
	}
}

func TestEndToEndEmptySpace(t *testing.T) {
	t.Parallel()

	srv, _ := newEndToEnd(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/api/v2/spaces/SPACE1/pages", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `{"results":[],"_links":{}}`)
	})

	res := callTool(t, srv, "get_pages_by_space", map[string]any{"space_id": "SPACE1"})
	require.False(t, res.IsError, firstText(res))
	assert.Equal(t, "No pages found in space SPACE1", firstText(res))
}

func TestEndToEndUpdatePage(t *testing.T) {
	t.Parallel()

	srv, stub := newEndToEnd(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/wiki/api/v2/pages/42", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"42","status":"current","title":"Runbook","version":{"number":6}}`)
	})

	res := callTool(t, srv, "update_page", map[string]any{
		"page_id":        "42",
		"title":          "Runbook",
		"body":           "<p>v6</p>",
		"version_number": 5,
	})
	require.False(t, res.IsError, firstText(res))
	assert.Contains(t, firstText(res), "New Version: 6")

	stub.mu.Lock()
	defer stub.mu.Unlock()
	version, ok := stub.lastBody["version"].(map[string]any)
	require.True(t, ok, "version missing from request body")
	assert.EqualValues(t, 6, version["number"])
	_, hasMessage := version["message"]
	assert.False(t, hasMessage)
}

func TestEndToEndRemoteRejection(t *testing.T) {
	t.Parallel()

	const body = `{"errors":[{"status":409,"code":"CONFLICT","title":"Version must be incremented"}]}`
	srv, _ := newEndToEnd(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, body)
	})

	res := callTool(t, srv, "update_page", map[string]any{
		"page_id":        "42",
		"title":          "Runbook",
		"body":           "<p/>",
		"version_number": 1,
	})
	require.True(t, res.IsError)
	assert.Contains(t, firstText(res), "409")
	assert.Contains(t, firstText(res), body)
}
