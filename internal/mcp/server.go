package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName         = "Confluence MCP"
	defaultVersion     = "0.1.0"
	serverInstructions = "Confluence MCP Server - Read, create, and update Confluence pages"
)

// Dependencies bundles the services required for MCP server construction.
type Dependencies struct {
	ConfluenceService PageService
	// ConfluenceBaseURL is the /wiki web root used to turn relative page links into URLs.
	ConfluenceBaseURL string
	Version           string
	Logger            *slog.Logger
}

// NewServer builds an MCP server with the Confluence page tools registered.
func NewServer(deps Dependencies) *server.MCPServer {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Version == "" {
		deps.Version = defaultVersion
	}

	srv := server.NewMCPServer(
		serverName,
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
		server.WithRecovery(),
	)

	if deps.ConfluenceService != nil {
		NewConfluenceTools(srv, deps.ConfluenceService, deps.ConfluenceBaseURL, deps.Logger)
	} else {
		deps.Logger.Warn("no confluence service configured; serving without tools")
	}

	return srv
}
