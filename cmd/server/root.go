package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ylchen07/confluence-mcp/internal/atlassian"
	"github.com/ylchen07/confluence-mcp/internal/config"
	"github.com/ylchen07/confluence-mcp/internal/confluence"
	mcpserver "github.com/ylchen07/confluence-mcp/internal/mcp"
	"github.com/ylchen07/confluence-mcp/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
)

// app holds what every subcommand needs once configuration has loaded.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *confluence.Service
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	serve := func(*cobra.Command, []string) error {
		a, err := setup(cfgPath)
		if err != nil {
			return err
		}
		return a.serve()
	}

	root := &cobra.Command{
		Use:   "confluence-mcp",
		Short: "MCP server exposing Confluence page tools over stdio",
		Long: `confluence-mcp serves get_page, get_pages_by_space, create_page and
update_page as Model Context Protocol tools over stdin/stdout.

Configuration comes from CONFLUENCE_BASE_URL, CONFLUENCE_EMAIL and
CONFLUENCE_API_TOKEN, or from a config.yaml selected with --config.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serve,
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to configuration directory or file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the MCP tools over stdio (default)",
			Args:  cobra.NoArgs,
			RunE:  serve,
		},
		newPageCmd(&cfgPath),
	)

	return root
}

// setup loads configuration and builds the Confluence service. A configuration
// error here stops the process before any tool is served.
func setup(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Server.LogLevel, cfg.Server.LogFormat)

	client, err := confluence.NewClient(cfg.BaseURL, cfg.Credential,
		atlassian.WithTimeout(cfg.Server.HTTPTimeout),
		atlassian.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize confluence client: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		service: confluence.NewService(client),
	}, nil
}

func (a *app) serve() error {
	srv := mcpserver.NewServer(mcpserver.Dependencies{
		ConfluenceService: a.service,
		ConfluenceBaseURL: buildConfluenceUIBase(a.cfg.BaseURL),
		Version:           version,
		Logger:            a.logger,
	})

	a.logger.Info("starting confluence mcp server", slog.String("site", confluence.SiteURL(a.cfg.BaseURL)))

	if err := server.ServeStdio(srv); err != nil {
		return fmt.Errorf("stdio server terminated: %w", err)
	}
	return nil
}

func buildConfluenceUIBase(site string) string {
	trimmed := confluence.SiteURL(site)
	if trimmed == "" {
		return ""
	}
	if strings.HasSuffix(trimmed, "/wiki") {
		return trimmed
	}
	return trimmed + "/wiki"
}
