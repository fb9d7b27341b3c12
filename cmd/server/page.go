package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/ylchen07/confluence-mcp/internal/confluence"
	mcpserver "github.com/ylchen07/confluence-mcp/internal/mcp"
)

const renderWidth = 100

type pageOptions struct {
	cfgPath *string
	raw     bool
	limit   int
}

func newPageCmd(cfgPath *string) *cobra.Command {
	opts := &pageOptions{cfgPath: cfgPath}

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Read Confluence pages from the terminal",
	}
	cmd.PersistentFlags().BoolVar(&opts.raw, "raw", false, "Print plain markdown without terminal styling")

	get := &cobra.Command{
		Use:   "get <page-id>",
		Short: "Show a single page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(*opts.cfgPath)
			if err != nil {
				return err
			}
			page, err := a.service.GetPage(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get page %s: %w", args[0], err)
			}
			return opts.print(cmd.OutOrStdout(), confluence.FormatPage(page))
		},
	}

	list := &cobra.Command{
		Use:   "list <space-id>",
		Short: "List pages in a space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(*opts.cfgPath)
			if err != nil {
				return err
			}
			limit := mcpserver.EffectiveLimit(&opts.limit)
			resp, err := a.service.GetPagesBySpace(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("list pages in space %s: %w", args[0], err)
			}
			return opts.print(cmd.OutOrStdout(), confluence.FormatPageList(resp, args[0]))
		},
	}
	list.Flags().IntVar(&opts.limit, "limit", mcpserver.DefaultPageLimit, "Maximum number of pages to return")

	cmd.AddCommand(get, list)
	return cmd
}

func (o *pageOptions) print(w io.Writer, text string) error {
	if o.raw {
		_, err := fmt.Fprintln(w, text)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	out, err := renderer.Render(text)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
