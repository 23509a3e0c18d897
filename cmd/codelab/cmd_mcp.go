package main

import (
	"os"

	"github.com/felixgeelhaar/codelab/internal/app"
	mcpserver "github.com/felixgeelhaar/codelab/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpHTTPAddr string

func init() {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for editor integration",
		Long: `mcp serves the CodeLab tools over stdio, or over HTTP when --http is set.
Sessions live for the lifetime of the process.`,
		RunE: runMCP,
	}
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve over HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// stdout carries the protocol, so logs go to stderr only
	a, err := app.New(ctx, cfg, app.Options{Logger: newLogger(os.Stderr), PublishEvents: true})
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mcpserver.NewServer(mcpserver.Config{
		SessionService: a.Sessions,
		Version:        Version,
	})

	if mcpHTTPAddr != "" {
		return srv.ServeHTTP(ctx, mcpHTTPAddr)
	}
	return srv.ServeStdio(ctx)
}
