package main

import (
	"context"

	"github.com/spf13/cobra"

	"hypercastle/internal/logging"
	"hypercastle/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var querier mcp.TokenQuerier
	if cfg.Database.DSN != "" {
		db, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close(ctx)
		querier = db
	} else {
		logging.Logger().Info("no database configured, token tools disabled")
	}

	server := mcp.NewServer(cfg, querier, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
