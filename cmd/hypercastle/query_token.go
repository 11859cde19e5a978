package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hypercastle/internal/config"
)

func queryTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <id>",
		Short: "Show one stored token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryToken(args[0])
		},
	}
	return cmd
}

func runQueryToken(id string) error {
	ctx := context.Background()

	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	token, err := db.GetToken(ctx, id)
	if err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("token %q not found", id)
	}

	payload, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}
