package main

import (
	"context"

	"github.com/spf13/cobra"

	"hypercastle/internal/config"
	"hypercastle/internal/store"
)

func queryListCmd() *cobra.Command {
	var mode int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("mode") {
				mode = store.AnyMode
			}
			return runQueryList(mode)
		},
	}
	cmd.Flags().IntVar(&mode, "mode", 0, "Only list tokens in this generation mode")
	return cmd
}

func runQueryList(mode int) error {
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

	tokens, err := db.ListTokens(ctx, mode)
	if err != nil {
		return err
	}
	printSummaries(tokens)
	return nil
}
