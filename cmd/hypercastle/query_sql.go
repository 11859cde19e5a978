package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hypercastle/internal/config"
)

func querySQLCmd() *cobra.Command {
	var args []string
	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Run a read-only SQL query against the token store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, words []string) error {
			return runSQL(strings.Join(words, " "), args)
		},
	}
	cmd.Flags().StringArrayVar(&args, "arg", nil, "Value bound to the next $N placeholder (repeatable)")
	return cmd
}

func runSQL(query string, values []string) error {
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

	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	rows, err := db.RunSQL(ctx, query, args...)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}
