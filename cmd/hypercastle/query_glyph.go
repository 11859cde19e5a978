package main

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"hypercastle/internal/config"
)

func queryGlyphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glyph <char>",
		Short: "Find tokens whose palettes contain a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if utf8.RuneCountInString(args[0]) != 1 {
				return fmt.Errorf("expected a single character, got %q", args[0])
			}
			glyph, _ := utf8.DecodeRuneInString(args[0])
			return runQueryGlyph(glyph)
		},
	}
	return cmd
}

func runQueryGlyph(glyph rune) error {
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

	tokens, err := db.FindTokensByGlyph(ctx, glyph)
	if err != nil {
		return err
	}
	printSummaries(tokens)
	return nil
}
