package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"hypercastle/internal/animation"
	"hypercastle/internal/parser"
	"hypercastle/internal/player"
)

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <file.svg>",
		Short: "Animate a token document in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlay,
	}
	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	doc, err := parser.ParseFile(args[0])
	if err != nil {
		return err
	}

	return player.Run(ctx, doc.Model, player.Options{
		Title:         filepath.Base(doc.SourceFile),
		FrameInterval: cfg.Engine.FrameInterval(),
		GlyphInterval: cfg.Engine.GlyphInterval,
		Random:        animation.NewRandomSource(cfg.Engine.RandomSeed),
	})
}
