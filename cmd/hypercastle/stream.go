package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hypercastle/internal/animation"
	"hypercastle/internal/parser"
	"hypercastle/internal/stream"
)

func streamCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "stream <file.svg>",
		Short: "Serve a token animation to websocket clients on /ws",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(args[0], addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address; overrides stream.addr")
	return cmd
}

func runStream(path, addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Stream.Addr
	}

	doc, err := parser.ParseFile(path)
	if err != nil {
		return err
	}

	engine := animation.NewEngine(doc.Model, animation.NewRandomSource(cfg.Engine.RandomSeed))
	scheduler := animation.NewScheduler(engine, cfg.Engine.GlyphInterval)
	return stream.NewServer(addr, cfg.Engine.FrameInterval(), scheduler).Run(ctx)
}
