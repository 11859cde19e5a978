package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hypercastle/internal/animation"
	"hypercastle/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Server drives one Scheduler at a fixed frame rate and publishes every glyph
// pass to the hub. The scheduler and its model are touched only by the frame
// loop.
type Server struct {
	addr      string
	interval  time.Duration
	scheduler *animation.Scheduler
	hub       *Hub
}

func NewServer(addr string, frameInterval time.Duration, scheduler *animation.Scheduler) *Server {
	return &Server{
		addr:      addr,
		interval:  frameInterval,
		scheduler: scheduler,
		hub:       NewHub(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.hub.ServeWs)
	return mux
}

// Run serves websocket clients until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.hub.Run(ctx)
	if err := s.publishSnapshot(ctx); err != nil {
		return err
	}

	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		logging.Logger().Info("stream listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	loopErr := s.frames(ctx, errCh)
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down stream server: %w", err)
	}
	return loopErr
}

func (s *Server) frames(ctx context.Context, errCh <-chan error) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	delta := s.interval.Seconds()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("stream server: %w", err)
			}
			return nil
		case <-ticker.C:
			if err := s.Step(ctx, delta); err != nil {
				return err
			}
		}
	}
}

// Step advances the scheduler by delta seconds and, if a glyph pass ran,
// broadcasts its frame and refreshes the snapshot.
func (s *Server) Step(ctx context.Context, delta float64) error {
	events, ran := s.scheduler.Advance(delta)
	if !ran {
		return nil
	}
	model := s.scheduler.Engine().Model()
	frame, err := encode(TypeFrame, NewFrame(model, events))
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	s.hub.Broadcast(ctx, frame)
	return s.publishSnapshot(ctx)
}

func (s *Server) publishSnapshot(ctx context.Context) error {
	snapshot, err := encode(TypeSnapshot, NewSnapshot(s.scheduler.Engine().Model()))
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	s.hub.SetSnapshot(ctx, snapshot)
	return nil
}
