package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Tyrowin/nexus-relay/internal/relay"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the relay server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env is fine; the environment may be set directly.
			_ = godotenv.Load()

			cfg, err := relay.LoadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}

			log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.LoggerLevel(),
			}))

			return run(cmd.Context(), cfg, log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides RELAY_ADDR)")
	return cmd
}

func run(ctx context.Context, cfg relay.Config, log *slog.Logger) error {
	rly := relay.New(cfg, log)
	server := relay.CreateServer(cfg.ListenAddr, rly.Routes())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("relay listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("starting server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), rly.ShutdownTimeout())
	defer cancel()

	// Stop accepting upgrades before draining live connections.
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown", "error", err)
	}
	if err := rly.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("draining relay: %w", err)
	}
	return nil
}
