package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpops "github.com/sawpanic/drawrun/internal/interfaces/http"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health and Prometheus metrics",
		RunE:  runServe,
	}

	cmd.Flags().String("host", "127.0.0.1", "Bind address")
	cmd.Flags().Int("port", 8080, "Bind port")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := httpops.DefaultServerConfig()
	cfg.Host, _ = cmd.Flags().GetString("host")
	cfg.Port, _ = cmd.Flags().GetInt("port")

	server := httpops.NewServer(cfg, httpops.NewMetricsRegistry(), version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down ops server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
