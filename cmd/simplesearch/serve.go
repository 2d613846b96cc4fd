package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nainya/simplesearch/internal/app"
	"github.com/nainya/simplesearch/internal/metrics"
	"github.com/nainya/simplesearch/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve configured views over HTTP with gRPC health checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	a, err := app.Build(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(server.Options{
		Views:     a.Views,
		Logger:    log,
		Metrics:   m,
		RateLimit: cfg.HTTP.RateLimit,
		Burst:     cfg.HTTP.Burst,
	})
	if err != nil {
		return err
	}

	log.LogServerStart(cfg.HTTP.Port, cfg.GRPC.Port, cfg.Store.Driver)

	errCh := make(chan error, 2)
	httpLis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HTTP.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	go func() { errCh <- srv.ServeHTTP(httpLis) }()

	if cfg.GRPC.Port > 0 {
		grpcLis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
		go func() { errCh <- srv.ServeGRPC(grpcLis) }()
	}

	stop := make(chan struct{})
	defer close(stop)
	go m.RunUptime(15*time.Second, stop)

	srv.MarkReady()
	log.LogServerReady(cfg.HTTP.Port, srv.Views())

	sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var serveErr error
	select {
	case <-sigCtx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}
