package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdsl/internal/config"
	chiTransport "github.com/kailas-cloud/esdsl/internal/transport/chi"
	"github.com/kailas-cloud/esdsl/internal/version"
)

func newStubCmd(flags *rootFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run an in-memory stub cluster for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Stub.Port = port
			}
			env := config.GetEnv()
			logger, err := flags.logger(env, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runStub(ctx, cfg.Stub, env, logger)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config, 9200)")
	return cmd
}

func runStub(ctx context.Context, cfg config.StubConfig, env string, logger *zap.Logger) error {
	stub, err := chiTransport.NewServer(chiTransport.Options{
		APIKeys:    cfg.APIKeys,
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("create stub: %w", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      stub,
		ReadTimeout:  seconds(cfg.ReadTimeoutSec),
		WriteTimeout: seconds(cfg.WriteTimeoutSec),
	}

	logger.Info("Starting stub cluster",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("addr", addr),
		zap.Bool("auth", len(cfg.APIKeys) > 0),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("stub server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), seconds(cfg.ShutdownSec))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return err
	}
	logger.Info("Stub stopped gracefully")
	return nil
}
