package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"loglens/internal/config"
	"loglens/internal/logging"
	"loglens/internal/server"
	"loglens/internal/slack"
)

const shutdownGrace = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the LogLens HTTP server",
	Long: "Starts the HTTP server exposing /health, /analyze, and the Slack\n" +
		"slash-command webhook. Configuration comes from environment variables.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

	runner, err := buildRunner(cfg)
	if err != nil {
		return err
	}

	slackHandler := slack.NewHandler(runner, slack.NewDeliverer(), cfg.Slack.SigningSecret)
	srv := server.New(runner, slackHandler, cfg.AppPassword)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("loglens listening", "addr", cfg.ListenAddr, "version", version)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	// In-flight slash-command runs get to finish delivering.
	slackHandler.Wait()
	return nil
}
