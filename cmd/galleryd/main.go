// cmd/galleryd/main.go
// Package main implements the entry point for the gallery service.
// It wires configuration, storage, telemetry and the HTTP server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/familyvhs/familyvhs-gallery-go/internal/catalog"
	"github.com/familyvhs/familyvhs-gallery-go/internal/config"
	"github.com/familyvhs/familyvhs-gallery-go/internal/event"
	"github.com/familyvhs/familyvhs-gallery-go/internal/metadata"
	"github.com/familyvhs/familyvhs-gallery-go/internal/metrics"
	"github.com/familyvhs/familyvhs-gallery-go/internal/server"
	"github.com/familyvhs/familyvhs-gallery-go/internal/session"
	"github.com/familyvhs/familyvhs-gallery-go/internal/store"
	"github.com/familyvhs/familyvhs-gallery-go/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if cfg.Env == "dev" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := telemetry.Init("familyvhs-gallery", "dev"); err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		telemetry.Shutdown(ctx)
	}()

	m := metrics.NewMetrics()

	// Object storage: S3 when a bucket is configured, otherwise an
	// in-memory store so the service can run without credentials.
	var objects store.ObjectStore
	if cfg.S3Bucket != "" {
		objects, err = store.NewS3(context.Background(), store.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		}, m)
		if err != nil {
			logger.Error("failed to initialize s3 store", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("no s3 bucket configured, using in-memory object store")
		objects = store.NewMemory()
	}

	meta, err := metadata.New(objects, cfg.MetadataKey)
	if err != nil {
		logger.Error("failed to initialize metadata store", "error", err)
		os.Exit(1)
	}

	auth := session.New(cfg.SitePassword, cfg.SessionSecret, cfg.Env != "dev")
	builder := catalog.New(objects, meta, m, cfg.ProbeConcurrency)

	pub := event.NewPublisher(cfg.NATSURL)
	defer pub.Close()

	mux := server.NewMux(auth, builder, meta, objects, pub)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}
