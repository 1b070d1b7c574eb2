package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/solanawatchx/watchx-backend/internal/config"
	"github.com/solanawatchx/watchx-backend/internal/database"
	"github.com/solanawatchx/watchx-backend/internal/feed"
	"github.com/solanawatchx/watchx-backend/internal/imageproxy"
	"github.com/solanawatchx/watchx-backend/internal/metrics"
	"github.com/solanawatchx/watchx-backend/internal/model"
	"github.com/solanawatchx/watchx-backend/internal/news"
	"github.com/solanawatchx/watchx-backend/internal/poller"
	"github.com/solanawatchx/watchx-backend/internal/pumpfun"
	"github.com/solanawatchx/watchx-backend/internal/server"
	"github.com/solanawatchx/watchx-backend/internal/solprice"
	"github.com/solanawatchx/watchx-backend/internal/stream"
	"github.com/solanawatchx/watchx-backend/internal/tracker"
	"github.com/solanawatchx/watchx-backend/internal/version"
	"github.com/solanawatchx/watchx-backend/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/watchx.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to dotenv file (skipped if missing)")
	flag.Parse()

	if err := config.LoadDotEnv(*envPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load env file: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting watchx backend",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("watchx backend failed", "error", err)
		os.Exit(1)
	}

	logger.Info("watchx backend stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Upstream clients
	clientOpts := []pumpfun.ClientOption{
		pumpfun.WithLogger(logger),
		pumpfun.WithTimeout(cfg.Upstream.Timeout),
		pumpfun.WithRetries(cfg.Upstream.MaxRetries, 500*time.Millisecond),
	}
	if cfg.Upstream.UserAgent != "" {
		clientOpts = append(clientOpts, pumpfun.WithUserAgent(cfg.Upstream.UserAgent))
	}
	coins := pumpfun.NewClient(cfg.Upstream.CoinsURL, clientOpts...)
	prices := pumpfun.NewClient(cfg.Upstream.PriceURL, clientOpts...)

	// Core pipeline
	tr := tracker.New(cfg.Tracker.MaxSeen)
	live := feed.New(cfg.Feed.MaxTokens).Instrument(m)
	handlers := []poller.TokenHandler{live}

	var hub *stream.Hub
	if cfg.Stream.Enabled {
		hub = stream.NewHub(stream.Config{
			PingInterval: cfg.Stream.PingInterval,
			WriteTimeout: cfg.Stream.WriteTimeout,
			SendBuffer:   cfg.Stream.SendBuffer,
			PublicHost:   cfg.Server.PublicHost,
		}, func() []model.Token { return live.Snapshot(0) }, m, logger)
		defer hub.Close()
		handlers = append(handlers, hub)
	}

	deps := server.Deps{
		Feed:    live,
		Tracker: tr,
		ImageProxy: imageproxy.NewHandler(imageproxy.Config{
			Timeout:   cfg.ImageProxy.Timeout,
			Gateway:   cfg.ImageProxy.IPFSGateway,
			UserAgent: userAgent(cfg.Upstream.UserAgent),
		}, m, logger),
		SolPrice: solprice.New(prices, cfg.SolPrice.TTL, m, logger),
		Metrics:  m,
	}
	if hub != nil {
		deps.Stream = hub
	}

	// Optional persistence
	if cfg.Database.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"database", cfg.Database.Name,
		)
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		logger.Info("database connected")

		tokenWriter := writer.NewTokenWriter(writer.WriterConfig{
			BatchSize:     cfg.Writer.BatchSize,
			FlushInterval: cfg.Writer.FlushInterval,
		}, pool, m, logger)
		if err := tokenWriter.Start(ctx); err != nil {
			return fmt.Errorf("start writer: %w", err)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
			defer stopCancel()
			tokenWriter.Stop(stopCtx)
		}()

		handlers = append(handlers, tokenWriter)
		deps.Database = pool
	}

	if cfg.News.Enabled {
		fetcher := news.NewFetcher(news.FetcherConfig{
			Endpoint: cfg.News.Endpoint,
			Model:    cfg.News.Model,
			APIKey:   cfg.News.APIKey,
			Timeout:  cfg.News.Timeout,
		})
		deps.News = news.NewHandler(news.NewStore(cfg.News.CacheFile), fetcher, cfg.News.RefreshKey, logger)
	}

	list, _ := pumpfun.Preset(cfg.Poller.Preset)
	list.Limit = cfg.Poller.Limit

	feedPoller := poller.New(poller.Config{
		Interval: cfg.Poller.Interval,
		Timeout:  cfg.Poller.Timeout,
		List:     list,
	}, coins, tr, m, logger, handlers...)
	deps.Poller = feedPoller

	srv := server.New(server.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		PublicHost:     cfg.Server.PublicHost,
		Debug:          cfg.Server.Debug,
		MetricsPath:    cfg.Metrics.Path,
	}, deps, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if err := feedPoller.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	logger.Info("watchx backend running",
		"preset", cfg.Poller.Preset,
		"interval", cfg.Poller.Interval,
		"stream", cfg.Stream.Enabled,
		"database", cfg.Database.Enabled,
		"news", cfg.News.Enabled,
	)

	// Wait for shutdown
	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		runErr = fmt.Errorf("http server: %w", runErr)
		cancel()
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer shutdownCancel()

	if err := feedPoller.Stop(shutdownCtx); err != nil {
		logger.Warn("poller stop timed out", "error", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown failed", "error", err)
	}

	return runErr
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func userAgent(configured string) string {
	if configured != "" {
		return configured
	}
	return pumpfun.DefaultUserAgent
}
