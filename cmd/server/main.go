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
	"syscall"
	"time"

	"github.com/iconidentify/xclip/internal/api"
	"github.com/iconidentify/xclip/internal/api/handler"
	"github.com/iconidentify/xclip/internal/config"
	"github.com/iconidentify/xclip/internal/repository"
	"github.com/iconidentify/xclip/internal/service"
	"github.com/iconidentify/xclip/internal/worker"
	"github.com/iconidentify/xclip/pkg/twitter"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	debug := flag.Bool("debug", false, "Log resolver state transitions")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("xclip-server %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting xclip server",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Upstream client and shared auth state
	tokens := twitter.NewGuestTokenCache(cfg.Twitter.GuestTokenTTL)
	client := twitter.NewClient(service.TwitterClientConfig(cfg.Twitter), tokens, logger)
	creds := twitter.NewCredentialStore(cfg.Twitter.Cookie)
	if creds.Status().HasCredentials {
		logger.Info("session cookie configured for age-restricted posts")
	}

	// Initialize services
	jobRepo := repository.NewInMemoryJobRepository()
	resolveSvc := service.NewResolveService(client, creds, cfg.Resolve, logger)
	batchSvc := service.NewBatchService(jobRepo, cfg.Resolve, cfg.Worker, logger)

	// Initialize handlers
	resolveHandler := handler.NewResolveHandler(resolveSvc, logger)
	batchHandler := handler.NewBatchHandler(batchSvc, logger)
	credentialsHandler := handler.NewCredentialsHandler(creds, logger)
	healthHandler := handler.NewHealthHandler(jobRepo, tokens)

	// Setup router
	router := api.NewRouter(resolveHandler, batchHandler, credentialsHandler, healthHandler, cfg.Server.APIKey)

	// Initialize worker pool
	pool := worker.NewPool(
		worker.Config{
			Workers:      cfg.Worker.Count,
			PollInterval: cfg.Worker.PollInterval,
		},
		jobRepo,
		resolveSvc,
		logger,
	)
	pool.Start()

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop workers. In-flight resolutions are cancelled and their jobs requeued.
	if err := pool.Stop(25 * time.Second); err != nil {
		logger.Error("worker pool shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
