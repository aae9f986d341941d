package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/loan-quote/internal/cache"
	"github.com/iwvelando/loan-quote/internal/config"
	"github.com/iwvelando/loan-quote/internal/logging"
	"github.com/iwvelando/loan-quote/internal/quote"
	"github.com/iwvelando/loan-quote/internal/server"
	"github.com/iwvelando/loan-quote/pkg/constants"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before the configuration")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// A missing .env is normal outside local development.
	envErr := godotenv.Load(*envFile)

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": %q}\n", *configLocation, err.Error())
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("failed to load env file",
			zap.String("op", "main"),
			zap.String("path", *envFile),
			zap.Error(envErr),
		)
	}

	quoteConf := config.Default()
	if cfg.QuoteConfig != "" {
		quoteConf, err = config.LoadConfiguration(cfg.QuoteConfig)
		if err != nil {
			logger.Fatal("failed to load quote configuration",
				zap.String("op", "main"),
				zap.String("path", cfg.QuoteConfig),
				zap.Error(err),
			)
		}
	}
	for _, warning := range quoteConf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if cfg.Policy != "" {
		quoteConf.Validation.Policy = cfg.Policy
	}
	policy, err := quoteConf.Policy()
	if err != nil {
		logger.Fatal("failed to resolve validation policy",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	store, err := cache.New(logger, cfg.CacheOptions())
	if err != nil {
		logger.Fatal("failed to initialize cache",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		_ = store.Close()
	}()

	handler := server.NewHandler(server.Options{
		Logger:      logger,
		Engine:      quote.NewEngine(logger, policy, quoteConf.RateTables()),
		Cache:       store,
		CacheTTL:    cfg.CacheTTL(),
		MaxBodySize: cfg.BodySizeBytes(),
		Version:     version,
	})

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting loan-quote server",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("policy", policy.Name),
			zap.String("cache", cfg.Cache.Backend),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return
	case sig := <-quit:
		logger.Info("shutting down server",
			zap.String("op", "main"),
			zap.String("signal", sig.String()),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("error during server shutdown",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
