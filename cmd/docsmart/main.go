package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/artifacts"
	"github.com/ternarybob/docsmart/internal/common"
	"github.com/ternarybob/docsmart/internal/handlers"
	"github.com/ternarybob/docsmart/internal/jobs"
	"github.com/ternarybob/docsmart/internal/server"
	storagebadger "github.com/ternarybob/docsmart/internal/storage/badger"
	"github.com/ternarybob/docsmart/internal/tools"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("DocSmart version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Merge port flags (shorthand takes precedence)
	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("docsmart.toml"); err == nil {
			configFiles = append(configFiles, "docsmart.toml")
		} else if _, err := os.Stat("deployments/local/docsmart.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/docsmart.toml")
		}
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> files -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, finalPort, *serverHost)

	logger = common.InitLogger(config)

	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("environment", config.Environment).
		Str("badger_path", config.Storage.Badger.Path).
		Str("artifact_backend", config.Artifacts.Backend).
		Int("workers", config.Workers.Count).
		Msg("DocSmart starting")

	if err := run(); err != nil {
		logger.Fatal().Err(err).Msg("Service failed")
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	manager, err := storagebadger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer manager.Close()

	// Artifact store
	store, err := artifacts.NewStore(ctx, &config.Artifacts, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize artifact store: %w", err)
	}

	// Tool registry and services
	registry := tools.NewRegistry(config, logger)
	service := jobs.NewService(config, manager.JobStorage(), store, registry, logger)

	// Worker fleet
	pool := jobs.NewWorkerPool(ctx, config, manager.JobStorage(), store, registry, logger)
	pool.Start()
	defer pool.Stop()

	// Retention sweeper
	sweeper := jobs.NewSweeper(config, manager.JobStorage(), store, logger)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	// HTTP server
	h := server.Handlers{
		Process:  handlers.NewProcessHandler(service, manager.JobStorage()),
		Download: handlers.NewDownloadHandler(config, manager.JobStorage(), store),
		API:      handlers.NewAPIHandler(),
	}
	if fs, ok := store.(*artifacts.FilesystemStore); ok {
		h.ArtifactRoot = fs.Root()
	}

	srv := server.New(config, h, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown signal or server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP shutdown incomplete")
	}

	cancel()
	return nil
}
