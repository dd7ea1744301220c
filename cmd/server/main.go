package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/witsml-transfer/backend/internal/api"
	"github.com/witsml-transfer/backend/internal/config"
	"github.com/witsml-transfer/backend/internal/jobs"
	"github.com/witsml-transfer/backend/internal/logging"
	"github.com/witsml-transfer/backend/internal/store"
	"github.com/witsml-transfer/backend/internal/workers"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// .env is optional; values already set in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Warning: failed to load .env: %v\n", err)
	}

	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	configPath := flag.String("config", filepath.Join(filepath.Dir(exePath), "LogTransfer.config.xml"), "path to the XML configuration")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.Advanced.LogLevel)
	if err != nil {
		fmt.Printf("Warning: %v, using info\n", err)
	}
	logging.Configure(level, os.Stdout)
	log := logging.New("Server")

	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	servers, err := config.LoadServers(cfg.Storage.ServersFile)
	if err != nil {
		log.Fatalf("Failed to load servers: %v", err)
	}
	provider := store.NewProvider(cfg.GetDataDir(), servers, store.Options{
		Threads:     cfg.Advanced.DuckDBThreads,
		MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
	})
	defer provider.Close()

	history, err := jobs.OpenHistory(cfg.Storage.HistoryDirectory)
	if err != nil {
		log.Fatalf("Failed to open job history: %v", err)
	}
	defer history.Close()

	registry := workers.NewRegistry(workers.Options{
		PageSize:               cfg.Transfer.PageSize,
		MaxConcurrentTransfers: cfg.Transfer.MaxConcurrentTransfers,
		MaxConcurrentDeletes:   cfg.Transfer.MaxConcurrentDeletes,
	})
	manager := jobs.NewManager(registry, provider, history)

	// Start background job cleanup
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	interval := time.Duration(cfg.Transfer.CleanupIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				manager.CleanupOldJobs(time.Duration(cfg.Transfer.JobRetentionMinutes) * time.Minute)
			case <-ctx.Done():
				return
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, cfg)
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Jobs:     manager,
		Servers:  provider,
		PageSize: cfg.Transfer.PageSize,
		Version:  Version,
	}))

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Log Transfer Server                             ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", *configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("║  Servers:   %-46d║\n", len(servers))
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Shutdown failed: %v", err)
	}
	// Jobs must record their results before the stores and the history close.
	if err := manager.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Jobs still running at shutdown: %v", err)
	}
}
