package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ytfetch/ytfetch/config"
	ytdlpExtractor "github.com/ytfetch/ytfetch/internal/adapter/extractor/ytdlp"
	HTTPAdapter "github.com/ytfetch/ytfetch/internal/adapter/http"
	"github.com/ytfetch/ytfetch/internal/adapter/storage/artifact"
	"github.com/ytfetch/ytfetch/internal/infrastructure/logger"
	"github.com/ytfetch/ytfetch/internal/service"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		os.Exit(1)
	}

	logger.Info.Printf("starting ytfetch %s on %s:%d, retention=%s", version, cfg.Host, cfg.Port, cfg.Retention)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Error.Printf("failed to create data directory: %v", err)
		os.Exit(1)
	}

	cookiesFile := materializeCookies(cfg)

	store, err := artifact.NewStore(cfg.DataDir)
	if err != nil {
		logger.Error.Printf("failed to create artifact store: %v", err)
		os.Exit(1)
	}

	stagingDir := filepath.Join(cfg.DataDir, "staging")
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		logger.Error.Printf("failed to create staging directory: %v", err)
		os.Exit(1)
	}

	extractor := ytdlpExtractor.New(cookiesFile)
	if !extractor.HasFFmpeg() {
		logger.Warn.Printf("ffmpeg not found, merged video formats and audio extraction are unavailable")
	}

	registry := service.NewJobRegistry()
	eventBus := service.NewEventBus()
	worker := service.NewWorker(registry, store, extractor, eventBus, stagingDir)
	manager := service.NewManager(registry, store, extractor, worker, cfg.MaxActiveJobs)

	sweeperCtx, sweeperCancel := context.WithCancel(context.Background())
	defer sweeperCancel()

	sweeper := service.NewSweeper(registry, store, cfg.Retention, cfg.SweepInterval)
	sweeper.Sweep() // clear leftovers from a previous run before serving
	sweeper.Start(sweeperCtx)

	server := HTTPAdapter.NewServer(manager, eventBus, HTTPAdapter.SystemInfo{
		FFmpegAvailable:  extractor.HasFFmpeg(),
		RetentionSeconds: int(cfg.Retention.Seconds()),
		MaxActiveJobs:    cfg.MaxActiveJobs,
	}, version)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  1 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info.Printf("received %s, shutting down", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}

		sweeperCancel()
		logger.Info.Printf("shutdown complete")
	}()

	logger.Info.Printf("server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error.Printf("server failed: %v", err)
		os.Exit(1)
	}
}

// materializeCookies writes COOKIES_DATA to a file the engine can read and
// returns its path, or an empty path when no cookies are configured.
func materializeCookies(cfg *config.Config) string {
	path := filepath.Join(cfg.DataDir, "cookies.txt")

	if cfg.CookiesData != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(cfg.CookiesData), 0600); err != nil {
				logger.Error.Printf("failed to write cookies file: %v", err)
				return ""
			}
			logger.Info.Printf("cookies file generated from environment")
		}
	}

	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
