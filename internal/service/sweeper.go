package service

import (
	"context"
	"time"

	"github.com/ytfetch/ytfetch/internal/infrastructure/logger"
	"github.com/ytfetch/ytfetch/internal/port"
)

// Sweeper retires artifacts and job records past the retention window. It
// runs on a fixed interval independent of request traffic; per-item
// failures are logged and skipped so one bad file never aborts a sweep.
type Sweeper struct {
	registry *JobRegistry
	store    port.ArtifactStore
	window   time.Duration
	interval time.Duration
}

func NewSweeper(registry *JobRegistry, store port.ArtifactStore, window, interval time.Duration) *Sweeper {
	return &Sweeper{
		registry: registry,
		store:    store,
		window:   window,
		interval: interval,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Sweep performs one retention pass: expired artifacts are deleted together
// with their registry records, then expired terminal records with no
// artifact left behind (failed jobs) are dropped so polls report NotFound.
func (s *Sweeper) Sweep() {
	ids, err := s.store.ListOlderThan(s.window)
	if err != nil {
		logger.Error.Printf("sweep: list artifacts: %v", err)
	}

	deleted := 0
	for _, id := range ids {
		if err := s.store.Delete(id); err != nil {
			logger.Warn.Printf("sweep: delete artifact %s: %v", id, err)
			continue
		}
		s.registry.Delete(id)
		deleted++
	}

	for _, id := range s.registry.ExpiredTerminal(s.window) {
		if err := s.store.Delete(id); err != nil {
			logger.Warn.Printf("sweep: delete artifact %s: %v", id, err)
		}
		s.registry.Delete(id)
		deleted++
	}

	if deleted > 0 {
		logger.Info.Printf("sweep: retired %d jobs", deleted)
	}
}
