package service

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/ytfetch/ytfetch/internal/domain"
	"github.com/ytfetch/ytfetch/internal/infrastructure/logger"
	"github.com/ytfetch/ytfetch/internal/port"
)

// videoQualityRe matches the height labels advertised by Lookup ("720p").
var videoQualityRe = regexp.MustCompile(`^\d{3,4}p$`)

// audioQualities are the audio renditions the UI offers.
var audioQualities = map[string]bool{
	"mp3": true,
	"m4a": true,
	"wav": true,
}

// Manager orchestrates the download lifecycle: it validates requests,
// creates registry records, dispatches workers, and answers status and
// artifact queries. Starting a download never waits on the worker.
type Manager struct {
	registry  *JobRegistry
	store     port.ArtifactStore
	extractor port.Extractor
	worker    *Worker

	// maxActive caps concurrently running jobs; 0 means unlimited.
	maxActive int
	mu        sync.Mutex
	active    int
}

func NewManager(registry *JobRegistry, store port.ArtifactStore, extractor port.Extractor, worker *Worker, maxActive int) *Manager {
	return &Manager{
		registry:  registry,
		store:     store,
		extractor: extractor,
		worker:    worker,
		maxActive: maxActive,
	}
}

// Lookup fetches descriptive metadata for a source URL. Nothing is
// persisted; the caller echoes the canonical URL back when starting a
// download.
func (m *Manager) Lookup(ctx context.Context, url string) (*domain.VideoInfo, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("empty url: %w", domain.ErrInvalidRequest)
	}
	return m.extractor.Probe(ctx, url)
}

// StartDownload validates the request, registers a queued job, and
// schedules a worker for it. It returns the job id immediately.
func (m *Manager) StartDownload(url string, format domain.FormatKind, quality string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("empty url: %w", domain.ErrInvalidRequest)
	}
	if err := validateQuality(format, quality); err != nil {
		return "", err
	}

	if err := m.admit(); err != nil {
		return "", err
	}

	id := m.registry.Create(url, format, quality)
	logger.Info.Printf("job %s: starting %s/%s download for %s", id, format, quality, logger.SanitizeForLog(url))

	go func() {
		defer m.release()
		m.worker.Run(context.Background(), id)
	}()

	return id, nil
}

// GetStatus returns a snapshot of the job for polling. It is a pure
// registry read and never blocks on the worker.
func (m *Manager) GetStatus(id string) (domain.Job, error) {
	return m.registry.Get(id)
}

// OpenArtifact returns a read handle onto the finished file plus the name
// it should be served under.
func (m *Manager) OpenArtifact(id string) (*os.File, string, error) {
	job, err := m.registry.Get(id)
	if err != nil {
		return nil, "", err
	}
	if job.Status != domain.JobStatusCompleted {
		return nil, "", fmt.Errorf("job %s is %s: %w", id, job.Status, domain.ErrNotReady)
	}

	// The sweeper may have purged the file between the status check and
	// the open; the store reports that as ErrGone.
	return m.store.Open(id)
}

func validateQuality(format domain.FormatKind, quality string) error {
	switch format {
	case domain.FormatVideo:
		if quality == domain.QualityBest || videoQualityRe.MatchString(quality) {
			return nil
		}
	case domain.FormatAudio:
		if quality == domain.QualityBest || audioQualities[quality] {
			return nil
		}
	default:
		return fmt.Errorf("unknown format %q: %w", format, domain.ErrInvalidRequest)
	}
	return fmt.Errorf("unknown quality %q for format %s: %w", quality, format, domain.ErrInvalidRequest)
}

func (m *Manager) admit() error {
	if m.maxActive <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active >= m.maxActive {
		return domain.ErrBusy
	}
	m.active++
	return nil
}

func (m *Manager) release() {
	if m.maxActive <= 0 {
		return
	}
	m.mu.Lock()
	m.active--
	m.mu.Unlock()
}
