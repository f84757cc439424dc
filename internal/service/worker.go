package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ytfetch/ytfetch/internal/domain"
	"github.com/ytfetch/ytfetch/internal/infrastructure/logger"
	"github.com/ytfetch/ytfetch/internal/port"
)

// Worker drives one extraction job to a terminal state. It owns full
// catch-and-report responsibility: every outcome, including a panic in the
// engine, ends up in the registry via Complete or Fail, and nothing
// propagates back to the caller.
type Worker struct {
	registry   *JobRegistry
	store      port.ArtifactStore
	extractor  port.Extractor
	events     *EventBus
	stagingDir string
}

func NewWorker(registry *JobRegistry, store port.ArtifactStore, extractor port.Extractor, events *EventBus, stagingDir string) *Worker {
	return &Worker{
		registry:   registry,
		store:      store,
		extractor:  extractor,
		events:     events,
		stagingDir: stagingDir,
	}
}

// Run executes the job named by id. It is meant to be launched on its own
// goroutine; its only interaction with the rest of the system is through
// registry updates and the event bus.
func (w *Worker) Run(ctx context.Context, id string) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error.Printf("job %s: worker panic: %v", id, rec)
			w.fail(id, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	job, err := w.registry.Get(id)
	if err != nil {
		logger.Error.Printf("job %s: vanished before start: %v", id, err)
		return
	}

	staging := filepath.Join(w.stagingDir, id)
	if err := os.MkdirAll(staging, 0755); err != nil {
		w.fail(id, fmt.Sprintf("create staging directory: %v", err))
		return
	}
	defer func() { _ = os.RemoveAll(staging) }()

	req := port.FetchRequest{
		URL:        job.URL,
		Format:     job.Format,
		Quality:    job.Quality,
		StagingDir: staging,
	}

	outputPath, err := w.extractor.Fetch(ctx, req, func(percent int, phase domain.JobPhase) {
		w.registry.UpdateProgress(id, percent, phase)
		if snap, err := w.registry.Get(id); err == nil {
			w.publish(id, snap)
		}
	})
	if err != nil {
		logger.Error.Printf("job %s: extraction failed: %v", id, err)
		w.fail(id, err.Error())
		return
	}

	artifactPath, err := w.store.Save(id, outputPath)
	if err != nil {
		w.fail(id, fmt.Sprintf("store artifact: %v", err))
		return
	}

	if err := w.registry.Complete(id, artifactPath, filepath.Base(artifactPath)); err != nil {
		logger.Error.Printf("job %s: complete rejected: %v", id, err)
		return
	}

	logger.Info.Printf("job %s completed: %s", id, logger.SanitizeForLog(filepath.Base(artifactPath)))
	if snap, err := w.registry.Get(id); err == nil {
		w.publish(id, snap)
	}
}

func (w *Worker) fail(id, message string) {
	if err := w.registry.Fail(id, message); err != nil {
		logger.Error.Printf("job %s: fail rejected: %v", id, err)
		return
	}
	if snap, err := w.registry.Get(id); err == nil {
		w.publish(id, snap)
	}
}

func (w *Worker) publish(id string, job domain.Job) {
	if w.events == nil {
		return
	}
	w.events.Publish(id, Event{
		Status:   job.Status,
		Progress: job.Progress,
		Message:  job.ErrorMessage,
	})
}
