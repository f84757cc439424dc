package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/ytfetch/ytfetch/internal/domain"
)

// JobRegistry is the single source of truth for job status and progress.
// State is ephemeral by design: it lives for the process lifetime only.
//
// The registry exclusively owns its Job records. Callers get value
// snapshots; mutation happens only through the methods below, under the
// registry lock. A job's status only moves forward
// (queued -> downloading -> processing -> completed|error) and its progress
// never decreases.
type JobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
}

func NewJobRegistry() *JobRegistry {
	return &JobRegistry{
		jobs: make(map[string]*domain.Job),
	}
}

// Create allocates a new record in queued state with zero progress and
// returns its id.
func (r *JobRegistry) Create(url string, format domain.FormatKind, quality string) string {
	job := domain.NewJob(url, format, quality)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return job.ID
}

// Get returns a read-only snapshot of the job.
func (r *JobRegistry) Get(id string) (domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	return *job, nil
}

// UpdateProgress records running progress for a job. A late update from a
// stale worker must not resurrect a finished job, so updates against a
// terminal record are silently dropped. Status never regresses and progress
// is clamped non-decreasing.
func (r *JobRegistry) UpdateProgress(id string, percent int, phase domain.JobPhase) {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.IsTerminal() {
		return
	}

	if next := phase.Status(); next.Rank() > job.Status.Rank() {
		job.Status = next
	}
	if percent > job.Progress {
		job.Progress = percent
	}
}

// Complete transitions the job to completed with its artifact location.
// Completing an already-completed job with the same path is a no-op; any
// other call against a terminal record is an invalid transition.
func (r *JobRegistry) Complete(id, artifactPath, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}

	switch {
	case job.Status == domain.JobStatusCompleted && job.ArtifactPath == artifactPath:
		return nil
	case job.Status.IsTerminal():
		return fmt.Errorf("complete %s from %s: %w", id, job.Status, domain.ErrInvalidTransition)
	}

	job.Status = domain.JobStatusCompleted
	job.Progress = 100
	job.ArtifactPath = artifactPath
	job.Filename = filename
	return nil
}

// Fail transitions the job to error. Failing an already-failed job keeps
// the first message; failing a completed job is an invalid transition.
func (r *JobRegistry) Fail(id, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}

	switch job.Status {
	case domain.JobStatusError:
		return nil
	case domain.JobStatusCompleted:
		return fmt.Errorf("fail %s from completed: %w", id, domain.ErrInvalidTransition)
	}

	job.Status = domain.JobStatusError
	job.ErrorMessage = message
	return nil
}

// Delete removes the record. Only the retention sweeper calls this.
func (r *JobRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// ExpiredTerminal returns the ids of terminal jobs created more than window
// ago. Non-terminal jobs are never reported: a long-running job keeps its
// record until it finishes.
func (r *JobRegistry) ExpiredTerminal(window time.Duration) []string {
	cutoff := time.Now().Add(-window)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, job := range r.jobs {
		if job.Status.IsTerminal() && job.CreatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}
