package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytfetch/ytfetch/internal/domain"
)

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func newTestRegistry(t *testing.T) (*JobRegistry, string) {
	t.Helper()
	r := NewJobRegistry()
	id := r.Create(testURL, domain.FormatVideo, domain.QualityBest)
	return r, id
}

func TestJobRegistry_CreateAndGet(t *testing.T) {
	r, id := newTestRegistry(t)

	job, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, domain.JobStatusQueued, job.Status)
	assert.Equal(t, 0, job.Progress)
}

func TestJobRegistry_GetUnknown(t *testing.T) {
	r := NewJobRegistry()

	_, err := r.Get("never-issued")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobRegistry_GetReturnsSnapshot(t *testing.T) {
	r, id := newTestRegistry(t)

	job, err := r.Get(id)
	require.NoError(t, err)

	// Mutating the snapshot must not affect the stored record.
	job.Status = domain.JobStatusError
	job.Progress = 99

	fresh, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusQueued, fresh.Status)
	assert.Equal(t, 0, fresh.Progress)
}

func TestJobRegistry_UpdateProgress(t *testing.T) {
	t.Run("moves into downloading", func(t *testing.T) {
		r, id := newTestRegistry(t)

		r.UpdateProgress(id, 45, domain.PhaseDownloading)

		job, _ := r.Get(id)
		assert.Equal(t, domain.JobStatusDownloading, job.Status)
		assert.Equal(t, 45, job.Progress)
	})

	t.Run("progress never decreases", func(t *testing.T) {
		r, id := newTestRegistry(t)

		r.UpdateProgress(id, 60, domain.PhaseDownloading)
		r.UpdateProgress(id, 30, domain.PhaseDownloading)

		job, _ := r.Get(id)
		assert.Equal(t, 60, job.Progress)
	})

	t.Run("status never regresses", func(t *testing.T) {
		r, id := newTestRegistry(t)

		r.UpdateProgress(id, 100, domain.PhaseProcessing)
		// A stale downloading update must not pull processing back.
		r.UpdateProgress(id, 100, domain.PhaseDownloading)

		job, _ := r.Get(id)
		assert.Equal(t, domain.JobStatusProcessing, job.Status)
	})

	t.Run("silent no-op on terminal job", func(t *testing.T) {
		r, id := newTestRegistry(t)
		require.NoError(t, r.Complete(id, "/data/artifacts/x/file.mp4", "file.mp4"))

		r.UpdateProgress(id, 50, domain.PhaseDownloading)

		job, _ := r.Get(id)
		assert.Equal(t, domain.JobStatusCompleted, job.Status)
		assert.Equal(t, 100, job.Progress)
	})

	t.Run("clamps out-of-range percent", func(t *testing.T) {
		r, id := newTestRegistry(t)

		r.UpdateProgress(id, 250, domain.PhaseDownloading)

		job, _ := r.Get(id)
		assert.Equal(t, 100, job.Progress)
	})
}

func TestJobRegistry_Complete(t *testing.T) {
	t.Run("sets artifact and full progress", func(t *testing.T) {
		r, id := newTestRegistry(t)

		require.NoError(t, r.Complete(id, "/a/file.mp4", "file.mp4"))

		job, _ := r.Get(id)
		assert.Equal(t, domain.JobStatusCompleted, job.Status)
		assert.Equal(t, 100, job.Progress)
		assert.Equal(t, "/a/file.mp4", job.ArtifactPath)
		assert.Equal(t, "file.mp4", job.Filename)
	})

	t.Run("idempotent with same path", func(t *testing.T) {
		r, id := newTestRegistry(t)

		require.NoError(t, r.Complete(id, "/a/file.mp4", "file.mp4"))
		assert.NoError(t, r.Complete(id, "/a/file.mp4", "file.mp4"))
	})

	t.Run("rejects different path after completion", func(t *testing.T) {
		r, id := newTestRegistry(t)

		require.NoError(t, r.Complete(id, "/a/file.mp4", "file.mp4"))
		err := r.Complete(id, "/b/other.mp4", "other.mp4")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		job, _ := r.Get(id)
		assert.Equal(t, "/a/file.mp4", job.ArtifactPath)
	})

	t.Run("rejects complete after fail", func(t *testing.T) {
		r, id := newTestRegistry(t)

		require.NoError(t, r.Fail(id, "boom"))
		err := r.Complete(id, "/a/file.mp4", "file.mp4")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		job, _ := r.Get(id)
		assert.Equal(t, domain.JobStatusError, job.Status)
		assert.Equal(t, "boom", job.ErrorMessage)
	})

	t.Run("unknown job", func(t *testing.T) {
		r := NewJobRegistry()
		assert.ErrorIs(t, r.Complete("nope", "/a", "a"), domain.ErrNotFound)
	})
}

func TestJobRegistry_Fail(t *testing.T) {
	t.Run("records message", func(t *testing.T) {
		r, id := newTestRegistry(t)

		require.NoError(t, r.Fail(id, "unsupported format"))

		job, _ := r.Get(id)
		assert.Equal(t, domain.JobStatusError, job.Status)
		assert.Equal(t, "unsupported format", job.ErrorMessage)
	})

	t.Run("idempotent, first message wins", func(t *testing.T) {
		r, id := newTestRegistry(t)

		require.NoError(t, r.Fail(id, "first"))
		require.NoError(t, r.Fail(id, "second"))

		job, _ := r.Get(id)
		assert.Equal(t, "first", job.ErrorMessage)
	})

	t.Run("rejects fail after complete", func(t *testing.T) {
		r, id := newTestRegistry(t)

		require.NoError(t, r.Complete(id, "/a/file.mp4", "file.mp4"))
		assert.ErrorIs(t, r.Fail(id, "late"), domain.ErrInvalidTransition)

		job, _ := r.Get(id)
		assert.Equal(t, domain.JobStatusCompleted, job.Status)
		assert.Empty(t, job.ErrorMessage)
	})
}

func TestJobRegistry_Delete(t *testing.T) {
	r, id := newTestRegistry(t)

	r.Delete(id)

	_, err := r.Get(id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting twice is harmless.
	r.Delete(id)
}

func TestJobRegistry_ExpiredTerminal(t *testing.T) {
	r := NewJobRegistry()

	completed := r.Create(testURL, domain.FormatVideo, domain.QualityBest)
	require.NoError(t, r.Complete(completed, "/a/f.mp4", "f.mp4"))

	failed := r.Create(testURL, domain.FormatAudio, "mp3")
	require.NoError(t, r.Fail(failed, "boom"))

	running := r.Create(testURL, domain.FormatVideo, "720p")
	r.UpdateProgress(running, 10, domain.PhaseDownloading)

	// Everything was just created, so nothing has expired yet.
	assert.Empty(t, r.ExpiredTerminal(time.Hour))

	// With a zero window all terminal jobs are expired, but the running
	// one must survive no matter how old it is.
	time.Sleep(5 * time.Millisecond)
	ids := r.ExpiredTerminal(0)
	assert.ElementsMatch(t, []string{completed, failed}, ids)
}

func TestJobRegistry_ConcurrentJobsDoNotCrossContaminate(t *testing.T) {
	r := NewJobRegistry()
	idA := r.Create(testURL, domain.FormatVideo, domain.QualityBest)
	idB := r.Create(testURL, domain.FormatAudio, "mp3")

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		for p := 0; p <= 100; p++ {
			r.UpdateProgress(idA, p, domain.PhaseDownloading)
		}
	}()
	go func() {
		defer wg.Done()
		for p := 0; p <= 50; p++ {
			r.UpdateProgress(idB, p, domain.PhaseDownloading)
		}
	}()
	go func() {
		defer wg.Done()
		// Concurrent polling must never observe a torn record.
		for i := 0; i < 200; i++ {
			if job, err := r.Get(idA); err == nil {
				assert.Equal(t, idA, job.ID)
			}
		}
	}()

	wg.Wait()

	jobA, _ := r.Get(idA)
	jobB, _ := r.Get(idB)
	assert.Equal(t, 100, jobA.Progress)
	assert.Equal(t, 50, jobB.Progress)
}
