package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ytfetch/ytfetch/internal/domain"
	"github.com/ytfetch/ytfetch/internal/port"
)

// fakeExtractor scripts the engine behaviour per test.
type fakeExtractor struct {
	probeFn func(ctx context.Context, url string) (*domain.VideoInfo, error)
	fetchFn func(ctx context.Context, req port.FetchRequest, progress port.ProgressFunc) (string, error)
}

func (f *fakeExtractor) Probe(ctx context.Context, url string) (*domain.VideoInfo, error) {
	return f.probeFn(ctx, url)
}

func (f *fakeExtractor) Fetch(ctx context.Context, req port.FetchRequest, progress port.ProgressFunc) (string, error) {
	return f.fetchFn(ctx, req, progress)
}

// fakeArtifactStore tracks artifacts in a map and allows error injection.
// Saved files are moved out of the staging directory like the real store.
type fakeArtifactStore struct {
	dir       string
	mu        sync.Mutex
	artifacts map[string]string
	old       []string
	saveErr   error
	deleteErr map[string]error
	deleted   []string
}

func newFakeArtifactStore(t *testing.T) *fakeArtifactStore {
	t.Helper()
	return &fakeArtifactStore{
		dir:       t.TempDir(),
		artifacts: make(map[string]string),
		deleteErr: make(map[string]error),
	}
}

func (s *fakeArtifactStore) Save(jobID, srcPath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return "", s.saveErr
	}
	if err := os.MkdirAll(filepath.Join(s.dir, jobID), 0755); err != nil {
		return "", err
	}
	dst := filepath.Join(s.dir, jobID, filepath.Base(srcPath))
	if err := os.Rename(srcPath, dst); err != nil {
		return "", err
	}
	s.artifacts[jobID] = dst
	return dst, nil
}

func (s *fakeArtifactStore) Open(jobID string) (*os.File, string, error) {
	s.mu.Lock()
	path, ok := s.artifacts[jobID]
	s.mu.Unlock()
	if !ok {
		return nil, "", domain.ErrGone
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", domain.ErrGone
	}
	return f, filepath.Base(path), nil
}

func (s *fakeArtifactStore) Delete(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deleteErr[jobID]; err != nil {
		return err
	}
	delete(s.artifacts, jobID)
	s.deleted = append(s.deleted, jobID)
	return nil
}

func (s *fakeArtifactStore) ListOlderThan(time.Duration) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.old, nil
}

// writeStagingFile simulates the engine dropping its output file.
func writeStagingFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
