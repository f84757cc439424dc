// Package artifact stores completed job output on the local filesystem.
// Each job gets one subdirectory named by its id, holding the single
// produced file; the directory's mtime doubles as the artifact's creation
// timestamp for retention purposes.
package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ytfetch/ytfetch/internal/domain"
)

type Store struct {
	root string
}

func NewStore(dataDir string) (*Store, error) {
	root := filepath.Join(dataDir, "artifacts")
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &Store{root: root}, nil
}

// Save moves the produced file into the store under the job id. Rename is
// attempted first; a copy fallback covers staging areas on another device.
func (s *Store) Save(jobID, srcPath string) (string, error) {
	dir := filepath.Join(s.root, jobID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create artifact directory for %s: %w", jobID, err)
	}

	dst := filepath.Join(dir, filepath.Base(srcPath))
	if err := os.Rename(srcPath, dst); err != nil {
		if err := copyFile(srcPath, dst); err != nil {
			_ = os.RemoveAll(dir)
			return "", fmt.Errorf("save artifact for %s: %w", jobID, err)
		}
		_ = os.Remove(srcPath)
	}

	// Stamp the directory so retention is measured from completion.
	now := time.Now()
	_ = os.Chtimes(dir, now, now)

	return dst, nil
}

// Open returns a read handle onto the stored file and its filename. A
// missing artifact reports ErrGone, which also covers losing a race with a
// concurrent sweep deletion.
func (s *Store) Open(jobID string) (*os.File, string, error) {
	dir := filepath.Join(s.root, jobID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, "", fmt.Errorf("artifact for %s: %w", jobID, domain.ErrGone)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, "", fmt.Errorf("artifact for %s: %w", jobID, domain.ErrGone)
		}
		return f, entry.Name(), nil
	}

	return nil, "", fmt.Errorf("artifact for %s: %w", jobID, domain.ErrGone)
}

func (s *Store) Delete(jobID string) error {
	return os.RemoveAll(filepath.Join(s.root, jobID))
}

// ListOlderThan returns job ids whose artifacts were stored more than age ago.
func (s *Store) ListOlderThan(age time.Duration) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("scan artifact directory: %w", err)
	}

	cutoff := time.Now().Add(-age)
	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
