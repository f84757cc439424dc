package port

import (
	"os"
	"time"
)

// ArtifactStore is the filesystem area holding completed output files,
// keyed by job id. It is shared between the worker (writer), the fetch
// endpoint (reader), and the retention sweeper (deleter).
type ArtifactStore interface {
	// Save moves the file at srcPath into the store under the given job id
	// and returns its final path.
	Save(jobID, srcPath string) (string, error)

	// Open returns a read handle onto the stored file and its original
	// filename. Returns domain.ErrGone when the artifact is missing,
	// including when a sweep deletion won the race.
	Open(jobID string) (*os.File, string, error)

	// Delete removes the artifact for the job id. Deleting an absent
	// artifact is not an error.
	Delete(jobID string) error

	// ListOlderThan returns the job ids of artifacts created more than
	// age ago.
	ListOlderThan(age time.Duration) ([]string, error)
}
