package port

import (
	"context"

	"github.com/ytfetch/ytfetch/internal/domain"
)

// ProgressFunc receives coarse progress from the extraction engine. percent
// is 0-100 within the named phase; granularity and call frequency are up to
// the engine.
type ProgressFunc func(percent int, phase domain.JobPhase)

// FetchRequest describes one extraction run. StagingDir is a directory the
// engine may write into; the produced file ends up inside it.
type FetchRequest struct {
	URL     string
	Format  domain.FormatKind
	Quality string
	// StagingDir is exclusive to this request.
	StagingDir string
}

// Extractor is the external extraction/transcode engine. It resolves a
// source URL into metadata or a downloaded (optionally transcoded) file.
type Extractor interface {
	// Probe fetches descriptive metadata without downloading anything.
	Probe(ctx context.Context, url string) (*domain.VideoInfo, error)

	// Fetch downloads and transcodes per the request, reporting progress
	// through the callback, and returns the path of the produced file.
	Fetch(ctx context.Context, req FetchRequest, progress ProgressFunc) (string, error)
}
