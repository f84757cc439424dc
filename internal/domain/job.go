package domain

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusQueued      JobStatus = "queued"
	JobStatusDownloading JobStatus = "downloading"
	JobStatusProcessing  JobStatus = "processing"
	JobStatusCompleted   JobStatus = "completed"
	JobStatusError       JobStatus = "error"
)

// statusRank orders statuses along the only legal progression:
// queued -> downloading -> processing -> completed|error.
var statusRank = map[JobStatus]int{
	JobStatusQueued:      0,
	JobStatusDownloading: 1,
	JobStatusProcessing:  2,
	JobStatusCompleted:   3,
	JobStatusError:       3,
}

// Rank returns the position of the status in the forward progression.
func (s JobStatus) Rank() int {
	return statusRank[s]
}

// IsTerminal reports whether no further transitions are permitted.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

// JobPhase names the visible lifecycle phase a worker reports progress
// under. It maps one-to-one onto the two running statuses.
type JobPhase string

const (
	PhaseDownloading JobPhase = "downloading"
	PhaseProcessing  JobPhase = "processing"
)

func (p JobPhase) Status() JobStatus {
	if p == PhaseProcessing {
		return JobStatusProcessing
	}
	return JobStatusDownloading
}

type FormatKind string

const (
	FormatVideo FormatKind = "video"
	FormatAudio FormatKind = "audio"
)

// QualityBest is the sentinel quality accepted for any format, meaning the
// engine picks the best available rendition.
const QualityBest = "best"

// Job is one tracked download/transcode request. The registry owns Job
// records; everything outside the registry sees value snapshots.
type Job struct {
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	Format       FormatKind `json:"format"`
	Quality      string     `json:"quality"`
	Status       JobStatus  `json:"status"`
	Progress     int        `json:"progress"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ArtifactPath string     `json:"artifact_path,omitempty"`
	Filename     string     `json:"filename,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func NewJob(url string, format FormatKind, quality string) *Job {
	return &Job{
		ID:        uuid.NewString(),
		URL:       url,
		Format:    format,
		Quality:   quality,
		Status:    JobStatusQueued,
		CreatedAt: time.Now(),
	}
}
