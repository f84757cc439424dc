package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ytfetch/ytfetch/internal/adapter/http/validation"
	"github.com/ytfetch/ytfetch/internal/domain"
	"github.com/ytfetch/ytfetch/internal/infrastructure/logger"
)

// DownloadService is the slice of the job manager the HTTP layer consumes.
type DownloadService interface {
	Lookup(ctx context.Context, url string) (*domain.VideoInfo, error)
	StartDownload(url string, format domain.FormatKind, quality string) (string, error)
	GetStatus(id string) (domain.Job, error)
	OpenArtifact(id string) (*os.File, string, error)
}

// SystemInfo is reported by /api/system-info.
type SystemInfo struct {
	FFmpegAvailable  bool `json:"ffmpeg_available"`
	RetentionSeconds int  `json:"retention_seconds"`
	MaxActiveJobs    int  `json:"max_active_jobs"`
}

type Handlers struct {
	svc     DownloadService
	info    SystemInfo
	version string
}

func NewHandlers(svc DownloadService, info SystemInfo, version string) *Handlers {
	return &Handlers{
		svc:     svc,
		info:    info,
		version: version,
	}
}

type errorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinel errors onto HTTP statuses and the
// structured {kind, error} payload.
func writeError(w http.ResponseWriter, err error) {
	var status int
	var kind string

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status, kind = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrNotReady):
		status, kind = http.StatusConflict, "not_ready"
	case errors.Is(err, domain.ErrGone):
		status, kind = http.StatusGone, "gone"
	case errors.Is(err, domain.ErrBusy):
		status, kind = http.StatusTooManyRequests, "busy"
	default:
		status, kind = http.StatusInternalServerError, "internal"
	}

	writeJSON(w, status, errorResponse{Kind: kind, Error: err.Error()})
}

func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   h.version,
		})
	}
}

func (h *Handlers) SystemInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.info)
	}
}

type lookupRequest struct {
	URL string `json:"url"`
}

func (h *Handlers) VideoInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lookupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Kind: "invalid_request", Error: "invalid JSON body"})
			return
		}

		url := strings.TrimSpace(req.URL)
		if url == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Kind: "invalid_request", Error: "url is required"})
			return
		}
		if !validation.IsVideoURL(url) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Kind: "invalid_request", Error: "unsupported video URL"})
			return
		}

		info, err := h.svc.Lookup(r.Context(), validation.CanonicalURL(url))
		if err != nil {
			if errors.Is(err, domain.ErrInvalidRequest) {
				writeError(w, err)
				return
			}
			logger.Error.Printf("lookup failed for %s: %v", logger.SanitizeForLog(url), err)
			writeJSON(w, http.StatusBadGateway, errorResponse{Kind: "engine_failure", Error: "could not fetch video information"})
			return
		}

		writeJSON(w, http.StatusOK, info)
	}
}

type downloadRequest struct {
	URL        string `json:"url"`
	FormatType string `json:"format_type"`
	Quality    string `json:"quality"`
}

type downloadResponse struct {
	Success    bool   `json:"success"`
	DownloadID string `json:"download_id"`
}

func (h *Handlers) StartDownload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req downloadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Kind: "invalid_request", Error: "invalid JSON body"})
			return
		}

		url := strings.TrimSpace(req.URL)
		if req.FormatType == "" {
			req.FormatType = string(domain.FormatVideo)
		}
		if req.Quality == "" {
			req.Quality = domain.QualityBest
		}

		id, err := h.svc.StartDownload(validation.CanonicalURL(url), domain.FormatKind(req.FormatType), req.Quality)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, downloadResponse{Success: true, DownloadID: id})
	}
}

type progressResponse struct {
	Status   domain.JobStatus `json:"status"`
	Progress int              `json:"progress"`
	Error    string           `json:"error,omitempty"`
	Filename string           `json:"filename,omitempty"`
}

func (h *Handlers) Progress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := h.svc.GetStatus(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, progressResponse{
			Status:   job.Status,
			Progress: job.Progress,
			Error:    job.ErrorMessage,
			Filename: job.Filename,
		})
	}
}

func (h *Handlers) DownloadFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		f, name, err := h.svc.OpenArtifact(id)
		if err != nil {
			writeError(w, err)
			return
		}
		defer f.Close() //nolint:errcheck

		stat, err := f.Stat()
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Disposition", validation.ContentDisposition(name))
		http.ServeContent(w, r, name, stat.ModTime(), f)
	}
}
