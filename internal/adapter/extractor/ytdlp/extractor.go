// Package ytdlp adapts the yt-dlp extraction engine behind the
// port.Extractor interface. The engine is treated as an opaque capability:
// fetch and optionally transcode, report fractional progress, hand back a
// final file or an error.
package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/ytfetch/ytfetch/internal/domain"
	"github.com/ytfetch/ytfetch/internal/port"
)

// progressInterval throttles engine callbacks into coarse updates.
const progressInterval = 500 * time.Millisecond

// minHeight filters out thumbnail-grade renditions from advertised formats.
const minHeight = 144

type Extractor struct {
	cookiesFile string
	ffmpeg      bool
}

// New builds the adapter. cookiesFile may be empty; ffmpeg availability is
// probed once and decides whether merged video selectors can be used.
func New(cookiesFile string) *Extractor {
	_, err := exec.LookPath("ffmpeg")
	return &Extractor{
		cookiesFile: cookiesFile,
		ffmpeg:      err == nil,
	}
}

// HasFFmpeg reports whether post-processing (merge, audio extraction) is
// available on this host.
func (e *Extractor) HasFFmpeg() bool {
	return e.ffmpeg
}

// probePayload is the slice of the engine's single-JSON dump we care about.
type probePayload struct {
	Title      string  `json:"title"`
	Uploader   string  `json:"uploader"`
	Duration   float64 `json:"duration"`
	ViewCount  int64   `json:"view_count"`
	Thumbnail  string  `json:"thumbnail"`
	WebpageURL string  `json:"webpage_url"`
	Formats    []struct {
		VCodec string `json:"vcodec"`
		Height int    `json:"height"`
	} `json:"formats"`
}

func (e *Extractor) Probe(ctx context.Context, url string) (*domain.VideoInfo, error) {
	dl := ytdlp.New().
		NoPlaylist().
		SkipDownload().
		DumpSingleJSON()
	if e.cookiesFile != "" {
		dl = dl.Cookies(e.cookiesFile)
	}

	res, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", url, err)
	}

	var payload probePayload
	if err := json.Unmarshal([]byte(res.Stdout), &payload); err != nil {
		return nil, fmt.Errorf("decode probe output: %w", err)
	}

	seen := make(map[int]bool)
	var heights []int
	for _, f := range payload.Formats {
		if f.VCodec == "" || f.VCodec == "none" || f.Height < minHeight {
			continue
		}
		if !seen[f.Height] {
			seen[f.Height] = true
			heights = append(heights, f.Height)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(heights)))

	formats := make([]string, 0, len(heights)+1)
	formats = append(formats, domain.QualityBest)
	for _, h := range heights {
		formats = append(formats, fmt.Sprintf("%dp", h))
	}

	cleanURL := payload.WebpageURL
	if cleanURL == "" {
		cleanURL = url
	}

	return &domain.VideoInfo{
		Title:        payload.Title,
		Uploader:     payload.Uploader,
		Duration:     formatDuration(payload.Duration),
		ViewCount:    payload.ViewCount,
		Thumbnail:    payload.Thumbnail,
		VideoFormats: formats,
		CleanURL:     cleanURL,
	}, nil
}

func (e *Extractor) Fetch(ctx context.Context, req port.FetchRequest, progress port.ProgressFunc) (string, error) {
	dl := ytdlp.New().
		NoPlaylist().
		RestrictFilenames().
		ForceOverwrites().
		Output(filepath.Join(req.StagingDir, "%(title)s.%(ext)s"))
	if e.cookiesFile != "" {
		dl = dl.Cookies(e.cookiesFile)
	}

	e.applyFormat(dl, req)

	dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		switch update.Status {
		case ytdlp.ProgressStatusDownloading:
			if update.TotalBytes > 0 {
				percent := int(float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100)
				progress(percent, domain.PhaseDownloading)
			}
		case ytdlp.ProgressStatusPostProcessing:
			progress(100, domain.PhaseProcessing)
		}
	})

	if _, err := dl.Run(ctx, req.URL); err != nil {
		return "", fmt.Errorf("extraction failed: %w", err)
	}

	// Post-processors rename the output (e.g. .webm -> .mp3), so locate
	// the produced file instead of trusting the template.
	path, err := producedFile(req.StagingDir)
	if err != nil {
		return "", err
	}
	return path, nil
}

// applyFormat translates the requested kind/quality into the same engine
// selectors the service has always used. Without ffmpeg, video falls back
// to progressive single-file formats since merging is impossible.
func (e *Extractor) applyFormat(dl *ytdlp.Command, req port.FetchRequest) {
	if req.Format == domain.FormatAudio {
		switch req.Quality {
		case "mp3":
			dl.Format("bestaudio").ExtractAudio().AudioFormat("mp3").AudioQuality("192K")
		case "wav":
			dl.Format("bestaudio").ExtractAudio().AudioFormat("wav")
		case "m4a":
			dl.Format("bestaudio[ext=m4a]/bestaudio")
		default:
			dl.Format("bestaudio")
		}
		return
	}

	height := strings.TrimSuffix(req.Quality, "p")
	if e.ffmpeg {
		if req.Quality == domain.QualityBest {
			dl.Format("bestvideo[ext=mp4]+bestaudio[ext=m4a]/best")
		} else {
			dl.Format(fmt.Sprintf("bestvideo[height<=%s][ext=mp4]+bestaudio[ext=m4a]/best[height<=%s]", height, height))
		}
		dl.MergeOutputFormat("mp4")
		return
	}

	if req.Quality == domain.QualityBest {
		dl.Format("best[ext=mp4]/best")
	} else {
		dl.Format(fmt.Sprintf("best[height<=%s][ext=mp4]/best[height<=%s]", height, height))
	}
}

// producedFile returns the single finished file in the staging directory,
// ignoring the engine's partial-download droppings.
func producedFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scan staging directory: %w", err)
	}

	var newest string
	var newestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".part", ".ytdl", ".temp":
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = entry.Name()
			newestTime = info.ModTime()
		}
	}

	if newest == "" {
		return "", fmt.Errorf("engine produced no output file")
	}
	return filepath.Join(dir, newest), nil
}

// formatDuration renders seconds as M:SS, or "N/A" when unknown.
func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "N/A"
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
