package http

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytfetch/ytfetch/internal/domain"
	"github.com/ytfetch/ytfetch/internal/service"
)

// readEvents consumes an SSE response body until the server closes it and
// returns the decoded payloads.
func readEvents(t *testing.T, body *bufio.Scanner) []service.Event {
	t.Helper()
	var events []service.Event
	for body.Scan() {
		line := body.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var e service.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &e))
		events = append(events, e)
	}
	return events
}

func TestSSE_TerminalJobClosesAfterOneEvent(t *testing.T) {
	svc := &fakeService{
		statusFn: func(id string) (domain.Job, error) {
			return domain.Job{ID: id, Status: domain.JobStatusCompleted, Progress: 100, Filename: "clip.mp4"}, nil
		},
	}
	ts := httptest.NewServer(newTestServer(svc))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/events/job-123")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readEvents(t, bufio.NewScanner(resp.Body))
	require.Len(t, events, 1)
	assert.Equal(t, domain.JobStatusCompleted, events[0].Status)
	assert.Equal(t, 100, events[0].Progress)
}

func TestSSE_StreamsUntilTerminalEvent(t *testing.T) {
	svc := &fakeService{
		statusFn: func(id string) (domain.Job, error) {
			return domain.Job{ID: id, Status: domain.JobStatusDownloading, Progress: 10}, nil
		},
	}
	eventBus := service.NewEventBus()
	srv := NewServer(svc, eventBus, SystemInfo{}, "1.0.0")
	ts := httptest.NewServer(srv)
	defer ts.Close()

	// Keep publishing the terminal event until the stream closes; the
	// subscriber picks it up as soon as it is registered.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			eventBus.Publish("job-123", service.Event{Status: domain.JobStatusCompleted, Progress: 100})
			time.Sleep(5 * time.Millisecond)
		}
	}()

	resp, err := http.Get(ts.URL + "/api/events/job-123")
	require.NoError(t, err)
	defer resp.Body.Close()

	events := readEvents(t, bufio.NewScanner(resp.Body))
	require.NotEmpty(t, events)
	assert.Equal(t, domain.JobStatusDownloading, events[0].Status)
	assert.Equal(t, 10, events[0].Progress)
	last := events[len(events)-1]
	assert.Equal(t, domain.JobStatusCompleted, last.Status)
	assert.Equal(t, 100, last.Progress)
}

func TestSSE_UnknownJob(t *testing.T) {
	svc := &fakeService{
		statusFn: func(string) (domain.Job, error) {
			return domain.Job{}, domain.ErrNotFound
		},
	}
	ts := httptest.NewServer(newTestServer(svc))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/events/never-issued")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
