package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ytfetch/ytfetch/internal/service"
)

// SSEHandler pushes job progress to clients that prefer a live stream over
// polling /api/progress. Polling remains the canonical interface; this is
// an additive channel fed by the same registry updates.
type SSEHandler struct {
	eventBus *service.EventBus
	svc      DownloadService
}

func NewSSEHandler(eventBus *service.EventBus, svc DownloadService) *SSEHandler {
	return &SSEHandler{
		eventBus: eventBus,
		svc:      svc,
	}
}

// sseWrite writes one SSE event with a JSON payload.
func sseWrite(w http.ResponseWriter, eventName string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventName, data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func sendKeepAlive(w http.ResponseWriter) {
	_, _ = fmt.Fprint(w, ": keep-alive\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandler) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		job, err := h.svc.GetStatus(id)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		// Current state first, so late subscribers see something
		// immediately.
		sseWrite(w, "progress", service.Event{
			Status:   job.Status,
			Progress: job.Progress,
			Message:  job.ErrorMessage,
		})
		if job.Status.IsTerminal() {
			return
		}

		ch := h.eventBus.Subscribe(id)
		defer h.eventBus.Unsubscribe(id, ch)

		ctx := r.Context()
		keepAlive := time.NewTicker(15 * time.Second)
		defer keepAlive.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-keepAlive.C:
				sendKeepAlive(w)
			case event, ok := <-ch:
				if !ok {
					return
				}
				sseWrite(w, "progress", event)
				if event.Status.IsTerminal() {
					return
				}
			}
		}
	}
}
