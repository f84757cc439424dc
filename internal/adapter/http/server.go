package http

import (
	"net/http"

	"github.com/ytfetch/ytfetch/internal/adapter/http/middleware"
	"github.com/ytfetch/ytfetch/internal/service"
	"github.com/ytfetch/ytfetch/static"
)

type Server struct {
	mux        *http.ServeMux
	handlers   *Handlers
	sseHandler *SSEHandler
}

func NewServer(svc DownloadService, eventBus *service.EventBus, info SystemInfo, version string) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		handlers:   NewHandlers(svc, info, version),
		sseHandler: NewSSEHandler(eventBus, svc),
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handlers.Health())
	s.mux.HandleFunc("GET /api/system-info", s.handlers.SystemInfo())

	s.mux.HandleFunc("POST /api/video-info", s.handlers.VideoInfo())
	s.mux.HandleFunc("POST /api/download", s.handlers.StartDownload())
	s.mux.HandleFunc("GET /api/progress/{id}", s.handlers.Progress())
	s.mux.HandleFunc("GET /api/download-file/{id}", s.handlers.DownloadFile())
	s.mux.HandleFunc("GET /api/events/{id}", s.sseHandler.Events())

	s.mux.Handle("GET /{$}", http.FileServer(http.FS(static.FS)))
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static.FS))))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	middleware.SecurityHeaders(middleware.CORS(s.mux)).ServeHTTP(w, r)
}
