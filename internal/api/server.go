// Package api exposes a Camera over HTTP.
//
// Requests and responses are JSON. Layers use the layer.Definition wire
// form. Errors are reported as
//
//	{"error": "LayerNotFound", "message": "layer: not found: abc"}
//
// where error is one of the overlaycam error codes.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/gogpu/overlaycam"
)

// DefaultPreviewQuality is the JPEG quality of preview stream frames.
const DefaultPreviewQuality = 60

// Server routes HTTP requests to one Camera.
type Server struct {
	cam            *overlaycam.Camera
	router         *mux.Router
	upgrader       websocket.Upgrader
	previewQuality int
	writeWait      time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithPreviewQuality sets the JPEG quality of preview frames, 0 to 100.
func WithPreviewQuality(q int) Option {
	return func(s *Server) { s.previewQuality = min(max(q, 0), 100) }
}

// WithCheckOrigin sets the websocket origin check. The default accepts
// same-origin requests only.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = fn }
}

// NewServer returns a Server for cam.
func NewServer(cam *overlaycam.Camera, opts ...Option) *Server {
	s := &Server{
		cam:            cam,
		router:         mux.NewRouter(),
		previewQuality: DefaultPreviewQuality,
		writeWait:      5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	c := r.PathPrefix("/camera").Subrouter()
	c.HandleFunc("/start", s.start).Methods(http.MethodPost)
	c.HandleFunc("/stop", s.stop).Methods(http.MethodPost)
	c.HandleFunc("/switch", s.switchCamera).Methods(http.MethodPost)
	c.HandleFunc("/flash", s.flash).Methods(http.MethodPost)
	c.HandleFunc("/zoom", s.zoom).Methods(http.MethodPost)
	c.HandleFunc("/focus", s.focus).Methods(http.MethodPost)
	c.HandleFunc("/state", s.state).Methods(http.MethodGet)

	r.HandleFunc("/capture", s.capture).Methods(http.MethodPost)

	r.HandleFunc("/layers", s.listLayers).Methods(http.MethodGet)
	r.HandleFunc("/layers", s.addLayer).Methods(http.MethodPost)
	r.HandleFunc("/layers", s.clearLayers).Methods(http.MethodDelete)
	r.HandleFunc("/layers/{id}", s.getLayer).Methods(http.MethodGet)
	r.HandleFunc("/layers/{id}", s.updateLayer).Methods(http.MethodPatch)
	r.HandleFunc("/layers/{id}", s.removeLayer).Methods(http.MethodDelete)

	r.HandleFunc("/preview", s.preview).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, errNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, errMethod)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
