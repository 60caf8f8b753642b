package web

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/loom-ui/loom/pkg/export"
	"github.com/loom-ui/loom/pkg/fiber"
	"github.com/loom-ui/loom/pkg/metrics"
)

// defaultTracerName is the otel tracer name for loom servers.
const defaultTracerName = "loom"

// Server hosts a root component over WebSocket sessions: each connection
// gets its own engine whose host mutations stream to the browser as patches.
type Server struct {
	root   fiber.Component
	logger *slog.Logger
	tracer trace.Tracer
	slice  time.Duration

	recorder *metrics.Recorder
	store    export.Store
	appName  string

	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the server logger.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithSlice sets the work-loop time slice granted per scheduler callback.
func WithSlice(d time.Duration) ServerOption {
	return func(s *Server) { s.slice = d }
}

// WithRecorder sets the shared engine metrics recorder.
func WithRecorder(r *metrics.Recorder) ServerOption {
	return func(s *Server) { s.recorder = r }
}

// WithSnapshotStore enables snapshot persistence on the snapshot endpoint.
func WithSnapshotStore(store export.Store) ServerOption {
	return func(s *Server) { s.store = store }
}

// WithAppName sets the name used in snapshot keys and the index page title.
func WithAppName(name string) ServerOption {
	return func(s *Server) { s.appName = name }
}

// NewServer creates a server for the given root component.
func NewServer(root fiber.Component, opts ...ServerOption) *Server {
	s := &Server{
		root:     root,
		logger:   slog.Default(),
		tracer:   otel.Tracer(defaultTracerName),
		slice:    4 * time.Millisecond,
		appName:  "loom",
		sessions: make(map[string]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the server's HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", s.handleHealth)
	r.Get("/sessions/{id}/snapshot", s.handleSnapshot)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage(s.appName)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sess := newSession(conn, s.root, s)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.logger.Info("session opened", "session_id", sess.ID, "remote", r.RemoteAddr)

	sess.ReadLoop()

	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
}

// handleSnapshot serializes a session's mirror tree to HTML. When a snapshot
// store is configured the snapshot is persisted and its location returned in
// the Location header.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	html := sess.SnapshotHTML()
	if s.store != nil {
		key := export.SnapshotKey(s.appName, time.Now())
		loc, err := s.store.Put(r.Context(), key, []byte(html))
		if err != nil {
			s.logger.Error("snapshot store failed", "error", err, "session_id", id)
			http.Error(w, "snapshot store failed", http.StatusBadGateway)
			return
		}
		w.Header().Set("Location", loc)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// Sessions reports the number of live sessions.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CloseAll closes every live session, for shutdown.
func (s *Server) CloseAll() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
