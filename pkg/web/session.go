package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/loom-ui/loom/pkg/element"
	"github.com/loom-ui/loom/pkg/export"
	"github.com/loom-ui/loom/pkg/fiber"
	"github.com/loom-ui/loom/pkg/idle"
)

// Session binds one WebSocket connection to one engine instance. The engine
// and its adapter are confined to the session's scheduler loop; the read
// goroutine only decodes frames and dispatches into the loop.
type Session struct {
	ID        string
	CreatedAt time.Time

	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  atomic.Bool
	done    chan struct{}

	adapter *Adapter
	engine  *fiber.Engine
	loop    *idle.Loop

	logger *slog.Logger
	tracer trace.Tracer

	sendSeq    atomic.Uint64
	eventCount atomic.Uint64
	patchCount atomic.Uint64
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func newSession(conn *websocket.Conn, root fiber.Component, srv *Server) *Session {
	id := generateSessionID()
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		conn:      conn,
		done:      make(chan struct{}),
		adapter:   NewAdapter(),
		loop:      idle.NewLoop(srv.slice),
		logger:    srv.logger.With("session_id", id),
		tracer:    srv.tracer,
	}

	opts := []fiber.Option{
		fiber.WithScheduler(s.loop),
		fiber.WithLogger(s.logger),
		fiber.WithCommitHook(s.flushPatches),
	}
	if srv.recorder != nil {
		opts = append(opts, fiber.WithMetrics(srv.recorder))
	}
	s.engine = fiber.New(s.adapter, opts...)

	// Mount on the loop goroutine so every engine touch is confined there.
	s.loop.Dispatch(func() {
		s.engine.Render(fiber.NewComponent(root, element.Props{}), s.adapter.Container)
	})
	return s
}

// ReadLoop reads event frames until the connection closes. It blocks; run it
// on the connection's handler goroutine.
func (s *Session) ReadLoop() {
	defer s.Close()
	for {
		var ev EventFrame
		if err := s.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.handleEvent(ev)
	}
}

// handleEvent dispatches one client event to its mirror listener, traced and
// executed on the session loop. The span starts inside the dispatched task:
// a stopped loop drops the task, and a span started out here would never
// end.
func (s *Session) handleEvent(ev EventFrame) {
	s.eventCount.Add(1)

	s.loop.Dispatch(func() {
		_, span := s.tracer.Start(
			context.Background(),
			"loom.event",
			trace.WithAttributes(
				attribute.String("session.id", s.ID),
				attribute.Int64("node.id", int64(ev.Node)),
				attribute.String("event.type", ev.Event),
			),
		)
		defer span.End()
		node := s.adapter.NodeByID(ev.Node)
		if node == nil {
			span.SetStatus(codes.Error, "node not found")
			s.logger.Warn("event for unknown node", "node", ev.Node, "event", ev.Event)
			return
		}
		if !node.Fire(ev.Event) {
			span.SetStatus(codes.Error, "no listener")
			s.logger.Warn("no listener for event", "node", ev.Node, "event", ev.Event)
			return
		}
		span.SetStatus(codes.Ok, "")
	})
}

// flushPatches sends the commit's accumulated patches as one frame.
// Runs on the loop goroutine via the engine's commit hook.
func (s *Session) flushPatches() {
	patches := s.adapter.Drain()
	if len(patches) == 0 || s.closed.Load() {
		return
	}
	frame := PatchFrame{Seq: s.sendSeq.Add(1), Patches: patches}

	s.writeMu.Lock()
	err := s.conn.WriteJSON(frame)
	s.writeMu.Unlock()
	if err != nil {
		s.logger.Error("write error", "error", err)
		s.Close()
		return
	}
	s.patchCount.Add(uint64(len(patches)))
}

// SnapshotHTML renders the session's mirror tree to HTML, synchronized with
// the session loop.
func (s *Session) SnapshotHTML() string {
	out := make(chan string, 1)
	s.loop.Dispatch(func() {
		out <- export.HTML(s.adapter.Container)
	})
	select {
	case html := <-out:
		return html
	case <-s.done:
		return ""
	case <-time.After(5 * time.Second):
		return ""
	}
}

// Stats reports basic per-session counters.
func (s *Session) Stats() (events, patches uint64) {
	return s.eventCount.Load(), s.patchCount.Load()
}

// Close tears the session down: the loop drains, the connection closes.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)
	// Stop waits for the loop goroutine; run it detached so a close initiated
	// from inside a dispatched task (for example a write failure during
	// flushPatches) cannot deadlock.
	go s.loop.Stop()
	_ = s.conn.Close()
	s.logger.Info("session closed",
		"events", s.eventCount.Load(),
		"patches", s.patchCount.Load(),
		"age", time.Since(s.CreatedAt))
}

// Done is closed when the session has shut down.
func (s *Session) Done() <-chan struct{} { return s.done }
