package web

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/loom-ui/loom/pkg/element"
	"github.com/loom-ui/loom/pkg/export"
	"github.com/loom-ui/loom/pkg/fiber"
	"github.com/loom-ui/loom/pkg/host/memhost"
)

func testCounter(ctx *fiber.Ctx, _ element.Props) *element.Element {
	count, setCount := fiber.UseState(ctx, 0)
	return element.Div(nil,
		element.Button(element.Props{
			"id": "inc",
			"onClick": func(memhost.Event) {
				setCount.Update(func(n int) int { return n + 1 })
			},
		}, fmt.Sprintf("count %d", count)),
	)
}

func dialSession(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) PatchFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame PatchFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func waitSessions(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for s.Sessions() != n {
		if time.Now().After(deadline) {
			t.Fatalf("sessions = %d, want %d", s.Sessions(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServerMountAndEventFlow(t *testing.T) {
	s := NewServer(testCounter)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialSession(t, ts)
	defer conn.Close()

	mount := readFrame(t, conn)
	if mount.Seq != 1 {
		t.Errorf("mount frame seq = %d, want 1", mount.Seq)
	}

	var buttonID uint64
	var sawText bool
	for _, p := range mount.Patches {
		if p.Op == PatchListen && p.Key == "click" {
			buttonID = p.Node
		}
		if p.Op == PatchCreateNode && p.Value == "count 0" {
			sawText = true
		}
	}
	if buttonID == 0 {
		t.Fatal("mount frame carries no click subscription")
	}
	if !sawText {
		t.Error("mount frame missing initial text")
	}

	// Fire the button; the update streams back as a SetText patch.
	if err := conn.WriteJSON(EventFrame{Node: buttonID, Event: "click"}); err != nil {
		t.Fatalf("write event: %v", err)
	}
	update := readFrame(t, conn)
	if update.Seq != 2 {
		t.Errorf("update frame seq = %d, want 2", update.Seq)
	}
	found := false
	for _, p := range update.Patches {
		if p.Op == PatchSetText && p.Value == "count 1" {
			found = true
		}
	}
	if !found {
		t.Errorf("update frame lacks new text: %+v", update.Patches)
	}
}

func TestServerSessionLifecycle(t *testing.T) {
	s := NewServer(testCounter)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialSession(t, ts)
	waitSessions(t, s, 1)

	conn.Close()
	waitSessions(t, s, 0)
}

func TestServerSnapshotEndpoint(t *testing.T) {
	store := export.NewMemStore()
	s := NewServer(testCounter, WithSnapshotStore(store), WithAppName("demo"))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialSession(t, ts)
	defer conn.Close()
	readFrame(t, conn) // wait for mount
	waitSessions(t, s, 1)

	s.mu.RLock()
	var id string
	for sid := range s.sessions {
		id = sid
	}
	s.mu.RUnlock()

	resp, err := http.Get(ts.URL + "/sessions/" + id + "/snapshot")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "count 0") {
		t.Errorf("snapshot = %q", body)
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "demo-") {
		t.Errorf("Location = %q", loc)
	}
	if store.Len() != 1 {
		t.Errorf("store Len = %d, want 1", store.Len())
	}
}

func TestServerSnapshotUnknownSession(t *testing.T) {
	s := NewServer(testCounter)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/sessions/nope/snapshot")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServerIndexAndHealth(t *testing.T) {
	s := NewServer(testCounter, WithAppName("demo"))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get index: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "<title>demo</title>") {
		t.Error("index page missing app title")
	}
	if !strings.Contains(string(body), `id="app"`) {
		t.Error("index page missing mount point")
	}

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
}

func TestEventAfterSessionCloseIsDropped(t *testing.T) {
	s := NewServer(testCounter)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialSession(t, ts)
	defer conn.Close()
	readFrame(t, conn) // wait for mount
	waitSessions(t, s, 1)

	s.mu.RLock()
	var sess *Session
	for _, v := range s.sessions {
		sess = v
	}
	s.mu.RUnlock()

	s.CloseAll()
	<-sess.Done()

	// The stopped loop drops the dispatched task; the event must neither
	// block nor leak work onto a dead session.
	sess.handleEvent(EventFrame{Node: 1, Event: "click"})
}

func TestServerCloseAll(t *testing.T) {
	s := NewServer(testCounter)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialSession(t, ts)
	defer conn.Close()
	waitSessions(t, s, 1)

	s.CloseAll()
	if got := s.Sessions(); got != 0 {
		t.Errorf("sessions after CloseAll = %d", got)
	}

	// The client read fails once the server side closed the connection.
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame PatchFrame
	if err := conn.ReadJSON(&frame); err == nil {
		t.Error("expected read error after CloseAll")
	}
}
