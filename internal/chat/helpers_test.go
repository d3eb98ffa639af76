package chat

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sonnybell/linechat/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(logging.Config{Level: "error", Format: "text"})
}

// fakeTransport is an in-memory line stream driven by tests.
type fakeTransport struct {
	reads     chan string
	done      chan struct{}
	closeOnce sync.Once

	mu         sync.Mutex
	lines      []string
	failWrites bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		reads: make(chan string, 64),
		done:  make(chan struct{}),
	}
}

func (t *fakeTransport) ReadLine() (string, error) {
	select {
	case line := <-t.reads:
		return line, nil
	case <-t.done:
		return "", io.EOF
	}
}

func (t *fakeTransport) WriteLine(line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.failWrites {
		return errors.New("write failed")
	}
	select {
	case <-t.done:
		return errors.New("transport closed")
	default:
	}
	t.lines = append(t.lines, line)
	return nil
}

func (t *fakeTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}

func (t *fakeTransport) push(line string) {
	t.reads <- line
}

func (t *fakeTransport) breakWrites() {
	t.mu.Lock()
	t.failWrites = true
	t.mu.Unlock()
}

func (t *fakeTransport) received() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

func (t *fakeTransport) countReceived(line string) int {
	n := 0
	for _, l := range t.received() {
		if l == line {
			n++
		}
	}
	return n
}

func (t *fakeTransport) isClosed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// stubGame is a recording GameControl implementation.
type stubGame struct {
	mu         sync.Mutex
	active     bool
	answer     string
	statusLine string
	startCalls int
	stopCalls  int
	scoreCalls int
	checked    [][2]string
}

func (g *stubGame) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.startCalls++
}

func (g *stubGame) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopCalls++
}

func (g *stubGame) ShowScores() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scoreCalls++
}

func (g *stubGame) Status() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusLine
}

func (g *stubGame) IsActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *stubGame) CheckAnswer(username, text string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checked = append(g.checked, [2]string{username, text})
	return g.answer != "" && strings.EqualFold(strings.TrimSpace(text), g.answer)
}

func (g *stubGame) checkedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.checked)
}

// recordingAudit captures router records.
type recordingAudit struct {
	mu      sync.Mutex
	records []string
}

func (a *recordingAudit) Record(tag, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, tag+"|"+message)
}

func (a *recordingAudit) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.records...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// startSession runs a session through its full join path and waits until it
// is registered.
func startSession(t *testing.T, name string, reg *Registry, rt *Router, g GameControl) (*Session, *fakeTransport) {
	t.Helper()

	tr := newFakeTransport()
	s := NewSession(name, tr, reg, rt, g, testLogger())
	go s.Run()

	join := "SERVER: " + name + " has joined the chat!"
	waitFor(t, name+" to join", func() bool {
		if !reg.HasName(name) {
			return false
		}
		for _, m := range rt.History() {
			if m.Body == join {
				return true
			}
		}
		return false
	})
	return s, tr
}
