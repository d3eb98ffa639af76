package web

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/sonnybell/linechat/internal/chat"
	"github.com/sonnybell/linechat/internal/logging"
)

// wsTransport adapts a WebSocket connection to the chat session's line
// stream: each text frame carries one chat line.
type wsTransport struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func newWSTransport(conn *websocket.Conn) *wsTransport {
	return &wsTransport{conn: conn}
}

func (t *wsTransport) ReadLine() (string, error) {
	for {
		mt, data, err := t.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if mt == websocket.TextMessage {
			return string(data), nil
		}
	}
}

func (t *wsTransport) WriteLine(line string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.conn.Close()
	})
	return err
}

// serveWS upgrades a browser connection and runs it through the same session
// loop as a TCP client. Credentials arrive as query parameters since the
// upgrade happens before any frame is exchanged.
func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("password") != h.password {
		http.Error(w, "invalid password", http.StatusUnauthorized)
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "a display name is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.FromContext(r.Context()).Warn("websocket upgrade failed", "error", err)
		return
	}

	t := newWSTransport(conn)
	sess := chat.NewSession(name, t, h.registry, h.router, h.game, h.logger)
	if err := sess.Run(); err != nil {
		t.WriteLine("SERVER: The name '" + name + "' is already in use. Please reconnect with another.")
		t.Close()
	}
}
