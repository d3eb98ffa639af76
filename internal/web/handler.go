// Package web exposes the chat core to browser clients: a JSON webchat API,
// admin moderation and status endpoints, and a WebSocket line transport.
package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/sonnybell/linechat/internal/chat"
	"github.com/sonnybell/linechat/internal/logging"
)

// Handler serves the web bridge endpoints.
type Handler struct {
	password  string
	registry  *chat.Registry
	router    *chat.Router
	game      chat.GameControl
	moderator *chat.Moderator
	users     *UserSet
	logger    *logging.Logger
	startTime time.Time
	upgrader  websocket.Upgrader
}

// NewHandler creates the web bridge over an already-wired chat core.
func NewHandler(password string, registry *chat.Registry, router *chat.Router, game chat.GameControl, moderator *chat.Moderator, users *UserSet, logger *logging.Logger) *Handler {
	return &Handler{
		password:  password,
		registry:  registry,
		router:    router,
		game:      game,
		moderator: moderator,
		users:     users,
		logger:    logger,
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Routes returns the bridge's route tree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.logContext)

	r.Route("/api/webchat", func(r chi.Router) {
		r.Get("/messages", h.getMessages)
		r.Post("/messages", h.postMessage)
		r.Post("/login", h.login)
		r.Post("/status", h.loginStatus)
		r.Post("/logout", h.logout)
	})
	r.Delete("/api/admin/remove-user/{username}", h.removeUser)
	r.Get("/api/status", h.status)
	r.Get("/ws", h.serveWS)

	return r
}

// logContext stores the bridge logger in every request context so handlers
// down the tree pull it with logging.FromContext.
func (h *Handler) logContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), h.logger)))
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type postMessageRequest struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

type usernameRequest struct {
	Username string `json:"username"`
}

// getMessages returns the history snapshot, oldest first.
func (h *Handler) getMessages(w http.ResponseWriter, r *http.Request) {
	history := h.router.History()
	bodies := make([]string, 0, len(history))
	for _, m := range history {
		bodies = append(bodies, m.Body)
	}
	writeJSON(w, http.StatusOK, bodies)
}

// postMessage routes one chat line from a web participant.
func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if strings.HasPrefix(req.Message, "/startgame") {
		h.game.Start()
		h.router.BroadcastToAll("GAME START command issued by: " + req.User)
	} else if h.game.IsActive() && h.game.CheckAnswer(req.User, req.Message) {
		// Consumed as a correct answer; the game announces it.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.router.BroadcastToAll(req.User + ": " + req.Message)
	w.WriteHeader(http.StatusNoContent)
}

// login validates the shared password and counts the user as an external
// participant. The registry is the gate on the name: a name held by a live
// session cannot be shadowed from the web. The join announcement is recorded
// here, caller-side, and the router skips the duplicate append during the
// broadcast.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	valid := req.Password == h.password && strings.TrimSpace(req.Username) != ""
	if valid && !h.users.Contains(req.Username) {
		if !h.registry.AddExternal(req.Username) {
			valid = false
		} else {
			h.users.Add(req.Username)
			logging.FromContext(r.Context()).Info("web user joined", "name", req.Username)

			joinMsg := "SERVER: " + req.Username + " has joined the chat!"
			h.router.Record(joinMsg)
			h.router.BroadcastToAll(joinMsg)
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

// loginStatus reports whether the user is still logged in. Checking the
// registry too means an admin removal logs the browser out on its next poll.
func (h *Handler) loginStatus(w http.ResponseWriter, r *http.Request) {
	var req usernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	loggedIn := h.users.Contains(req.Username) && h.registry.HasName(req.Username)
	writeJSON(w, http.StatusOK, map[string]bool{"loggedIn": loggedIn})
}

// logout removes the external participant and announces the departure.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req usernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	removed := h.users.Remove(req.Username)
	if removed {
		h.registry.RemoveExternal(req.Username)
		logging.FromContext(r.Context()).Info("web user left", "name", req.Username)

		leaveMsg := "SERVER: " + req.Username + " has left the chat."
		h.router.Record(leaveMsg)
		h.router.BroadcastToAll(leaveMsg)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// removeUser is the admin moderation endpoint.
func (h *Handler) removeUser(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if username == "" {
		writeText(w, http.StatusBadRequest, "Username cannot be empty or path is malformed.")
		return
	}

	if h.moderator.RemoveByName(username) {
		writeText(w, http.StatusOK, "User removal process initiated for: "+username)
		return
	}
	writeText(w, http.StatusNotFound, "Failed to remove user: "+username+". User might not exist or an error occurred.")
}

type statusResponse struct {
	Uptime       string `json:"uptime"`
	TotalClients int    `json:"totalClients"`
	ClientNames  string `json:"clientNames"`
}

// status reports uptime, participant count, and active display names.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	resp := statusResponse{
		Uptime:       formatUptime(uptime),
		TotalClients: h.registry.Count(),
		ClientNames:  strings.Join(h.registry.Names(), ","),
	}
	writeJSON(w, http.StatusOK, resp)
}

func formatUptime(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
