package chat

import (
	"errors"

	"github.com/sonnybell/linechat/internal/audit"
	"github.com/sonnybell/linechat/internal/logging"
)

// Router fans messages out to registered sessions. Every routed message is
// appended to history and recorded with its classified tag exactly once.
// Fan-out iterates a stable registry snapshot; a failed delivery closes that
// recipient only and never surfaces to the caller.
type Router struct {
	registry *Registry
	history  *History
	audit    audit.Recorder
	logger   *logging.Logger
}

// NewRouter creates a router over the given registry and history buffer.
func NewRouter(registry *Registry, history *History, recorder audit.Recorder, logger *logging.Logger) *Router {
	return &Router{
		registry: registry,
		history:  history,
		audit:    recorder,
		logger:   logger,
	}
}

// BroadcastToAll delivers a message to every registered session. Used for
// system and game announcements that have no sender session to exclude.
// Join/leave announcements are recorded by the caller that produced them,
// so the router skips the duplicate append for those.
func (rt *Router) BroadcastToAll(body string) {
	m := newMessage(body)
	if !isPresenceAnnouncement(body) {
		rt.record(m)
	}
	rt.fanOut(m, nil)
}

// BroadcastExcludingSender delivers a message to every registered session
// except the sender. Used for ordinary chat so the sender gets no echo.
func (rt *Router) BroadcastExcludingSender(body string, sender *Session) {
	m := newMessage(body)
	rt.record(m)
	rt.fanOut(m, sender)
}

// Record appends a message to history and the audit log without delivering
// it. Callers that own a join/leave announcement pair this with
// BroadcastToAll, which skips the duplicate append.
func (rt *Router) Record(body string) {
	rt.record(newMessage(body))
}

// History returns a snapshot of the buffered messages in chronological order.
func (rt *Router) History() []Message {
	return rt.history.Snapshot()
}

func (rt *Router) record(m Message) {
	rt.history.Append(m)
	rt.audit.Record(string(m.Tag), m.Body)
}

func (rt *Router) fanOut(m Message, exclude *Session) {
	sessions := rt.registry.Sessions()

	var failed []*Session
	for _, s := range sessions {
		if exclude != nil && s.Name() == exclude.Name() {
			continue
		}
		if err := s.deliver(m.Body); err != nil {
			// A session that is not yet active, or already on its way
			// out, just misses the message. Only a transport failure
			// takes the recipient through the disconnect path.
			if errors.Is(err, ErrSessionClosed) {
				continue
			}
			rt.logger.Warn("delivery failed",
				"session_id", s.ID(),
				"name", s.Name(),
				"error", err,
			)
			failed = append(failed, s)
		}
	}

	// Failed recipients take their own disconnect path after the fan-out
	// so one slow or dead client cannot stall the rest.
	for _, s := range failed {
		s.Close()
	}
}
