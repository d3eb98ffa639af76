package chat

import (
	"strings"

	"github.com/sonnybell/linechat/internal/logging"
)

// ExternalPresence is the web bridge's logged-in user set. Moderation clears
// it when an admin removes a web participant so the bridge's view stays
// consistent with the registry.
type ExternalPresence interface {
	Remove(name string) bool
}

// Moderator performs admin-driven removal of participants by display name.
type Moderator struct {
	registry *Registry
	router   *Router
	presence ExternalPresence
	logger   *logging.Logger
}

// ModeratorOption configures a Moderator.
type ModeratorOption func(*Moderator)

// WithExternalPresence wires the web bridge's user set into removals.
func WithExternalPresence(p ExternalPresence) ModeratorOption {
	return func(m *Moderator) {
		m.presence = p
	}
}

// NewModerator creates a moderator over the registry and router.
func NewModerator(registry *Registry, router *Router, logger *logging.Logger, opts ...ModeratorOption) *Moderator {
	m := &Moderator{
		registry: registry,
		router:   router,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RemoveByName removes the named participant. A live session is told to quit
// and taken through the normal disconnect path; a web participant is cleared
// via the external hooks. Either way the remaining sessions get a single
// admin-removal announcement. An unknown name is a normal negative outcome.
func (m *Moderator) RemoveByName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	if s, ok := m.registry.Find(name); ok {
		// Kick claims the leave path; losing the race to a concurrent
		// disconnect (or a second removal) makes this attempt a no-op.
		if !s.Kick() {
			return false
		}

		msg := "SERVER: " + name + " has been removed by an admin."
		m.logger.Info("admin removal", "name", name)
		m.router.BroadcastToAll(msg)
		return true
	}

	if m.registry.RemoveExternal(name) {
		if m.presence != nil {
			m.presence.Remove(name)
		}
		msg := "SERVER: " + name + " (Web) has been removed by an admin."
		m.logger.Info("admin removal", "name", name, "web", true)
		m.router.BroadcastToAll(msg)
		return true
	}

	m.logger.Info("admin removal target not found", "name", name)
	return false
}
