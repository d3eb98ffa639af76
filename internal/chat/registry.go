package chat

import (
	"sort"
	"sync"

	"github.com/sonnybell/linechat/internal/logging"
)

// Registry tracks the currently active participants: live sessions keyed by
// display name, plus external (web) participants that count toward totals but
// have no deliverable transport.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	externals map[string]struct{}
	logger    *logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *logging.Logger) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		externals: make(map[string]struct{}),
		logger:    logger,
	}
}

// Register adds a session keyed by its display name. Names must be unique
// among all active participants; ErrNameTaken is returned otherwise.
func (r *Registry) Register(s *Session) error {
	r.mu.Lock()
	if _, exists := r.sessions[s.Name()]; exists {
		r.mu.Unlock()
		return ErrNameTaken
	}
	if _, exists := r.externals[s.Name()]; exists {
		r.mu.Unlock()
		return ErrNameTaken
	}
	r.sessions[s.Name()] = s
	total := len(r.sessions) + len(r.externals)
	r.mu.Unlock()

	r.logger.Info("session registered",
		"session_id", s.ID(),
		"name", s.Name(),
		"total_clients", total,
	)
	return nil
}

// Unregister removes the session by name. It is idempotent: removing an
// absent session is a no-op. It reports whether this call removed the entry,
// which lets racing removal paths agree on who announces the departure.
func (r *Registry) Unregister(s *Session) bool {
	r.mu.Lock()
	current, ok := r.sessions[s.Name()]
	if !ok || current != s {
		r.mu.Unlock()
		return false
	}
	delete(r.sessions, s.Name())
	total := len(r.sessions) + len(r.externals)
	r.mu.Unlock()

	r.logger.Info("session unregistered",
		"session_id", s.ID(),
		"name", s.Name(),
		"total_clients", total,
	)
	return true
}

// Find looks up a live session by display name. Absence is a normal outcome.
func (r *Registry) Find(name string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[name]
	return s, ok
}

// AddExternal counts a web participant without a registered session.
// It reports whether the name was added.
func (r *Registry) AddExternal(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.externals[name]; exists {
		return false
	}
	if _, exists := r.sessions[name]; exists {
		return false
	}
	r.externals[name] = struct{}{}
	return true
}

// RemoveExternal removes a web participant. It reports whether the name
// was present.
func (r *Registry) RemoveExternal(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.externals[name]; !exists {
		return false
	}
	delete(r.externals, name)
	return true
}

// HasName reports whether the name is active as a session or an external
// participant.
func (r *Registry) HasName(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.sessions[name]; ok {
		return true
	}
	_, ok := r.externals[name]
	return ok
}

// Count returns the total number of active participants, transport-based and
// external combined.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions) + len(r.externals)
}

// Names returns a point-in-time snapshot of all active display names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.sessions)+len(r.externals))
	for name := range r.sessions {
		names = append(names, name)
	}
	for name := range r.externals {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Sessions returns a stable snapshot of the live sessions for fan-out.
// Concurrent joins and leaves do not affect a snapshot already taken.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
