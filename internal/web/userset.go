package web

import "sync"

// UserSet tracks the usernames currently logged in through the web bridge.
// Moderation and logout both clear entries, so membership here stays
// consistent with the registry's external participants.
type UserSet struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

// NewUserSet creates an empty set.
func NewUserSet() *UserSet {
	return &UserSet{
		names: make(map[string]struct{}),
	}
}

// Add inserts the name and reports whether it was absent.
func (u *UserSet) Add(name string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.names[name]; ok {
		return false
	}
	u.names[name] = struct{}{}
	return true
}

// Remove deletes the name and reports whether it was present.
func (u *UserSet) Remove(name string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.names[name]; !ok {
		return false
	}
	delete(u.names, name)
	return true
}

// Contains reports whether the name is logged in.
func (u *UserSet) Contains(name string) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()

	_, ok := u.names[name]
	return ok
}
