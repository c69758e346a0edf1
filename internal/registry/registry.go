// Package registry is the process-wide directory of per-user components.
package registry

import (
	"sync"

	"github.com/go-petr/mem-bank/internal/accountstore"
	"github.com/go-petr/mem-bank/internal/domain"
	"github.com/go-petr/mem-bank/internal/gatekeeper"
)

// Entry holds the two per-user components. Both handles are published
// atomically: a resolved entry always carries a usable store and gatekeeper.
type Entry struct {
	Store *accountstore.Store
	Gate  *gatekeeper.Gatekeeper
}

// Registry maps usernames to their components. Lookups happen on every
// operation while creation is rare, so reads take the shared lock.
type Registry struct {
	mu    sync.RWMutex
	limit int64
	users map[string]Entry
}

// New returns an empty registry whose gatekeepers admit at most limit
// concurrent operations per user.
func New(limit int64) *Registry {
	return &Registry{
		limit: limit,
		users: make(map[string]Entry),
	}
}

// Create provisions the store and gatekeeper for username. Creation is a
// compare-and-insert under the write lock, so among concurrent calls for
// one username exactly one succeeds and the rest get
// domain.ErrUserAlreadyExists. The pair is built before it is published;
// readers never observe a partial entry.
func (r *Registry) Create(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; ok {
		return domain.ErrUserAlreadyExists
	}

	r.users[username] = Entry{
		Store: accountstore.New(),
		Gate:  gatekeeper.New(r.limit),
	}

	return nil
}

// Resolve returns the components registered for username, or
// domain.ErrUserNotFound.
func (r *Registry) Resolve(username string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.users[username]
	if !ok {
		return Entry{}, domain.ErrUserNotFound
	}

	return e, nil
}
