package session

import (
	"sync"
	"time"

	"github.com/nidys-catering/api/internal/store"

	"github.com/google/uuid"
)

// Registry constructs and hands out sessions by id. Each session gets the
// catalog reader and history store injected at construction, so nothing
// reaches for ambient state.
type Registry struct {
	catalog Catalog
	history store.OrderHistory
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a registry. now may be nil, defaulting to time.Now.
func NewRegistry(catalog Catalog, history store.OrderHistory, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		catalog:  catalog,
		history:  history,
		now:      now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a fresh session with one default day.
func (r *Registry) Create() *Session {
	s := newSession(uuid.NewString(), r.catalog, r.history, r.now)
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}
