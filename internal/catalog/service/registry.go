package service

import (
	"sync"
	"time"

	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
)

type registryEntry struct {
	view     *View
	lastSeen time.Time
}

// Registry keeps one catalog view per dashboard session.
type Registry struct {
	mu    sync.RWMutex
	views map[string]*registryEntry
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*registryEntry), now: time.Now}
}

// View returns the view of session sid, creating it in the Loading state.
func (r *Registry) View(sid string) *View {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.views[sid]
	if !ok {
		entry = &registryEntry{view: NewView()}
		r.views[sid] = entry
	}
	entry.lastSeen = r.now()
	return entry.view
}

func (r *Registry) Drop(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, sid)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Prune drops views not used within idle of now.
func (r *Registry) Prune(now time.Time, idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for sid, entry := range r.views {
		if now.Sub(entry.lastSeen) > idle {
			delete(r.views, sid)
			dropped++
		}
	}
	if dropped > 0 {
		logger.Info("Catalog registry: dropped idle views", "count", dropped)
	}
	return dropped
}
