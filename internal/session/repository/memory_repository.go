package repository

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]map[string]memoryEntry
	now      func() time.Time
}

// NewMemorySessionRepository keeps sessions in process memory; they vanish on restart.
func NewMemorySessionRepository() SessionRepository {
	return NewMemorySessionRepositoryWithClock(time.Now)
}

func NewMemorySessionRepositoryWithClock(now func() time.Time) SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]map[string]memoryEntry),
		now:      now,
	}
}

func (r *memorySessionRepository) Get(_ context.Context, sid, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.sessions[sid][key]
	if !ok || entry.expired(r.now()) {
		return nil, ErrNotFound
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

func (r *memorySessionRepository) Set(_ context.Context, sid, key string, value []byte, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}
	slots, ok := r.sessions[sid]
	if !ok {
		slots = make(map[string]memoryEntry)
		r.sessions[sid] = slots
	}
	slots[key] = entry
	return nil
}

func (r *memorySessionRepository) Delete(_ context.Context, sid, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slots, ok := r.sessions[sid]; ok {
		delete(slots, key)
		if len(slots) == 0 {
			delete(r.sessions, sid)
		}
	}
	return nil
}

func (r *memorySessionRepository) DeleteSession(_ context.Context, sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	return nil
}

func (r *memorySessionRepository) Sweep(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for sid, slots := range r.sessions {
		for key, entry := range slots {
			if entry.expired(now) {
				delete(slots, key)
				removed++
			}
		}
		if len(slots) == 0 {
			delete(r.sessions, sid)
		}
	}
	return removed, nil
}
