package repository

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session value not found")

// SessionRepository stores opaque values per browser session and key.
type SessionRepository interface {
	Get(ctx context.Context, sid, key string) ([]byte, error)
	// Set stores value; ttl <= 0 keeps it until it is deleted or the session is swept.
	Set(ctx context.Context, sid, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, sid, key string) error
	DeleteSession(ctx context.Context, sid string) error
	// Sweep drops values whose ttl elapsed before now and returns how many went away.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
