package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
	"github.com/ridloal/storefront-dashboard/internal/session/domain"
	"github.com/ridloal/storefront-dashboard/internal/session/repository"
)

// storeGrace keeps the record in the store a little past its expiry so the
// guard can still see it and answer ErrExpired rather than ErrNoToken.
const storeGrace = 5 * time.Minute

// Session is one browser tab's slot in the session store.
type Session struct {
	id   string
	repo repository.SessionRepository
	now  func() time.Time
}

func (s *Session) ID() string { return s.id }

// Load reads and decodes the stored token record without judging its expiry.
func (s *Session) Load(ctx context.Context) (domain.AuthToken, error) {
	raw, err := s.repo.Get(ctx, s.id, domain.AuthTokenKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.AuthToken{}, domain.ErrNoToken
		}
		return domain.AuthToken{}, fmt.Errorf("failed to read session %s: %w", s.id, err)
	}

	var token domain.AuthToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return domain.AuthToken{}, fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
	if token.Token == "" || token.ExpiresAt == 0 {
		return domain.AuthToken{}, fmt.Errorf("%w: missing token or expiresAt", domain.ErrMalformedToken)
	}
	return token, nil
}

func (s *Session) Save(ctx context.Context, token domain.AuthToken) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode auth token: %w", err)
	}
	ttl := token.Expiry().Sub(s.now()) + storeGrace
	if err := s.repo.Set(ctx, s.id, domain.AuthTokenKey, raw, ttl); err != nil {
		return fmt.Errorf("failed to save auth token: %w", err)
	}
	return nil
}

func (s *Session) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, s.id, domain.AuthTokenKey); err != nil {
		logger.Error("Session.Clear: failed to delete auth token", err, "sid", s.id)
		return err
	}
	return nil
}

// ValidToken is the session guard. It returns the raw bearer token, or
// ErrNoToken, ErrMalformedToken or ErrExpired. An expired record is removed.
func (s *Session) ValidToken(ctx context.Context) (string, error) {
	token, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	if token.ExpiredAt(s.now()) {
		if clearErr := s.Clear(ctx); clearErr != nil {
			logger.Warn("Session guard: expired token could not be removed", "sid", s.id)
		}
		return "", domain.ErrExpired
	}
	return token.Token, nil
}
