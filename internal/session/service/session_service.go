package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
	"github.com/ridloal/storefront-dashboard/internal/session/domain"
	"github.com/ridloal/storefront-dashboard/internal/session/repository"
)

var ErrInvalidLogin = errors.New("username and password are required")

// Authenticator exchanges credentials for a bearer token at the commerce API.
type Authenticator interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
}

type SessionService interface {
	Open(sid string) *Session
	Login(ctx context.Context, sess *Session, req domain.LoginRequest) (domain.AuthToken, error)
	Logout(ctx context.Context, sess *Session) error
}

type sessionService struct {
	repo repository.SessionRepository
	auth Authenticator
	now  func() time.Time
}

func NewSessionService(repo repository.SessionRepository, auth Authenticator) SessionService {
	return NewSessionServiceWithClock(repo, auth, time.Now)
}

func NewSessionServiceWithClock(repo repository.SessionRepository, auth Authenticator, now func() time.Time) SessionService {
	return &sessionService{repo: repo, auth: auth, now: now}
}

func (s *sessionService) Open(sid string) *Session {
	return &Session{id: sid, repo: s.repo, now: s.now}
}

// Login authenticates against the commerce API and stores the token in sess.
func (s *sessionService) Login(ctx context.Context, sess *Session, req domain.LoginRequest) (domain.AuthToken, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return domain.AuthToken{}, ErrInvalidLogin
	}

	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		return domain.AuthToken{}, err
	}

	token := domain.NewAuthToken(resp.Token, expiryFor(resp.Token, s.now()))
	if err := sess.Save(ctx, token); err != nil {
		logger.Error("Login: failed to store token", err, "sid", sess.ID())
		return domain.AuthToken{}, fmt.Errorf("could not store session: %w", err)
	}

	logger.Info("Login succeeded", "sid", sess.ID(), "expiresAt", token.Expiry().UTC().Format(time.RFC3339))
	return token, nil
}

func (s *sessionService) Logout(ctx context.Context, sess *Session) error {
	if err := s.repo.DeleteSession(ctx, sess.ID()); err != nil {
		logger.Error("Logout: failed to delete session", err, "sid", sess.ID())
		return err
	}
	return nil
}

// expiryFor trusts a token for TokenLifetime, or less when the token is a JWT
// whose exp claim comes sooner. The signature is not checked: the dashboard
// does not hold the backend's key and only needs the expiry hint.
func expiryFor(token string, now time.Time) time.Time {
	expiresAt := now.Add(domain.TokenLifetime)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return expiresAt
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return expiresAt
	}
	if exp.Time.Before(expiresAt) {
		return exp.Time
	}
	return expiresAt
}
