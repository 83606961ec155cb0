package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
	"github.com/ridloal/storefront-dashboard/internal/session/repository"
)

// Sweeper periodically purges elapsed session slots and runs the registered
// hooks, e.g. to drop catalog views that belong to idle sessions.
type Sweeper struct {
	repo      repository.SessionRepository
	scheduler *cron.Cron
	spec      string
	hooks     []func(now time.Time)
	now       func() time.Time
}

func NewSweeper(repo repository.SessionRepository, spec string, hooks ...func(now time.Time)) *Sweeper {
	return &Sweeper{
		repo:      repo,
		scheduler: cron.New(cron.WithSeconds()),
		spec:      spec,
		hooks:     hooks,
		now:       time.Now,
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.scheduler.AddFunc(s.spec, func() {
		s.Sweep(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid session sweep spec %q: %w", s.spec, err)
	}
	s.scheduler.Start()
	logger.Info("Session sweeper started", "spec", s.spec)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.scheduler.Stop().Done()
}

func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.now()
	removed, err := s.repo.Sweep(ctx, now)
	if err != nil {
		logger.Error("Session sweeper: sweep failed", err)
	} else if removed > 0 {
		logger.Info("Session sweeper: removed expired slots", "count", removed)
	}
	for _, hook := range s.hooks {
		hook(now)
	}
}
