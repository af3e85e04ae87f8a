package scheduler

import (
	"context"
	"time"

	"github.com/fiskora/fiskora/internal/clock"
	documentdomain "github.com/fiskora/fiskora/internal/document/domain"
	"github.com/fiskora/fiskora/internal/locking"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config controls sweep cadence.
type Config struct {
	SweepInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Hour
	}
	return c
}

type Params struct {
	fx.In

	Log         *zap.Logger
	DocumentSvc documentdomain.Service
	Clock       clock.Clock
	Locker      *locking.Locker `optional:"true"`
	Config      Config          `optional:"true"`
}

// Scheduler periodically expires sent quotes whose validity lapsed.
type Scheduler struct {
	log       *zap.Logger
	documents documentdomain.Service
	clock     clock.Clock
	locker    *locking.Locker
	cfg       Config
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:       p.Log.Named("scheduler"),
		documents: p.DocumentSvc,
		clock:     p.Clock,
		locker:    p.Locker,
		cfg:       p.Config.withDefaults(),
	}
}

// Sweep runs one quote-expiry pass at the scheduler clock's now.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	const lockKey = "scheduler:quote_expiry"
	token, ok, err := s.locker.TryLock(ctx, lockKey, s.cfg.SweepInterval)
	if err != nil {
		s.log.Warn("sweep lock unavailable, proceeding", zap.Error(err))
	} else if !ok {
		return 0, nil
	} else {
		defer func() { _ = s.locker.Release(ctx, lockKey, token) }()
	}

	expired, err := s.documents.ExpireQuotes(ctx, s.clock.Now().UTC())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.log.Info("expired quotes", zap.Int("count", expired))
	}
	return expired, nil
}

// RunForever sweeps on the configured interval until ctx is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	if _, err := s.Sweep(ctx); err != nil {
		s.log.Error("quote expiry sweep failed", zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.log.Error("quote expiry sweep failed", zap.Error(err))
			}
		}
	}
}
