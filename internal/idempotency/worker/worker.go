// Package worker runs the background sweep of expired idempotency
// records.
package worker

import (
	"context"
	"time"

	"github.com/smallbiznis/quotient/internal/config"
	"github.com/smallbiznis/quotient/internal/idempotency/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
	Service   domain.Service
}

type Sweeper struct {
	interval time.Duration
	log      *zap.Logger
	service  domain.Service

	cancel context.CancelFunc
	done   chan struct{}
}

func New(p Params) *Sweeper {
	s := &Sweeper{
		interval: p.Config.IdempotencySweepInterval,
		log:      p.Log.Named("idempotency.sweeper"),
		service:  p.Service,
		done:     make(chan struct{}),
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			s.cancel = cancel
			go s.run(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.cancel()
			select {
			case <-s.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})

	return s
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.service.Sweep(ctx); err != nil {
				s.log.Warn("idempotency sweep failed", zap.Error(err))
			}
		}
	}
}
