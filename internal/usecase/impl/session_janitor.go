package impl

import (
	"context"
	"log/slog"
	"time"

	"warden/config"
	"warden/internal/domain/lifecycle"
	"warden/internal/usecase"

	"go.uber.org/fx"
)

// SessionJanitor periodically purges expired session rows. Validation
// already treats expired sessions as absent, so the janitor is purely a
// storage reclamation concern and tolerates failed sweeps.
type SessionJanitor struct {
	sessions usecase.SessionUsecase
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// SessionJanitorParams holds dependencies for the janitor, injected by Fx.
type SessionJanitorParams struct {
	fx.In
	fx.Lifecycle

	Config   *config.Config
	Sessions usecase.SessionUsecase
	Logger   *slog.Logger
}

// NewSessionJanitor constructs the janitor and registers its lifecycle hooks.
// A non-positive cleanup interval disables it.
func NewSessionJanitor(params SessionJanitorParams) *SessionJanitor {
	janitor := &SessionJanitor{
		sessions: params.Sessions,
		interval: params.Config.Auth.CleanupInterval,
		logger:   params.Logger,
		done:     make(chan struct{}),
	}

	params.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if janitor.interval <= 0 {
				janitor.logger.Info("Session cleanup disabled")
				close(janitor.done)

				return nil
			}

			runCtx, cancel := context.WithCancel(context.Background())
			janitor.cancel = cancel
			go janitor.run(runCtx)

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			if janitor.cancel != nil {
				janitor.cancel()
			}
			select {
			case <-janitor.done:
			case <-stopCtx.Done():
			}

			return nil
		},
	})

	return janitor
}

func (j *SessionJanitor) run(ctx context.Context) {
	defer close(j.done)

	j.logger.Info("Session cleanup started", slog.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Session cleanup stopped")

			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *SessionJanitor) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	if _, err := j.sessions.CleanupExpired(sweepCtx); err != nil {
		j.logger.Warn("Session cleanup sweep failed", slog.Any("error", err))
	}
}
