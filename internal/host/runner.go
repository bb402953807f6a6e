// Package host drives the authoritative side of a raid session. Exactly
// one process runs a Runner per session; it resolves the enemy phase and
// draws encounters when the barrier fills, so those transitions have a
// single writer.
package host

import (
	"context"
	"log/slog"
	"time"

	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/errors"
	"github.com/shuffleraid/raid-api/internal/orchestrators/raid"
	"github.com/shuffleraid/raid-api/internal/realtime"
)

const defaultPollInterval = 2 * time.Second

// Config holds the dependencies for the host runner
type Config struct {
	Service raid.Service
	Feed    realtime.Feed
	Code    string
	// PollInterval is the fallback sweep when no updates arrive;
	// zero means the default
	PollInterval time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Service == nil {
		vb.RequiredField("Service")
	}
	if c.Feed == nil {
		vb.RequiredField("Feed")
	}
	if c.Code == "" {
		vb.RequiredField("Code")
	}

	return vb.Build()
}

// Runner watches one session and performs its system transitions
type Runner struct {
	service  raid.Service
	feed     realtime.Feed
	code     string
	interval time.Duration
}

// NewRunner creates a host runner for one session
func NewRunner(cfg *Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	interval := cfg.PollInterval
	if interval == 0 {
		interval = defaultPollInterval
	}

	return &Runner{
		service:  cfg.Service,
		feed:     cfg.Feed,
		code:     cfg.Code,
		interval: interval,
	}, nil
}

// Run blocks until ctx is done or the session reaches a terminal state
// with no retry pending. Every session update triggers a sweep; a timer
// covers missed notifications.
func (r *Runner) Run(ctx context.Context) error {
	updates, err := r.feed.Subscribe(ctx, r.code)
	if err != nil {
		return errors.Wrap(err, "failed to subscribe to session updates")
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-updates:
			if !ok {
				return errors.Unavailable("session update feed closed")
			}
			r.sweep(ctx)
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// sweep applies system transitions until the session needs none. An
// aborted apply means another write landed first; the update it
// publishes re-triggers the sweep, so aborts are dropped quietly.
func (r *Runner) sweep(ctx context.Context) {
	for {
		acted, err := r.stepOnce(ctx)
		if err != nil {
			if errors.IsAborted(err) {
				return
			}
			slog.Error("Host sweep failed",
				"session_code", r.code,
				"error", err)
			return
		}
		if !acted {
			return
		}
	}
}

func (r *Runner) stepOnce(ctx context.Context) (bool, error) {
	out, err := r.service.GetSession(ctx, &raid.GetSessionInput{Code: r.code})
	if err != nil {
		return false, err
	}
	s := out.Session

	if s.Status != entities.StatusCombat {
		return false, nil
	}

	if s.Phase == entities.PhaseEnemy {
		if _, err := r.service.ResolveEnemy(ctx, &raid.ResolveEnemyInput{Code: r.code}); err != nil {
			return false, err
		}
		slog.Info("Enemy phase resolved",
			"session_code", r.code)
		return true, nil
	}

	if s.Enemy == nil && s.BarrierComplete() {
		if _, err := r.service.DrawEncounter(ctx, &raid.DrawEncounterInput{Code: r.code}); err != nil {
			return false, err
		}
		slog.Info("Next encounter drawn",
			"session_code", r.code)
		return true, nil
	}

	return false, nil
}
