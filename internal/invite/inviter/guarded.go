package inviter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"roster/internal/invite/models"
	"roster/pkg/platform/circuit"
	"roster/pkg/platform/sentinel"
)

const defaultTrialInterval = 10 * time.Second

// Guarded fails submissions fast while the downstream inviter is failing.
// While the breaker is open one trial call is let through per trial interval.
type Guarded struct {
	next          Inviter
	breaker       *circuit.Breaker
	logger        *slog.Logger
	trialInterval time.Duration
	now           func() time.Time

	mu        sync.Mutex
	lastTrial time.Time
}

type GuardOption func(*Guarded)

func WithTrialInterval(d time.Duration) GuardOption {
	return func(g *Guarded) {
		if d > 0 {
			g.trialInterval = d
		}
	}
}

func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(g *Guarded) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func withClock(now func() time.Time) GuardOption {
	return func(g *Guarded) {
		g.now = now
	}
}

func NewGuarded(next Inviter, breaker *circuit.Breaker, opts ...GuardOption) *Guarded {
	g := &Guarded{
		next:          next,
		breaker:       breaker,
		logger:        slog.Default(),
		trialInterval: defaultTrialInterval,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guarded) Invite(ctx context.Context, batch models.InvitationBatch) error {
	if !g.allow() {
		return fmt.Errorf("%w: %s circuit open", sentinel.ErrUnavailable, g.breaker.Name())
	}
	err := g.next.Invite(ctx, batch)
	if err != nil {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "invitation delivery circuit opened",
				"breaker", g.breaker.Name(),
				"error", err,
				"request_id", batch.RequestID,
			)
		}
		return err
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "invitation delivery circuit closed",
			"breaker", g.breaker.Name(),
			"request_id", batch.RequestID,
		)
	}
	return nil
}

func (g *Guarded) allow() bool {
	if !g.breaker.IsOpen() {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if now.Sub(g.lastTrial) < g.trialInterval {
		return false
	}
	g.lastTrial = now
	return true
}
