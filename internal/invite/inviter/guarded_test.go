package inviter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster/pkg/platform/circuit"
	"roster/pkg/platform/sentinel"
)

func TestGuarded(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	rec := NewRecorder(nil)
	breaker := circuit.New("invitations", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))
	g := NewGuarded(rec, breaker, WithTrialInterval(time.Minute), withClock(clock))
	ctx := context.Background()
	batch := sampleBatch()

	t.Run("passes through while closed", func(t *testing.T) {
		require.NoError(t, g.Invite(ctx, batch))
		assert.Len(t, rec.Batches(), 1)
	})

	boom := errors.New("broker down")
	rec.FailWith(boom)

	t.Run("opens after consecutive failures", func(t *testing.T) {
		assert.ErrorIs(t, g.Invite(ctx, batch), boom)
		assert.ErrorIs(t, g.Invite(ctx, batch), boom)
		assert.True(t, breaker.IsOpen())
	})

	t.Run("open circuit fails fast as unavailable", func(t *testing.T) {
		// first call after opening is a trial
		assert.ErrorIs(t, g.Invite(ctx, batch), boom)
		err := g.Invite(ctx, batch)
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
		assert.NotErrorIs(t, err, boom)
	})

	t.Run("successful trial closes the circuit", func(t *testing.T) {
		rec.FailWith(nil)
		now = now.Add(2 * time.Minute)
		require.NoError(t, g.Invite(ctx, batch))
		assert.False(t, breaker.IsOpen())
		require.NoError(t, g.Invite(ctx, batch))
		assert.Len(t, rec.Batches(), 3)
	})
}
