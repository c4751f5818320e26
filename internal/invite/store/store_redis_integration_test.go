//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"roster/internal/invite/models"
	"roster/internal/invite/store"
	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
	"roster/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client, store.WithKeyPrefix("test:flow:"))
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func makeFlow(ttl time.Duration) *models.Flow {
	groupID := id.GroupID(id.NewFlowID())
	return models.NewFlow(id.NewFlowID(), id.OrgID(id.NewFlowID()), &groupID,
		[]string{"a@x.com", "b@x.com"}, []string{"m@x.com"}, time.Now(), ttl)
}

func (s *RedisStoreSuite) TestRoundTripPreservesState() {
	ctx := context.Background()
	flow := makeFlow(time.Hour)
	s.Require().NoError(s.store.Create(ctx, flow))

	updated, err := s.store.Update(ctx, flow.ID, func(f *models.Flow) error {
		f.State.ValidatedEmails = []string{"A@x.com"}
		f.State.LowerCasedEmails = []string{"a@x.com"}
		f.State.IsValidInput = models.Valid
		f.State.CanInvite = true
		return nil
	})
	s.Require().NoError(err)
	s.True(updated.State.CanInvite)

	got, err := s.store.Get(ctx, flow.ID)
	s.Require().NoError(err)
	s.Equal(models.Valid, got.State.IsValidInput)
	s.Equal([]string{"A@x.com"}, got.State.ValidatedEmails)
	s.Equal(*flow.GroupID, *got.GroupID)
	s.Equal([]string{"m@x.com"}, got.State.GroupEnterpriseLearners)

	ttl, err := s.redis.Client.TTL(ctx, "test:flow:"+flow.ID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 50*time.Minute)
}

func (s *RedisStoreSuite) TestCreateConflict() {
	ctx := context.Background()
	flow := makeFlow(time.Hour)
	s.Require().NoError(s.store.Create(ctx, flow))
	s.ErrorIs(s.store.Create(ctx, flow), sentinel.ErrConflict)
}

func (s *RedisStoreSuite) TestMissingAndDeleted() {
	ctx := context.Background()
	_, err := s.store.Get(ctx, id.NewFlowID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	flow := makeFlow(time.Hour)
	s.Require().NoError(s.store.Create(ctx, flow))
	s.Require().NoError(s.store.Delete(ctx, flow.ID))
	s.ErrorIs(s.store.Delete(ctx, flow.ID), sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestKeyExpires() {
	ctx := context.Background()
	flow := makeFlow(1500 * time.Millisecond)
	s.Require().NoError(s.store.Create(ctx, flow))
	time.Sleep(2 * time.Second)
	_, err := s.store.Get(ctx, flow.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentUpdatesDoNotLoseWrites relies on WATCH retries; every writer
// appends once and all appends must survive.
func (s *RedisStoreSuite) TestConcurrentUpdatesDoNotLoseWrites() {
	ctx := context.Background()
	flow := makeFlow(time.Hour)
	s.Require().NoError(s.store.Create(ctx, flow))

	const writers = 4
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Update(ctx, flow.ID, func(f *models.Flow) error {
				f.State.ValidatedEmails = append(f.State.ValidatedEmails, "e@x.com")
				return nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.store.Get(ctx, flow.ID)
	s.Require().NoError(err)
	s.Len(got.State.ValidatedEmails, writers)
}
