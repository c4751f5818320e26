package directory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
)

func newOrg() id.OrgID     { return id.OrgID(id.NewFlowID()) }
func newGroup() id.GroupID { return id.GroupID(id.NewFlowID()) }

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	dir := NewInMemory()
	org := newOrg()
	group := newGroup()
	dir.AddLearners(org, "a@x.com", "B@x.com")
	dir.AddGroup(org, group, "a@x.com")
	empty := newGroup()
	dir.AddGroup(org, empty)

	learners, err := dir.ListLearnerEmails(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "B@x.com"}, learners)

	unknownOrg, err := dir.ListLearnerEmails(ctx, newOrg())
	require.NoError(t, err)
	assert.Empty(t, unknownOrg)
	assert.NotNil(t, unknownOrg)

	members, err := dir.ListMemberEmails(ctx, org, group)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, members)

	none, err := dir.ListMemberEmails(ctx, org, empty)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = dir.ListMemberEmails(ctx, newOrg(), group)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	learners[0] = "mutated"
	again, _ := dir.ListLearnerEmails(ctx, org)
	assert.Equal(t, "a@x.com", again[0])
}

type countingDirectory struct {
	Directory
	learnerCalls atomic.Int32
	memberCalls  atomic.Int32
	fail         error
}

func (c *countingDirectory) ListLearnerEmails(ctx context.Context, orgID id.OrgID) ([]string, error) {
	c.learnerCalls.Add(1)
	if c.fail != nil {
		return nil, c.fail
	}
	return c.Directory.ListLearnerEmails(ctx, orgID)
}

func (c *countingDirectory) ListMemberEmails(ctx context.Context, orgID id.OrgID, groupID id.GroupID) ([]string, error) {
	c.memberCalls.Add(1)
	if c.fail != nil {
		return nil, c.fail
	}
	return c.Directory.ListMemberEmails(ctx, orgID, groupID)
}

type recorder struct {
	hits, misses int
}

func (r *recorder) RecordDirectoryLookup(_ string, hit bool) {
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

type CachedSuite struct {
	suite.Suite
	inner *countingDirectory
	now   time.Time
	rec   *recorder
	cache *Cached
	org   id.OrgID
	group id.GroupID
}

func TestCachedSuite(t *testing.T) {
	suite.Run(t, new(CachedSuite))
}

func (s *CachedSuite) SetupTest() {
	mem := NewInMemory()
	s.org = newOrg()
	s.group = newGroup()
	mem.AddLearners(s.org, "a@x.com")
	mem.AddGroup(s.org, s.group, "a@x.com")

	s.inner = &countingDirectory{Directory: mem}
	s.now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.rec = &recorder{}
	var err error
	s.cache, err = NewCached(s.inner, 8, time.Minute,
		WithClock(func() time.Time { return s.now }),
		WithRecorder(s.rec),
	)
	s.Require().NoError(err)
}

func (s *CachedSuite) TestServesRepeatLookupsFromCache() {
	ctx := context.Background()
	for range 3 {
		emails, err := s.cache.ListLearnerEmails(ctx, s.org)
		s.Require().NoError(err)
		s.Equal([]string{"a@x.com"}, emails)
	}
	s.Equal(int32(1), s.inner.learnerCalls.Load())
	s.Equal(2, s.rec.hits)
	s.Equal(1, s.rec.misses)
}

func (s *CachedSuite) TestRefetchesAfterTTL() {
	ctx := context.Background()
	_, err := s.cache.ListMemberEmails(ctx, s.org, s.group)
	s.Require().NoError(err)

	s.now = s.now.Add(59 * time.Second)
	_, err = s.cache.ListMemberEmails(ctx, s.org, s.group)
	s.Require().NoError(err)
	s.Equal(int32(1), s.inner.memberCalls.Load())

	s.now = s.now.Add(time.Second)
	_, err = s.cache.ListMemberEmails(ctx, s.org, s.group)
	s.Require().NoError(err)
	s.Equal(int32(2), s.inner.memberCalls.Load())
}

func (s *CachedSuite) TestInvalidateGroup() {
	ctx := context.Background()
	_, _ = s.cache.ListMemberEmails(ctx, s.org, s.group)
	s.cache.InvalidateGroup(s.org, s.group)
	_, _ = s.cache.ListMemberEmails(ctx, s.org, s.group)
	s.Equal(int32(2), s.inner.memberCalls.Load())
}

func (s *CachedSuite) TestErrorsAreNotCached() {
	ctx := context.Background()
	s.inner.fail = errors.New("db down")
	_, err := s.cache.ListLearnerEmails(ctx, s.org)
	s.Error(err)

	s.inner.fail = nil
	emails, err := s.cache.ListLearnerEmails(ctx, s.org)
	s.Require().NoError(err)
	s.Equal([]string{"a@x.com"}, emails)
	s.Equal(int32(2), s.inner.learnerCalls.Load())
}

func (s *CachedSuite) TestCallersCannotMutateCachedEntries() {
	ctx := context.Background()
	first, _ := s.cache.ListLearnerEmails(ctx, s.org)
	first[0] = "mutated"
	second, _ := s.cache.ListLearnerEmails(ctx, s.org)
	s.Equal("a@x.com", second[0])
}
