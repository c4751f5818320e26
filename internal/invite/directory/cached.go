package directory

import (
	"context"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	id "roster/pkg/domain"
)

const (
	defaultCacheSize = 256
	defaultCacheTTL  = 5 * time.Minute
)

// LookupRecorder receives cache hit/miss observations.
type LookupRecorder interface {
	RecordDirectoryLookup(lookup string, hit bool)
}

type cacheEntry struct {
	emails   []string
	storedAt time.Time
}

type cacheKey struct {
	org   id.OrgID
	group id.GroupID
}

// Cached wraps a Directory with an LRU cache of learner and member lists.
// Entries older than the TTL are refetched. Errors are never cached.
type Cached struct {
	next     Directory
	learners *lru.Cache[id.OrgID, cacheEntry]
	members  *lru.Cache[cacheKey, cacheEntry]
	ttl      time.Duration
	now      func() time.Time
	recorder LookupRecorder
}

type CacheOption func(*Cached)

// WithClock sets the clock used for TTL checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cached) {
		if now != nil {
			c.now = now
		}
	}
}

func WithRecorder(r LookupRecorder) CacheOption {
	return func(c *Cached) {
		c.recorder = r
	}
}

// NewCached builds a cache in front of next. Non-positive size or ttl fall
// back to defaults.
func NewCached(next Directory, size int, ttl time.Duration, opts ...CacheOption) (*Cached, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	learners, err := lru.New[id.OrgID, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	members, err := lru.New[cacheKey, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	c := &Cached{
		next:     next,
		learners: learners,
		members:  members,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Cached) ListLearnerEmails(ctx context.Context, orgID id.OrgID) ([]string, error) {
	if entry, ok := c.learners.Get(orgID); ok && c.fresh(entry) {
		c.record("learners", true)
		return slices.Clone(entry.emails), nil
	}
	c.record("learners", false)
	emails, err := c.next.ListLearnerEmails(ctx, orgID)
	if err != nil {
		return nil, err
	}
	c.learners.Add(orgID, cacheEntry{emails: slices.Clone(emails), storedAt: c.now()})
	return emails, nil
}

func (c *Cached) ListMemberEmails(ctx context.Context, orgID id.OrgID, groupID id.GroupID) ([]string, error) {
	key := cacheKey{org: orgID, group: groupID}
	if entry, ok := c.members.Get(key); ok && c.fresh(entry) {
		c.record("members", true)
		return slices.Clone(entry.emails), nil
	}
	c.record("members", false)
	emails, err := c.next.ListMemberEmails(ctx, orgID, groupID)
	if err != nil {
		return nil, err
	}
	c.members.Add(key, cacheEntry{emails: slices.Clone(emails), storedAt: c.now()})
	return emails, nil
}

// InvalidateGroup drops the cached member list, e.g. after invites are sent.
func (c *Cached) InvalidateGroup(orgID id.OrgID, groupID id.GroupID) {
	c.members.Remove(cacheKey{org: orgID, group: groupID})
}

func (c *Cached) fresh(entry cacheEntry) bool {
	return c.now().Sub(entry.storedAt) < c.ttl
}

func (c *Cached) record(lookup string, hit bool) {
	if c.recorder != nil {
		c.recorder.RecordDirectoryLookup(lookup, hit)
	}
}
