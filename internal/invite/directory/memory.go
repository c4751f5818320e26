package directory

import (
	"context"
	"slices"
	"sync"

	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
)

type groupKey struct {
	org   id.OrgID
	group id.GroupID
}

// InMemory is a Directory backed by maps. Used in tests and local runs.
type InMemory struct {
	mu       sync.RWMutex
	learners map[id.OrgID][]string
	groups   map[groupKey][]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		learners: make(map[id.OrgID][]string),
		groups:   make(map[groupKey][]string),
	}
}

// AddLearners registers learner emails with an organization.
func (d *InMemory) AddLearners(orgID id.OrgID, emails ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.learners[orgID] = append(d.learners[orgID], emails...)
}

// AddGroup creates the group if needed and adds members to it.
func (d *InMemory) AddGroup(orgID id.OrgID, groupID id.GroupID, members ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := groupKey{org: orgID, group: groupID}
	d.groups[key] = append(d.groups[key], members...)
	if d.groups[key] == nil {
		d.groups[key] = []string{}
	}
}

func (d *InMemory) ListLearnerEmails(_ context.Context, orgID id.OrgID) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := slices.Clone(d.learners[orgID])
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (d *InMemory) ListMemberEmails(_ context.Context, orgID id.OrgID, groupID id.GroupID) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	members, ok := d.groups[groupKey{org: orgID, group: groupID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return slices.Clone(members), nil
}

func (d *InMemory) ImportLearners(_ context.Context, orgID id.OrgID, emails []string) error {
	d.AddLearners(orgID, emails...)
	return nil
}

func (d *InMemory) AddGroupMembers(_ context.Context, orgID id.OrgID, groupID id.GroupID, emails []string) error {
	d.AddGroup(orgID, groupID, emails...)
	return nil
}
