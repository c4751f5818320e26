package store

import (
	"context"
	"sync"
	"time"

	"roster/internal/invite/models"
	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
	"roster/pkg/requestcontext"
)

// InMemoryStore keeps flows in a map. Expired flows are reported as expired
// on access and removed by RemoveExpiredAt.
type InMemoryStore struct {
	mu    sync.RWMutex
	flows map[id.FlowID]*models.Flow
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{flows: make(map[id.FlowID]*models.Flow)}
}

func (s *InMemoryStore) Create(_ context.Context, flow *models.Flow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.flows[flow.ID]; exists {
		return sentinel.ErrConflict
	}
	s.flows[flow.ID] = flow.Clone()
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, flowID id.FlowID) (*models.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	flow, err := s.lookup(ctx, flowID)
	if err != nil {
		return nil, err
	}
	return flow.Clone(), nil
}

func (s *InMemoryStore) Update(ctx context.Context, flowID id.FlowID, fn UpdateFunc) (*models.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flow, err := s.lookup(ctx, flowID)
	if err != nil {
		return nil, err
	}
	next := flow.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.flows[flowID] = next
	return next.Clone(), nil
}

func (s *InMemoryStore) Delete(_ context.Context, flowID id.FlowID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flows[flowID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.flows, flowID)
	return nil
}

// Len reports how many flows are held, expired or not.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.flows)
}

// StartCleanup removes expired flows every interval until ctx is cancelled.
func (s *InMemoryStore) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RemoveExpiredAt(time.Now())
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RemoveExpiredAt deletes every flow expired as of now and returns how many.
func (s *InMemoryStore) RemoveExpiredAt(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for flowID, flow := range s.flows {
		if flow.IsExpired(now) {
			delete(s.flows, flowID)
			removed++
		}
	}
	return removed
}

// lookup must be called with mu held.
func (s *InMemoryStore) lookup(ctx context.Context, flowID id.FlowID) (*models.Flow, error) {
	flow, ok := s.flows[flowID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if flow.IsExpired(requestcontext.Now(ctx)) {
		return nil, sentinel.ErrExpired
	}
	return flow, nil
}
