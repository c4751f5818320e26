package service

import (
	"sync"

	id "roster/pkg/domain"
)

// flowLocks hands out one mutex per flow so each flow has a single writer
// while different flows proceed in parallel. Entries are dropped when the
// last holder releases them.
type flowLocks struct {
	mu    sync.Mutex
	locks map[id.FlowID]*flowLock
}

type flowLock struct {
	mu   sync.Mutex
	refs int
}

func newFlowLocks() *flowLocks {
	return &flowLocks{locks: make(map[id.FlowID]*flowLock)}
}

// lock blocks until the caller owns flowID and returns the release func.
func (l *flowLocks) lock(flowID id.FlowID) func() {
	l.mu.Lock()
	entry, ok := l.locks[flowID]
	if !ok {
		entry = &flowLock{}
		l.locks[flowID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, flowID)
		}
		l.mu.Unlock()
	}
}

func (l *flowLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
