package service

import (
	"sync"
	"time"

	"roster/internal/invite/session"
	id "roster/pkg/domain"
)

// textDrafts holds free-text entry per flow until the admin stops typing.
// Only the latest text queued for a flow is applied.
type textDrafts struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[id.FlowID]*textDraft
}

type textDraft struct {
	debouncer *session.Debouncer
	// running serializes applies between the timer and an explicit flush.
	running sync.Mutex

	mu   sync.Mutex
	next func()
}

func newTextDrafts(delay time.Duration) *textDrafts {
	return &textDrafts{delay: delay, pending: make(map[id.FlowID]*textDraft)}
}

// queue replaces the flow's pending text with apply and restarts the delay.
func (d *textDrafts) queue(flowID id.FlowID, apply func()) {
	d.mu.Lock()
	draft, ok := d.pending[flowID]
	if !ok {
		draft = &textDraft{debouncer: session.NewDebouncer(d.delay)}
		d.pending[flowID] = draft
	}
	draft.mu.Lock()
	draft.next = apply
	draft.mu.Unlock()
	d.mu.Unlock()

	draft.debouncer.Trigger(func() { d.run(flowID, draft) })
}

// flush applies pending text now. It returns once any apply already in
// progress for the flow has finished.
func (d *textDrafts) flush(flowID id.FlowID) {
	d.mu.Lock()
	draft := d.pending[flowID]
	d.mu.Unlock()
	if draft == nil {
		return
	}
	draft.debouncer.Flush(func() { d.run(flowID, draft) })
}

// discard drops pending text without applying it.
func (d *textDrafts) discard(flowID id.FlowID) {
	d.mu.Lock()
	draft := d.pending[flowID]
	delete(d.pending, flowID)
	d.mu.Unlock()
	if draft == nil {
		return
	}
	draft.debouncer.Stop()
	draft.mu.Lock()
	draft.next = nil
	draft.mu.Unlock()
}

func (d *textDrafts) run(flowID id.FlowID, draft *textDraft) {
	draft.running.Lock()
	defer draft.running.Unlock()

	draft.mu.Lock()
	apply := draft.next
	draft.next = nil
	draft.mu.Unlock()
	if apply != nil {
		apply()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	draft.mu.Lock()
	defer draft.mu.Unlock()
	if draft.next == nil && d.pending[flowID] == draft {
		delete(d.pending, flowID)
	}
}

func (d *textDrafts) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
