// Package session holds the single authoritative State for one invite flow.
package session

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"roster/internal/invite/models"
	"roster/internal/invite/reducer"
)

// Observer is notified with the new state after every dispatch.
type Observer func(models.State)

// Session is the single writer for a flow's State. Dispatches are applied one
// at a time and observers run synchronously on the dispatching goroutine.
type Session struct {
	mu            sync.Mutex
	state         models.State
	reducer       *reducer.Reducer
	orgMembership []string
	observers     map[int]Observer
	nextID        int
	logger        *slog.Logger
}

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithReducer(r *reducer.Reducer) Option {
	return func(s *Session) {
		if r != nil {
			s.reducer = r
		}
	}
}

// WithOrgMembership sets the org learner list injected into AddEmails actions
// that carry none.
func WithOrgMembership(emails []string) Option {
	return func(s *Session) {
		s.orgMembership = emails
	}
}

// WithState resumes a session from a previously saved state.
func WithState(state models.State) Option {
	return func(s *Session) {
		s.state = state.Clone()
	}
}

// New starts a session in the initial state.
func New(opts ...Option) *Session {
	s := &Session{
		state:     models.InitialState(nil),
		observers: make(map[int]Observer),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reducer == nil {
		s.reducer = reducer.New(reducer.WithLogger(s.logger))
	}
	return s
}

// State returns a copy of the current state.
func (s *Session) State() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch applies action and returns the resulting state.
func (s *Session) Dispatch(action models.Action) models.State {
	if add, ok := action.(models.AddEmails); ok && len(add.OrgMembership) == 0 {
		add.OrgMembership = s.orgMembership
		action = add
	}

	s.mu.Lock()
	s.state = s.reducer.Reduce(s.state, action)
	current := s.state.Clone()
	observers := make([]Observer, 0, len(s.observers))
	for _, id := range s.observerIDs() {
		observers = append(observers, s.observers[id])
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(current.Clone())
	}
	return current
}

// Subscribe registers fn for state changes. The returned func removes it.
func (s *Session) Subscribe(fn Observer) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// observerIDs returns subscription ids in registration order. Caller holds mu.
func (s *Session) observerIDs() []int {
	return slices.Sorted(maps.Keys(s.observers))
}
