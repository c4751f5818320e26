// Package reducer is the only place an invite flow's State changes.
package reducer

import (
	"fmt"
	"log/slog"

	"roster/internal/invite/models"
	"roster/internal/invite/validator"
)

// Reducer applies actions to a State. It holds no state of its own.
type Reducer struct {
	logger *slog.Logger
	limit  int
}

type Option func(*Reducer)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reducer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLimit overrides the maximum number of accepted emails.
func WithLimit(limit int) Option {
	return func(r *Reducer) {
		if limit > 0 {
			r.limit = limit
		}
	}
}

func New(opts ...Option) *Reducer {
	r := &Reducer{logger: slog.Default(), limit: models.MaxEmailEntryLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reduce applies action with a default Reducer.
func Reduce(state models.State, action models.Action) models.State {
	return New().Reduce(state, action)
}

// Reduce returns the state that results from applying action to state.
// The input state is never modified. Unknown actions are logged and ignored.
func (r *Reducer) Reduce(state models.State, action models.Action) models.State {
	switch a := action.(type) {
	case models.Initialize:
		return models.InitialState(a.GroupEnterpriseLearners)
	case models.AddEmails:
		return r.addEmails(state, a)
	case models.RemoveEmails:
		return r.removeEmails(state, a)
	case *models.Initialize, *models.AddEmails, *models.RemoveEmails:
		r.logger.Warn("ignoring invite action passed by pointer", "action", fmt.Sprintf("%T", action))
		return state
	default:
		r.logger.Warn("ignoring unrecognized invite action", "action", fmt.Sprintf("%T", action))
		return state
	}
}

func (r *Reducer) addEmails(state models.State, a models.AddEmails) models.State {
	next := state.Clone()
	switch a.ActionType {
	case models.ActionTypeFileUpload:
		next.IsCreateGroupFileUpload = true
	case models.ActionTypeListSelection:
		next.IsCreateGroupListSelection = true
	}

	var prior []string
	if a.ClearErroredEmails {
		prior = state.ValidatedEmails
	} else {
		prior = state.AllEmails()
	}
	candidates := make([]string, 0, len(prior)+len(a.Emails))
	candidates = append(candidates, prior...)
	candidates = append(candidates, a.Emails...)

	report := validator.Validate(candidates, nil, a.OrgMembership, validator.WithLimit(r.limit))
	return next.ApplyReport(report)
}

func (r *Reducer) removeEmails(state models.State, a models.RemoveEmails) models.State {
	next := state.Clone()
	// An explicit remove on a fresh flow leaves a valid empty list.
	if next.IsValidInput == models.Unvalidated {
		next.IsValidInput = models.Valid
	}
	if len(a.Emails) == 0 {
		next.CanInvite = models.DeriveCanInvite(next.IsValidInput, len(next.ValidatedEmails), r.limit)
		return next
	}
	drop := make(map[string]struct{}, len(a.Emails))
	for _, e := range a.Emails {
		drop[e] = struct{}{}
	}

	kept := make([]string, 0, len(state.ValidatedEmails))
	keptLower := make([]string, 0, len(state.LowerCasedEmails))
	for i, e := range state.ValidatedEmails {
		if _, ok := drop[e]; ok {
			continue
		}
		kept = append(kept, e)
		if i < len(state.LowerCasedEmails) {
			keptLower = append(keptLower, state.LowerCasedEmails[i])
		}
	}
	next.ValidatedEmails = kept
	next.LowerCasedEmails = keptLower
	next.CanInvite = models.DeriveCanInvite(next.IsValidInput, len(kept), r.limit)
	return next
}
