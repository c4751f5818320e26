package models

import (
	"time"

	id "roster/pkg/domain"
)

// Flow is one open invite or group-creation dialog. It owns exactly one State
// and lives until it is submitted, closed, or expires.
type Flow struct {
	ID               id.FlowID   `json:"id"`
	OrgID            id.OrgID    `json:"org_id"`
	GroupID          *id.GroupID `json:"group_id,omitempty"`
	OrgLearnerEmails []string    `json:"org_learner_emails"`
	State            State       `json:"state"`
	CreatedAt        time.Time   `json:"created_at"`
	ExpiresAt        time.Time   `json:"expires_at"`
	// SubmittedBatchID is set while a batch for this flow is being delivered
	// or after delivery succeeded. A submitted flow accepts no more changes.
	SubmittedBatchID string `json:"submitted_batch_id,omitempty"`
}

// NewFlow opens a flow with the initial state seeded from the group members.
func NewFlow(flowID id.FlowID, orgID id.OrgID, groupID *id.GroupID, orgLearners, groupMembers []string, now time.Time, ttl time.Duration) *Flow {
	return &Flow{
		ID:               flowID,
		OrgID:            orgID,
		GroupID:          groupID,
		OrgLearnerEmails: cloneOrEmpty(orgLearners),
		State:            InitialState(groupMembers),
		CreatedAt:        now,
		ExpiresAt:        now.Add(ttl),
	}
}

// IsExpired reports whether the flow's lifetime has passed at now.
func (f *Flow) IsExpired(now time.Time) bool {
	return !f.ExpiresAt.IsZero() && !now.Before(f.ExpiresAt)
}

// IsSubmitted reports whether a batch has been handed off for this flow.
func (f *Flow) IsSubmitted() bool {
	return f.SubmittedBatchID != ""
}

// Touch extends the flow's lifetime after activity.
func (f *Flow) Touch(now time.Time, ttl time.Duration) {
	f.ExpiresAt = now.Add(ttl)
}

// Clone returns a deep copy of the flow.
func (f *Flow) Clone() *Flow {
	out := *f
	out.OrgLearnerEmails = cloneOrEmpty(f.OrgLearnerEmails)
	out.State = f.State.Clone()
	if f.GroupID != nil {
		g := *f.GroupID
		out.GroupID = &g
	}
	return &out
}

// SelectionResult is the outcome of adding interactively selected learners.
// Skipped lists selections dropped because they are already group members.
type SelectionResult struct {
	Flow    *Flow    `json:"flow"`
	Skipped []string `json:"skipped"`
}
