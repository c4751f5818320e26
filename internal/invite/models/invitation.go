package models

import (
	"time"

	"github.com/google/uuid"

	id "roster/pkg/domain"
	"roster/pkg/email"
)

// Invitee is one person to invite. Names are derived from the address and
// may be empty.
type Invitee struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// InvitationBatch is what a submitted flow hands to the inviter.
type InvitationBatch struct {
	ID          string      `json:"id"`
	FlowID      id.FlowID   `json:"flow_id"`
	OrgID       id.OrgID    `json:"org_id"`
	GroupID     *id.GroupID `json:"group_id,omitempty"`
	Invitees    []Invitee   `json:"invitees"`
	FileUpload  bool        `json:"file_upload"`
	Selection   bool        `json:"list_selection"`
	RequestedAt time.Time   `json:"requested_at"`
	RequestID   string      `json:"request_id,omitempty"`
	ActorID     string      `json:"actor_id,omitempty"`
}

// NewInvitationBatch builds the batch for a flow's accepted emails.
func NewInvitationBatch(flow *Flow, now time.Time) InvitationBatch {
	invitees := make([]Invitee, 0, len(flow.State.ValidatedEmails))
	for _, addr := range flow.State.ValidatedEmails {
		first, last := email.DeriveNameFromEmail(addr)
		invitees = append(invitees, Invitee{Email: addr, FirstName: first, LastName: last})
	}
	batch := InvitationBatch{
		ID:          uuid.NewString(),
		FlowID:      flow.ID,
		OrgID:       flow.OrgID,
		Invitees:    invitees,
		FileUpload:  flow.State.IsCreateGroupFileUpload,
		Selection:   flow.State.IsCreateGroupListSelection,
		RequestedAt: now,
	}
	if flow.GroupID != nil {
		g := *flow.GroupID
		batch.GroupID = &g
	}
	return batch
}
