package handler

import (
	"time"

	"roster/internal/invite/models"
	id "roster/pkg/domain"
)

// StateResponse is the display form of a flow's state. Long lists are
// collapsed to a preview unless the caller asked for expanded lists.
type StateResponse struct {
	ValidatedEmails            models.ListPreview `json:"validated_emails"`
	DuplicateEmails            models.ListPreview `json:"duplicate_emails"`
	InvalidEmails              models.ListPreview `json:"invalid_emails"`
	EmailsNotInOrg             models.ListPreview `json:"emails_not_in_org"`
	GroupMemberCount           int                `json:"group_member_count"`
	IsValidInput               models.Validity    `json:"is_valid_input"`
	CanInvite                  bool               `json:"can_invite"`
	ValidationError            *string            `json:"validation_error"`
	IsCreateGroupFileUpload    bool               `json:"is_create_group_file_upload"`
	IsCreateGroupListSelection bool               `json:"is_create_group_list_selection"`
}

type FlowResponse struct {
	FlowID    id.FlowID     `json:"flow_id"`
	OrgID     id.OrgID      `json:"org_id"`
	GroupID   *id.GroupID   `json:"group_id,omitempty"`
	ExpiresAt time.Time     `json:"expires_at"`
	State     StateResponse `json:"state"`
}

type SelectionResponse struct {
	FlowResponse
	Skipped []string `json:"skipped_group_members"`
}

type QueuedTextResponse struct {
	FlowID id.FlowID `json:"flow_id"`
	Queued bool      `json:"queued"`
}

type SubmitResponse struct {
	BatchID      string   `json:"batch_id"`
	InvitedCount int      `json:"invited_count"`
	Invited      []string `json:"invited"`
}

func toFlowResponse(flow *models.Flow, expanded bool) FlowResponse {
	st := flow.State
	resp := FlowResponse{
		FlowID:    flow.ID,
		OrgID:     flow.OrgID,
		GroupID:   flow.GroupID,
		ExpiresAt: flow.ExpiresAt,
		State: StateResponse{
			ValidatedEmails:            models.Preview(st.ValidatedEmails, expanded),
			DuplicateEmails:            models.Preview(st.DuplicateEmails, expanded),
			InvalidEmails:              models.Preview(st.InvalidEmails, expanded),
			EmailsNotInOrg:             models.Preview(st.EmailsNotInOrg, expanded),
			GroupMemberCount:           len(st.GroupEnterpriseLearners),
			IsValidInput:               st.IsValidInput,
			CanInvite:                  st.CanInvite,
			IsCreateGroupFileUpload:    st.IsCreateGroupFileUpload,
			IsCreateGroupListSelection: st.IsCreateGroupListSelection,
		},
	}
	if st.ValidationError != nil {
		msg := st.ValidationError.Message
		resp.State.ValidationError = &msg
	}
	return resp
}

func toSubmitResponse(batch *models.InvitationBatch) SubmitResponse {
	invited := make([]string, 0, len(batch.Invitees))
	for _, inv := range batch.Invitees {
		invited = append(invited, inv.Email)
	}
	return SubmitResponse{
		BatchID:      batch.ID,
		InvitedCount: len(invited),
		Invited:      invited,
	}
}
