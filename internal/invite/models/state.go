package models

import (
	"slices"
	"strings"
)

const (
	// MaxEmailEntryLimit caps the number of accepted emails in one flow.
	MaxEmailEntryLimit = 1000
	// TruncatedDisplayThreshold is how many entries a list shows before
	// collapsing the rest behind "Show N more".
	TruncatedDisplayThreshold = 15
)

// ValidationError is the user-facing message for a blocking or notable
// validation outcome.
type ValidationError struct {
	Message string `json:"message"`
}

// State is the canonical record of every email entered in one invite flow.
// It is only ever replaced by the reducer; callers must treat it as read-only.
//
// Invariants:
//   - len(LowerCasedEmails) == len(ValidatedEmails) and
//     LowerCasedEmails[i] == strings.ToLower(ValidatedEmails[i])
//   - CanInvite implies IsValidInput is Valid and
//     0 < len(ValidatedEmails) <= MaxEmailEntryLimit
//   - provenance flags never go from true to false until Initialize
type State struct {
	ValidatedEmails            []string         `json:"validated_emails"`
	LowerCasedEmails           []string         `json:"lower_cased_emails"`
	DuplicateEmails            []string         `json:"duplicate_emails"`
	InvalidEmails              []string         `json:"invalid_emails"`
	EmailsNotInOrg             []string         `json:"emails_not_in_org"`
	GroupEnterpriseLearners    []string         `json:"group_enterprise_learners"`
	IsValidInput               Validity         `json:"is_valid_input"`
	CanInvite                  bool             `json:"can_invite"`
	ValidationError            *ValidationError `json:"validation_error,omitempty"`
	IsCreateGroupFileUpload    bool             `json:"is_create_group_file_upload"`
	IsCreateGroupListSelection bool             `json:"is_create_group_list_selection"`
}

// InitialState is the context a flow starts from.
func InitialState(groupMembers []string) State {
	return State{
		ValidatedEmails:         []string{},
		LowerCasedEmails:        []string{},
		DuplicateEmails:         []string{},
		InvalidEmails:           []string{},
		EmailsNotInOrg:          []string{},
		GroupEnterpriseLearners: cloneOrEmpty(groupMembers),
		IsValidInput:            Unvalidated,
	}
}

// Clone returns a deep copy so the caller can hand it out without aliasing.
func (s State) Clone() State {
	out := s
	out.ValidatedEmails = cloneOrEmpty(s.ValidatedEmails)
	out.LowerCasedEmails = cloneOrEmpty(s.LowerCasedEmails)
	out.DuplicateEmails = cloneOrEmpty(s.DuplicateEmails)
	out.InvalidEmails = cloneOrEmpty(s.InvalidEmails)
	out.EmailsNotInOrg = cloneOrEmpty(s.EmailsNotInOrg)
	out.GroupEnterpriseLearners = cloneOrEmpty(s.GroupEnterpriseLearners)
	if s.ValidationError != nil {
		ve := *s.ValidationError
		out.ValidationError = &ve
	}
	return out
}

// IsGroupMember reports whether email already belongs to the target group.
// The comparison ignores case.
func (s State) IsGroupMember(email string) bool {
	for _, m := range s.GroupEnterpriseLearners {
		if strings.EqualFold(m, email) {
			return true
		}
	}
	return false
}

// AllEmails returns every email the flow has seen, accepted ones first.
func (s State) AllEmails() []string {
	out := make([]string, 0, len(s.ValidatedEmails)+len(s.InvalidEmails)+len(s.DuplicateEmails)+len(s.EmailsNotInOrg))
	out = append(out, s.ValidatedEmails...)
	out = append(out, s.InvalidEmails...)
	out = append(out, s.DuplicateEmails...)
	out = append(out, s.EmailsNotInOrg...)
	return out
}

// ApplyReport replaces every validation-derived field with the report's values.
func (s State) ApplyReport(r ValidityReport) State {
	out := s
	out.ValidatedEmails = cloneOrEmpty(r.ValidatedEmails)
	out.LowerCasedEmails = cloneOrEmpty(r.LowerCasedEmails)
	out.DuplicateEmails = cloneOrEmpty(r.DuplicateEmails)
	out.InvalidEmails = cloneOrEmpty(r.InvalidEmails)
	out.EmailsNotInOrg = cloneOrEmpty(r.EmailsNotInOrg)
	out.IsValidInput = r.IsValidInput
	out.CanInvite = r.CanInvite
	out.ValidationError = r.ValidationError
	return out
}

// DeriveCanInvite evaluates the CanInvite invariant for the given state.
func DeriveCanInvite(isValid Validity, accepted, limit int) bool {
	return isValid == Valid && accepted > 0 && accepted <= limit
}

func cloneOrEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
