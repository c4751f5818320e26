package models

// ActionType records which input modality produced an AddEmails batch.
type ActionType string

const (
	ActionTypeListSelection ActionType = "interactive selection"
	ActionTypeFileUpload    ActionType = "file upload"
	ActionTypeManualEntry   ActionType = "manual entry"
)

// Action is the closed set of transitions the reducer accepts:
// Initialize, AddEmails, and RemoveEmails. Actions are passed by value; the
// reducer logs and ignores pointer variants.
type Action interface {
	Kind() string
	isAction()
}

// Initialize resets the flow, seeding only the existing group members.
type Initialize struct {
	GroupEnterpriseLearners []string
}

// AddEmails merges a batch of candidates into the flow and re-validates.
//
// ClearErroredEmails selects the merge policy: true discards prior duplicate,
// invalid, and not-in-org entries and merges only with prior accepted emails;
// false re-validates every email seen so far alongside the batch.
type AddEmails struct {
	Emails             []string
	ClearErroredEmails bool
	ActionType         ActionType
	// OrgMembership enables the not-in-org check when non-empty.
	OrgMembership []string
}

// RemoveEmails drops exact matches from the accepted list without re-validating.
type RemoveEmails struct {
	Emails []string
}

const (
	KindInitialize   = "INITIALIZE"
	KindAddEmails    = "ADD_EMAILS"
	KindRemoveEmails = "REMOVE_EMAILS"
)

func (Initialize) Kind() string   { return KindInitialize }
func (AddEmails) Kind() string    { return KindAddEmails }
func (RemoveEmails) Kind() string { return KindRemoveEmails }

func (Initialize) isAction()   {}
func (AddEmails) isAction()    {}
func (RemoveEmails) isAction() {}
