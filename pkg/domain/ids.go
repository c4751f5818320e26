package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "roster/pkg/domain-errors"
)

// Typed identifiers keep organization, group, and flow ids from being mixed up
// at compile time. All of them are non-nil UUIDs once parsed.
type (
	OrgID   uuid.UUID
	GroupID uuid.UUID
	FlowID  uuid.UUID
)

// NewFlowID allocates a random flow id.
func NewFlowID() FlowID { return FlowID(uuid.New()) }

func ParseOrgID(s string) (OrgID, error) {
	u, err := parseUUID(s, "org_id")
	return OrgID(u), err
}

func ParseGroupID(s string) (GroupID, error) {
	u, err := parseUUID(s, "group_id")
	return GroupID(u), err
}

func ParseFlowID(s string) (FlowID, error) {
	u, err := parseUUID(s, "flow_id")
	return FlowID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be the nil UUID")
	}
	return u, nil
}

func (id OrgID) String() string   { return uuid.UUID(id).String() }
func (id GroupID) String() string { return uuid.UUID(id).String() }
func (id FlowID) String() string  { return uuid.UUID(id).String() }

func (id OrgID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id GroupID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id FlowID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func (id OrgID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id GroupID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id FlowID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *OrgID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *GroupID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *FlowID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
