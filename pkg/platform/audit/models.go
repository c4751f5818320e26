package audit

import (
	"time"

	id "roster/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal or contractual significance,
	// such as invitations actually sent to people.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	OrgID     id.OrgID
	// Subject is the entity acted on, usually a flow or group id.
	Subject  string
	Action   string
	Decision string
	Reason   string
	// Count is the number of emails the action covered.
	Count     int
	RequestID string
	ActorID   string
}

type AuditEvent string

const (
	EventInviteFlowOpened     AuditEvent = "invite_flow_opened"
	EventInviteFlowClosed     AuditEvent = "invite_flow_closed"
	EventInvitesSubmitted     AuditEvent = "invites_submitted"
	EventInviteSubmitRejected AuditEvent = "invite_submit_rejected"
	EventAdminTokenRejected   AuditEvent = "admin_token_rejected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventInvitesSubmitted:     CategoryCompliance,
	EventAdminTokenRejected:   CategorySecurity,
	EventInviteFlowOpened:     CategoryOperations,
	EventInviteFlowClosed:     CategoryOperations,
	EventInviteSubmitRejected: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
