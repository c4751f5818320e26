// Package directory looks up the emails an invite flow validates against:
// the organization's learners and the target group's current members.
package directory

import (
	"context"

	id "roster/pkg/domain"
)

// LearnerDirectory lists the learner emails registered with an organization.
type LearnerDirectory interface {
	ListLearnerEmails(ctx context.Context, orgID id.OrgID) ([]string, error)
}

// GroupDirectory lists the emails already in a learner group.
// Unknown groups return sentinel.ErrNotFound.
type GroupDirectory interface {
	ListMemberEmails(ctx context.Context, orgID id.OrgID, groupID id.GroupID) ([]string, error)
}

// Directory serves both lookups.
type Directory interface {
	LearnerDirectory
	GroupDirectory
}
