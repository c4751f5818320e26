// Package inviter hands submitted invitation batches to whatever sends the
// invitation emails.
package inviter

import (
	"context"

	"roster/internal/invite/models"
)

// Inviter accepts a batch for delivery. Implementations must be safe for
// concurrent use.
type Inviter interface {
	Invite(ctx context.Context, batch models.InvitationBatch) error
}
