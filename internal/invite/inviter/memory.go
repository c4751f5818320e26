package inviter

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"roster/internal/invite/models"
)

// Recorder keeps every batch in memory and logs it. Used when no broker is
// configured and in tests.
type Recorder struct {
	mu      sync.Mutex
	batches []models.InvitationBatch
	logger  *slog.Logger
	err     error
}

func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{logger: logger}
}

// FailWith makes later Invite calls return err. Pass nil to recover.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) Invite(ctx context.Context, batch models.InvitationBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, batch)
	r.logger.InfoContext(ctx, "invitation batch recorded",
		"batch_id", batch.ID,
		"flow_id", batch.FlowID.String(),
		"invitees", len(batch.Invitees),
		"request_id", batch.RequestID,
	)
	return nil
}

// Batches returns the recorded batches in order.
func (r *Recorder) Batches() []models.InvitationBatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.batches)
}
