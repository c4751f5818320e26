package inviter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"roster/internal/invite/models"
	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
)

func sampleBatch() models.InvitationBatch {
	return models.InvitationBatch{
		ID:        "batch-1",
		FlowID:    id.NewFlowID(),
		OrgID:     id.OrgID(id.NewFlowID()),
		Invitees:  []models.Invitee{{Email: "jane.doe@x.com", FirstName: "Jane", LastName: "Doe"}},
		RequestID: "req-1",
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(nil)
	batch := sampleBatch()

	require.NoError(t, r.Invite(context.Background(), batch))
	assert.Equal(t, []models.InvitationBatch{batch}, r.Batches())

	boom := errors.New("smtp down")
	r.FailWith(boom)
	assert.ErrorIs(t, r.Invite(context.Background(), batch), boom)
	assert.Len(t, r.Batches(), 1)
}

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestKafkaInviter(t *testing.T) {
	t.Run("publishes one record keyed by org", func(t *testing.T) {
		p := &fakeProducer{}
		k := NewKafka(p, "roster.invitations")
		batch := sampleBatch()

		require.NoError(t, k.Invite(context.Background(), batch))
		require.Len(t, p.records, 1)
		rec := p.records[0]
		assert.Equal(t, "roster.invitations", rec.Topic)
		assert.Equal(t, batch.OrgID.String(), string(rec.Key))

		var decoded models.InvitationBatch
		require.NoError(t, json.Unmarshal(rec.Value, &decoded))
		assert.Equal(t, batch.FlowID, decoded.FlowID)
		assert.Equal(t, batch.Invitees, decoded.Invitees)
	})

	t.Run("broker failure is unavailable", func(t *testing.T) {
		p := &fakeProducer{err: errors.New("not leader")}
		err := NewKafka(p, "t").Invite(context.Background(), sampleBatch())
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})
}
