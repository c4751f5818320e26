package models

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "roster/pkg/domain"
)

func TestInitialState(t *testing.T) {
	s := InitialState([]string{"Member@X.com"})

	assert.Equal(t, Unvalidated, s.IsValidInput)
	assert.False(t, s.CanInvite)
	assert.Nil(t, s.ValidationError)
	assert.Empty(t, s.ValidatedEmails)
	assert.NotNil(t, s.ValidatedEmails, "empty lists encode as [] not null")
	assert.True(t, s.IsGroupMember("member@x.com"))
	assert.False(t, s.IsGroupMember("other@x.com"))
}

func TestStateClone(t *testing.T) {
	s := InitialState(nil)
	s.ValidatedEmails = []string{"a@x.com"}
	s.LowerCasedEmails = []string{"a@x.com"}
	s.ValidationError = &ValidationError{Message: "m"}

	c := s.Clone()
	c.ValidatedEmails[0] = "changed@x.com"
	c.ValidationError.Message = "changed"

	assert.Equal(t, "a@x.com", s.ValidatedEmails[0])
	assert.Equal(t, "m", s.ValidationError.Message)
}

func TestValidityJSON(t *testing.T) {
	for _, tt := range []struct {
		v    Validity
		json string
	}{
		{Unvalidated, "null"},
		{Valid, "true"},
		{Invalid, "false"},
	} {
		raw, err := json.Marshal(tt.v)
		require.NoError(t, err)
		assert.Equal(t, tt.json, string(raw))

		var back Validity
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, tt.v, back)
	}
}

func TestStateJSONShape(t *testing.T) {
	raw, err := json.Marshal(InitialState(nil))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["is_valid_input"])
	assert.NotContains(t, decoded, "validation_error")
	assert.Equal(t, []any{}, decoded["validated_emails"])
}

func TestDeriveCanInvite(t *testing.T) {
	assert.False(t, DeriveCanInvite(Unvalidated, 1, MaxEmailEntryLimit))
	assert.False(t, DeriveCanInvite(Invalid, 1, MaxEmailEntryLimit))
	assert.False(t, DeriveCanInvite(Valid, 0, MaxEmailEntryLimit))
	assert.False(t, DeriveCanInvite(Valid, MaxEmailEntryLimit+1, MaxEmailEntryLimit))
	assert.True(t, DeriveCanInvite(Valid, MaxEmailEntryLimit, MaxEmailEntryLimit))
}

func TestPreview(t *testing.T) {
	list := make([]string, 20)
	for i := range list {
		list[i] = fmt.Sprintf("learner%d@x.com", i)
	}

	t.Run("collapses past threshold", func(t *testing.T) {
		p := Preview(list, false)
		assert.Len(t, p.Shown, TruncatedDisplayThreshold)
		assert.Equal(t, 5, p.Hidden)
		assert.Equal(t, 20, p.Total)
	})

	t.Run("expanded shows everything", func(t *testing.T) {
		p := Preview(list, true)
		assert.Len(t, p.Shown, 20)
		assert.Zero(t, p.Hidden)
	})

	t.Run("short lists never collapse", func(t *testing.T) {
		p := Preview(list[:TruncatedDisplayThreshold], false)
		assert.Len(t, p.Shown, TruncatedDisplayThreshold)
		assert.Zero(t, p.Hidden)
	})
}

func TestFlowExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f := NewFlow(id.NewFlowID(), id.OrgID{1}, nil, []string{"a@x.com"}, nil, now, 30*time.Minute)

	assert.False(t, f.IsExpired(now.Add(29*time.Minute)))
	assert.True(t, f.IsExpired(now.Add(30*time.Minute)))

	f.Touch(now.Add(29*time.Minute), 30*time.Minute)
	assert.False(t, f.IsExpired(now.Add(30*time.Minute)))
}

func TestNewInvitationBatch(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	groupID := id.GroupID{2}
	f := NewFlow(id.NewFlowID(), id.OrgID{1}, &groupID, nil, nil, now, time.Hour)
	f.State.ValidatedEmails = []string{"jane.doe@x.com", "bob@x.com"}
	f.State.IsCreateGroupFileUpload = true

	batch := NewInvitationBatch(f, now)

	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, f.ID, batch.FlowID)
	assert.Equal(t, groupID, *batch.GroupID)
	assert.True(t, batch.FileUpload)
	assert.False(t, batch.Selection)
	assert.Equal(t, []Invitee{
		{Email: "jane.doe@x.com", FirstName: "Jane", LastName: "Doe"},
		{Email: "bob@x.com", FirstName: "Bob", LastName: ""},
	}, batch.Invitees)

	*f.GroupID = id.GroupID{3}
	assert.Equal(t, id.GroupID{2}, *batch.GroupID)
}
