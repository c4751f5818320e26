package reducer

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"roster/internal/invite/models"
)

type ReducerSuite struct {
	suite.Suite
	logs    *bytes.Buffer
	reducer *Reducer
}

func TestReducerSuite(t *testing.T) {
	suite.Run(t, new(ReducerSuite))
}

func (s *ReducerSuite) SetupTest() {
	s.logs = &bytes.Buffer{}
	s.reducer = New(WithLogger(slog.New(slog.NewTextHandler(s.logs, nil))))
}

func (s *ReducerSuite) initial() models.State {
	return s.reducer.Reduce(models.State{}, models.Initialize{})
}

func (s *ReducerSuite) apply(state models.State, actions ...models.Action) models.State {
	for _, a := range actions {
		state = s.reducer.Reduce(state, a)
	}
	return state
}

func (s *ReducerSuite) TestInitialize() {
	s.Run("resets everything but group members", func() {
		dirty := s.apply(s.initial(),
			models.AddEmails{Emails: []string{"a@x.com", "bad"}, ActionType: models.ActionTypeFileUpload},
		)
		s.Require().True(dirty.IsCreateGroupFileUpload)

		fresh := s.reducer.Reduce(dirty, models.Initialize{GroupEnterpriseLearners: []string{"m@x.com"}})
		s.Empty(fresh.ValidatedEmails)
		s.Empty(fresh.InvalidEmails)
		s.Equal(models.Unvalidated, fresh.IsValidInput)
		s.False(fresh.CanInvite)
		s.Nil(fresh.ValidationError)
		s.False(fresh.IsCreateGroupFileUpload)
		s.Equal([]string{"m@x.com"}, fresh.GroupEnterpriseLearners)
	})
}

func (s *ReducerSuite) TestEmptyStateDistinction() {
	start := s.initial()
	s.Equal(models.Unvalidated, start.IsValidInput)
	s.False(start.CanInvite)

	cleared := s.reducer.Reduce(start, models.AddEmails{Emails: []string{}})
	s.Equal(models.Valid, cleared.IsValidInput)
	s.False(cleared.CanInvite)
	s.Nil(cleared.ValidationError)
}

func (s *ReducerSuite) TestScenarioA_FileUploadWithDuplicateAndInvalid() {
	state := s.apply(s.initial(), models.AddEmails{
		Emails:             []string{"a@x.com", "a@x.com", "bad-email"},
		ActionType:         models.ActionTypeFileUpload,
		ClearErroredEmails: true,
	})

	s.Equal([]string{"a@x.com"}, state.ValidatedEmails)
	s.Equal([]string{"a@x.com"}, state.DuplicateEmails)
	s.Equal([]string{"bad-email"}, state.InvalidEmails)
	s.Equal(models.Invalid, state.IsValidInput)
	s.False(state.CanInvite)
	s.True(state.IsCreateGroupFileUpload)
	s.False(state.IsCreateGroupListSelection)
}

func (s *ReducerSuite) TestScenarioB_OrgMembership() {
	state := s.apply(s.initial(), models.AddEmails{
		Emails:        []string{"a@x.com", "c@x.com"},
		OrgMembership: []string{"a@x.com"},
	})

	s.Equal([]string{"a@x.com"}, state.ValidatedEmails)
	s.Equal([]string{"c@x.com"}, state.EmailsNotInOrg)
	s.Equal(models.Invalid, state.IsValidInput)
	s.False(state.CanInvite)
}

func (s *ReducerSuite) TestScenarioC_RemoveDoesNotRevalidate() {
	added := s.apply(s.initial(),
		models.AddEmails{Emails: []string{"a@x.com", "b@x.com", "b@x.com", "oops"}},
	)
	s.Require().Equal([]string{"b@x.com"}, added.DuplicateEmails)
	s.Require().Equal([]string{"oops"}, added.InvalidEmails)

	removed := s.reducer.Reduce(added, models.RemoveEmails{Emails: []string{"a@x.com", "b@x.com"}})
	s.Empty(removed.ValidatedEmails)
	s.Empty(removed.LowerCasedEmails)
	s.Equal(added.DuplicateEmails, removed.DuplicateEmails)
	s.Equal(added.InvalidEmails, removed.InvalidEmails)
	s.Equal(added.IsValidInput, removed.IsValidInput)
	s.Equal(added.ValidationError, removed.ValidationError)
	s.False(removed.CanInvite)

	s.Run("single accepted email", func() {
		state := s.apply(s.initial(),
			models.AddEmails{Emails: []string{"a@x.com"}},
			models.RemoveEmails{Emails: []string{"a@x.com"}},
		)
		s.Empty(state.ValidatedEmails)
		s.Empty(state.LowerCasedEmails)
		s.Equal(models.Valid, state.IsValidInput)
		s.Nil(state.ValidationError)
		s.False(state.CanInvite)
	})
}

func (s *ReducerSuite) TestScenarioD_ReuploadSameFile() {
	upload := models.AddEmails{
		Emails:             []string{"x@y.com"},
		ActionType:         models.ActionTypeFileUpload,
		ClearErroredEmails: true,
	}
	state := s.apply(s.initial(), upload, upload)

	s.Equal([]string{"x@y.com"}, state.ValidatedEmails)
	s.Equal([]string{"x@y.com"}, state.DuplicateEmails)
	s.Equal(models.Valid, state.IsValidInput)
	s.True(state.CanInvite)
}

func (s *ReducerSuite) TestIdempotentReAdd() {
	state := s.apply(s.initial(), models.AddEmails{Emails: []string{"a@x.com", "b@x.com"}})
	before := len(state.ValidatedEmails)

	for _, clear := range []bool{false, true} {
		next := s.reducer.Reduce(state, models.AddEmails{Emails: []string{"a@x.com"}, ClearErroredEmails: clear})
		s.Len(next.ValidatedEmails, before)
		s.Contains(next.DuplicateEmails, "a@x.com")
	}
}

func (s *ReducerSuite) TestCaseInsensitiveDedupAcrossBatches() {
	state := s.apply(s.initial(),
		models.AddEmails{Emails: []string{"Foo@Bar.com"}},
		models.AddEmails{Emails: []string{"foo@bar.com"}},
	)
	s.Equal([]string{"Foo@Bar.com"}, state.ValidatedEmails)
	s.Equal([]string{"foo@bar.com"}, state.LowerCasedEmails)
	s.Equal([]string{"foo@bar.com"}, state.DuplicateEmails)
}

func (s *ReducerSuite) TestRemoveThenReAddRoundTrip() {
	state := s.apply(s.initial(),
		models.AddEmails{Emails: []string{"e@x.com", "f@x.com"}},
		models.RemoveEmails{Emails: []string{"e@x.com"}},
		models.AddEmails{Emails: []string{"e@x.com"}},
	)
	s.Equal([]string{"f@x.com", "e@x.com"}, state.ValidatedEmails)
	s.NotContains(state.DuplicateEmails, "e@x.com")
	s.True(state.CanInvite)
}

func (s *ReducerSuite) TestRemoveOnFreshFlowIsValidEmptyState() {
	initial := s.initial()
	s.Require().Equal(models.Unvalidated, initial.IsValidInput)

	s.Run("remove of an absent email", func() {
		state := s.reducer.Reduce(initial, models.RemoveEmails{Emails: []string{"a@x.com"}})
		s.Equal(models.Valid, state.IsValidInput)
		s.False(state.CanInvite)
		s.Empty(state.ValidatedEmails)
		s.Nil(state.ValidationError)
	})

	s.Run("empty remove", func() {
		state := s.reducer.Reduce(initial, models.RemoveEmails{})
		s.Equal(models.Valid, state.IsValidInput)
		s.False(state.CanInvite)
	})

	s.Run("invalid input stays invalid", func() {
		state := s.apply(initial,
			models.AddEmails{Emails: []string{"bad", "a@x.com"}},
			models.RemoveEmails{Emails: []string{"a@x.com"}},
		)
		s.Equal(models.Invalid, state.IsValidInput)
		s.Equal([]string{"bad"}, state.InvalidEmails)
	})
}

func (s *ReducerSuite) TestRemoveThenReAddKeepsEarlierDuplicate() {
	// Remove only touches the accepted list, and clear=false re-validates the
	// recorded duplicate alongside the new batch, so the sibling stays flagged.
	state := s.apply(s.initial(),
		models.AddEmails{Emails: []string{"a@x.com", "a@x.com"}},
	)
	s.Require().Equal([]string{"a@x.com"}, state.ValidatedEmails)
	s.Require().Equal([]string{"a@x.com"}, state.DuplicateEmails)

	state = s.apply(state,
		models.RemoveEmails{Emails: []string{"a@x.com"}},
		models.AddEmails{Emails: []string{"a@x.com"}},
	)
	s.Equal([]string{"a@x.com"}, state.ValidatedEmails)
	s.Equal([]string{"a@x.com"}, state.DuplicateEmails)
	s.True(state.CanInvite, "duplicates do not block submission")

	s.Run("clear=true drops the stale duplicate", func() {
		cleared := s.reducer.Reduce(state, models.AddEmails{ClearErroredEmails: true})
		s.Equal([]string{"a@x.com"}, cleared.ValidatedEmails)
		s.Empty(cleared.DuplicateEmails)
	})
}

func (s *ReducerSuite) TestMergePolicy() {
	s.Run("clear=false heals a duplicate once its sibling is removed", func() {
		state := s.apply(s.initial(),
			models.AddEmails{Emails: []string{"a@x.com", "a@x.com"}},
			models.RemoveEmails{Emails: []string{"a@x.com"}},
		)
		s.Require().Empty(state.ValidatedEmails)
		s.Require().Equal([]string{"a@x.com"}, state.DuplicateEmails)

		healed := s.reducer.Reduce(state, models.AddEmails{Emails: []string{"b@x.com"}})
		s.Equal([]string{"a@x.com", "b@x.com"}, healed.ValidatedEmails)
		s.Empty(healed.DuplicateEmails)
	})

	s.Run("clear=false keeps prior invalid entries in play", func() {
		state := s.apply(s.initial(),
			models.AddEmails{Emails: []string{"bad"}},
			models.AddEmails{Emails: []string{"a@x.com"}},
		)
		s.Equal([]string{"bad"}, state.InvalidEmails)
		s.Equal(models.Invalid, state.IsValidInput)
	})

	s.Run("clear=true discards prior errors but keeps accepted", func() {
		state := s.apply(s.initial(),
			models.AddEmails{Emails: []string{"a@x.com", "bad", "a@x.com"}},
			models.AddEmails{Emails: []string{"b@x.com"}, ClearErroredEmails: true},
		)
		s.Equal([]string{"a@x.com", "b@x.com"}, state.ValidatedEmails)
		s.Empty(state.InvalidEmails)
		s.Empty(state.DuplicateEmails)
		s.Equal(models.Valid, state.IsValidInput)
		s.True(state.CanInvite)
	})

	s.Run("not-in-org entries are re-checked against new membership", func() {
		state := s.apply(s.initial(),
			models.AddEmails{Emails: []string{"c@x.com"}, OrgMembership: []string{"a@x.com"}},
			models.AddEmails{Emails: []string{}, OrgMembership: []string{"a@x.com", "c@x.com"}},
		)
		s.Equal([]string{"c@x.com"}, state.ValidatedEmails)
		s.Empty(state.EmailsNotInOrg)
	})
}

func (s *ReducerSuite) TestProvenanceFlagsAccumulate() {
	state := s.apply(s.initial(),
		models.AddEmails{Emails: []string{"a@x.com"}, ActionType: models.ActionTypeFileUpload},
		models.AddEmails{Emails: []string{"b@x.com"}, ActionType: models.ActionTypeListSelection},
		models.AddEmails{Emails: []string{"c@x.com"}, ActionType: models.ActionTypeManualEntry},
		models.RemoveEmails{Emails: []string{"a@x.com", "b@x.com"}},
	)
	s.True(state.IsCreateGroupFileUpload)
	s.True(state.IsCreateGroupListSelection)
}

func (s *ReducerSuite) TestOverflow() {
	emails := make([]string, models.MaxEmailEntryLimit+1)
	for i := range emails {
		emails[i] = fmt.Sprintf("learner%04d@x.com", i)
	}
	state := s.apply(s.initial(), models.AddEmails{Emails: emails, OrgMembership: emails})

	s.Len(state.ValidatedEmails, models.MaxEmailEntryLimit)
	s.Equal(emails[:models.MaxEmailEntryLimit], state.ValidatedEmails)
	s.Equal(models.Invalid, state.IsValidInput)
	s.False(state.CanInvite)
	s.Require().NotNil(state.ValidationError)

	s.Run("limit option is honored", func() {
		small := New(WithLimit(2), WithLogger(slog.New(slog.NewTextHandler(s.logs, nil))))
		st := small.Reduce(models.InitialState(nil), models.AddEmails{Emails: emails[:3]})
		s.Len(st.ValidatedEmails, 2)
		s.False(st.CanInvite)
	})
}

func (s *ReducerSuite) TestUnrecognizedActionIsLoggedAndIgnored() {
	state := s.apply(s.initial(), models.AddEmails{Emails: []string{"a@x.com"}})

	same := s.reducer.Reduce(state, nil)
	s.Equal(state, same)

	s.Contains(s.logs.String(), "ignoring unrecognized invite action")
}

func (s *ReducerSuite) TestPointerActionsAreRejected() {
	state := s.apply(s.initial(), models.AddEmails{Emails: []string{"a@x.com"}})

	for _, action := range []models.Action{
		&models.AddEmails{Emails: []string{"b@x.com"}},
		&models.RemoveEmails{Emails: []string{"a@x.com"}},
		&models.Initialize{},
	} {
		s.Equal(state, s.reducer.Reduce(state, action), "%T", action)
	}
	s.Equal(3, bytes.Count(s.logs.Bytes(), []byte("ignoring invite action passed by pointer")))
}

func (s *ReducerSuite) TestInputStateIsNotMutated() {
	state := s.apply(s.initial(), models.AddEmails{Emails: []string{"a@x.com", "b@x.com"}})
	snapshot := state.Clone()

	_ = s.reducer.Reduce(state, models.RemoveEmails{Emails: []string{"a@x.com"}})
	_ = s.reducer.Reduce(state, models.AddEmails{Emails: []string{"c@x.com"}})

	s.Equal(snapshot, state)
}

func (s *ReducerSuite) TestNilEmailsAreTreatedAsEmpty() {
	state := s.apply(s.initial(),
		models.AddEmails{Emails: []string{"a@x.com"}},
		models.AddEmails{},
		models.RemoveEmails{},
	)
	s.Equal([]string{"a@x.com"}, state.ValidatedEmails)
	s.True(state.CanInvite)
}
