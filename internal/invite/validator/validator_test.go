package validator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"roster/internal/invite/models"
)

type ValidatorSuite struct {
	suite.Suite
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func distinctEmails(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("learner%04d@x.com", i)
	}
	return out
}

func (s *ValidatorSuite) TestShape() {
	s.Run("malformed entries are invalid and block input", func() {
		r := Validate([]string{"a@x.com", "bad-email", "also bad@x.com"}, nil, nil)
		s.Equal([]string{"a@x.com"}, r.ValidatedEmails)
		s.Equal([]string{"bad-email", "also bad@x.com"}, r.InvalidEmails)
		s.Equal(models.Invalid, r.IsValidInput)
		s.False(r.CanInvite)
		s.Require().NotNil(r.ValidationError)
		s.Equal("bad-email is not a valid email.", r.ValidationError.Message)
	})
}

func (s *ValidatorSuite) TestDuplicates() {
	s.Run("case-insensitive dedup keeps first casing", func() {
		r := Validate([]string{"Foo@Bar.com", "foo@bar.com"}, nil, nil)
		s.Equal([]string{"Foo@Bar.com"}, r.ValidatedEmails)
		s.Equal([]string{"foo@bar.com"}, r.LowerCasedEmails)
		s.Equal([]string{"foo@bar.com"}, r.DuplicateEmails)
	})

	s.Run("duplicates alone do not invalidate", func() {
		r := Validate([]string{"a@x.com", "A@X.COM", "a@x.com"}, nil, nil)
		s.Equal(models.Valid, r.IsValidInput)
		s.True(r.CanInvite)
		s.Nil(r.ValidationError)
		s.Equal([]string{"A@X.COM", "a@x.com"}, r.DuplicateEmails)
	})

	s.Run("known good emails seed the duplicate set", func() {
		r := Validate([]string{"a@x.com", "b@x.com"}, []string{"A@x.com"}, nil)
		s.Equal([]string{"b@x.com"}, r.ValidatedEmails)
		s.Equal([]string{"a@x.com"}, r.DuplicateEmails)
	})

	s.Run("invalid entries are never counted as duplicates", func() {
		r := Validate([]string{"bad", "bad"}, nil, nil)
		s.Equal([]string{"bad", "bad"}, r.InvalidEmails)
		s.Empty(r.DuplicateEmails)
	})
}

func (s *ValidatorSuite) TestOrgMembership() {
	s.Run("emails outside the org are moved out", func() {
		r := Validate([]string{"a@x.com", "c@x.com"}, nil, []string{"a@x.com"})
		s.Equal([]string{"a@x.com"}, r.ValidatedEmails)
		s.Equal([]string{"a@x.com"}, r.LowerCasedEmails)
		s.Equal([]string{"c@x.com"}, r.EmailsNotInOrg)
		s.Equal(models.Invalid, r.IsValidInput)
		s.False(r.CanInvite)
		s.Require().NotNil(r.ValidationError)
		s.Equal("1 email(s) are not registered with the organization.", r.ValidationError.Message)
	})

	s.Run("membership comparison ignores case on both sides", func() {
		r := Validate([]string{"Jane@X.com"}, nil, []string{"JANE@x.COM"})
		s.Equal([]string{"Jane@X.com"}, r.ValidatedEmails)
		s.Empty(r.EmailsNotInOrg)
		s.True(r.CanInvite)
	})

	s.Run("empty membership disables the check", func() {
		r := Validate([]string{"anyone@x.com"}, nil, []string{})
		s.Equal([]string{"anyone@x.com"}, r.ValidatedEmails)
		s.Empty(r.EmailsNotInOrg)
	})

	s.Run("invalid message takes priority over membership", func() {
		r := Validate([]string{"c@x.com", "oops"}, nil, []string{"a@x.com"})
		s.Require().NotNil(r.ValidationError)
		s.Equal("oops is not a valid email.", r.ValidationError.Message)
	})
}

func (s *ValidatorSuite) TestOverflow() {
	s.Run("1001 distinct emails truncate to the first 1000", func() {
		in := distinctEmails(models.MaxEmailEntryLimit + 1)
		r := Validate(in, nil, in)
		s.Len(r.ValidatedEmails, models.MaxEmailEntryLimit)
		s.Len(r.LowerCasedEmails, models.MaxEmailEntryLimit)
		s.Equal(in[:models.MaxEmailEntryLimit], r.ValidatedEmails)
		s.Equal(1, r.Overflow)
		s.Equal(models.Invalid, r.IsValidInput)
		s.False(r.CanInvite)
		s.Require().NotNil(r.ValidationError)
		s.Equal("You can invite at most 1000 emails at a time.", r.ValidationError.Message)
	})

	s.Run("exactly the limit is accepted", func() {
		r := Validate(distinctEmails(models.MaxEmailEntryLimit), nil, nil)
		s.Zero(r.Overflow)
		s.True(r.CanInvite)
	})

	s.Run("limit option overrides the default", func() {
		r := Validate(distinctEmails(3), nil, nil, WithLimit(2))
		s.Len(r.ValidatedEmails, 2)
		s.Equal("You can invite at most 2 emails at a time.", r.ValidationError.Message)
	})
}

func (s *ValidatorSuite) TestEmptyInput() {
	r := Validate(nil, nil, nil)
	s.Equal(models.Valid, r.IsValidInput)
	s.False(r.CanInvite)
	s.Nil(r.ValidationError)
	s.NotNil(r.ValidatedEmails)
	s.NotNil(r.InvalidEmails)
}

func (s *ValidatorSuite) TestMirrorInvariant() {
	r := Validate([]string{"MiXeD@Case.COM", "other@x.com", "bad", "mixed@case.com"}, nil, nil)
	s.Require().Len(r.LowerCasedEmails, len(r.ValidatedEmails))
	for i, e := range r.ValidatedEmails {
		s.Equal(strings.ToLower(e), r.LowerCasedEmails[i])
	}
}
