// Package validator classifies candidate emails for an invite flow.
//
// A single pass routes every candidate to exactly one of: invalid (bad shape),
// duplicate (case-insensitive repeat), not in org, or accepted. Accepted emails
// keep the case the user typed; only comparisons are lower-cased.
package validator

import (
	"fmt"

	"roster/internal/invite/models"
	"roster/pkg/email"
)

type config struct {
	limit int
}

// Option tunes a validation pass.
type Option func(*config)

// WithLimit overrides MaxEmailEntryLimit. Non-positive values are ignored.
func WithLimit(limit int) Option {
	return func(c *config) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// Validate classifies candidates in input order. knownGood seeds the
// duplicate set; orgMembership, when non-empty, enables the not-in-org check.
func Validate(candidates, knownGood, orgMembership []string, opts ...Option) models.ValidityReport {
	cfg := config{limit: models.MaxEmailEntryLimit}
	for _, opt := range opts {
		opt(&cfg)
	}

	report := models.ValidityReport{
		ValidatedEmails:  []string{},
		LowerCasedEmails: []string{},
		DuplicateEmails:  []string{},
		InvalidEmails:    []string{},
		EmailsNotInOrg:   []string{},
	}

	seen := make(map[string]struct{}, len(knownGood)+len(candidates))
	for _, e := range knownGood {
		seen[email.Normalize(e)] = struct{}{}
	}

	for _, candidate := range candidates {
		if !email.IsValidShape(candidate) {
			report.InvalidEmails = append(report.InvalidEmails, candidate)
			continue
		}
		lower := email.Normalize(candidate)
		if _, dup := seen[lower]; dup {
			report.DuplicateEmails = append(report.DuplicateEmails, candidate)
			continue
		}
		seen[lower] = struct{}{}
		report.ValidatedEmails = append(report.ValidatedEmails, candidate)
		report.LowerCasedEmails = append(report.LowerCasedEmails, lower)
	}

	if len(orgMembership) > 0 {
		applyOrgMembership(&report, orgMembership)
	}

	if len(report.ValidatedEmails) > cfg.limit {
		report.Overflow = len(report.ValidatedEmails) - cfg.limit
		report.ValidatedEmails = report.ValidatedEmails[:cfg.limit]
		report.LowerCasedEmails = report.LowerCasedEmails[:cfg.limit]
	}

	ok := len(report.InvalidEmails) == 0 && len(report.EmailsNotInOrg) == 0 && report.Overflow == 0
	report.IsValidInput = models.ValidityOf(ok)
	report.CanInvite = models.DeriveCanInvite(report.IsValidInput, len(report.ValidatedEmails), cfg.limit)
	report.ValidationError = validationError(report, cfg.limit)
	return report
}

func applyOrgMembership(report *models.ValidityReport, orgMembership []string) {
	members := make(map[string]struct{}, len(orgMembership))
	for _, m := range orgMembership {
		members[email.Normalize(m)] = struct{}{}
	}

	kept := report.ValidatedEmails[:0:0]
	keptLower := report.LowerCasedEmails[:0:0]
	for i, e := range report.ValidatedEmails {
		lower := report.LowerCasedEmails[i]
		if _, ok := members[lower]; !ok {
			report.EmailsNotInOrg = append(report.EmailsNotInOrg, e)
			continue
		}
		kept = append(kept, e)
		keptLower = append(keptLower, lower)
	}
	report.ValidatedEmails = kept
	report.LowerCasedEmails = keptLower
}

func validationError(report models.ValidityReport, limit int) *models.ValidationError {
	switch {
	case len(report.InvalidEmails) > 0:
		return &models.ValidationError{
			Message: fmt.Sprintf("%s is not a valid email.", report.InvalidEmails[0]),
		}
	case len(report.EmailsNotInOrg) > 0:
		return &models.ValidationError{
			Message: fmt.Sprintf("%d email(s) are not registered with the organization.", len(report.EmailsNotInOrg)),
		}
	case report.Overflow > 0:
		return &models.ValidationError{
			Message: fmt.Sprintf("You can invite at most %d emails at a time.", limit),
		}
	default:
		return nil
	}
}
