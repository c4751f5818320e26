package models

// ValidityReport is the outcome of validating one candidate set.
type ValidityReport struct {
	ValidatedEmails  []string
	LowerCasedEmails []string
	DuplicateEmails  []string
	InvalidEmails    []string
	EmailsNotInOrg   []string
	IsValidInput     Validity
	CanInvite        bool
	ValidationError  *ValidationError
	// Overflow is how many accepted emails were dropped by the entry limit.
	Overflow int
}
