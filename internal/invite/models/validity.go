package models

import (
	"encoding/json"
	"fmt"
)

// Validity is the tri-state result of the last validation pass. Unvalidated
// means no add or remove has happened since the flow opened.
type Validity int

const (
	Unvalidated Validity = iota
	Valid
	Invalid
)

// ValidityOf converts a boolean outcome into a Validity.
func ValidityOf(ok bool) Validity {
	if ok {
		return Valid
	}
	return Invalid
}

func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "unvalidated"
	}
}

// MarshalJSON encodes Unvalidated as null and the others as booleans.
func (v Validity) MarshalJSON() ([]byte, error) {
	switch v {
	case Valid:
		return []byte("true"), nil
	case Invalid:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (v *Validity) UnmarshalJSON(b []byte) error {
	var raw *bool
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode validity: %w", err)
	}
	switch {
	case raw == nil:
		*v = Unvalidated
	case *raw:
		*v = Valid
	default:
		*v = Invalid
	}
	return nil
}
