package sentinel

import "errors"

// Stores and infrastructure adapters return these (optionally wrapped) so
// services can translate them into coded domain errors:
//   - ErrNotFound: the record does not exist
//   - ErrExpired: the record existed but its lifetime has passed
//   - ErrConflict: a write collided with an existing record
//   - ErrUnavailable: a backing system could not be reached
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
