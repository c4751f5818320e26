// Package store keeps open invite flows for as long as they live.
//
// Both implementations return sentinel.ErrNotFound for unknown flows and
// sentinel.ErrExpired for flows whose ExpiresAt has passed.
package store

import (
	"context"

	"roster/internal/invite/models"
	id "roster/pkg/domain"
)

// UpdateFunc mutates a private copy of a flow. Returning an error aborts the
// update and leaves the stored flow untouched.
type UpdateFunc func(flow *models.Flow) error

// Store persists open flows.
type Store interface {
	Create(ctx context.Context, flow *models.Flow) error
	Get(ctx context.Context, flowID id.FlowID) (*models.Flow, error)
	Update(ctx context.Context, flowID id.FlowID, fn UpdateFunc) (*models.Flow, error)
	Delete(ctx context.Context, flowID id.FlowID) error
}
