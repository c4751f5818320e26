// Package invite reconciles the emails an admin enters while inviting members
// or creating a group, and submits the accepted ones.
package invite

import (
	"log/slog"

	"roster/internal/invite/handler"
	"roster/internal/invite/service"
)

// Service exposes invite flow orchestration.
type Service = service.Service

// Handler wires HTTP endpoints to the invite service.
type Handler = handler.Handler

// NewService constructs the invite service with required dependencies.
func NewService(flows service.FlowStore, directory service.Directory, inviter service.Inviter, opts ...service.Option) (*Service, error) {
	return service.New(flows, directory, inviter, opts...)
}

// NewHandler constructs an HTTP handler for admin-facing invite routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
