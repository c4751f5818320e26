package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"roster/internal/invite"
	inviteMetrics "roster/internal/invite/metrics"
	"roster/internal/invite/service"
	"roster/internal/platform/config"
	"roster/internal/platform/httpserver"
	"roster/internal/platform/logger"
	platformMetrics "roster/internal/platform/metrics"
	"roster/internal/platform/middleware"
	"roster/internal/platform/tracing"
	"roster/pkg/platform/httputil"
	"roster/pkg/platform/middleware/admin"
	"roster/pkg/platform/middleware/metadata"
	request "roster/pkg/platform/middleware/request"
	"roster/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging.Format, cfg.Logging.Level)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	inviteMetricsSet := inviteMetrics.New()
	dir, err := buildDirectory(ctx, cfg, infra, inviteMetricsSet, log)
	if err != nil {
		return err
	}
	flows := buildFlowStore(ctx, cfg, infra, log)
	inviter, err := buildInviter(ctx, cfg, infra, log)
	if err != nil {
		return err
	}
	auditPublisher, err := buildAuditPublisher(ctx, cfg, infra, log)
	if err != nil {
		return err
	}
	defer auditPublisher.Close()

	svc, err := invite.NewService(flows, dir, inviter,
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(inviteMetricsSet),
		service.WithFlowTTL(cfg.Invite.FlowTTL),
		service.WithTextDebounce(cfg.Invite.TextDebounce),
		service.WithMaxEntries(cfg.Invite.MaxEntryLimit),
	)
	if err != nil {
		return err
	}

	httpMetrics := platformMetrics.New()
	router := newRouter(cfg, log, httpMetrics, invite.NewHandler(svc, log), infra)
	srv := httpserver.New(cfg.Server.Addr, router)
	return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log)
}

func newRouter(cfg config.Config, log *slog.Logger, m *platformMetrics.Metrics, h *invite.Handler, infra *infra) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Recover(log))
	r.Use(middleware.Logger(log))
	r.Use(m.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := infra.Health(r.Context()); err != nil {
			log.WarnContext(r.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", m.Handler())

	r.Route("/admin", func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.Server.AdminToken, log))
		h.Register(r)
	})
	return r
}
