package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/twmb/franz-go/pkg/kgo"

	"roster/internal/invite/directory"
	"roster/internal/invite/inviter"
	inviteMetrics "roster/internal/invite/metrics"
	"roster/internal/invite/service"
	"roster/internal/invite/store"
	"roster/internal/platform/config"
	"roster/internal/platform/kafka"
	"roster/internal/platform/postgres"
	"roster/internal/platform/redis"
	"roster/pkg/platform/audit/publisher"
	auditmemory "roster/pkg/platform/audit/store/memory"
	auditpostgres "roster/pkg/platform/audit/store/postgres"
	"roster/pkg/platform/circuit"
)

const auditBufferSize = 1024

// infra holds the optional backing services. A nil field means the
// in-memory fallback is used for that concern.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
}

func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	i := &infra{}
	var err error
	if i.db, err = postgres.Open(ctx, cfg.Postgres); err != nil {
		return nil, err
	}
	if i.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		i.Close()
		return nil, err
	}
	if i.kafka, err = kafka.NewClient(cfg.Kafka); err != nil {
		i.Close()
		return nil, err
	}
	log.Info("backing services configured",
		"postgres", i.db != nil,
		"redis", i.redis != nil,
		"kafka", i.kafka != nil,
	)
	return i, nil
}

// Health pings every configured backing service.
func (i *infra) Health(ctx context.Context) error {
	var errs []error
	if i.db != nil {
		if err := i.db.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if i.redis != nil {
		if err := i.redis.Health(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if i.kafka != nil {
		if err := i.kafka.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kafka: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (i *infra) Close() {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

func buildDirectory(ctx context.Context, cfg config.Config, i *infra, m *inviteMetrics.Metrics, log *slog.Logger) (service.Directory, error) {
	var base interface {
		directory.Directory
		directory.Importer
	}
	if i.db != nil {
		pg := directory.NewPostgres(i.db)
		if cfg.Postgres.EnsureSchema {
			if err := pg.EnsureSchema(ctx); err != nil {
				return nil, err
			}
		}
		base = pg
	} else {
		base = directory.NewInMemory()
	}

	if cfg.Directory.SeedFile != "" {
		f, err := os.Open(cfg.Directory.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("open directory seed: %w", err)
		}
		stats, err := directory.Seed(ctx, base, f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		log.Info("directory seeded", "learners", stats.Learners, "groups", stats.Groups)
	}

	if cfg.Directory.CacheSize <= 0 {
		return base, nil
	}
	return directory.NewCached(base, cfg.Directory.CacheSize, cfg.Directory.CacheTTL, directory.WithRecorder(m))
}

func buildFlowStore(ctx context.Context, cfg config.Config, i *infra, log *slog.Logger) service.FlowStore {
	if i.redis != nil {
		return store.NewRedis(i.redis.Client, store.WithKeyPrefix(cfg.Redis.KeyPrefix))
	}
	mem := store.NewInMemory()
	go func() {
		if err := mem.StartCleanup(ctx, cfg.Invite.SweepInterval); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("flow sweeper stopped", "error", err)
		}
	}()
	return mem
}

func buildInviter(ctx context.Context, cfg config.Config, i *infra, log *slog.Logger) (service.Inviter, error) {
	if i.kafka == nil {
		return inviter.NewRecorder(log), nil
	}
	if err := kafka.EnsureTopic(ctx, i.kafka, cfg.Kafka); err != nil {
		return nil, err
	}
	breaker := circuit.New("invitations",
		circuit.WithFailureThreshold(cfg.Kafka.BreakerFailures),
		circuit.WithSuccessThreshold(1),
	)
	return inviter.NewGuarded(inviter.NewKafka(i.kafka, cfg.Kafka.Topic), breaker,
		inviter.WithTrialInterval(cfg.Kafka.BreakerTrialInterval),
		inviter.WithGuardLogger(log),
	), nil
}

func buildAuditPublisher(ctx context.Context, cfg config.Config, i *infra, log *slog.Logger) (*publisher.Publisher, error) {
	var st publisher.Store = auditmemory.NewInMemoryStore()
	if i.db != nil {
		pg := auditpostgres.New(i.db)
		if cfg.Postgres.EnsureSchema {
			if err := pg.EnsureSchema(ctx); err != nil {
				return nil, err
			}
		}
		st = pg
	}
	return publisher.NewPublisher(st,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	), nil
}
