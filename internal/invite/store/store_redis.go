package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"roster/internal/invite/models"
	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
	"roster/pkg/requestcontext"
)

const (
	defaultKeyPrefix = "roster:invite-flow:"
	maxUpdateRetries = 5
)

// RedisStore keeps each flow as a JSON value whose key expires with the flow.
// Updates use WATCH so concurrent writers from different instances cannot
// lose each other's changes.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

type RedisOption func(*RedisStore)

func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, keyPrefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(flowID id.FlowID) string {
	return s.keyPrefix + flowID.String()
}

func (s *RedisStore) Create(ctx context.Context, flow *models.Flow) error {
	payload, ttl, err := encode(ctx, flow)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, s.key(flow.ID), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("create flow: %w: %w", sentinel.ErrUnavailable, err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, flowID id.FlowID) (*models.Flow, error) {
	return s.read(ctx, s.client, flowID)
}

func (s *RedisStore) Update(ctx context.Context, flowID id.FlowID, fn UpdateFunc) (*models.Flow, error) {
	key := s.key(flowID)
	var updated *models.Flow

	txf := func(tx *redis.Tx) error {
		flow, err := s.read(ctx, tx, flowID)
		if err != nil {
			return err
		}
		if err := fn(flow); err != nil {
			return err
		}
		payload, ttl, err := encode(ctx, flow)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		if err == nil {
			updated = flow
		}
		return err
	}

	for range maxUpdateRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update flow: %w", sentinel.ErrConflict)
}

func (s *RedisStore) Delete(ctx context.Context, flowID id.FlowID) error {
	n, err := s.client.Del(ctx, s.key(flowID)).Result()
	if err != nil {
		return fmt.Errorf("delete flow: %w: %w", sentinel.ErrUnavailable, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *RedisStore) read(ctx context.Context, c redis.Cmdable, flowID id.FlowID) (*models.Flow, error) {
	raw, err := c.Get(ctx, s.key(flowID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get flow: %w: %w", sentinel.ErrUnavailable, err)
	}
	var flow models.Flow
	if err := json.Unmarshal(raw, &flow); err != nil {
		return nil, fmt.Errorf("decode flow: %w", err)
	}
	if flow.IsExpired(requestcontext.Now(ctx)) {
		return nil, sentinel.ErrExpired
	}
	return &flow, nil
}

func encode(ctx context.Context, flow *models.Flow) ([]byte, time.Duration, error) {
	ttl := flow.ExpiresAt.Sub(requestcontext.Now(ctx))
	if ttl <= 0 {
		return nil, 0, sentinel.ErrExpired
	}
	payload, err := json.Marshal(flow)
	if err != nil {
		return nil, 0, fmt.Errorf("encode flow: %w", err)
	}
	return payload, ttl, nil
}
