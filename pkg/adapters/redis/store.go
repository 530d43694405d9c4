// Package redis stores match records in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/aplus/pkg/domain"
)

const defaultPrefix = "aplus:match:"

// Store implements ports.MatchStore on Redis.
// Each record is a JSON string under prefix+ID; a sorted set under prefix+"index",
// scored by finish time, keeps the listing order. Records may expire (see WithTTL);
// expired IDs are removed from the index lazily by List.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix. Default "aplus:match:".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL makes records expire after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New connects to the Redis server at addr.
func New(addr string, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(id string) string { return s.prefix + id }

func (s *Store) index() string { return s.prefix + "index" }

func (s *Store) Save(ctx context.Context, record *domain.MatchRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode match %s: %w", record.ID, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.key(record.ID), data, s.ttl)
		pipe.ZAdd(ctx, s.index(), backend.Z{
			Score:  float64(record.FinishedAt.UnixMilli()),
			Member: record.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error saving match %s: %w", record.ID, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (*domain.MatchRecord, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, fmt.Errorf("%w: %s", domain.ErrMatchNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("redis error loading match %s: %w", id, err)
	}
	var record domain.MatchRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode match %s: %w", id, err)
	}
	return &record, nil
}

func (s *Store) List(ctx context.Context) ([]*domain.MatchRecord, error) {
	ids, err := s.client.ZRange(ctx, s.index(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error listing matches: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error listing matches: %w", err)
	}

	var (
		records []*domain.MatchRecord
		expired []any
	)
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		var record domain.MatchRecord
		if err := json.Unmarshal([]byte(str), &record); err != nil {
			return nil, fmt.Errorf("failed to decode match %s: %w", ids[i], err)
		}
		records = append(records, &record)
	}
	if len(expired) > 0 {
		if err := s.client.ZRem(ctx, s.index(), expired...).Err(); err != nil {
			return nil, fmt.Errorf("redis error pruning index: %w", err)
		}
	}
	return records, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		pipe.ZRem(ctx, s.index(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error deleting match %s: %w", id, err)
	}
	return nil
}
