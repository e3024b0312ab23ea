// Package redis provides Redis-backed adapters: a ports.SelectionStore for
// sharing widget sessions across replicas, and a ports.DistributedLocker for
// serializing deltas against the same session.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/canopy/pkg/domain"
)

const defaultPrefix = "canopy:selection:"

// Store implements ports.SelectionStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// StoreOption configures the store.
type StoreOption func(*Store)

// WithTTL sets an expiration on stored selections. Zero means no expiration.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix overrides the key prefix used for selections and the session index.
func WithPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewFromClient creates a store on top of an existing Redis client.
func NewFromClient(client *backend.Client, opts ...StoreOption) *Store {
	s := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the selection as JSON and registers the session in a sorted
// set index scored by expiration time, so List can lazily drop expired entries.
func (s *Store) Save(ctx context.Context, sessionID string, sel *domain.Selection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("failed to serialize selection: %w", err)
	}

	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis error saving selection: %w", err)
	}

	score := float64(0) // 0 marks sessions without expiration
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).UnixNano())
	}
	member := backend.Z{Score: score, Member: sessionID}
	if err := s.client.ZAdd(ctx, s.indexKey(), member).Err(); err != nil {
		return fmt.Errorf("redis error indexing session: %w", err)
	}
	return nil
}

// Load retrieves and deserializes the selection.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Selection, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis error loading selection: %w", err)
	}

	var sel domain.Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return nil, fmt.Errorf("failed to deserialize selection: %w", err)
	}
	return &sel, nil
}

// Delete removes the selection and its index entry.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis error deleting selection: %w", err)
	}
	if err := s.client.ZRem(ctx, s.indexKey(), sessionID).Err(); err != nil {
		return fmt.Errorf("redis error unindexing session: %w", err)
	}
	return nil
}

// List returns active session IDs. Expired entries are removed from the index
// first; score 0 entries never expire.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := fmt.Sprintf("%d", time.Now().UnixNano())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "(0", now).Err(); err != nil {
		return nil, fmt.Errorf("redis error pruning session index: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error listing sessions: %w", err)
	}
	return sessions, nil
}
