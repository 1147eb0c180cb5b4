// Package redis provides Redis-backed store adapters and a distributed
// locker, for deployments where several instances share flows and
// preview sessions.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/formflow-go/formflow/pkg/domain"
)

// farFuture scores index entries that never expire. 2100-01-01.
const farFuture = 4102444800

// keyspace bundles the naming and expiry shared by both stores.
type keyspace struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Redis store.
type Option func(*keyspace)

// WithTTL sets the expiration for stored entries. Zero means no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(k *keyspace) {
		k.ttl = ttl
	}
}

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(k *keyspace) {
		k.prefix = prefix
	}
}

// WithClock substitutes the expiry clock so tests can drive index
// pruning alongside a fake server's virtual time.
func WithClock(now func() time.Time) Option {
	return func(k *keyspace) {
		if now != nil {
			k.now = now
		}
	}
}

func newKeyspace(client *backend.Client, prefix string, opts []Option) keyspace {
	k := keyspace{client: client, prefix: prefix, now: time.Now}
	for _, opt := range opts {
		opt(&k)
	}
	return k
}

func (k keyspace) key(id string) string {
	return k.prefix + id
}

func (k keyspace) indexKey() string {
	return k.prefix + "index"
}

// save writes the JSON blob and registers the ID in the ZSET index in
// one pipeline. The index score is the expiry instant, so List can prune
// lazily.
func (k keyspace) save(ctx context.Context, id string, blob []byte) error {
	pipe := k.client.Pipeline()
	pipe.Set(ctx, k.key(id), blob, k.ttl)

	score := float64(farFuture)
	if k.ttl > 0 {
		score = float64(k.now().Add(k.ttl).Unix())
	}
	pipe.ZAdd(ctx, k.indexKey(), backend.Z{Score: score, Member: id})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func (k keyspace) load(ctx context.Context, id string, notFound error) ([]byte, error) {
	val, err := k.client.Get(ctx, k.key(id)).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

func (k keyspace) delete(ctx context.Context, id string) error {
	pipe := k.client.Pipeline()
	pipe.Del(ctx, k.key(id))
	pipe.ZRem(ctx, k.indexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
}

// list prunes expired index entries, then returns the survivors.
func (k keyspace) list(ctx context.Context) ([]string, error) {
	now := fmt.Sprintf("%f", float64(k.now().Unix()))
	if err := k.client.ZRemRangeByScore(ctx, k.indexKey(), "-inf", now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired entries: %w", err)
	}

	ids, err := k.client.ZRange(ctx, k.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list from redis: %w", err)
	}
	return ids, nil
}

// FlowStore implements ports.FlowStore on Redis.
type FlowStore struct {
	ks keyspace
}

// NewFlowStore creates a flow store from an existing client.
func NewFlowStore(client *backend.Client, opts ...Option) *FlowStore {
	return &FlowStore{ks: newKeyspace(client, "formflow:flow:", opts)}
}

// Save persists the flow as a JSON blob.
func (s *FlowStore) Save(ctx context.Context, flowID string, flow *domain.Flow) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}
	return s.ks.save(ctx, flowID, data)
}

// Load retrieves the flow.
func (s *FlowStore) Load(ctx context.Context, flowID string) (*domain.Flow, error) {
	data, err := s.ks.load(ctx, flowID, domain.ErrFlowNotFound)
	if err != nil {
		return nil, err
	}
	var flow domain.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow: %w", err)
	}
	return &flow, nil
}

// Delete removes the flow.
func (s *FlowStore) Delete(ctx context.Context, flowID string) error {
	return s.ks.delete(ctx, flowID)
}

// List returns the stored flow IDs.
func (s *FlowStore) List(ctx context.Context) ([]string, error) {
	return s.ks.list(ctx)
}

// SessionStore implements ports.SessionStore on Redis.
type SessionStore struct {
	ks keyspace
}

// NewSessionStore creates a session store from an existing client.
func NewSessionStore(client *backend.Client, opts ...Option) *SessionStore {
	return &SessionStore{ks: newKeyspace(client, "formflow:session:", opts)}
}

// Save persists the session state as a JSON blob.
func (s *SessionStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	return s.ks.save(ctx, sessionID, data)
}

// Load retrieves the session state.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	data, err := s.ks.load(ctx, sessionID, domain.ErrSessionNotFound)
	if err != nil {
		return nil, err
	}
	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return &state, nil
}

// Delete removes the session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.ks.delete(ctx, sessionID)
}

// List returns active session IDs.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	return s.ks.list(ctx)
}
