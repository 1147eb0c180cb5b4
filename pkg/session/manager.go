// Package session orchestrates simulation runs: creating previews,
// persisting their state and serializing concurrent access to each
// session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/formflow-go/formflow/internal/logging"
	"github.com/formflow-go/formflow/internal/runtime"
	"github.com/formflow-go/formflow/pkg/domain"
	"github.com/formflow-go/formflow/pkg/ports"
)

// lockEntry holds a session's mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager coordinates preview sessions over a flow store and a session
// store. Per-session locks are reference counted so the lock map never
// grows with dead sessions.
type Manager struct {
	flows    ports.FlowStore
	sessions ports.SessionStore
	engine   *runtime.Engine

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	logger *slog.Logger

	lockTTL      time.Duration
	hydrationMin time.Duration
	hydrationMax time.Duration
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking, coordinating session access
// across multiple instances sharing one store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for deferred errors.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithEngine substitutes the traversal engine, letting callers attach
// lifecycle hooks or a custom cascade bound.
func WithEngine(engine *runtime.Engine) Option {
	return func(m *Manager) {
		if engine != nil {
			m.engine = engine
		}
	}
}

// WithHydrationDelay injects a bounded random latency before a preview's
// flow data becomes available, simulating the load a respondent would
// experience. Zero bounds (the default) disable the delay.
func WithHydrationDelay(min, max time.Duration) Option {
	return func(m *Manager) {
		if min < 0 {
			min = 0
		}
		if max < min {
			max = min
		}
		m.hydrationMin = min
		m.hydrationMax = max
	}
}

// NewManager creates a session manager over the given stores.
func NewManager(flows ports.FlowStore, sessions ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		flows:    flows,
		sessions: sessions,
		engine:   runtime.NewEngine(),
		locks:    make(map[string]*lockEntry),
		logger:   logging.NewNop(),
		lockTTL:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference
// count. The caller must lock entry.mu and call release afterwards.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count, deleting the entry at zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the session's local lock and, when a
// distributed locker is configured, the cross-instance lock too.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock, will expire via TTL",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Open starts a new preview session over the named flow, positioned at
// its first section, and persists the initial state. The flow is loaded
// after the configured hydration delay.
func (m *Manager) Open(ctx context.Context, flowID string) (*runtime.Session, error) {
	if err := m.hydrate(ctx); err != nil {
		return nil, err
	}

	flow, err := m.flows.Load(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow %q: %w", flowID, err)
	}

	sessionID := uuid.NewString()
	sess := runtime.Start(m.engine, sessionID, flowID, flow)

	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.sessions.Save(ctx, sessionID, sess.State())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	m.logger.Info("session opened", "session_id", sessionID, "flow_id", flowID)
	return sess, nil
}

// Resume restores a persisted session, reloading its flow from the flow
// store. The run continues exactly where it stopped.
func (m *Manager) Resume(ctx context.Context, sessionID string) (*runtime.Session, error) {
	if err := m.hydrate(ctx); err != nil {
		return nil, err
	}

	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.sessions.Load(ctx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	flow, err := m.flows.Load(ctx, state.FlowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow %q for session %q: %w", state.FlowID, sessionID, err)
	}

	return runtime.NewSession(m.engine, flow, state), nil
}

// Save persists a session's current state.
func (m *Manager) Save(ctx context.Context, sess *runtime.Session) error {
	return m.WithLock(ctx, sess.ID(), func(ctx context.Context) error {
		return m.sessions.Save(ctx, sess.ID(), sess.State())
	})
}

// Close discards a session. Closing an unknown session is not an error;
// cancellation is just dropping the preview.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.sessions.Delete(ctx, sessionID)
	})
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	return err
}

// List returns the active session IDs.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.sessions.List(ctx)
}

// Flows exposes the underlying flow store.
func (m *Manager) Flows() ports.FlowStore {
	return m.flows
}

// Sessions exposes the underlying session store.
func (m *Manager) Sessions() ports.SessionStore {
	return m.sessions
}

// hydrate sleeps the configured random latency, honouring cancellation.
func (m *Manager) hydrate(ctx context.Context) error {
	if m.hydrationMax == 0 {
		return nil
	}
	delay := m.hydrationMin
	if span := m.hydrationMax - m.hydrationMin; span > 0 {
		delay += rand.N(span)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
