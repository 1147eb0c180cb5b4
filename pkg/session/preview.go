package session

import (
	"context"
	"sync"

	"github.com/formflow-go/formflow/internal/runtime"
	"github.com/formflow-go/formflow/pkg/domain"
)

// Preview is an asynchronously hydrating session handle. Opening a
// preview returns immediately; the underlying session is not queryable
// until hydration completes, mirroring how a form-filling surface shows
// a loading state before the first section renders.
type Preview struct {
	mu    sync.Mutex
	sess  *runtime.Session
	err   error
	ready chan struct{}
}

// Preview opens a session in the background and returns a handle that
// reports domain.ErrNotHydrated until the flow has loaded.
func (m *Manager) Preview(ctx context.Context, flowID string) *Preview {
	p := &Preview{ready: make(chan struct{})}
	go func() {
		sess, err := m.Open(ctx, flowID)
		p.mu.Lock()
		p.sess, p.err = sess, err
		p.mu.Unlock()
		close(p.ready)
	}()
	return p
}

// Ready is closed once hydration finishes, successfully or not.
func (p *Preview) Ready() <-chan struct{} {
	return p.ready
}

// Wait blocks until the preview has hydrated or the context is canceled,
// then returns the session.
func (p *Preview) Wait(ctx context.Context) (*runtime.Session, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ready:
	}
	return p.sessionLocked()
}

// Session returns the hydrated session, or domain.ErrNotHydrated while
// loading is still in flight.
func (p *Preview) Session() (*runtime.Session, error) {
	select {
	case <-p.ready:
		return p.sessionLocked()
	default:
		return nil, domain.ErrNotHydrated
	}
}

func (p *Preview) sessionLocked() (*runtime.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sess, p.err
}
