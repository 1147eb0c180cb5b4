package ports

import (
	"context"

	"github.com/formflow-go/formflow/pkg/domain"
)

// FlowStore persists the editor's saved unit: sections, nodes and edges
// keyed by flow ID. Implementations are best-effort collaborators; the
// engine logs failures and continues with empty defaults rather than
// surfacing them to a running form session.
type FlowStore interface {
	// Save persists the flow under the given ID.
	Save(ctx context.Context, flowID string, flow *domain.Flow) error

	// Load retrieves a flow.
	// Returns domain.ErrFlowNotFound if the flow does not exist.
	Load(ctx context.Context, flowID string) (*domain.Flow, error)

	// Delete removes the flow.
	Delete(ctx context.Context, flowID string) error

	// List returns the stored flow IDs.
	List(ctx context.Context) ([]string, error)
}

// SessionStore persists simulation run state, enabling stop-and-resume of
// a preview across processes.
type SessionStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns active session IDs.
	List(ctx context.Context) ([]string, error)
}
