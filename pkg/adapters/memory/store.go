// Package memory provides in-memory store adapters, the default for
// ephemeral previews and tests.
package memory

import (
	"context"
	"sync"

	"github.com/formflow-go/formflow/pkg/domain"
)

// FlowStore implements ports.FlowStore in memory. Safe for concurrent
// use.
type FlowStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Flow
}

// NewFlowStore creates an empty in-memory flow store.
func NewFlowStore() *FlowStore {
	return &FlowStore{data: make(map[string]*domain.Flow)}
}

// Save stores a deep copy of the flow, isolating the store from later
// caller mutations.
func (s *FlowStore) Save(ctx context.Context, flowID string, flow *domain.Flow) error {
	copied := cloneFlow(flow)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[flowID] = copied
	return nil
}

// Load returns a copy of the stored flow.
func (s *FlowStore) Load(ctx context.Context, flowID string) (*domain.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flow, ok := s.data[flowID]
	if !ok {
		return nil, domain.ErrFlowNotFound
	}
	return cloneFlow(flow), nil
}

// Delete removes the flow.
func (s *FlowStore) Delete(ctx context.Context, flowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, flowID)
	return nil
}

// List returns the stored flow IDs.
func (s *FlowStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// SessionStore implements ports.SessionStore in memory. Safe for
// concurrent use.
type SessionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.State
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{data: make(map[string]*domain.State)}
}

// Save stores a deep copy of the state.
func (s *SessionStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	copied := state.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load returns a copy of the stored state so the caller cannot mutate
// the store through the pointer.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state.Clone(), nil
}

// Delete removes the state.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[sessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.data, sessionID)
	return nil
}

// List returns active session IDs.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// cloneFlow deep copies a flow so stored data and caller data never
// alias.
func cloneFlow(f *domain.Flow) *domain.Flow {
	if f == nil {
		return nil
	}
	out := &domain.Flow{
		Title:    f.Title,
		Sections: make([]domain.Section, len(f.Sections)),
		Nodes:    make([]domain.Node, len(f.Nodes)),
		Edges:    append([]domain.Edge(nil), f.Edges...),
	}
	for i, s := range f.Sections {
		s.Fields = cloneFields(s.Fields)
		out.Sections[i] = s
	}
	for i, n := range f.Nodes {
		out.Nodes[i] = cloneNode(n)
	}
	return out
}

func cloneFields(fields []domain.Field) []domain.Field {
	out := make([]domain.Field, len(fields))
	for i, fld := range fields {
		fld.Options = append([]string(nil), fld.Options...)
		out[i] = fld
	}
	return out
}

func cloneNode(n domain.Node) domain.Node {
	if n.Section != nil {
		p := *n.Section
		p.Fields = cloneFields(p.Fields)
		n.Section = &p
	}
	if n.Condition != nil {
		p := *n.Condition
		p.Rules = append([]domain.Rule(nil), p.Rules...)
		p.AvailableSections = append([]domain.Section(nil), p.AvailableSections...)
		n.Condition = &p
	}
	if n.Operator != nil {
		p := *n.Operator
		n.Operator = &p
	}
	if n.Action != nil {
		p := *n.Action
		n.Action = &p
	}
	return n
}
