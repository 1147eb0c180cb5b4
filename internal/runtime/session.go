package runtime

import (
	"context"

	"github.com/formflow-go/formflow/pkg/domain"
)

// Session binds an engine, a flow and one run's state into the surface a
// caller interacts with while filling the form. It is not safe for
// concurrent use; the session manager serializes access.
type Session struct {
	engine *Engine
	flow   *domain.Flow
	state  *domain.State
}

// NewSession wraps an existing run state.
func NewSession(engine *Engine, flow *domain.Flow, state *domain.State) *Session {
	return &Session{engine: engine, flow: flow, state: state}
}

// Start creates a session positioned at the flow's first section.
func Start(engine *Engine, sessionID, flowID string, flow *domain.Flow) *Session {
	return NewSession(engine, flow, domain.NewState(sessionID, flowID, flow.StartSectionID()))
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.state.SessionID
}

// Flow returns the flow this session walks.
func (s *Session) Flow() *domain.Flow {
	return s.flow
}

// State exposes the underlying run state for persistence.
func (s *Session) State() *domain.State {
	return s.state
}

// CurrentSectionID returns the section being shown, empty once terminal.
func (s *Session) CurrentSectionID() string {
	return s.state.CurrentSectionID
}

// CurrentSection resolves the section being shown from the flow.
func (s *Session) CurrentSection() (domain.Section, bool) {
	return s.flow.SectionByID(s.state.CurrentSectionID)
}

// SetAnswer records a field value. Answers on terminated runs are
// rejected so a stored outcome can never be contradicted afterwards.
func (s *Session) SetAnswer(fieldID string, value domain.Value) error {
	if s.state.Terminal() {
		return domain.ErrSessionTerminated
	}
	s.state.Answers.Set(fieldID, value)
	return nil
}

// Answer returns the recorded value for a field.
func (s *Session) Answer(fieldID string) (domain.Value, bool) {
	return s.state.Answers.Get(fieldID)
}

// Advance performs one "next" step. It returns nil while the run moves to
// another section and a terminal outcome otherwise. Advancing a terminal
// session returns the recorded outcome unchanged.
func (s *Session) Advance(ctx context.Context) *domain.Outcome {
	return s.engine.Advance(ctx, s.flow, s.state)
}

// IsTerminal reports whether the run has finished.
func (s *Session) IsTerminal() bool {
	return s.state.Terminal()
}

// Outcome returns the terminal outcome, nil while the run is active.
func (s *Session) Outcome() *domain.Outcome {
	return s.state.Outcome
}

// History returns the visited section IDs in order.
func (s *Session) History() []string {
	return append([]string(nil), s.state.History...)
}
