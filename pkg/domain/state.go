package domain

// State is the persisted snapshot of one simulation run: which section is
// showing, what has been answered so far, and the terminal outcome once
// one is reached. The state is owned by a single session and never
// mutated concurrently.
type State struct {
	SessionID string `json:"session_id"`

	// FlowID names the flow this run walks.
	FlowID string `json:"flow_id"`

	// CurrentSectionID is the section being shown. Empty once the run
	// terminates without a current section.
	CurrentSectionID string `json:"current_section_id"`

	// Answers collects field values as the respondent fills the form.
	Answers Answers `json:"answers"`

	// History tracks visited section IDs in order.
	History []string `json:"history"`

	// Outcome is nil while the run is active.
	Outcome *Outcome `json:"outcome,omitempty"`
}

// NewState creates a fresh run positioned at the given start section.
func NewState(sessionID, flowID, startSectionID string) *State {
	st := &State{
		SessionID:        sessionID,
		FlowID:           flowID,
		CurrentSectionID: startSectionID,
		Answers:          make(Answers),
	}
	if startSectionID != "" {
		st.History = []string{startSectionID}
	}
	return st
}

// Terminal reports whether a terminal outcome has been reached.
func (s *State) Terminal() bool {
	return s.Outcome != nil
}

// Clone returns an independent deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Answers = s.Answers.Clone()
	next.History = append([]string(nil), s.History...)
	if s.Outcome != nil {
		o := *s.Outcome
		if s.Outcome.Action != nil {
			a := *s.Outcome.Action
			o.Action = &a
		}
		next.Outcome = &o
	}
	return &next
}
