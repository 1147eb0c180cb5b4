package domain

// OutcomeKind enumerates the terminal states a run can reach.
type OutcomeKind string

const (
	// OutcomeAction is reached at an action node; the node's config is
	// surfaced verbatim.
	OutcomeAction OutcomeKind = "action"
	// OutcomeEndOfForm is reached when positional order runs out.
	OutcomeEndOfForm OutcomeKind = "end_of_form"
	// OutcomeNoPath is reached on a graph-managed section with no
	// outgoing edges.
	OutcomeNoPath OutcomeKind = "no_outgoing_path"
	// OutcomeDeadEnd is reached when a chosen edge or its target is
	// missing, or the cascade bound trips.
	OutcomeDeadEnd OutcomeKind = "dead_end"
)

// Human-readable reason tags. These are reported, never raised.
const (
	ReasonDefault    = "Default"
	ReasonNoPath     = "No path"
	ReasonDeadEnd    = "Dead end"
	ReasonNoMatch    = "No matching condition path"
	ReasonCycleBound = "Cycle detected"
)

// Outcome is the terminal result of a run. Action is non-nil only for
// OutcomeAction; Reason carries the tag for the other kinds.
type Outcome struct {
	Kind   OutcomeKind   `json:"kind" yaml:"kind"`
	Action *ActionConfig `json:"action,omitempty" yaml:"action,omitempty"`
	Reason string        `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// ActionOutcome wraps an action node's config as a terminal result.
func ActionOutcome(cfg ActionConfig) Outcome {
	return Outcome{Kind: OutcomeAction, Action: &cfg}
}

// EndOfForm marks natural completion of the positional section order.
func EndOfForm(reason string) Outcome {
	return Outcome{Kind: OutcomeEndOfForm, Reason: reason}
}

// NoOutgoingPath marks a section node with no edges to follow.
func NoOutgoingPath(reason string) Outcome {
	return Outcome{Kind: OutcomeNoPath, Reason: reason}
}

// DeadEnd marks a broken or unmatched path through the graph.
func DeadEnd(reason string) Outcome {
	return Outcome{Kind: OutcomeDeadEnd, Reason: reason}
}

// String renders the outcome the way the form-filling surface reports it.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeAction:
		if o.Action != nil && o.Action.Type == ActionWebhook {
			return "Webhook: " + o.Action.Message
		}
		if o.Action != nil {
			return "Redirecting to " + o.Action.URL
		}
		return "Action"
	case OutcomeEndOfForm:
		return "End of form (" + o.Reason + ")"
	case OutcomeNoPath:
		return "End of form (" + o.Reason + ")"
	default:
		return o.Reason
	}
}
