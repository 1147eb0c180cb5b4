package domain

// NodeKind discriminates the closed set of logic graph node variants.
// The string values match the editor's wire format.
type NodeKind string

const (
	KindSection   NodeKind = "sectionNode"
	KindCondition NodeKind = "conditionNode"
	KindOperator  NodeKind = "operatorNode"
	KindAction    NodeKind = "actionNode"
)

// LogicalOp is the boolean operator of an operator node.
type LogicalOp string

const (
	OpAnd LogicalOp = "AND"
	OpOr  LogicalOp = "OR"
	OpNot LogicalOp = "NOT"
)

// ActionType is the kind of terminal action an action node triggers.
type ActionType string

const (
	ActionRedirect ActionType = "redirect"
	ActionWebhook  ActionType = "webhook"
)

// ActionConfig is the payload of an action node, surfaced verbatim as the
// run's terminal result. Webhooks are never fired by the engine; the
// config is reported to the caller.
type ActionConfig struct {
	Type    ActionType `json:"type" yaml:"type" mapstructure:"type"`
	URL     string     `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url"`
	Message string     `json:"message,omitempty" yaml:"message,omitempty" mapstructure:"message"`
}

// SectionPayload proxies a form section in the graph. The node's ID equals
// the section's ID; Label and Fields mirror the section for display.
type SectionPayload struct {
	Label  string  `json:"label" yaml:"label" mapstructure:"label"`
	Fields []Field `json:"fields" yaml:"fields" mapstructure:"fields"`
}

// ConditionPayload holds the ordered rules of a condition node. Rules are
// evaluated top to bottom, first match wins. AvailableSections is kept in
// sync by the editing surface so rule authoring can offer the current
// field catalog; the engine itself never reads it.
type ConditionPayload struct {
	Label             string    `json:"label" yaml:"label" mapstructure:"label"`
	Rules             []Rule    `json:"rules" yaml:"rules" mapstructure:"rules"`
	AvailableSections []Section `json:"availableSections,omitempty" yaml:"availableSections,omitempty" mapstructure:"availableSections"`
}

// OperatorPayload configures a boolean gate. NOT is fixed at one input;
// AND and OR range from 2 to 5. Input handles are named input_0..input_{n-1}.
type OperatorPayload struct {
	Label    string    `json:"label" yaml:"label" mapstructure:"label"`
	Operator LogicalOp `json:"operator" yaml:"operator" mapstructure:"operator"`
	Inputs   int       `json:"inputs" yaml:"inputs" mapstructure:"inputs"`
}

// ActionPayload wraps the terminal action configuration.
type ActionPayload struct {
	Label  string       `json:"label" yaml:"label" mapstructure:"label"`
	Config ActionConfig `json:"actionConfig" yaml:"actionConfig" mapstructure:"actionConfig"`
}

// Node is one vertex of the logic graph, a tagged union over the four
// kinds. Exactly the payload matching Kind is non-nil; traversal switches
// exhaustively on Kind so an unhandled variant cannot be silently skipped.
type Node struct {
	ID        string            `json:"id" yaml:"id"`
	Kind      NodeKind          `json:"type" yaml:"type"`
	Section   *SectionPayload   `json:"section,omitempty" yaml:"section,omitempty"`
	Condition *ConditionPayload `json:"condition,omitempty" yaml:"condition,omitempty"`
	Operator  *OperatorPayload  `json:"operator,omitempty" yaml:"operator,omitempty"`
	Action    *ActionPayload    `json:"action,omitempty" yaml:"action,omitempty"`
}

// SectionNode builds a graph node proxying the given section.
func SectionNode(s Section) Node {
	return Node{
		ID:      s.ID,
		Kind:    KindSection,
		Section: &SectionPayload{Label: s.Title, Fields: s.Fields},
	}
}

// ConditionNode builds a condition node with the given ordered rules.
func ConditionNode(id string, rules ...Rule) Node {
	return Node{
		ID:        id,
		Kind:      KindCondition,
		Condition: &ConditionPayload{Label: "Condition", Rules: rules},
	}
}

// OperatorNode builds a boolean gate node. Inputs are clamped to the
// operator's valid range.
func OperatorNode(id string, op LogicalOp, inputs int) Node {
	return Node{
		ID:       id,
		Kind:     KindOperator,
		Operator: &OperatorPayload{Label: "Logical Operator", Operator: op, Inputs: ClampInputs(op, inputs)},
	}
}

// ActionNode builds a terminal action node.
func ActionNode(id string, cfg ActionConfig) Node {
	return Node{
		ID:     id,
		Kind:   KindAction,
		Action: &ActionPayload{Label: "Action", Config: cfg},
	}
}

// ClampInputs bounds an operator node input count: NOT is always 1,
// AND/OR are clamped into [2, 5].
func ClampInputs(op LogicalOp, n int) int {
	if op == OpNot {
		return 1
	}
	if n < 2 {
		return 2
	}
	if n > 5 {
		return 5
	}
	return n
}
