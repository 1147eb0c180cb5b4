// Package builder is the graph-editing surface: it mutates a flow's
// sections, fields, nodes and edges while keeping the invariants the
// traversal engine relies on, most importantly the 1:1 mirror between
// sections and section nodes.
package builder

import (
	"fmt"
	"time"

	"github.com/formflow-go/formflow/pkg/domain"
)

// Builder edits a single flow. It is not safe for concurrent use; an
// editing surface owns one builder at a time.
type Builder struct {
	flow *domain.Flow

	now    func() time.Time
	lastID int64
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock substitutes the ID clock, keeping generated IDs stable in
// tests.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a builder over an empty flow with the given title.
func New(title string, opts ...Option) *Builder {
	return From(&domain.Flow{Title: title}, opts...)
}

// From wraps an existing flow for editing.
func From(flow *domain.Flow, opts ...Option) *Builder {
	b := &Builder{flow: flow, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Flow returns the flow being edited.
func (b *Builder) Flow() *domain.Flow {
	return b.flow
}

// stampID yields a millisecond timestamp, bumped on collision so two
// edits in the same millisecond never share an ID.
func (b *Builder) stampID() int64 {
	id := b.now().UnixMilli()
	if id <= b.lastID {
		id = b.lastID + 1
	}
	b.lastID = id
	return id
}

// AddSection appends a new section. IDs follow the sec_N positional
// scheme.
func (b *Builder) AddSection(title string) domain.Section {
	if title == "" {
		title = "New Section"
	}
	section := domain.Section{
		ID:    fmt.Sprintf("sec_%d", len(b.flow.Sections)+1),
		Title: title,
	}
	b.flow.Sections = append(b.flow.Sections, section)
	return section
}

// RemoveSection deletes a section. The section's graph node disappears
// on the next SyncSectionNodes; edges touching it are dropped there too.
func (b *Builder) RemoveSection(sectionID string) bool {
	for i, s := range b.flow.Sections {
		if s.ID == sectionID {
			b.flow.Sections = append(b.flow.Sections[:i], b.flow.Sections[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateSectionTitle renames a section.
func (b *Builder) UpdateSectionTitle(sectionID, title string) bool {
	for i := range b.flow.Sections {
		if b.flow.Sections[i].ID == sectionID {
			b.flow.Sections[i].Title = title
			return true
		}
	}
	return false
}

// AddField appends a text field with a fresh f_<ms> ID to the section.
func (b *Builder) AddField(sectionID string) (domain.Field, error) {
	field := domain.Field{
		ID:    fmt.Sprintf("f_%d", b.stampID()),
		Type:  domain.FieldText,
		Label: "New Question",
	}
	for i := range b.flow.Sections {
		if b.flow.Sections[i].ID == sectionID {
			b.flow.Sections[i].Fields = append(b.flow.Sections[i].Fields, field)
			return field, nil
		}
	}
	return domain.Field{}, fmt.Errorf("section %q not found", sectionID)
}

// UpdateField replaces a field in place, keyed by field.ID.
func (b *Builder) UpdateField(sectionID string, field domain.Field) error {
	for i := range b.flow.Sections {
		if b.flow.Sections[i].ID != sectionID {
			continue
		}
		for j := range b.flow.Sections[i].Fields {
			if b.flow.Sections[i].Fields[j].ID == field.ID {
				b.flow.Sections[i].Fields[j] = field
				return nil
			}
		}
		return fmt.Errorf("field %q not found in section %q", field.ID, sectionID)
	}
	return fmt.Errorf("section %q not found", sectionID)
}

// RemoveField deletes a field from a section.
func (b *Builder) RemoveField(sectionID, fieldID string) bool {
	for i := range b.flow.Sections {
		if b.flow.Sections[i].ID != sectionID {
			continue
		}
		fields := b.flow.Sections[i].Fields
		for j := range fields {
			if fields[j].ID == fieldID {
				b.flow.Sections[i].Fields = append(fields[:j], fields[j+1:]...)
				return true
			}
		}
	}
	return false
}

// SyncSectionNodes reconciles the graph with the section list: one
// section node per section in section order, labels and field mirrors
// refreshed, nodes of deleted sections dropped along with their edges,
// and availableSections refreshed on every condition node.
func (b *Builder) SyncSectionNodes() {
	existing := make(map[string]bool, len(b.flow.Nodes))
	var others []domain.Node
	for _, n := range b.flow.Nodes {
		if n.Kind == domain.KindSection {
			existing[n.ID] = true
			continue
		}
		others = append(others, n)
	}

	nodes := make([]domain.Node, 0, len(b.flow.Sections)+len(others))
	live := make(map[string]bool, len(b.flow.Sections))
	for _, section := range b.flow.Sections {
		nodes = append(nodes, domain.SectionNode(section))
		live[section.ID] = true
	}

	for _, n := range others {
		if n.Kind == domain.KindCondition && n.Condition != nil {
			n.Condition.AvailableSections = append([]domain.Section(nil), b.flow.Sections...)
		}
		nodes = append(nodes, n)
		live[n.ID] = true
	}
	b.flow.Nodes = nodes

	// Drop edges that touched a section node which no longer exists.
	// Edges referencing IDs that never were nodes are left alone; the
	// engine tolerates dangling references.
	var edges []domain.Edge
	for _, e := range b.flow.Edges {
		if existing[e.Source] && !live[e.Source] {
			continue
		}
		if existing[e.Target] && !live[e.Target] {
			continue
		}
		edges = append(edges, e)
	}
	b.flow.Edges = edges
}

// AddConditionNode creates a condition node with the given rules and the
// current section catalog attached.
func (b *Builder) AddConditionNode(rules ...domain.Rule) domain.Node {
	node := domain.ConditionNode(fmt.Sprintf("condition_%d", b.stampID()), rules...)
	node.Condition.AvailableSections = append([]domain.Section(nil), b.flow.Sections...)
	b.flow.Nodes = append(b.flow.Nodes, node)
	return node
}

// AddOperatorNode creates a boolean gate node. The input count is
// clamped to the operator's valid range.
func (b *Builder) AddOperatorNode(op domain.LogicalOp, inputs int) domain.Node {
	node := domain.OperatorNode(fmt.Sprintf("operator_%d", b.stampID()), op, inputs)
	b.flow.Nodes = append(b.flow.Nodes, node)
	return node
}

// AddActionNode creates a terminal action node.
func (b *Builder) AddActionNode(cfg domain.ActionConfig) domain.Node {
	node := domain.ActionNode(fmt.Sprintf("action_%d", b.stampID()), cfg)
	b.flow.Nodes = append(b.flow.Nodes, node)
	return node
}

// AddRule appends a rule to a condition node and returns it. Rule IDs
// double as the node's outgoing handles.
func (b *Builder) AddRule(nodeID string, fieldID string, op domain.Operator, value string) (domain.Rule, error) {
	node := b.flow.NodeByID(nodeID)
	if node == nil || node.Kind != domain.KindCondition || node.Condition == nil {
		return domain.Rule{}, fmt.Errorf("condition node %q not found", nodeID)
	}
	rule := domain.Rule{
		ID:       fmt.Sprintf("rule_%d", b.stampID()),
		FieldID:  fieldID,
		Operator: op,
		Value:    value,
	}
	node.Condition.Rules = append(node.Condition.Rules, rule)
	return rule, nil
}

// RemoveRule deletes a rule and every edge hanging off its handle.
func (b *Builder) RemoveRule(nodeID, ruleID string) bool {
	node := b.flow.NodeByID(nodeID)
	if node == nil || node.Condition == nil {
		return false
	}
	rules := node.Condition.Rules
	for i := range rules {
		if rules[i].ID == ruleID {
			node.Condition.Rules = append(rules[:i], rules[i+1:]...)
			b.removeEdgesWhere(func(e domain.Edge) bool {
				return e.Source == nodeID && e.SourceHandle == ruleID
			})
			return true
		}
	}
	return false
}

// SetOperator changes a gate's operator and input count, clamping the
// count and pruning edges bound to now-invalid input handles.
func (b *Builder) SetOperator(nodeID string, op domain.LogicalOp, inputs int) error {
	node := b.flow.NodeByID(nodeID)
	if node == nil || node.Kind != domain.KindOperator || node.Operator == nil {
		return fmt.Errorf("operator node %q not found", nodeID)
	}
	node.Operator.Operator = op
	node.Operator.Inputs = domain.ClampInputs(op, inputs)

	valid := make(map[string]bool, node.Operator.Inputs)
	for i := 0; i < node.Operator.Inputs; i++ {
		valid[domain.InputHandle(i)] = true
	}
	b.removeEdgesWhere(func(e domain.Edge) bool {
		return e.Target == nodeID && e.TargetHandle != "" && !valid[e.TargetHandle]
	})
	return nil
}

// Connect adds an edge. Handles may be empty for default connections.
func (b *Builder) Connect(source, target, sourceHandle, targetHandle string) domain.Edge {
	edge := domain.Edge{
		ID:           fmt.Sprintf("e_%d", b.stampID()),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
	b.flow.Edges = append(b.flow.Edges, edge)
	return edge
}

// RemoveEdge deletes an edge by ID.
func (b *Builder) RemoveEdge(edgeID string) bool {
	for i, e := range b.flow.Edges {
		if e.ID == edgeID {
			b.flow.Edges = append(b.flow.Edges[:i], b.flow.Edges[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveNode deletes a non-section node and every edge touching it.
// Section nodes are owned by the section list; remove the section and
// resync instead.
func (b *Builder) RemoveNode(nodeID string) bool {
	for i, n := range b.flow.Nodes {
		if n.ID != nodeID {
			continue
		}
		if n.Kind == domain.KindSection {
			return false
		}
		b.flow.Nodes = append(b.flow.Nodes[:i], b.flow.Nodes[i+1:]...)
		b.removeEdgesWhere(func(e domain.Edge) bool {
			return e.Source == nodeID || e.Target == nodeID
		})
		return true
	}
	return false
}

func (b *Builder) removeEdgesWhere(match func(domain.Edge) bool) {
	var edges []domain.Edge
	for _, e := range b.flow.Edges {
		if !match(e) {
			edges = append(edges, e)
		}
	}
	b.flow.Edges = edges
}
