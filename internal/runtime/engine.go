// Package runtime implements the traversal engine: the state machine that
// walks a flow's logic graph one advance at a time, cascading through
// condition, operator and action nodes until a section or terminal
// outcome is reached.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/formflow-go/formflow/internal/logging"
	"github.com/formflow-go/formflow/pkg/domain"
	"github.com/formflow-go/formflow/pkg/logic"
)

// defaultCascadeLimit bounds node resolutions per advance. The graph is
// user-authored and may contain cycles among condition/operator nodes;
// the bound guarantees every advance terminates.
const defaultCascadeLimit = 256

// Engine executes advance steps over a flow. It is stateless: all run
// state lives in the domain.State it is handed, so one engine can serve
// any number of sessions.
type Engine struct {
	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	cascadeLimit int
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger for traversal events.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithCascadeLimit overrides the per-advance node resolution bound.
func WithCascadeLimit(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.cascadeLimit = n
		}
	}
}

// NewEngine creates an engine with the given options.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:       logging.NewNop(),
		cascadeLimit: defaultCascadeLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Advance performs one user-visible "next" step: it leaves the current
// section and resolves nodes synchronously until the run lands on another
// section (returns nil) or reaches a terminal outcome (returned, and
// recorded on the state).
//
// Advance never returns an error. Dangling edges, orphan handles and
// other malformed-graph situations degrade to a terminal outcome; a
// running form session cannot crash on user-authored logic.
//
// Calling Advance on an already-terminal state returns the recorded
// outcome unchanged.
func (e *Engine) Advance(ctx context.Context, flow *domain.Flow, st *domain.State) *domain.Outcome {
	if st.Outcome != nil {
		return st.Outcome
	}

	current := st.CurrentSectionID
	e.logger.Debug("advance", "session_id", st.SessionID, "section", current)

	node := flow.NodeByID(current)
	if node == nil {
		// Section not mirrored into the graph: fall back to positional
		// order.
		idx := flow.SectionIndex(current)
		if idx >= 0 && idx+1 < len(flow.Sections) {
			e.enterSection(ctx, st, flow.Sections[idx+1].ID)
			return nil
		}
		return e.finish(ctx, st, domain.EndOfForm(domain.ReasonDefault))
	}

	edges := flow.EdgesFrom(current)
	if len(edges) == 0 {
		return e.finish(ctx, st, domain.NoOutgoingPath(domain.ReasonNoPath))
	}

	// First stored edge wins when a section has several; the stored
	// order is the only disambiguation.
	target := flow.NodeByID(edges[0].Target)
	if target == nil {
		return e.finish(ctx, st, domain.DeadEnd(domain.ReasonDeadEnd))
	}

	return e.cascade(ctx, flow, st, target, 0)
}

// cascade resolves a non-user-visible chain of nodes triggered by one
// advance. Condition, operator and action nodes are processed
// synchronously; the chain ends on a section node or a terminal outcome.
func (e *Engine) cascade(ctx context.Context, flow *domain.Flow, st *domain.State, node *domain.Node, depth int) *domain.Outcome {
	if depth >= e.cascadeLimit {
		e.logger.Warn("cascade limit reached", "session_id", st.SessionID, "node", node.ID)
		return e.finish(ctx, st, domain.DeadEnd(domain.ReasonCycleBound))
	}

	switch node.Kind {
	case domain.KindSection:
		e.enterSection(ctx, st, node.ID)
		return nil

	case domain.KindAction:
		cfg := domain.ActionConfig{}
		if node.Action != nil {
			cfg = node.Action.Config
		}
		return e.finish(ctx, st, domain.ActionOutcome(cfg))

	case domain.KindCondition:
		return e.cascadeCondition(ctx, flow, st, node, depth)

	case domain.KindOperator:
		return e.cascadeOperator(ctx, flow, st, node, depth)

	default:
		// Unknown node kind in stored data: treat like a missing target.
		return e.finish(ctx, st, domain.DeadEnd(domain.ReasonDeadEnd))
	}
}

// cascadeCondition evaluates a condition node's rules in stored order,
// first match wins, and follows the edge on the matched rule's handle.
// With no match the reserved "else" handle is taken. A missing edge on
// the chosen handle is a dead end, not a further fallback.
func (e *Engine) cascadeCondition(ctx context.Context, flow *domain.Flow, st *domain.State, node *domain.Node, depth int) *domain.Outcome {
	handle := domain.HandleElse
	if node.Condition != nil {
		for _, rule := range node.Condition.Rules {
			ok := logic.Evaluate(rule, st.Answers)
			e.emitRuleEvaluated(ctx, st, node.ID, rule, ok)
			if ok {
				handle = rule.ID
				break
			}
		}
	}

	edge, ok := flow.EdgeFromHandle(node.ID, handle)
	if !ok {
		return e.finish(ctx, st, domain.DeadEnd(domain.ReasonNoMatch))
	}

	target := flow.NodeByID(edge.Target)
	if target == nil {
		return e.finish(ctx, st, domain.DeadEnd(domain.ReasonDeadEnd))
	}
	return e.cascade(ctx, flow, st, target, depth+1)
}

// cascadeOperator resolves a boolean gate: each declared input handle is
// fed by the boolean result of the subgraph wired into it, the results
// are composed, and on true the gate's default output edge is followed.
// On false an explicit "else" edge is taken when present; otherwise the
// gate behaves like an unmatched condition.
func (e *Engine) cascadeOperator(ctx context.Context, flow *domain.Flow, st *domain.State, node *domain.Node, depth int) *domain.Outcome {
	op := domain.OpAnd
	inputCount := 0
	if node.Operator != nil {
		op = node.Operator.Operator
		inputCount = node.Operator.Inputs
	}

	inputs := e.resolveInputs(flow, st, node, inputCount, depth)
	result := logic.Compose(op, inputs)
	e.logger.Debug("operator gate", "node", node.ID, "operator", string(op), "result", result)

	var (
		edge domain.Edge
		ok   bool
	)
	if result {
		edge, ok = e.outputEdge(flow, node.ID)
	} else {
		edge, ok = flow.EdgeFromHandle(node.ID, domain.HandleElse)
	}
	if !ok {
		return e.finish(ctx, st, domain.DeadEnd(domain.ReasonNoMatch))
	}

	target := flow.NodeByID(edge.Target)
	if target == nil {
		return e.finish(ctx, st, domain.DeadEnd(domain.ReasonDeadEnd))
	}
	return e.cascade(ctx, flow, st, target, depth+1)
}

// resolveInputs collects one boolean per declared input handle. An input
// with no incoming edge, or fed by a node that does not produce a
// boolean, resolves to false.
func (e *Engine) resolveInputs(flow *domain.Flow, st *domain.State, node *domain.Node, count int, depth int) []bool {
	incoming := flow.EdgesInto(node.ID)
	results := make([]bool, 0, count)

	for i := 0; i < count; i++ {
		handle := domain.InputHandle(i)
		value := false
		for _, edge := range incoming {
			if edge.TargetHandle != handle {
				continue
			}
			if src := flow.NodeByID(edge.Source); src != nil {
				value = e.resolveBoolean(flow, st, src, depth+1)
			}
			break
		}
		results = append(results, value)
	}
	return results
}

// resolveBoolean reduces a feeding node to a boolean: condition nodes are
// true when any rule matches, nested operators compose recursively, and
// every other kind yields false.
func (e *Engine) resolveBoolean(flow *domain.Flow, st *domain.State, node *domain.Node, depth int) bool {
	if depth >= e.cascadeLimit {
		return false
	}

	switch node.Kind {
	case domain.KindCondition:
		if node.Condition == nil {
			return false
		}
		for _, rule := range node.Condition.Rules {
			if logic.Evaluate(rule, st.Answers) {
				return true
			}
		}
		return false

	case domain.KindOperator:
		op := domain.OpAnd
		inputCount := 0
		if node.Operator != nil {
			op = node.Operator.Operator
			inputCount = node.Operator.Inputs
		}
		return logic.Compose(op, e.resolveInputs(flow, st, node, inputCount, depth))

	default:
		return false
	}
}

// outputEdge finds the gate's single pass-through edge: the first stored
// edge leaving the node on the default (unnamed) handle.
func (e *Engine) outputEdge(flow *domain.Flow, nodeID string) (domain.Edge, bool) {
	for _, edge := range flow.EdgesFrom(nodeID) {
		if edge.SourceHandle == "" {
			return edge, true
		}
	}
	return domain.Edge{}, false
}

func (e *Engine) enterSection(ctx context.Context, st *domain.State, sectionID string) {
	st.CurrentSectionID = sectionID
	st.History = append(st.History, sectionID)
	e.logger.Debug("section enter", "session_id", st.SessionID, "section", sectionID)

	if e.hooks.OnSectionEnter != nil {
		e.hooks.OnSectionEnter(ctx, &domain.SectionEvent{
			EventBase: eventBase(domain.EventSectionEnter, st.SessionID),
			SectionID: sectionID,
		})
	}
}

func (e *Engine) finish(ctx context.Context, st *domain.State, outcome domain.Outcome) *domain.Outcome {
	st.Outcome = &outcome
	e.logger.Info("run finished",
		"session_id", st.SessionID,
		"kind", string(outcome.Kind),
		"reason", outcome.Reason,
	)

	if e.hooks.OnOutcome != nil {
		e.hooks.OnOutcome(ctx, &domain.OutcomeEvent{
			EventBase: eventBase(domain.EventOutcome, st.SessionID),
			Outcome:   outcome,
		})
	}
	return st.Outcome
}

func (e *Engine) emitRuleEvaluated(ctx context.Context, st *domain.State, nodeID string, rule domain.Rule, result bool) {
	if e.hooks.OnRuleEvaluated == nil {
		return
	}
	e.hooks.OnRuleEvaluated(ctx, &domain.RuleEvent{
		EventBase: eventBase(domain.EventRuleEvaluated, st.SessionID),
		NodeID:    nodeID,
		RuleID:    rule.ID,
		FieldID:   rule.FieldID,
		Result:    result,
	})
}

func eventBase(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		SessionID: sessionID,
	}
}
