package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formflow-go/formflow/pkg/domain"
)

func twoSections() []domain.Section {
	return []domain.Section{
		{ID: "sec_1", Title: "First", Fields: []domain.Field{
			{ID: "f1", Type: domain.FieldText, Label: "Answer"},
		}},
		{ID: "sec_2", Title: "Second"},
	}
}

func newSession(t *testing.T, flow *domain.Flow, opts ...EngineOption) *Session {
	t.Helper()
	return Start(NewEngine(opts...), "sess-1", "flow-1", flow)
}

func TestAdvancePositionalFallback(t *testing.T) {
	flow := &domain.Flow{Sections: twoSections()}
	sess := newSession(t, flow)

	require.Equal(t, "sec_1", sess.CurrentSectionID())

	outcome := sess.Advance(context.Background())
	require.Nil(t, outcome)
	assert.Equal(t, "sec_2", sess.CurrentSectionID())

	outcome = sess.Advance(context.Background())
	require.NotNil(t, outcome)
	assert.Equal(t, domain.OutcomeEndOfForm, outcome.Kind)
	assert.Equal(t, domain.ReasonDefault, outcome.Reason)
	assert.True(t, sess.IsTerminal())
	assert.Equal(t, []string{"sec_1", "sec_2"}, sess.History())
}

func TestAdvanceGraphSectionWithoutEdges(t *testing.T) {
	// A section mirrored into the graph but never wired up ends the run
	// instead of falling back to positional order.
	sections := twoSections()
	flow := &domain.Flow{
		Sections: sections,
		Nodes:    []domain.Node{domain.SectionNode(sections[0])},
	}
	sess := newSession(t, flow)

	outcome := sess.Advance(context.Background())
	require.NotNil(t, outcome)
	assert.Equal(t, domain.OutcomeNoPath, outcome.Kind)
	assert.Equal(t, domain.ReasonNoPath, outcome.Reason)
}

func TestAdvanceConditionMatchedHandleMissing(t *testing.T) {
	// The matched rule selects its own handle; a missing edge there is a
	// dead end, it does not fall through to else.
	sections := twoSections()
	flow := &domain.Flow{
		Sections: sections,
		Nodes: []domain.Node{
			domain.SectionNode(sections[0]),
			domain.ConditionNode("cond_1", domain.Rule{
				ID: "r1", FieldID: "f1", Operator: domain.OpEquals, Value: "yes",
			}),
			domain.ActionNode("act_1", domain.ActionConfig{Type: domain.ActionRedirect, URL: "https://x"}),
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "sec_1", Target: "cond_1"},
			{ID: "e2", Source: "cond_1", Target: "act_1", SourceHandle: domain.HandleElse},
		},
	}

	sess := newSession(t, flow)
	require.NoError(t, sess.SetAnswer("f1", domain.ScalarValue("yes")))

	outcome := sess.Advance(context.Background())
	require.NotNil(t, outcome)
	assert.Equal(t, domain.OutcomeDeadEnd, outcome.Kind)
	assert.Equal(t, domain.ReasonNoMatch, outcome.Reason)
}

func TestAdvanceConditionElseToAction(t *testing.T) {
	sections := twoSections()
	flow := &domain.Flow{
		Sections: sections,
		Nodes: []domain.Node{
			domain.SectionNode(sections[0]),
			domain.ConditionNode("cond_1", domain.Rule{
				ID: "r1", FieldID: "f1", Operator: domain.OpEquals, Value: "yes",
			}),
			domain.ActionNode("act_1", domain.ActionConfig{Type: domain.ActionRedirect, URL: "https://x"}),
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "sec_1", Target: "cond_1"},
			{ID: "e2", Source: "cond_1", Target: "act_1", SourceHandle: domain.HandleElse},
		},
	}

	sess := newSession(t, flow)
	require.NoError(t, sess.SetAnswer("f1", domain.ScalarValue("no")))

	outcome := sess.Advance(context.Background())
	require.NotNil(t, outcome)
	require.Equal(t, domain.OutcomeAction, outcome.Kind)
	require.NotNil(t, outcome.Action)
	assert.Equal(t, domain.ActionRedirect, outcome.Action.Type)
	assert.Equal(t, "https://x", outcome.Action.URL)
}

func TestAdvanceConditionFirstMatchWins(t *testing.T) {
	sections := twoSections()
	flow := &domain.Flow{
		Sections: sections,
		Nodes: []domain.Node{
			domain.SectionNode(sections[0]),
			domain.SectionNode(sections[1]),
			domain.ConditionNode("cond_1",
				domain.Rule{ID: "r1", FieldID: "f1", Operator: domain.OpEquals, Value: "a"},
				domain.Rule{ID: "r2", FieldID: "f1", Operator: domain.OpNotEquals, Value: "z"},
			),
			domain.ActionNode("act_1", domain.ActionConfig{Type: domain.ActionWebhook, Message: "second rule"}),
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "sec_1", Target: "cond_1"},
			{ID: "e2", Source: "cond_1", Target: "sec_2", SourceHandle: "r1"},
			{ID: "e3", Source: "cond_1", Target: "act_1", SourceHandle: "r2"},
		},
	}

	sess := newSession(t, flow)
	require.NoError(t, sess.SetAnswer("f1", domain.ScalarValue("a")))

	// Both rules hold for "a"; only the first rule's edge may be taken.
	outcome := sess.Advance(context.Background())
	require.Nil(t, outcome)
	assert.Equal(t, "sec_2", sess.CurrentSectionID())
}

func TestAdvanceSectionFirstEdgeWins(t *testing.T) {
	sections := twoSections()
	flow := &domain.Flow{
		Sections: sections,
		Nodes: []domain.Node{
			domain.SectionNode(sections[0]),
			domain.SectionNode(sections[1]),
			domain.ActionNode("act_1", domain.ActionConfig{Type: domain.ActionRedirect, URL: "https://late"}),
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "sec_1", Target: "sec_2"},
			{ID: "e2", Source: "sec_1", Target: "act_1"},
		},
	}

	sess := newSession(t, flow)
	outcome := sess.Advance(context.Background())
	require.Nil(t, outcome)
	assert.Equal(t, "sec_2", sess.CurrentSectionID())
}

func TestAdvanceDanglingEdgeTarget(t *testing.T) {
	sections := twoSections()
	flow := &domain.Flow{
		Sections: sections,
		Nodes:    []domain.Node{domain.SectionNode(sections[0])},
		Edges:    []domain.Edge{{ID: "e1", Source: "sec_1", Target: "ghost"}},
	}

	sess := newSession(t, flow)
	outcome := sess.Advance(context.Background())
	require.NotNil(t, outcome)
	assert.Equal(t, domain.OutcomeDeadEnd, outcome.Kind)
	assert.Equal(t, domain.ReasonDeadEnd, outcome.Reason)
}

func TestAdvanceCheckboxRouting(t *testing.T) {
	sections := twoSections()
	flow := &domain.Flow{
		Sections: sections,
		Nodes: []domain.Node{
			domain.SectionNode(sections[0]),
			domain.SectionNode(sections[1]),
			domain.ConditionNode("cond_1", domain.Rule{
				ID: "r1", FieldID: "f2", Operator: domain.OpContains, Value: "a",
			}),
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "sec_1", Target: "cond_1"},
			{ID: "e2", Source: "cond_1", Target: "sec_2", SourceHandle: "r1"},
		},
	}

	sess := newSession(t, flow)
	require.NoError(t, sess.SetAnswer("f2", domain.ListValue("a", "b")))

	outcome := sess.Advance(context.Background())
	require.Nil(t, outcome)
	assert.Equal(t, "sec_2", sess.CurrentSectionID())
}

func TestAdvanceOperatorGate(t *testing.T) {
	sections := twoSections()
	base := func() *domain.Flow {
		return &domain.Flow{
			Sections: sections,
			Nodes: []domain.Node{
				domain.SectionNode(sections[0]),
				domain.SectionNode(sections[1]),
				domain.OperatorNode("op_1", domain.OpAnd, 2),
				domain.ConditionNode("cond_a", domain.Rule{ID: "ra", FieldID: "f1", Operator: domain.OpEquals, Value: "x"}),
				domain.ConditionNode("cond_b", domain.Rule{ID: "rb", FieldID: "f2", Operator: domain.OpEquals, Value: "y"}),
				domain.ActionNode("act_else", domain.ActionConfig{Type: domain.ActionWebhook, Message: "denied"}),
			},
			Edges: []domain.Edge{
				{ID: "e1", Source: "sec_1", Target: "op_1"},
				{ID: "e2", Source: "cond_a", Target: "op_1", TargetHandle: domain.InputHandle(0)},
				{ID: "e3", Source: "cond_b", Target: "op_1", TargetHandle: domain.InputHandle(1)},
				{ID: "e4", Source: "op_1", Target: "sec_2"},
				{ID: "e5", Source: "op_1", Target: "act_else", SourceHandle: domain.HandleElse},
			},
		}
	}

	t.Run("all inputs true follows output edge", func(t *testing.T) {
		sess := newSession(t, base())
		require.NoError(t, sess.SetAnswer("f1", domain.ScalarValue("x")))
		require.NoError(t, sess.SetAnswer("f2", domain.ScalarValue("y")))

		outcome := sess.Advance(context.Background())
		require.Nil(t, outcome)
		assert.Equal(t, "sec_2", sess.CurrentSectionID())
	})

	t.Run("one input false takes else edge", func(t *testing.T) {
		sess := newSession(t, base())
		require.NoError(t, sess.SetAnswer("f1", domain.ScalarValue("x")))

		outcome := sess.Advance(context.Background())
		require.NotNil(t, outcome)
		require.Equal(t, domain.OutcomeAction, outcome.Kind)
		assert.Equal(t, "denied", outcome.Action.Message)
	})

	t.Run("false without else edge dead-ends", func(t *testing.T) {
		flow := base()
		flow.Edges = flow.Edges[:4]
		sess := newSession(t, flow)

		outcome := sess.Advance(context.Background())
		require.NotNil(t, outcome)
		assert.Equal(t, domain.OutcomeDeadEnd, outcome.Kind)
		assert.Equal(t, domain.ReasonNoMatch, outcome.Reason)
	})
}

func TestAdvanceNestedOperator(t *testing.T) {
	sections := twoSections()
	flow := &domain.Flow{
		Sections: sections,
		Nodes: []domain.Node{
			domain.SectionNode(sections[0]),
			domain.SectionNode(sections[1]),
			domain.OperatorNode("op_not", domain.OpNot, 1),
			domain.OperatorNode("op_or", domain.OpOr, 2),
			domain.ConditionNode("cond_a", domain.Rule{ID: "ra", FieldID: "f1", Operator: domain.OpEquals, Value: "x"}),
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "sec_1", Target: "op_not"},
			{ID: "e2", Source: "op_or", Target: "op_not", TargetHandle: domain.InputHandle(0)},
			{ID: "e3", Source: "cond_a", Target: "op_or", TargetHandle: domain.InputHandle(0)},
			// op_or input_1 is unwired and resolves to false.
			{ID: "e4", Source: "op_not", Target: "sec_2"},
		},
	}

	// f1 unanswered: cond_a false, OR(false,false)=false, NOT(false)=true.
	sess := newSession(t, flow)
	outcome := sess.Advance(context.Background())
	require.Nil(t, outcome)
	assert.Equal(t, "sec_2", sess.CurrentSectionID())
}

func TestAdvanceCycleProtection(t *testing.T) {
	sections := twoSections()
	flow := &domain.Flow{
		Sections: sections,
		Nodes: []domain.Node{
			domain.SectionNode(sections[0]),
			domain.ConditionNode("cond_1", domain.Rule{
				ID: "r1", FieldID: "f1", Operator: domain.OpIsNotEmpty,
			}),
			domain.ConditionNode("cond_2", domain.Rule{
				ID: "r2", FieldID: "f1", Operator: domain.OpIsNotEmpty,
			}),
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "sec_1", Target: "cond_1"},
			{ID: "e2", Source: "cond_1", Target: "cond_2", SourceHandle: "r1"},
			{ID: "e3", Source: "cond_2", Target: "cond_1", SourceHandle: "r2"},
		},
	}

	sess := newSession(t, flow)
	require.NoError(t, sess.SetAnswer("f1", domain.ScalarValue("anything")))

	outcome := sess.Advance(context.Background())
	require.NotNil(t, outcome)
	assert.Equal(t, domain.OutcomeDeadEnd, outcome.Kind)
	assert.Equal(t, domain.ReasonCycleBound, outcome.Reason)
}

func TestAdvanceTerminalIdempotent(t *testing.T) {
	flow := &domain.Flow{Sections: []domain.Section{{ID: "sec_1", Title: "Only"}}}
	sess := newSession(t, flow)

	first := sess.Advance(context.Background())
	require.NotNil(t, first)
	again := sess.Advance(context.Background())
	assert.Equal(t, first, again)

	err := sess.SetAnswer("f1", domain.ScalarValue("late"))
	assert.ErrorIs(t, err, domain.ErrSessionTerminated)
}

func TestAdvanceEmptyFlow(t *testing.T) {
	sess := newSession(t, &domain.Flow{})
	outcome := sess.Advance(context.Background())
	require.NotNil(t, outcome)
	assert.Equal(t, domain.OutcomeEndOfForm, outcome.Kind)
}

func TestLifecycleHooks(t *testing.T) {
	sections := twoSections()
	flow := &domain.Flow{
		Sections: sections,
		Nodes: []domain.Node{
			domain.SectionNode(sections[0]),
			domain.SectionNode(sections[1]),
			domain.ConditionNode("cond_1", domain.Rule{
				ID: "r1", FieldID: "f1", Operator: domain.OpEquals, Value: "go",
			}),
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "sec_1", Target: "cond_1"},
			{ID: "e2", Source: "cond_1", Target: "sec_2", SourceHandle: "r1"},
		},
	}

	var sectionsEntered []string
	var rulesEvaluated int
	var outcomes int
	hooks := domain.LifecycleHooks{
		OnSectionEnter: func(_ context.Context, ev *domain.SectionEvent) {
			sectionsEntered = append(sectionsEntered, ev.SectionID)
		},
		OnRuleEvaluated: func(_ context.Context, ev *domain.RuleEvent) {
			rulesEvaluated++
			assert.Equal(t, "cond_1", ev.NodeID)
			assert.Equal(t, "r1", ev.RuleID)
		},
		OnOutcome: func(_ context.Context, ev *domain.OutcomeEvent) {
			outcomes++
		},
	}

	sess := newSession(t, flow, WithLifecycleHooks(hooks))
	require.NoError(t, sess.SetAnswer("f1", domain.ScalarValue("go")))

	require.Nil(t, sess.Advance(context.Background()))
	final := sess.Advance(context.Background())
	require.NotNil(t, final)

	assert.Equal(t, []string{"sec_2"}, sectionsEntered)
	assert.Equal(t, 1, rulesEvaluated)
	assert.Equal(t, 1, outcomes)
}
