package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formflow-go/formflow/pkg/domain"
)

func validFlow() *domain.Flow {
	sections := []domain.Section{
		{ID: "sec_1", Title: "First", Fields: []domain.Field{
			{ID: "f_1", Type: domain.FieldSelect, Label: "Team", Options: []string{"Sales", "Eng"}},
		}},
		{ID: "sec_2", Title: "Second"},
	}
	return &domain.Flow{
		Sections: sections,
		Nodes: []domain.Node{
			domain.SectionNode(sections[0]),
			domain.SectionNode(sections[1]),
			domain.ConditionNode("cond_1", domain.Rule{ID: "rule_1", FieldID: "f_1", Operator: domain.OpEquals, Value: "Eng"}),
		},
		Edges: []domain.Edge{
			{ID: "e_1", Source: "sec_1", Target: "cond_1"},
			{ID: "e_2", Source: "cond_1", Target: "sec_2", SourceHandle: "rule_1"},
		},
	}
}

func TestValidateFlowClean(t *testing.T) {
	assert.NoError(t, ValidateFlow(validFlow()))
}

func TestDanglingEdgeTarget(t *testing.T) {
	flow := validFlow()
	flow.Edges = append(flow.Edges, domain.Edge{ID: "e_3", Source: "sec_2", Target: "ghost"})

	err := ValidateFlow(flow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targets unknown node 'ghost'")
}

func TestStaleRuleHandle(t *testing.T) {
	flow := validFlow()
	flow.Edges[1].SourceHandle = "rule_gone"

	issues := Issues(flow)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0], "no such rule")
}

func TestRuleUnknownField(t *testing.T) {
	flow := validFlow()
	flow.Nodes[2].Condition.Rules[0].FieldID = "f_missing"

	err := ValidateFlow(flow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field 'f_missing'")
}

func TestOperatorInputArity(t *testing.T) {
	flow := validFlow()
	flow.Nodes = append(flow.Nodes, domain.OperatorNode("op_1", domain.OpNot, 1))
	flow.Edges = append(flow.Edges,
		domain.Edge{ID: "e_3", Source: "cond_1", Target: "op_1", SourceHandle: "else", TargetHandle: "input_0"},
		domain.Edge{ID: "e_4", Source: "cond_1", Target: "op_1", SourceHandle: "else", TargetHandle: "input_3"},
		domain.Edge{ID: "e_5", Source: "op_1", Target: "sec_2"},
	)

	issues := Issues(flow)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "only declares 1 inputs")
}

func TestUnreachableNode(t *testing.T) {
	flow := validFlow()
	flow.Nodes = append(flow.Nodes, domain.ActionNode("act_1", domain.ActionConfig{Type: domain.ActionRedirect, URL: "https://example.com"}))

	err := ValidateFlow(flow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node 'act_1' is unreachable")
}
