package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formflow-go/formflow/pkg/domain"
)

func sampleFlow() *domain.Flow {
	sections := []domain.Section{
		{ID: "sec_1", Title: "Welcome", Fields: []domain.Field{
			{ID: "f_2", Type: domain.FieldSelect, Label: "Department"},
		}},
		{ID: "sec_2", Title: "Engineering Details"},
	}
	return &domain.Flow{
		Sections: sections,
		Nodes: []domain.Node{
			domain.SectionNode(sections[0]),
			domain.SectionNode(sections[1]),
			domain.ConditionNode("condition-1", domain.Rule{
				ID: "rule_1", FieldID: "f_2", Operator: domain.OpEquals, Value: "Engineering",
			}),
			domain.OperatorNode("operator-1", domain.OpAnd, 2),
			domain.ActionNode("action-1", domain.ActionConfig{Type: domain.ActionRedirect, URL: "https://x"}),
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "sec_1", Target: "condition-1"},
			{ID: "e2", Source: "condition-1", Target: "sec_2", SourceHandle: "rule_1"},
			{ID: "e3", Source: "condition-1", Target: "action-1", SourceHandle: domain.HandleElse},
		},
	}
}

func TestMermaidShapesAndLabels(t *testing.T) {
	out := Mermaid(sampleFlow(), nil)

	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, `sec_1["Welcome"]`)
	assert.Contains(t, out, `condition_1{"Condition"}`)
	assert.Contains(t, out, `operator_1(("AND/2"))`)
	assert.Contains(t, out, `action_1[["Redirect: https://x"]]`)
	assert.Contains(t, out, `condition_1 -- "Department equals Engineering" --> sec_2`)
	assert.Contains(t, out, `condition_1 -- "else" --> action_1`)
}

func TestMermaidOverlay(t *testing.T) {
	overlay := &Overlay{
		VisitedSections: []string{"sec_1", "sec_1"},
		CurrentSection:  "sec_2",
	}
	out := Mermaid(sampleFlow(), overlay)

	assert.Equal(t, 1, countOccurrences(out, "class sec_1 visited;"))
	assert.Contains(t, out, "class sec_2 current;")
}

func TestDOT(t *testing.T) {
	out, err := DOT(sampleFlow())
	require.NoError(t, err)

	assert.Contains(t, out, "digraph formflow")
	assert.Contains(t, out, "diamond")
	assert.Contains(t, out, `"condition-1"`)
	assert.Contains(t, out, "->")
	assert.Contains(t, out, "Department equals Engineering")
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}
