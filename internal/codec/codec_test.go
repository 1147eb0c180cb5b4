package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formflow-go/formflow/pkg/domain"
)

const editorJSON = `{
  "title": "Onboarding",
  "sections": [
    {"id": "sec_1", "title": "Welcome", "fields": [
      {"id": "f_2", "type": "select", "label": "Select your department", "options": ["Sales", "Engineering"]}
    ]},
    {"id": "sec_2", "title": "Engineering Details", "fields": []}
  ],
  "nodes": [
    {"id": "sec_1", "type": "sectionNode", "position": {"x": 100, "y": 50},
     "data": {"label": "Welcome", "fields": []}},
    {"id": "condition_1700000000001", "type": "conditionNode", "position": {"x": 400, "y": 100},
     "data": {"label": "Condition", "rules": [
       {"id": "rule_1700000000002", "fieldId": "f_2", "operator": "equals", "value": "Engineering"}
     ]}},
    {"id": "operator_1700000000003", "type": "operatorNode", "position": {"x": 400, "y": 300},
     "data": {"label": "Logical Operator", "operator": "AND", "inputs": 2}},
    {"id": "action_1700000000004", "type": "actionNode", "position": {"x": 700, "y": 100},
     "data": {"label": "Action", "actionConfig": {"type": "redirect", "url": "https://x"}}}
  ],
  "edges": [
    {"id": "e1", "source": "sec_1", "target": "condition_1700000000001"},
    {"id": "e2", "source": "condition_1700000000001", "target": "action_1700000000004",
     "sourceHandle": "rule_1700000000002"}
  ]
}`

func TestDecodeJSONResolvesPayloads(t *testing.T) {
	flow, err := DecodeJSON([]byte(editorJSON))
	require.NoError(t, err)

	assert.Equal(t, "Onboarding", flow.Title)
	require.Len(t, flow.Sections, 2)
	require.Len(t, flow.Nodes, 4)
	require.Len(t, flow.Edges, 2)

	cond := flow.NodeByID("condition_1700000000001")
	require.NotNil(t, cond)
	assert.Equal(t, domain.KindCondition, cond.Kind)
	require.NotNil(t, cond.Condition)
	require.Len(t, cond.Condition.Rules, 1)
	assert.Equal(t, domain.OpEquals, cond.Condition.Rules[0].Operator)
	assert.Equal(t, "f_2", cond.Condition.Rules[0].FieldID)

	op := flow.NodeByID("operator_1700000000003")
	require.NotNil(t, op.Operator)
	assert.Equal(t, domain.OpAnd, op.Operator.Operator)
	assert.Equal(t, 2, op.Operator.Inputs)

	act := flow.NodeByID("action_1700000000004")
	require.NotNil(t, act.Action)
	assert.Equal(t, domain.ActionRedirect, act.Action.Config.Type)
	assert.Equal(t, "https://x", act.Action.Config.URL)

	assert.Equal(t, "rule_1700000000002", flow.Edges[1].SourceHandle)
}

func TestDecodeRejectsUnknownNodeType(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"sections": [], "nodes": [{"id": "n1", "type": "mystery", "data": {}}], "edges": []}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}

func TestDecodeClampsOperatorInputs(t *testing.T) {
	doc := `{"sections": [], "edges": [], "nodes": [
	  {"id": "op1", "type": "operatorNode", "data": {"operator": "NOT", "inputs": 4}}
	]}`
	flow, err := DecodeJSON([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, flow.NodeByID("op1").Operator.Inputs)
}

func TestJSONRoundTrip(t *testing.T) {
	flow, err := DecodeJSON([]byte(editorJSON))
	require.NoError(t, err)

	out, err := EncodeJSON(flow)
	require.NoError(t, err)

	again, err := DecodeJSON(out)
	require.NoError(t, err)
	assert.Equal(t, flow, again)
}

func TestDecodeYAML(t *testing.T) {
	doc := `
title: Onboarding
sections:
  - id: sec_1
    title: Welcome
    fields:
      - id: f_1
        type: text
        label: Name
nodes:
  - id: sec_1
    type: sectionNode
    data:
      label: Welcome
      fields: []
  - id: condition_1
    type: conditionNode
    data:
      label: Condition
      rules:
        - id: rule_1
          fieldId: f_1
          operator: is_not_empty
          value: ""
edges:
  - id: e1
    source: sec_1
    target: condition_1
`
	flow, err := DecodeYAML([]byte(doc))
	require.NoError(t, err)
	require.Len(t, flow.Nodes, 2)
	cond := flow.NodeByID("condition_1")
	require.NotNil(t, cond.Condition)
	assert.Equal(t, domain.OpIsNotEmpty, cond.Condition.Rules[0].Operator)

	out, err := EncodeYAML(flow)
	require.NoError(t, err)
	again, err := DecodeYAML(out)
	require.NoError(t, err)
	assert.Equal(t, flow, again)
}
