package ports

import (
	"context"
	"testing"
	"time"

	"github.com/formflow-go/formflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunFlowStoreContract runs a suite of tests verifying that a FlowStore
// implementation adheres to the interface contract.
func RunFlowStoreContract(t *testing.T, store FlowStore) {
	ctx := context.Background()
	flowID := "contract-flow-" + time.Now().Format("20060102150405")

	flow := &domain.Flow{
		Title: "Contract",
		Sections: []domain.Section{
			{ID: "sec_1", Title: "First", Fields: []domain.Field{
				{ID: "f_1", Type: domain.FieldText, Label: "Name", Required: true},
			}},
			{ID: "sec_2", Title: "Second"},
		},
		Nodes: []domain.Node{
			domain.SectionNode(domain.Section{ID: "sec_1", Title: "First"}),
			domain.ConditionNode("condition_1", domain.Rule{
				ID: "rule_1", FieldID: "f_1", Operator: domain.OpEquals, Value: "yes",
			}),
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "sec_1", Target: "condition_1"},
			{ID: "e2", Source: "condition_1", Target: "sec_2", SourceHandle: "rule_1"},
		},
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, flowID, flow))

		loaded, err := store.Load(ctx, flowID)
		require.NoError(t, err)
		assert.Equal(t, flow.Title, loaded.Title)
		require.Len(t, loaded.Sections, 2)
		assert.Equal(t, "sec_1", loaded.Sections[0].ID)
		require.Len(t, loaded.Edges, 2)
		// Edge order must survive the round trip: traversal depends on it.
		assert.Equal(t, "e1", loaded.Edges[0].ID)
		assert.Equal(t, "rule_1", loaded.Edges[1].SourceHandle)
		cond := loaded.NodeByID("condition_1")
		require.NotNil(t, cond)
		require.NotNil(t, cond.Condition)
		assert.Equal(t, domain.OpEquals, cond.Condition.Rules[0].Operator)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+flowID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, flowID, flow))
		require.NoError(t, store.Delete(ctx, flowID))

		_, err := store.Load(ctx, flowID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := flowID + "-1"
		id2 := flowID + "-2"
		_ = store.Save(ctx, id1, flow)
		_ = store.Save(ctx, id2, flow)
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		flows, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, flows, id1)
		assert.Contains(t, flows, id2)
	})
}

// RunSessionStoreContract runs a suite of tests verifying that a
// SessionStore implementation adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, "flow-1", "sec_1")
		state.Answers.Set("f_1", domain.ScalarValue("yes"))
		state.Answers.Set("f_2", domain.ListValue("a", "b"))

		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "sec_1", loaded.CurrentSectionID)
		v, ok := loaded.Answers.Get("f_1")
		require.True(t, ok)
		assert.Equal(t, "yes", v.Scalar)
		v, ok = loaded.Answers.Get("f_2")
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, v.List)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Terminal Outcome Survives", func(t *testing.T) {
		state := domain.NewState(sessionID, "flow-1", "sec_1")
		out := domain.ActionOutcome(domain.ActionConfig{Type: domain.ActionRedirect, URL: "https://x"})
		state.Outcome = &out

		require.NoError(t, store.Save(ctx, sessionID, state))
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		require.NotNil(t, loaded.Outcome)
		assert.Equal(t, domain.OutcomeAction, loaded.Outcome.Kind)
		require.NotNil(t, loaded.Outcome.Action)
		assert.Equal(t, "https://x", loaded.Outcome.Action.URL)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewState(sessionID, "flow-1", "sec_1")))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, "flow-1", "sec_1"))
		_ = store.Save(ctx, id2, domain.NewState(id2, "flow-1", "sec_1"))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
