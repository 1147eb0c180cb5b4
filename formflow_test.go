package formflow_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formflow-go/formflow"
	"github.com/formflow-go/formflow/pkg/adapters/memory"
	"github.com/formflow-go/formflow/pkg/builder"
	"github.com/formflow-go/formflow/pkg/domain"
	"github.com/formflow-go/formflow/pkg/persistence/middleware"
)

func newTestApp(t *testing.T, opts ...formflow.Option) *formflow.App {
	t.Helper()
	opts = append([]formflow.Option{
		formflow.WithFlowStore(memory.NewFlowStore()),
		formflow.WithSessionStore(memory.NewSessionStore()),
		formflow.WithHydrationDelay(0, 0),
	}, opts...)
	app, err := formflow.New(opts...)
	require.NoError(t, err)
	return app
}

func TestAppFlowLifecycle(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.SaveFlow(ctx, "onboarding", builder.Template()))

	ids, err := app.ListFlows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"onboarding"}, ids)

	flow, err := app.LoadFlow(ctx, "onboarding")
	require.NoError(t, err)
	assert.Equal(t, "LogicFlow Builder", flow.Title)

	require.NoError(t, app.DeleteFlow(ctx, "onboarding"))
	_, err = app.LoadFlow(ctx, "onboarding")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestAppSessionWalk(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, app.SaveFlow(ctx, "onboarding", builder.Template()))

	sess, err := app.Open(ctx, "onboarding")
	require.NoError(t, err)
	assert.Equal(t, "sec_1", sess.CurrentSectionID())

	require.NoError(t, sess.SetAnswer("f_1", domain.ScalarValue("Ada")))
	sess.Advance(ctx)
	assert.Equal(t, "sec_2", sess.CurrentSectionID())
	require.NoError(t, app.Save(ctx, sess))

	resumed, err := app.Resume(ctx, sess.ID())
	require.NoError(t, err)
	assert.Equal(t, "sec_2", resumed.CurrentSectionID())
	v, ok := resumed.Answer("f_1")
	require.True(t, ok)
	assert.Equal(t, "Ada", v.Scalar)

	require.NoError(t, app.CloseSession(ctx, sess.ID()))
	_, err = app.Resume(ctx, sess.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestAppImportExportRoundTrip(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	b := builder.From(builder.Template())
	b.SyncSectionNodes()
	require.NoError(t, app.SaveFlow(ctx, "onboarding", b.Flow()))

	doc, err := app.ExportFlow(ctx, "onboarding")
	require.NoError(t, err)
	assert.Contains(t, string(doc), "sectionNode")

	require.NoError(t, app.ImportFlow(ctx, "copy", doc))
	copied, err := app.LoadFlow(ctx, "copy")
	require.NoError(t, err)
	assert.Len(t, copied.Sections, len(builder.Template().Sections))

	err = app.ImportFlow(ctx, "bad", []byte(`{"nodes": [{"id": "x", "type": "mystery"}]}`))
	assert.Error(t, err)
}

func TestAppSessionMiddleware(t *testing.T) {
	backing := memory.NewSessionStore()
	key := bytes.Repeat([]byte{7}, 32)
	app, err := formflow.New(
		formflow.WithFlowStore(memory.NewFlowStore()),
		formflow.WithSessionStore(backing),
		formflow.WithSessionMiddleware(middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})),
		formflow.WithHydrationDelay(0, 0),
	)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, app.SaveFlow(ctx, "onboarding", builder.Template()))

	sess, err := app.Open(ctx, "onboarding")
	require.NoError(t, err)
	require.NoError(t, sess.SetAnswer("f_1", domain.ScalarValue("Ada")))
	require.NoError(t, app.Save(ctx, sess))

	// The raw store only holds the encrypted envelope.
	raw, err := backing.Load(ctx, sess.ID())
	require.NoError(t, err)
	_, ok := raw.Answers.Get("f_1")
	assert.False(t, ok)

	resumed, err := app.Resume(ctx, sess.ID())
	require.NoError(t, err)
	v, ok := resumed.Answer("f_1")
	require.True(t, ok)
	assert.Equal(t, "Ada", v.Scalar)
}

func TestAppPreviewGate(t *testing.T) {
	app := newTestApp(t, formflow.WithHydrationDelay(10*time.Millisecond, 20*time.Millisecond))
	ctx := context.Background()
	require.NoError(t, app.SaveFlow(ctx, "onboarding", builder.Template()))

	preview := app.Preview(ctx, "onboarding")
	if _, err := preview.Session(); err != nil {
		assert.ErrorIs(t, err, domain.ErrNotHydrated)
	}

	sess, err := preview.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sec_1", sess.CurrentSectionID())
}
