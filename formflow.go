package formflow

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/formflow-go/formflow/internal/codec"
	"github.com/formflow-go/formflow/internal/runtime"
	"github.com/formflow-go/formflow/pkg/adapters/file"
	"github.com/formflow-go/formflow/pkg/domain"
	"github.com/formflow-go/formflow/pkg/persistence/middleware"
	"github.com/formflow-go/formflow/pkg/ports"
	"github.com/formflow-go/formflow/pkg/session"
)

// Version is the release tag reported by the CLI and the MCP server.
const Version = "0.2.0"

// App is the high-level entry point for the FormFlow library. It wires
// the traversal engine, the flow and session stores, and the preview
// session manager behind one simplified API.
type App struct {
	manager  *session.Manager
	flows    ports.FlowStore
	sessions ports.SessionStore

	basePath    string
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	locker      ports.DistributedLocker
	middlewares []middleware.Middleware
	engineOpts  []runtime.EngineOption
	managerOpts []session.Option
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithBasePath sets the directory for the default file-backed stores.
// Ignored when custom stores are injected.
func WithBasePath(dir string) Option {
	return func(a *App) {
		a.basePath = dir
	}
}

// WithFlowStore injects a custom flow store, bypassing the default
// file-backed one.
func WithFlowStore(store ports.FlowStore) Option {
	return func(a *App) {
		a.flows = store
	}
}

// WithSessionStore injects a custom session store.
func WithSessionStore(store ports.SessionStore) Option {
	return func(a *App) {
		a.sessions = store
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks fired during
// traversal.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *App) {
		a.hooks = hooks
	}
}

// WithLocker enables cross-process session locking, typically backed by
// redis.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(a *App) {
		a.locker = locker
	}
}

// WithSessionMiddleware wraps the session store with persistence
// middleware (encryption, PII masking), applied in the given order.
func WithSessionMiddleware(mws ...middleware.Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mws...)
	}
}

// WithHydrationDelay bounds the simulated preview hydration latency.
func WithHydrationDelay(min, max time.Duration) Option {
	return func(a *App) {
		a.managerOpts = append(a.managerOpts, session.WithHydrationDelay(min, max))
	}
}

// WithCascadeLimit overrides the logic-graph cycle bound.
func WithCascadeLimit(n int) Option {
	return func(a *App) {
		a.engineOpts = append(a.engineOpts, runtime.WithCascadeLimit(n))
	}
}

// New initializes a FormFlow App. By default flows and sessions persist
// as JSON documents under the base path.
func New(opts ...Option) (*App, error) {
	app := &App{basePath: file.DefaultBasePath}
	for _, opt := range opts {
		opt(app)
	}

	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if app.flows == nil {
		app.flows = file.NewFlowStore(app.basePath)
	}
	if app.sessions == nil {
		app.sessions = file.NewSessionStore(app.basePath)
	}
	// The first listed middleware is outermost, so it sees Save first.
	for i := len(app.middlewares) - 1; i >= 0; i-- {
		app.sessions = app.middlewares[i](app.sessions)
	}

	engineOpts := append([]runtime.EngineOption{
		runtime.WithLogger(app.logger),
		runtime.WithLifecycleHooks(app.hooks),
	}, app.engineOpts...)

	managerOpts := append([]session.Option{
		session.WithLogger(app.logger),
		session.WithEngine(runtime.NewEngine(engineOpts...)),
	}, app.managerOpts...)
	if app.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(app.locker))
	}

	app.manager = session.NewManager(app.flows, app.sessions, managerOpts...)
	return app, nil
}

// SaveFlow persists a flow definition under the given ID.
func (a *App) SaveFlow(ctx context.Context, id string, flow *domain.Flow) error {
	return a.flows.Save(ctx, id, flow)
}

// LoadFlow retrieves a stored flow definition.
func (a *App) LoadFlow(ctx context.Context, id string) (*domain.Flow, error) {
	return a.flows.Load(ctx, id)
}

// DeleteFlow removes a stored flow definition.
func (a *App) DeleteFlow(ctx context.Context, id string) error {
	return a.flows.Delete(ctx, id)
}

// ListFlows returns the IDs of all stored flows.
func (a *App) ListFlows(ctx context.Context) ([]string, error) {
	return a.flows.List(ctx)
}

// ImportFlow decodes an editor JSON document and persists it.
func (a *App) ImportFlow(ctx context.Context, id string, doc []byte) error {
	flow, err := codec.DecodeJSON(doc)
	if err != nil {
		return err
	}
	return a.flows.Save(ctx, id, flow)
}

// ExportFlow renders a stored flow as an editor JSON document.
func (a *App) ExportFlow(ctx context.Context, id string) ([]byte, error) {
	flow, err := a.flows.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return codec.EncodeJSON(flow)
}

// Open starts a new preview session over a flow, blocking through the
// hydration delay.
func (a *App) Open(ctx context.Context, flowID string) (*runtime.Session, error) {
	return a.manager.Open(ctx, flowID)
}

// Preview starts a session asynchronously; the returned handle gates
// access until hydration completes.
func (a *App) Preview(ctx context.Context, flowID string) *session.Preview {
	return a.manager.Preview(ctx, flowID)
}

// Resume reloads a persisted session.
func (a *App) Resume(ctx context.Context, sessionID string) (*runtime.Session, error) {
	return a.manager.Resume(ctx, sessionID)
}

// Save persists a session's current state.
func (a *App) Save(ctx context.Context, sess *runtime.Session) error {
	return a.manager.Save(ctx, sess)
}

// CloseSession discards a persisted session.
func (a *App) CloseSession(ctx context.Context, sessionID string) error {
	return a.manager.Close(ctx, sessionID)
}

// ListSessions returns the IDs of all persisted sessions.
func (a *App) ListSessions(ctx context.Context) ([]string, error) {
	return a.manager.List(ctx)
}

// Manager exposes the underlying session manager for adapters that need
// the full surface (HTTP, MCP).
func (a *App) Manager() *session.Manager {
	return a.manager
}
