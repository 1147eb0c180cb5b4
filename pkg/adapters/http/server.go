// Package http exposes flows and preview sessions over a REST surface.
// Flow documents travel in the editor wire format; session endpoints
// drive the same advance loop the interactive simulator uses.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formflow-go/formflow/internal/codec"
	"github.com/formflow-go/formflow/internal/logging"
	"github.com/formflow-go/formflow/internal/presentation/graph"
	"github.com/formflow-go/formflow/internal/runtime"
	"github.com/formflow-go/formflow/pkg/domain"
	"github.com/formflow-go/formflow/pkg/session"
)

// Server handles the REST surface over a session manager.
type Server struct {
	manager *session.Manager
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler builds the HTTP handler with CORS enabled, so a browser
// editor on another origin can talk to it directly.
func NewHandler(manager *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		manager: manager,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.health)

	r.Route("/flows", func(r chi.Router) {
		r.Get("/", s.listFlows)
		r.Route("/{flowID}", func(r chi.Router) {
			r.Put("/", s.saveFlow)
			r.Get("/", s.getFlow)
			r.Delete("/", s.deleteFlow)
			r.Get("/graph.mmd", s.flowMermaid)
			r.Get("/graph.dot", s.flowDOT)
			r.Post("/sessions", s.openSession)
		})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.closeSession)
			r.Put("/answers/{fieldID}", s.setAnswer)
			r.Post("/advance", s.advance)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// answerRequest carries one field's answer. Values is used for
// multi-select fields, Value for everything else.
type answerRequest struct {
	Value  string   `json:"value"`
	Values []string `json:"values"`
	IsList bool     `json:"is_list"`
}

// sessionView is the session representation every session endpoint
// returns: where the run is, the section to render, and the outcome once
// the run terminates.
type sessionView struct {
	SessionID        string          `json:"session_id"`
	FlowID           string          `json:"flow_id"`
	CurrentSectionID string          `json:"current_section_id,omitempty"`
	Section          *domain.Section `json:"section,omitempty"`
	History          []string        `json:"history"`
	Terminal         bool            `json:"terminal"`
	Outcome          *domain.Outcome `json:"outcome,omitempty"`
	OutcomeText      string          `json:"outcome_text,omitempty"`
}

func viewOf(sess *runtime.Session) sessionView {
	view := sessionView{
		SessionID:        sess.ID(),
		FlowID:           sess.State().FlowID,
		CurrentSectionID: sess.CurrentSectionID(),
		History:          sess.History(),
		Terminal:         sess.IsTerminal(),
		Outcome:          sess.Outcome(),
	}
	if section, ok := sess.CurrentSection(); ok {
		view.Section = &section
	}
	if view.Outcome != nil {
		view.OutcomeText = view.Outcome.String()
	}
	return view
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listFlows(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.Flows().List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, map[string][]string{"flows": ids})
}

func (s *Server) saveFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	flow, err := codec.DecodeJSON(body)
	if err != nil {
		s.logger.Warn("flow document rejected", "flow_id", flowID, "err", err)
		http.Error(w, fmt.Sprintf("invalid flow document: %v", err), http.StatusBadRequest)
		return
	}

	if err := s.manager.Flows().Save(r.Context(), flowID, flow); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"flow_id": flowID})
}

func (s *Server) getFlow(w http.ResponseWriter, r *http.Request) {
	flow, ok := s.loadFlow(w, r)
	if !ok {
		return
	}
	data, err := codec.EncodeJSON(flow)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) deleteFlow(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Flows().Delete(r.Context(), chi.URLParam(r, "flowID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) flowMermaid(w http.ResponseWriter, r *http.Request) {
	flow, ok := s.loadFlow(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.Mermaid(flow, nil)))
}

func (s *Server) flowDOT(w http.ResponseWriter, r *http.Request) {
	flow, ok := s.loadFlow(w, r)
	if !ok {
		return
	}
	out, err := graph.DOT(flow)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(out))
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Open(r.Context(), chi.URLParam(r, "flowID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, viewOf(sess))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Resume(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, viewOf(sess))
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Close(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	fieldID := chi.URLParam(r, "fieldID")

	var body answerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sess, err := s.manager.Resume(r.Context(), sessionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	value := domain.ScalarValue(body.Value)
	if body.IsList || body.Values != nil {
		value = domain.ListValue(body.Values...)
	}
	if err := sess.SetAnswer(fieldID, value); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.manager.Save(r.Context(), sess); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, viewOf(sess))
}

func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Resume(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sess.Advance(r.Context())
	if err := s.manager.Save(r.Context(), sess); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, viewOf(sess))
}

func (s *Server) loadFlow(w http.ResponseWriter, r *http.Request) (*domain.Flow, bool) {
	flow, err := s.manager.Flows().Load(r.Context(), chi.URLParam(r, "flowID"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return flow, true
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// fail maps domain errors onto HTTP statuses: unknown resources are 404,
// writes to a finished run are 409, everything else is a 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrFlowNotFound), errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrSessionTerminated):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
