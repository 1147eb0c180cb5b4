package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formflow-go/formflow/pkg/adapters/memory"
	"github.com/formflow-go/formflow/pkg/session"
)

const flowDoc = `{
  "title": "Onboarding",
  "sections": [
    {"id": "sec_1", "title": "Welcome", "fields": [
      {"id": "f_2", "type": "select", "label": "Department", "options": ["Sales", "Engineering"]}
    ]},
    {"id": "sec_2", "title": "Engineering Details", "fields": []},
    {"id": "sec_3", "title": "Sales Targets", "fields": []}
  ],
  "nodes": [
    {"id": "sec_1", "type": "sectionNode", "data": {"label": "Welcome", "fields": []}},
    {"id": "sec_2", "type": "sectionNode", "data": {"label": "Engineering Details", "fields": []}},
    {"id": "sec_3", "type": "sectionNode", "data": {"label": "Sales Targets", "fields": []}},
    {"id": "condition_1", "type": "conditionNode", "data": {"label": "Condition", "rules": [
      {"id": "rule_1", "fieldId": "f_2", "operator": "equals", "value": "Engineering"}
    ]}}
  ],
  "edges": [
    {"id": "e1", "source": "sec_1", "target": "condition_1"},
    {"id": "e2", "source": "condition_1", "target": "sec_2", "sourceHandle": "rule_1"},
    {"id": "e3", "source": "condition_1", "target": "sec_3", "sourceHandle": "else"}
  ]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	manager := session.NewManager(memory.NewFlowStore(), memory.NewSessionStore())
	srv := httptest.NewServer(NewHandler(manager))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if buf.Len() > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	}
	return resp, decoded
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestFlowCRUD(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/flows/onboarding", flowDoc)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/flows/onboarding", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/flows", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["flows"], "onboarding")

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/flows/onboarding", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/flows/onboarding", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaveFlowRejectsMalformedDocument(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/flows/bad",
		`{"sections": [], "nodes": [{"id": "x", "type": "mystery", "data": {}}], "edges": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/flows/onboarding", flowDoc)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Open a preview.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/flows/onboarding/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID, _ := body["session_id"].(string)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "sec_1", body["current_section_id"])
	assert.Equal(t, false, body["terminal"])

	// Answer the department question.
	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/sessions/"+sessionID+"/answers/f_2",
		`{"value": "Engineering"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Advance routes to the engineering section.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+sessionID+"/advance", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sec_2", body["current_section_id"])

	// The session store kept the move.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/sessions/"+sessionID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sec_2", body["current_section_id"])

	// Close and verify it is gone.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/sessions/"+sessionID, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/sessions/"+sessionID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdvanceToTerminalOutcome(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/flows/onboarding", flowDoc)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/flows/onboarding/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID := body["session_id"].(string)

	// No department answer: the else branch goes to sales, which has no
	// outgoing edges.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+sessionID+"/advance", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sec_3", body["current_section_id"])

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+sessionID+"/advance", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["terminal"])
	assert.Equal(t, "End of form (No path)", body["outcome_text"])

	// Writing an answer after termination conflicts.
	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/sessions/"+sessionID+"/answers/f_2",
		`{"value": "late"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGraphExports(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/flows/onboarding", flowDoc)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/flows/onboarding/graph.mmd")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "graph TD")

	resp2, err := http.Get(srv.URL + "/flows/onboarding/graph.dot")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/flows", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
