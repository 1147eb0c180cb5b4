// Package mcp exposes flows and the preview simulator as an MCP server,
// so agents can inspect a logic graph and walk a form the way a
// respondent would.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/formflow-go/formflow/internal/codec"
	"github.com/formflow-go/formflow/internal/presentation/graph"
	"github.com/formflow-go/formflow/internal/runtime"
	"github.com/formflow-go/formflow/pkg/domain"
	"github.com/formflow-go/formflow/pkg/session"
)

// PreviewResponse is the unified session snapshot returned by every
// simulator tool.
type PreviewResponse struct {
	SessionID        string          `json:"session_id" jsonschema_description:"The preview session ID"`
	CurrentSectionID string          `json:"current_section_id,omitempty" jsonschema_description:"The section currently shown"`
	Section          *domain.Section `json:"section,omitempty" jsonschema_description:"The full section to render"`
	History          []string        `json:"history" jsonschema_description:"Visited section IDs in order"`
	Terminal         bool            `json:"terminal" jsonschema_description:"Whether the run has finished"`
	Outcome          *domain.Outcome `json:"outcome,omitempty" jsonschema_description:"The terminal outcome, if any"`
	OutcomeText      string          `json:"outcome_text,omitempty" jsonschema_description:"Human-readable outcome"`
}

// Server wraps a session manager and exposes it over MCP.
type Server struct {
	manager   *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server instance.
func NewServer(manager *session.Manager, version string) *Server {
	s := &Server{
		manager:   manager,
		mcpServer: server.NewMCPServer("formflow-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts down
// gracefully when the context is canceled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))
	httpServer := &http.Server{Addr: addr, Handler: sseServer}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get a flow's full definition (sections, nodes, edges) in the editor document format."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("The flow to inspect")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flowID := request.GetString("flow_id", "")
		flow, err := s.manager.Flows().Load(ctx, flowID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		data, err := codec.EncodeJSON(flow)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})

	// TOOL: render_graph
	s.mcpServer.AddTool(mcp.NewTool("render_graph",
		mcp.WithDescription("Render a flow's logic graph as a diagram (mermaid or dot)."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("The flow to render")),
		mcp.WithString("format", mcp.Description("Diagram format: mermaid (default) or dot")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flow, err := s.manager.Flows().Load(ctx, request.GetString("flow_id", ""))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		switch request.GetString("format", "mermaid") {
		case "dot":
			out, err := graph.DOT(flow)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
			}
			return mcp.NewToolResultText(out), nil
		default:
			return mcp.NewToolResultText(graph.Mermaid(flow, nil)), nil
		}
	})

	// TOOL: start_preview
	startTool := mcp.NewTool("start_preview",
		mcp.WithDescription("Start a preview session over a flow, positioned at its first section."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("The flow to simulate")),
		mcp.WithOutputSchema[PreviewResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStartPreview))

	// TOOL: set_answer
	answerTool := mcp.NewTool("set_answer",
		mcp.WithDescription("Record an answer for a field in a preview session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The preview session ID")),
		mcp.WithString("field_id", mcp.Required(), mcp.Description("The field being answered")),
		mcp.WithString("value", mcp.Description("Scalar answer value")),
		mcp.WithString("values", mcp.Description("JSON array of values for multi-select fields")),
		mcp.WithOutputSchema[PreviewResponse](),
	)
	s.mcpServer.AddTool(answerTool, mcp.NewStructuredToolHandler(s.handleSetAnswer))

	// TOOL: advance
	advanceTool := mcp.NewTool("advance",
		mcp.WithDescription("Perform one 'next' step: leave the current section and resolve the logic graph to the next section or a terminal outcome."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The preview session ID")),
		mcp.WithOutputSchema[PreviewResponse](),
	)
	s.mcpServer.AddTool(advanceTool, mcp.NewStructuredToolHandler(s.handleAdvance))
}

func (s *Server) handleStartPreview(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (PreviewResponse, error) {
	flowID, _ := args["flow_id"].(string)
	sess, err := s.manager.Open(ctx, flowID)
	if err != nil {
		return PreviewResponse{}, fmt.Errorf("start preview failed: %w", err)
	}
	return responseOf(sess), nil
}

func (s *Server) handleSetAnswer(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (PreviewResponse, error) {
	sessionID, _ := args["session_id"].(string)
	fieldID, _ := args["field_id"].(string)

	sess, err := s.manager.Resume(ctx, sessionID)
	if err != nil {
		return PreviewResponse{}, fmt.Errorf("resume failed: %w", err)
	}

	value := domain.ScalarValue("")
	if raw, ok := args["values"].(string); ok && raw != "" {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return PreviewResponse{}, fmt.Errorf("values must be a JSON string array: %w", err)
		}
		value = domain.ListValue(items...)
	} else if scalar, ok := args["value"].(string); ok {
		value = domain.ScalarValue(scalar)
	}

	if err := sess.SetAnswer(fieldID, value); err != nil {
		return PreviewResponse{}, fmt.Errorf("set answer failed: %w", err)
	}
	if err := s.manager.Save(ctx, sess); err != nil {
		return PreviewResponse{}, fmt.Errorf("save failed: %w", err)
	}
	return responseOf(sess), nil
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (PreviewResponse, error) {
	sessionID, _ := args["session_id"].(string)

	sess, err := s.manager.Resume(ctx, sessionID)
	if err != nil {
		return PreviewResponse{}, fmt.Errorf("resume failed: %w", err)
	}

	sess.Advance(ctx)
	if err := s.manager.Save(ctx, sess); err != nil {
		return PreviewResponse{}, fmt.Errorf("save failed: %w", err)
	}
	return responseOf(sess), nil
}

func (s *Server) registerResources() {
	// EXPOSE: formflow://flows
	s.mcpServer.AddResource(mcp.NewResource("formflow://flows", "Stored Flow IDs",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.manager.Flows().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list flows: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "formflow://flows",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func responseOf(sess *runtime.Session) PreviewResponse {
	resp := PreviewResponse{
		SessionID:        sess.ID(),
		CurrentSectionID: sess.CurrentSectionID(),
		History:          sess.History(),
		Terminal:         sess.IsTerminal(),
		Outcome:          sess.Outcome(),
	}
	if section, ok := sess.CurrentSection(); ok {
		resp.Section = &section
	}
	if resp.Outcome != nil {
		resp.OutcomeText = resp.Outcome.String()
	}
	return resp
}
