package mcp

import (
	"context"
	"encoding/json"
	"errors"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/service"
)

const defaultHistoryLimit = 20

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.processMessageTool(),
		s.analyzeIntentTool(),
		s.taskHistoryTool(),
	)
}

func (s *Server) processMessageTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("process_message",
		mcplib.WithDescription("Send a user message to the GENIA clones. Executable requests (publish, schedule, email campaigns, analytics) run against the user's connected accounts; anything else is answered by the selected clone."),
		mcplib.WithString("message",
			mcplib.Required(),
			mcplib.Description("The user's message, usually in Spanish"),
		),
		mcplib.WithString("user_id",
			mcplib.Required(),
			mcplib.Description("The user the message belongs to"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleProcessMessage}
}

func (s *Server) analyzeIntentTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("analyze_intent",
		mcplib.WithDescription("Classify a message into an intent and the clone that would answer it, without executing anything"),
		mcplib.WithString("message",
			mcplib.Required(),
			mcplib.Description("The message to classify"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleAnalyzeIntent}
}

func (s *Server) taskHistoryTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("task_history",
		mcplib.WithDescription("List the most recent tasks executed for a user, newest first"),
		mcplib.WithString("user_id",
			mcplib.Required(),
			mcplib.Description("The user whose tasks to list"),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of tasks to return (default 20)"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleTaskHistory}
}

func (s *Server) handleProcessMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Router == nil {
		return mcplib.NewToolResultError("message router not configured"), nil
	}
	message := req.GetString("message", "")
	userID := req.GetString("user_id", "")

	resp, err := s.deps.Router.ProcessWithClones(ctx, message, userID)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return mcplib.NewToolResultError(err.Error()), nil
		}
		return mcplib.NewToolResultErrorFromErr("failed to process message", err), nil
	}
	return marshalResult(resp, "response")
}

type intentResult struct {
	Intent           any    `json:"intent"`
	CloneType        string `json:"cloneType"`
	Strategy         string `json:"strategy"`
	ExecutableIntent string `json:"executableIntent,omitempty"`
}

func (s *Server) handleAnalyzeIntent(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Analyzer == nil {
		return mcplib.NewToolResultError("intent analyzer not configured"), nil
	}
	message := req.GetString("message", "")
	if message == "" {
		return mcplib.NewToolResultError("message is required"), nil
	}
	in, strategy := s.deps.Analyzer.AnalyzeWithStrategy(ctx, message)
	return marshalResult(intentResult{
		Intent:           in,
		CloneType:        string(service.SelectClone(in)),
		Strategy:         strategy,
		ExecutableIntent: string(service.DetectExecutableIntent(message)),
	}, "intent")
}

func (s *Server) handleTaskHistory(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.History == nil {
		return mcplib.NewToolResultError("task history not configured"), nil
	}
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcplib.NewToolResultError("user_id is required"), nil
	}
	snaps, err := s.deps.History.List(ctx, userID, req.GetInt("limit", defaultHistoryLimit))
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list tasks", err), nil
	}
	if snaps == nil {
		return toolResultJSON("[]"), nil
	}
	return marshalResult(snaps, "tasks")
}

func marshalResult(v any, what string) (*mcplib.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal "+what, err), nil
	}
	return toolResultJSON(string(data)), nil
}
