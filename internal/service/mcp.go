package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	cfotel "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/otel"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/ws"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/clone"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/intent"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/task"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/broadcast"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/completion"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/messagequeue"
)

// apologyResponse is returned when the conversational round trip fails.
const apologyResponse = "Lo siento, en este momento no puedo responder. Inténtalo de nuevo en unos minutos."

// maxMessageLength bounds a single user message in bytes.
const maxMessageLength = 8000

// Response is the outcome of processing one message. Exactly one of
// ExecutedTask or a conversational Response body is produced per call.
type Response struct {
	CloneType    clone.Tag     `json:"cloneType"`
	Response     string        `json:"response"`
	ExecutedTask *task.Task    `json:"executedTask,omitempty"`
	Intent       intent.Intent `json:"intent"`
}

// MCPService is the routing core: it analyzes a message, selects a clone and
// either executes a task or lets the clone answer.
type MCPService struct {
	analyzer   *Analyzer
	dispatcher *Dispatcher
	completer  completion.Completer
	catalog    clone.Catalog
	queue      messagequeue.Queue
	hub        broadcast.Broadcaster
	metrics    *cfotel.Metrics
}

// NewMCPService creates the routing core. A nil completer makes every
// conversational answer an apology.
func NewMCPService(analyzer *Analyzer, dispatcher *Dispatcher, completer completion.Completer, catalog clone.Catalog) *MCPService {
	if catalog == nil {
		catalog = clone.BuiltinPersonas()
	}
	return &MCPService{
		analyzer:   analyzer,
		dispatcher: dispatcher,
		completer:  completer,
		catalog:    catalog,
	}
}

// SetQueue enables intents.analyzed events.
func (s *MCPService) SetQueue(q messagequeue.Queue) { s.queue = q }

// SetBroadcaster enables message.processed websocket events.
func (s *MCPService) SetBroadcaster(b broadcast.Broadcaster) { s.hub = b }

// SetMetrics configures the OTEL instruments.
func (s *MCPService) SetMetrics(m *cfotel.Metrics) { s.metrics = m }

// Catalog returns the persona catalog.
func (s *MCPService) Catalog() clone.Catalog { return s.catalog }

// Analyzer returns the intent analyzer.
func (s *MCPService) Analyzer() *Analyzer { return s.analyzer }

// Dispatcher returns the task dispatcher.
func (s *MCPService) Dispatcher() *Dispatcher { return s.dispatcher }

func validateMessage(text, userID string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("message is required: %w", domain.ErrValidation)
	}
	if len(text) > maxMessageLength {
		return "", fmt.Errorf("message exceeds %d bytes: %w", maxMessageLength, domain.ErrValidation)
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("user id is required: %w", domain.ErrValidation)
	}
	return text, nil
}

// ProcessWithClones handles one user message. Only input validation errors
// are returned; every downstream failure becomes part of the Response.
func (s *MCPService) ProcessWithClones(ctx context.Context, text, userID string) (*Response, error) {
	text, err := validateMessage(text, userID)
	if err != nil {
		return nil, err
	}

	ctx, span := cfotel.StartProcessSpan(ctx, userID)
	defer span.End()

	in, strategy := s.analyzer.AnalyzeWithStrategy(ctx, text)
	tag := SelectClone(in)
	s.metrics.RecordClone(ctx, string(tag))

	t, err := s.dispatcher.AnalyzeExecutableIntent(ctx, text, userID)
	if err != nil {
		return nil, err
	}
	s.publishAnalyzed(ctx, userID, in, tag, strategy, t != nil)

	slog.InfoContext(ctx, "message routed",
		"user_id", userID, "intent", describeIntent(in), "clone", tag, "executable", t != nil)

	resp := &Response{CloneType: tag, Intent: in}
	if t != nil {
		resp.ExecutedTask = s.dispatcher.ExecuteTask(ctx, t)
		resp.Response = GenerateResponseFromTaskResult(resp.ExecutedTask)
	} else {
		resp.Response = s.converse(ctx, tag, text)
	}

	s.notifyProcessed(ctx, userID, resp)
	return resp, nil
}

func (s *MCPService) converse(ctx context.Context, tag clone.Tag, text string) string {
	if s.completer == nil {
		return apologyResponse
	}
	persona := s.catalog.Get(tag)

	ctx, span := cfotel.StartCompletionSpan(ctx, string(tag))
	defer span.End()

	reply, err := s.completer.Complete(ctx, persona.SystemPrompt, text)
	if err != nil {
		slog.ErrorContext(ctx, "clone completion failed", "clone", tag, "error", err)
		return apologyResponse
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return apologyResponse
	}
	return reply
}

func (s *MCPService) publishAnalyzed(ctx context.Context, userID string, in intent.Intent, tag clone.Tag, strategy string, executable bool) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(messagequeue.IntentAnalyzedPayload{
		UserID:     userID,
		Intent:     string(in.PrimaryIntent),
		Secondary:  string(in.SecondaryIntent),
		Confidence: in.Confidence,
		Clone:      string(tag),
		Strategy:   strategy,
		Executable: executable,
	})
	if err != nil {
		slog.ErrorContext(ctx, "marshal intent event", "error", err)
		return
	}
	if err := s.queue.Publish(ctx, messagequeue.SubjectIntentAnalyzed, data); err != nil {
		slog.WarnContext(ctx, "publish intent event", "user_id", userID, "error", err)
	}
}

func (s *MCPService) notifyProcessed(ctx context.Context, userID string, resp *Response) {
	if s.hub == nil {
		return
	}
	ev := ws.MessageProcessedEvent{
		UserID:   userID,
		Clone:    string(resp.CloneType),
		Intent:   string(resp.Intent.PrimaryIntent),
		Response: resp.Response,
	}
	if resp.ExecutedTask != nil {
		ev.TaskID = resp.ExecutedTask.ID
	}
	s.hub.BroadcastToUser(ctx, userID, ws.EventMessageProcessed, ev)
}
