package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/ws"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/clone"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/intent"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/task"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/messagequeue"
)

type mcpFixture struct {
	svc       *MCPService
	factory   *fakeFactory
	completer *fakeCompleter
	queue     *fakeQueue
	hub       *fakeHub
}

func newMCPFixture(c *fakeClassifier) *mcpFixture {
	fx := &mcpFixture{
		factory:   &fakeFactory{social: map[string]connector.SocialConnector{}},
		completer: &fakeCompleter{reply: "Claro, te ayudo con eso."},
		queue:     &fakeQueue{},
		hub:       &fakeHub{},
	}
	var analyzer *Analyzer
	if c != nil {
		analyzer = NewAnalyzer(c)
	} else {
		analyzer = NewAnalyzer(nil)
	}
	d := newTestDispatcher(fx.factory, nil)
	fx.svc = NewMCPService(analyzer, d, fx.completer, nil)
	fx.svc.SetQueue(fx.queue)
	fx.svc.SetBroadcaster(fx.hub)
	return fx
}

func TestProcessWithClonesContentRequest(t *testing.T) {
	fx := newMCPFixture(nil)

	resp, err := fx.svc.ProcessWithClones(context.Background(), "Necesito contenido para mi blog", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.CloneType != clone.Content {
		t.Errorf("expected content clone, got %s", resp.CloneType)
	}
	if resp.Intent.PrimaryIntent != intent.ContentCreation || resp.Intent.Entity(intent.EntityContentType) != intent.ContentBlog {
		t.Errorf("unexpected intent %+v", resp.Intent)
	}
	if resp.ExecutedTask != nil {
		t.Error("content request must not execute a task")
	}
	if resp.Response != "Claro, te ayudo con eso." {
		t.Errorf("unexpected response %q", resp.Response)
	}
	persona := clone.BuiltinPersonas().Get(clone.Content)
	if fx.completer.systemPrompt != persona.SystemPrompt {
		t.Error("expected the content persona prompt")
	}
}

func TestProcessWithClonesExecutesTask(t *testing.T) {
	fx := newMCPFixture(nil)
	fx.factory.social["facebook"] = &fakeSocial{platform: "facebook", result: connector.PublishResult{
		Success: true, PostID: "1_2", URL: "https://www.facebook.com/1_2",
	}}

	resp, err := fx.svc.ProcessWithClones(context.Background(), "Publica en Facebook: Hola mundo", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.ExecutedTask == nil {
		t.Fatal("expected an executed task")
	}
	if resp.ExecutedTask.Type != task.TypeSocialPost || resp.ExecutedTask.Status != task.StatusCompleted {
		t.Errorf("unexpected task %s %s", resp.ExecutedTask.Type, resp.ExecutedTask.Status)
	}
	if !strings.Contains(resp.Response, "https://www.facebook.com/1_2") {
		t.Errorf("response should carry the post URL: %q", resp.Response)
	}
	if fx.completer.calls != 0 {
		t.Error("executed tasks must not call the clone")
	}

	var ev messagequeue.IntentAnalyzedPayload
	if len(fx.queue.msgs) != 1 || fx.queue.msgs[0].subject != messagequeue.SubjectIntentAnalyzed {
		t.Fatalf("unexpected published %+v", fx.queue.msgs)
	}
	if err := json.Unmarshal(fx.queue.msgs[0].data, &ev); err != nil {
		t.Fatal(err)
	}
	if !ev.Executable || ev.Strategy != StrategyKeyword || ev.UserID != "user-1" {
		t.Errorf("unexpected event %+v", ev)
	}

	last := fx.hub.events[len(fx.hub.events)-1]
	processed, ok := last.payload.(ws.MessageProcessedEvent)
	if !ok || last.eventType != ws.EventMessageProcessed || processed.TaskID != resp.ExecutedTask.ID {
		t.Errorf("unexpected processed event %+v", last)
	}
}

func TestProcessWithClonesFailedTaskStillResponds(t *testing.T) {
	fx := newMCPFixture(nil)

	resp, err := fx.svc.ProcessWithClones(context.Background(), "Publica en Facebook: Hola mundo", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.ExecutedTask == nil || resp.ExecutedTask.Status != task.StatusFailed {
		t.Fatalf("expected failed task, got %+v", resp.ExecutedTask)
	}
	if !strings.HasPrefix(resp.Response, "Lo siento, no pude completar la tarea en Facebook") {
		t.Errorf("unexpected response %q", resp.Response)
	}
}

func TestProcessWithClonesGeneralQuestion(t *testing.T) {
	fx := newMCPFixture(&fakeClassifier{result: intent.Intent{PrimaryIntent: intent.GeneralQuery, Confidence: 0.9}})

	resp, err := fx.svc.ProcessWithClones(context.Background(), "¿Cuál es la capital de Francia?", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.CloneType != clone.CEO || resp.ExecutedTask != nil {
		t.Errorf("expected ceo conversation, got %s task=%v", resp.CloneType, resp.ExecutedTask)
	}
	if fx.completer.calls != 1 {
		t.Errorf("expected one completion, got %d", fx.completer.calls)
	}
}

func TestProcessWithClonesClassifierFallback(t *testing.T) {
	c := &fakeClassifier{err: errors.New("upstream 503")}
	fx := newMCPFixture(c)

	resp, err := fx.svc.ProcessWithClones(context.Background(), "Quiero crear un anuncio en Google", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if c.calls != 1 {
		t.Errorf("expected a single classifier attempt, got %d", c.calls)
	}
	if resp.CloneType != clone.Ads || resp.Intent.Entity(intent.EntityAdPlatform) != intent.PlatformGoogle {
		t.Errorf("unexpected fallback routing %s %+v", resp.CloneType, resp.Intent)
	}
}

func TestProcessWithClonesCompletionFailures(t *testing.T) {
	tests := []struct {
		name      string
		completer *fakeCompleter
	}{
		{"error", &fakeCompleter{err: errBoom}},
		{"empty reply", &fakeCompleter{reply: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDispatcher(&fakeFactory{}, nil)
			svc := NewMCPService(NewAnalyzer(nil), d, tt.completer, nil)
			resp, err := svc.ProcessWithClones(context.Background(), "Dame ideas de estrategia", "user-1")
			if err != nil {
				t.Fatal(err)
			}
			if resp.Response != apologyResponse {
				t.Errorf("expected apology, got %q", resp.Response)
			}
		})
	}

	svc := NewMCPService(NewAnalyzer(nil), newTestDispatcher(&fakeFactory{}, nil), nil, nil)
	resp, err := svc.ProcessWithClones(context.Background(), "Hola", "user-1")
	if err != nil || resp.Response != apologyResponse {
		t.Errorf("nil completer: expected apology, got %+v %v", resp, err)
	}
}

func TestProcessWithClonesValidation(t *testing.T) {
	fx := newMCPFixture(nil)
	tests := []struct {
		name, text, user string
	}{
		{"empty message", "   ", "user-1"},
		{"missing user", "Hola", ""},
		{"too long", strings.Repeat("a", maxMessageLength+1), "user-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.ProcessWithClones(context.Background(), tt.text, tt.user)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
	if len(fx.queue.msgs) != 0 || fx.completer.calls != 0 {
		t.Error("invalid input must not be routed")
	}
}

func TestProcessWithClonesQueueFailureIgnored(t *testing.T) {
	fx := newMCPFixture(nil)
	fx.queue.err = errBoom

	resp, err := fx.svc.ProcessWithClones(context.Background(), "Necesito contenido para mi blog", "user-1")
	if err != nil || resp == nil {
		t.Fatalf("queue failures must not fail processing: %v", err)
	}
}
