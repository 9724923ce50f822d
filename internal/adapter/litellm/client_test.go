package litellm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/litellm"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/intent"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/classifier"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/resilience"
)

func completionServer(t *testing.T, content string, check func(*testing.T, map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if check != nil {
			check(t, body)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "openai/gpt-4o-mini",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 5},
		})
	}))
}

func TestChatCompletion(t *testing.T) {
	srv := completionServer(t, "hola", func(t *testing.T, body map[string]any) {
		if body["model"] != "openai/gpt-4o-mini" {
			t.Errorf("unexpected model %v", body["model"])
		}
	})
	defer srv.Close()

	client := litellm.NewClient(srv.URL, "test-key", time.Second)
	resp, err := client.ChatCompletion(context.Background(), litellm.ChatCompletionRequest{
		Model:    "openai/gpt-4o-mini",
		Messages: []litellm.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("ChatCompletion failed: %v", err)
	}
	if resp.Content != "hola" {
		t.Errorf("expected hola, got %q", resp.Content)
	}
	if resp.TokensIn != 12 || resp.TokensOut != 5 {
		t.Errorf("unexpected usage %d/%d", resp.TokensIn, resp.TokensOut)
	}
}

func TestAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Fatalf("unexpected auth: %q", auth)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := litellm.NewClient(srv.URL, "test-key", time.Second)
	ok, err := client.Health(context.Background())
	if err != nil || !ok {
		t.Fatalf("Health failed: ok=%v err=%v", ok, err)
	}
}

func TestHealthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := litellm.NewClient(srv.URL, "", time.Second)
	ok, err := client.Health(context.Background())
	if ok || err == nil {
		t.Fatal("expected unhealthy result")
	}
	var apiErr *litellm.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected APIError 503, got %v", err)
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad model"}`))
	}))
	defer srv.Close()

	client := litellm.NewClient(srv.URL, "", time.Second)
	b := resilience.NewBreaker("litellm", 1, time.Minute)
	client.SetBreaker(b)

	for range 3 {
		_, err := client.ChatCompletion(context.Background(), litellm.ChatCompletionRequest{Model: "x"})
		if errors.Is(err, resilience.ErrCircuitOpen) {
			t.Fatal("4xx answers must not open the breaker")
		}
	}
	if b.State() != "closed" {
		t.Fatalf("expected closed breaker, got %s", b.State())
	}
}

func TestServerErrorsTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := litellm.NewClient(srv.URL, "", time.Second)
	client.SetBreaker(resilience.NewBreaker("litellm", 2, time.Minute))

	for range 2 {
		_, _ = client.ChatCompletion(context.Background(), litellm.ChatCompletionRequest{Model: "x"})
	}
	_, err := client.ChatCompletion(context.Background(), litellm.ChatCompletionRequest{Model: "x"})
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestClassifier(t *testing.T) {
	srv := completionServer(t, `{"primaryIntent":"advertising","entities":{"adPlatform":"google"},"confidence":0.9}`,
		func(t *testing.T, body map[string]any) {
			msgs, _ := body["messages"].([]any)
			if len(msgs) != 2 {
				t.Fatalf("expected system+user messages, got %d", len(msgs))
			}
			first, _ := msgs[0].(map[string]any)
			if first["role"] != "system" || !strings.Contains(first["content"].(string), "intents") {
				t.Errorf("unexpected system message %v", first)
			}
			if body["temperature"] != 0.0 {
				t.Errorf("expected temperature 0, got %v", body["temperature"])
			}
			rf, _ := body["response_format"].(map[string]any)
			if rf["type"] != "json_object" {
				t.Errorf("expected json_object response format, got %v", body["response_format"])
			}
		})
	defer srv.Close()

	c := litellm.NewClassifier(litellm.NewClient(srv.URL, "", time.Second), "openai/gpt-4o-mini", 256)
	if c.Name() != "litellm" {
		t.Errorf("unexpected name %q", c.Name())
	}
	got, err := c.Classify(context.Background(), "Classify into intents", "Quiero anuncios en Google")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if got.PrimaryIntent != intent.Advertising || got.Entity(intent.EntityAdPlatform) != "google" {
		t.Errorf("unexpected intent %+v", got)
	}
}

func TestClassifierErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    classifier.Kind
	}{
		{
			name: "gateway down",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: classifier.KindUnavailable,
		},
		{
			name: "prose answer",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"it is about ads"}}]}`))
			},
			want: classifier.KindMalformed,
		},
		{
			name: "empty answer",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
			},
			want: classifier.KindMalformed,
		},
		{
			name: "unknown intent",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"primaryIntent\":\"cooking\"}"}}]}`))
			},
			want: classifier.KindInvalidIntent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := litellm.NewClassifier(litellm.NewClient(srv.URL, "", time.Second), "m", 64)
			_, err := c.Classify(context.Background(), "p", "m")
			ce, ok := classifier.AsError(err)
			if !ok {
				t.Fatalf("expected classifier error, got %v", err)
			}
			if ce.Kind != tt.want {
				t.Errorf("kind = %s, want %s", ce.Kind, tt.want)
			}
		})
	}
}

func TestCompleter(t *testing.T) {
	srv := completionServer(t, "  Claro, te ayudo con tu estrategia.  ", func(t *testing.T, body map[string]any) {
		if body["max_tokens"] != 512.0 {
			t.Errorf("expected max_tokens 512, got %v", body["max_tokens"])
		}
	})
	defer srv.Close()

	c := litellm.NewCompleter(litellm.NewClient(srv.URL, "", time.Second), "m", 512, 0.7)
	got, err := c.Complete(context.Background(), "Eres el CEO clone", "Ayuda")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Claro, te ayudo con tu estrategia." {
		t.Errorf("unexpected reply %q", got)
	}
}

func TestCompleterEmpty(t *testing.T) {
	srv := completionServer(t, "   ", nil)
	defer srv.Close()

	c := litellm.NewCompleter(litellm.NewClient(srv.URL, "", time.Second), "m", 0, 0.7)
	if _, err := c.Complete(context.Background(), "s", "m"); err == nil {
		t.Fatal("expected error for empty reply")
	}
}
