package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	_ "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/facebook"
	cfhttp "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/http"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/clone"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/task"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/accounts"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/taskstore"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/service"
)

// mockTaskStore implements taskstore.Store in memory.
type mockTaskStore struct {
	mu    sync.Mutex
	snaps []task.Snapshot
}

func (m *mockTaskStore) Append(_ context.Context, s task.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, s)
	return nil
}

func (m *mockTaskStore) ListByUser(_ context.Context, userID string, _ int) ([]task.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := map[string]task.Snapshot{}
	var order []string
	for _, s := range m.snaps {
		if s.UserID != userID {
			continue
		}
		if _, seen := latest[s.ID]; !seen {
			order = append(order, s.ID)
		}
		latest[s.ID] = s
	}
	out := make([]task.Snapshot, 0, len(order))
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out, nil
}

func (m *mockTaskStore) Latest(_ context.Context, taskID string) (*task.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.snaps) - 1; i >= 0; i-- {
		if m.snaps[i].ID == taskID {
			s := m.snaps[i]
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTaskStore) StatsByUser(ctx context.Context, userID string) ([]taskstore.Stat, error) {
	snaps, _ := m.ListByUser(ctx, userID, 0)
	counts := map[taskstore.Stat]int{}
	for _, s := range snaps {
		counts[taskstore.Stat{Type: s.Type, Status: s.Status}]++
	}
	var out []taskstore.Stat
	for k, n := range counts {
		k.Count = n
		out = append(out, k)
	}
	return out, nil
}

// mockSocial publishes successfully.
type mockSocial struct{}

func (mockSocial) Platform() string             { return "facebook" }
func (mockSocial) Verify(context.Context) error { return nil }
func (mockSocial) PublishContent(context.Context, connector.Content) (connector.PublishResult, error) {
	return connector.PublishResult{Success: true, PostID: "1_2", URL: "https://www.facebook.com/1_2"}, nil
}
func (mockSocial) SchedulePost(context.Context, connector.Content, time.Time) (connector.PublishResult, error) {
	return connector.PublishResult{}, connector.ErrUnsupported
}
func (mockSocial) GetAnalytics(context.Context, string) (connector.AnalyticsResult, error) {
	return connector.AnalyticsResult{}, connector.ErrUnsupported
}

// mockFactory resolves facebook for every user.
type mockFactory struct{}

func (mockFactory) Social(_ context.Context, _, platform string) (connector.SocialConnector, error) {
	if platform == "facebook" {
		return mockSocial{}, nil
	}
	return nil, nil
}

func (mockFactory) Email(context.Context, string, string) (connector.EmailConnector, error) {
	return nil, nil
}

type mockCompleter struct{}

func (mockCompleter) Complete(context.Context, string, string) (string, error) {
	return "Respuesta del clon", nil
}

// mockAccounts implements cfhttp.AccountManager.
type mockAccounts struct {
	connected map[string]connector.Credentials
}

func (m *mockAccounts) Connect(_ context.Context, userID, platform, _ string, creds connector.Credentials) error {
	if creds["access_token"] == "bad" {
		return fmt.Errorf("verify %s account: %w", platform, domain.ErrValidation)
	}
	m.connected[userID+"/"+platform] = creds
	return nil
}

func (m *mockAccounts) Disconnect(_ context.Context, userID, platform string) error {
	if _, ok := m.connected[userID+"/"+platform]; !ok {
		return domain.ErrNotFound
	}
	delete(m.connected, userID+"/"+platform)
	return nil
}

func (m *mockAccounts) Accounts(_ context.Context, userID string) ([]accounts.Account, error) {
	var out []accounts.Account
	for k := range m.connected {
		if strings.HasPrefix(k, userID+"/") {
			out = append(out, accounts.Account{UserID: userID, Platform: strings.TrimPrefix(k, userID+"/")})
		}
	}
	return out, nil
}

type testEnv struct {
	router   chi.Router
	store    *mockTaskStore
	accounts *mockAccounts
}

func newTestEnv() *testEnv {
	store := &mockTaskStore{}
	history := service.NewTaskHistoryService(store, nil, nil)
	dispatcher := service.NewDispatcher(mockFactory{}, service.DefaultExtractors("facebook", "mailchimp"), history)
	mcp := service.NewMCPService(service.NewAnalyzer(nil), dispatcher, mockCompleter{}, nil)
	accts := &mockAccounts{connected: map[string]connector.Credentials{}}

	r := chi.NewRouter()
	cfhttp.MountRoutes(r, &cfhttp.Handlers{MCP: mcp, History: history, Accounts: accts})
	return &testEnv{router: r, store: store, accounts: accts}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return v
}

func TestProcessMessageConversational(t *testing.T) {
	env := newTestEnv()

	w := env.do(http.MethodPost, "/api/v1/messages", `{"message":"Necesito contenido para mi blog","userId":"u1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[service.Response](t, w)
	if resp.CloneType != clone.Content || resp.Response != "Respuesta del clon" || resp.ExecutedTask != nil {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestProcessMessageExecutesTask(t *testing.T) {
	env := newTestEnv()

	w := env.do(http.MethodPost, "/api/v1/messages", `{"message":"Publica en Facebook: Hola mundo","userId":"u1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Response     string `json:"response"`
		ExecutedTask struct {
			ID     string      `json:"id"`
			Type   task.Type   `json:"type"`
			Status task.Status `json:"status"`
		} `json:"executedTask"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ExecutedTask.Type != task.TypeSocialPost || resp.ExecutedTask.Status != task.StatusCompleted {
		t.Errorf("unexpected task %+v", resp.ExecutedTask)
	}
	if !strings.Contains(resp.Response, "https://www.facebook.com/1_2") {
		t.Errorf("unexpected response %q", resp.Response)
	}

	w = env.do(http.MethodGet, "/api/v1/tasks/"+resp.ExecutedTask.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if snap := decode[task.Snapshot](t, w); snap.Status != task.StatusCompleted {
		t.Errorf("expected completed snapshot, got %s", snap.Status)
	}
}

func TestProcessMessageValidation(t *testing.T) {
	env := newTestEnv()
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"message":`, http.StatusBadRequest},
		{"empty message", `{"message":"  ","userId":"u1"}`, http.StatusBadRequest},
		{"missing user", `{"message":"Hola"}`, http.StatusBadRequest},
		{"too large", `{"message":"` + strings.Repeat("a", 70<<10) + `","userId":"u1"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := env.do(http.MethodPost, "/api/v1/messages", tt.body); w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestAnalyzeIntent(t *testing.T) {
	env := newTestEnv()

	w := env.do(http.MethodPost, "/api/v1/intents/analyze", `{"message":"Quiero un anuncio en Instagram"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		CloneType string `json:"cloneType"`
		Strategy  string `json:"strategy"`
		Intent    struct {
			PrimaryIntent string            `json:"primaryIntent"`
			Entities      map[string]string `json:"entities"`
		} `json:"intent"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.CloneType != "ads" || resp.Strategy != service.StrategyKeyword || resp.Intent.Entities["adPlatform"] != "instagram" {
		t.Errorf("unexpected analysis %+v", resp)
	}
	if len(env.store.snaps) != 0 {
		t.Error("analysis must not execute anything")
	}
}

func TestExecuteTaskEndpoint(t *testing.T) {
	env := newTestEnv()

	w := env.do(http.MethodPost, "/api/v1/tasks/execute", `{"message":"¿Qué tal?","userId":"u1"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for non-executable message, got %d", w.Code)
	}

	w = env.do(http.MethodPost, "/api/v1/tasks/execute", `{"message":"Publica en Instagram: Hola","userId":"u1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Task struct {
			Status task.Status `json:"status"`
			Error  string      `json:"error"`
		} `json:"task"`
		Response string `json:"response"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Task.Status != task.StatusFailed || !strings.Contains(resp.Task.Error, "Instagram") {
		t.Errorf("expected failure for unconnected instagram, got %+v", resp.Task)
	}
	if !strings.HasPrefix(resp.Response, "Lo siento") {
		t.Errorf("unexpected response %q", resp.Response)
	}
}

func TestUserTaskHistory(t *testing.T) {
	env := newTestEnv()
	env.do(http.MethodPost, "/api/v1/messages", `{"message":"Publica en Facebook: uno","userId":"u1"}`)
	env.do(http.MethodPost, "/api/v1/messages", `{"message":"Publica en Facebook: dos","userId":"u1"}`)

	w := env.do(http.MethodGet, "/api/v1/users/u1/tasks?limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if snaps := decode[[]task.Snapshot](t, w); len(snaps) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(snaps))
	}

	w = env.do(http.MethodGet, "/api/v1/users/u1/tasks/stats", "")
	stats := decode[[]taskstore.Stat](t, w)
	if len(stats) != 1 || stats[0].Count != 2 || stats[0].Status != task.StatusCompleted {
		t.Errorf("unexpected stats %+v", stats)
	}

	w = env.do(http.MethodGet, "/api/v1/users/nobody/tasks", "")
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	env := newTestEnv()
	if w := env.do(http.MethodGet, "/api/v1/tasks/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestListClones(t *testing.T) {
	env := newTestEnv()

	w := env.do(http.MethodGet, "/api/v1/clones", "")
	personas := decode[[]clone.Persona](t, w)
	if len(personas) != len(clone.Tags) {
		t.Fatalf("expected %d personas, got %d", len(clone.Tags), len(personas))
	}
	if personas[0].Tag != clone.Tags[0] {
		t.Errorf("personas must follow tag order, got %s first", personas[0].Tag)
	}
}

func TestListConnectors(t *testing.T) {
	env := newTestEnv()

	var resp struct {
		Social []string `json:"social"`
		Email  []string `json:"email"`
	}
	w := env.do(http.MethodGet, "/api/v1/connectors", "")
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(resp.Social, "facebook") || !slices.Contains(resp.Social, "instagram") {
		t.Errorf("expected registered facebook connectors, got %v", resp.Social)
	}
}

func TestAccounts(t *testing.T) {
	env := newTestEnv()

	w := env.do(http.MethodPut, "/api/v1/users/u1/accounts/facebook", `{"label":"Página","credentials":{"access_token":"tok"}}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodPut, "/api/v1/users/u1/accounts/facebook", `{"credentials":{"access_token":"bad"}}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for rejected credentials, got %d", w.Code)
	}
	if got := decode[map[string]string](t, w)["error"]; strings.Contains(got, domain.ErrValidation.Error()) {
		t.Errorf("sentinel text must be stripped: %q", got)
	}

	w = env.do(http.MethodPut, "/api/v1/users/u1/accounts/facebook", `{"credentials":{}}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty credentials, got %d", w.Code)
	}

	w = env.do(http.MethodGet, "/api/v1/users/u1/accounts", "")
	if accts := decode[[]accounts.Account](t, w); len(accts) != 1 || accts[0].Platform != "facebook" {
		t.Errorf("unexpected accounts %+v", accts)
	}

	if w := env.do(http.MethodDelete, "/api/v1/users/u1/accounts/facebook", ""); w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w := env.do(http.MethodDelete, "/api/v1/users/u1/accounts/facebook", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
