package http

import (
	"context"
	"net/http"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/clone"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/intent"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/task"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/accounts"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/taskstore"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/service"
)

// AccountManager connects and disconnects connector accounts.
type AccountManager interface {
	Connect(ctx context.Context, userID, platform, label string, creds connector.Credentials) error
	Disconnect(ctx context.Context, userID, platform string) error
	Accounts(ctx context.Context, userID string) ([]accounts.Account, error)
}

// TaskHistory serves recorded task snapshots.
type TaskHistory interface {
	List(ctx context.Context, userID string, limit int) ([]task.Snapshot, error)
	Get(ctx context.Context, taskID string) (*task.Snapshot, error)
	Stats(ctx context.Context, userID string) ([]taskstore.Stat, error)
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	MCP      *service.MCPService
	History  TaskHistory
	Accounts AccountManager
}

// messageRequest is the body of POST /messages and POST /tasks/execute.
type messageRequest struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// ProcessMessage handles POST /api/v1/messages
func (h *Handlers) ProcessMessage(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[messageRequest](w, r)
	if !ok {
		return
	}
	resp, err := h.MCP.ProcessWithClones(r.Context(), req.Message, req.UserID)
	if err != nil {
		writeDomainError(w, err, "message could not be processed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type analyzeResponse struct {
	Intent           intent.Intent         `json:"intent"`
	CloneType        clone.Tag             `json:"cloneType"`
	Strategy         string                `json:"strategy"`
	ExecutableIntent task.ExecutableIntent `json:"executableIntent,omitempty"`
}

// AnalyzeIntent handles POST /api/v1/intents/analyze. It classifies without
// executing anything.
func (h *Handlers) AnalyzeIntent(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[messageRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.Message, "message") {
		return
	}
	in, strategy := h.MCP.Analyzer().AnalyzeWithStrategy(r.Context(), req.Message)
	writeJSON(w, http.StatusOK, analyzeResponse{
		Intent:           in,
		CloneType:        service.SelectClone(in),
		Strategy:         strategy,
		ExecutableIntent: service.DetectExecutableIntent(req.Message),
	})
}

type executeResponse struct {
	Task     *task.Task `json:"task"`
	Response string     `json:"response"`
}

// ExecuteTask handles POST /api/v1/tasks/execute. Non-executable messages
// are rejected with 422.
func (h *Handlers) ExecuteTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[messageRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.Message, "message") || !requireField(w, req.UserID, "userId") {
		return
	}
	d := h.MCP.Dispatcher()
	t, err := d.AnalyzeExecutableIntent(r.Context(), req.Message, req.UserID)
	if err != nil {
		writeDomainError(w, err, "task could not be created")
		return
	}
	if t == nil {
		writeError(w, http.StatusUnprocessableEntity, "message does not describe an executable task")
		return
	}
	t = d.ExecuteTask(r.Context(), t)
	writeJSON(w, http.StatusOK, executeResponse{Task: t, Response: service.GenerateResponseFromTaskResult(t)})
}

// ListUserTasks handles GET /api/v1/users/{userID}/tasks
func (h *Handlers) ListUserTasks(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.History.List(r.Context(), urlParam(r, "userID"), queryInt(r, "limit", 0))
	if err != nil {
		writeDomainError(w, err, "tasks not found")
		return
	}
	if snaps == nil {
		snaps = []task.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

// UserTaskStats handles GET /api/v1/users/{userID}/tasks/stats
func (h *Handlers) UserTaskStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.History.Stats(r.Context(), urlParam(r, "userID"))
	if err != nil {
		writeDomainError(w, err, "stats not found")
		return
	}
	if stats == nil {
		stats = []taskstore.Stat{}
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetTask handles GET /api/v1/tasks/{taskID}
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	snap, err := h.History.Get(r.Context(), urlParam(r, "taskID"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ListClones handles GET /api/v1/clones
func (h *Handlers) ListClones(w http.ResponseWriter, _ *http.Request) {
	catalog := h.MCP.Catalog()
	out := make([]clone.Persona, 0, len(clone.Tags))
	for _, tag := range clone.Tags {
		if p, ok := catalog[tag]; ok {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type connectorsResponse struct {
	Social []string `json:"social"`
	Email  []string `json:"email"`
}

// ListConnectors handles GET /api/v1/connectors
func (h *Handlers) ListConnectors(w http.ResponseWriter, _ *http.Request) {
	social, email := connector.Available()
	if social == nil {
		social = []string{}
	}
	if email == nil {
		email = []string{}
	}
	writeJSON(w, http.StatusOK, connectorsResponse{Social: social, Email: email})
}

// ListAccounts handles GET /api/v1/users/{userID}/accounts
func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accts, err := h.Accounts.Accounts(r.Context(), urlParam(r, "userID"))
	if err != nil {
		writeDomainError(w, err, "accounts not found")
		return
	}
	if accts == nil {
		accts = []accounts.Account{}
	}
	writeJSON(w, http.StatusOK, accts)
}

type connectAccountRequest struct {
	Label       string            `json:"label"`
	Credentials map[string]string `json:"credentials"`
}

// ConnectAccount handles PUT /api/v1/users/{userID}/accounts/{platform}.
// Credentials are verified against the platform before they are stored.
func (h *Handlers) ConnectAccount(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[connectAccountRequest](w, r)
	if !ok {
		return
	}
	if len(req.Credentials) == 0 {
		writeError(w, http.StatusBadRequest, "credentials are required")
		return
	}
	userID, platform := urlParam(r, "userID"), urlParam(r, "platform")
	if err := h.Accounts.Connect(r.Context(), userID, platform, req.Label, req.Credentials); err != nil {
		writeDomainError(w, err, "account could not be connected")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DisconnectAccount handles DELETE /api/v1/users/{userID}/accounts/{platform}
func (h *Handlers) DisconnectAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.Disconnect(r.Context(), urlParam(r, "userID"), urlParam(r, "platform")); err != nil {
		writeDomainError(w, err, "account not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
