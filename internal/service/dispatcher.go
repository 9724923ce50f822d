package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	cfotel "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/otel"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/task"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/taskstore"
)

// Dispatcher turns executable messages into tasks and runs them against
// platform connectors. Each task gets a single attempt.
type Dispatcher struct {
	factory    connector.Factory
	extractors *ExtractorSet
	recorder   taskstore.Recorder
	metrics    *cfotel.Metrics
	fromName   string
	now        func() time.Time
}

// NewDispatcher creates a Dispatcher. A nil recorder disables history.
func NewDispatcher(factory connector.Factory, extractors *ExtractorSet, recorder taskstore.Recorder) *Dispatcher {
	return &Dispatcher{
		factory:    factory,
		extractors: extractors,
		recorder:   recorder,
		fromName:   "GENIA",
		now:        time.Now,
	}
}

// SetMetrics configures the OTEL instruments used to count tasks.
func (d *Dispatcher) SetMetrics(m *cfotel.Metrics) {
	d.metrics = m
}

// SetFromName sets the sender name used for email campaigns.
func (d *Dispatcher) SetFromName(name string) {
	if name != "" {
		d.fromName = name
	}
}

// AnalyzeExecutableIntent returns a pending task when text asks for an
// external action, or nil when it should be answered conversationally.
func (d *Dispatcher) AnalyzeExecutableIntent(_ context.Context, text, userID string) (*task.Task, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrValidation)
	}
	ei := DetectExecutableIntent(text)
	if ei == "" {
		return nil, nil
	}
	typ, ok := ei.TaskType()
	if !ok {
		return nil, nil
	}
	params, err := d.extractors.Extract(typ, text, d.now())
	if err != nil {
		return nil, err
	}
	return task.New(userID, ei, params), nil
}

// ExecuteTask runs a pending task to a terminal state and returns it. All
// failures end in StatusFailed with a user-facing message; nothing is
// returned as an error.
func (d *Dispatcher) ExecuteTask(ctx context.Context, t *task.Task) *task.Task {
	platform := t.Target()
	ctx, span := cfotel.StartTaskSpan(ctx, t.ID, string(t.Type), platform)
	defer span.End()

	if t.Params == nil {
		d.fail(ctx, t, "La tarea no tiene parámetros")
		return t
	}
	if err := t.Params.Validate(); err != nil {
		d.fail(ctx, t, "No pude entender la tarea: "+err.Error())
		return t
	}

	if err := t.Start(); err != nil {
		slog.WarnContext(ctx, "task not startable", "task_id", t.ID, "status", t.Status, "error", err)
		return t
	}
	d.record(ctx, t)
	d.metrics.RecordTaskStart(ctx, string(t.Type), platform)
	started := time.Now()

	result, failure := d.run(ctx, t)
	if failure != "" {
		d.fail(ctx, t, failure)
	} else {
		if err := t.Complete(result); err != nil {
			slog.ErrorContext(ctx, "complete task", "task_id", t.ID, "error", err)
			return t
		}
		d.record(ctx, t)
		slog.InfoContext(ctx, "task completed", "task_id", t.ID, "type", t.Type, "platform", platform)
	}

	d.metrics.RecordTaskEnd(ctx, string(t.Type), platform, t.Status == task.StatusCompleted, time.Since(started))
	return t
}

func (d *Dispatcher) fail(ctx context.Context, t *task.Task, msg string) {
	if err := t.Fail(msg); err != nil {
		slog.ErrorContext(ctx, "fail task", "task_id", t.ID, "error", err)
		return
	}
	d.record(ctx, t)
	slog.WarnContext(ctx, "task failed", "task_id", t.ID, "type", t.Type, "platform", t.Target(), "error", msg)
}

func (d *Dispatcher) record(ctx context.Context, t *task.Task) {
	if d.recorder != nil {
		d.recorder.Record(ctx, t)
	}
}

// run executes the recipe for the task type. A non-empty failure message
// means the task must fail.
func (d *Dispatcher) run(ctx context.Context, t *task.Task) (task.Result, string) {
	switch p := t.Params.(type) {
	case task.SocialPostParams:
		conn, msg := d.social(ctx, t.UserID, p.Platform)
		if conn == nil {
			return task.Result{}, msg
		}
		res, err := conn.PublishContent(ctx, socialContent(p))
		if failure := publishFailure(p.Platform, res, err); failure != "" {
			return task.Result{}, failure
		}
		return task.Result{Platform: p.Platform, PostID: res.PostID, URL: res.URL}, ""

	case task.SocialScheduleParams:
		conn, msg := d.social(ctx, t.UserID, p.Platform)
		if conn == nil {
			return task.Result{}, msg
		}
		res, err := conn.SchedulePost(ctx, socialContent(p.SocialPostParams), p.ScheduledAt)
		if failure := publishFailure(p.Platform, res, err); failure != "" {
			return task.Result{}, failure
		}
		return task.Result{
			Platform: p.Platform,
			PostID:   res.PostID,
			URL:      res.URL,
			Data:     map[string]any{"scheduledAt": p.ScheduledAt.Format(time.RFC3339)},
		}, ""

	case task.SocialAnalyticsParams:
		conn, msg := d.social(ctx, t.UserID, p.Platform)
		if conn == nil {
			return task.Result{}, msg
		}
		res, err := conn.GetAnalytics(ctx, p.Period)
		if failure := connectorFailure(p.Platform, res.Success, res.Error, err); failure != "" {
			return task.Result{}, failure
		}
		return task.Result{
			Platform: p.Platform,
			Data:     map[string]any{"period": p.Period, "metrics": res.Metrics},
		}, ""

	case task.EmailCampaignParams:
		return d.emailCampaign(ctx, t.UserID, p)

	case task.EmailListParams:
		return d.emailList(ctx, t.UserID, p)

	case task.EmailAnalyticsParams:
		conn, msg := d.email(ctx, t.UserID, p.Provider)
		if conn == nil {
			return task.Result{}, msg
		}
		rep, err := conn.GetCampaignReport(ctx, p.CampaignID)
		if failure := connectorFailure(p.Provider, rep.Success, rep.Error, err); failure != "" {
			return task.Result{}, failure
		}
		return task.Result{
			Platform:   p.Provider,
			CampaignID: rep.CampaignID,
			Data:       map[string]any{"metrics": rep.Metrics},
		}, ""
	}
	return task.Result{}, fmt.Sprintf("Tipo de tarea no soportado: %s", t.Type)
}

func (d *Dispatcher) emailCampaign(ctx context.Context, userID string, p task.EmailCampaignParams) (task.Result, string) {
	conn, msg := d.email(ctx, userID, p.Provider)
	if conn == nil {
		return task.Result{}, msg
	}

	lists, err := conn.GetLists(ctx)
	if err != nil {
		return task.Result{}, connectorFailure(p.Provider, false, "", err)
	}
	list, ok := matchList(lists, p.ListName)
	if !ok {
		return task.Result{}, fmt.Sprintf("No hay listas de correo disponibles en %s", displayName(p.Provider))
	}

	created, err := conn.CreateCampaign(ctx, connector.Campaign{
		ListID:   list.ID,
		Subject:  p.Subject,
		Content:  p.Content,
		FromName: d.fromName,
	})
	if failure := connectorFailure(p.Provider, created.Success, created.Error, err); failure != "" {
		return task.Result{}, failure
	}

	result := task.Result{
		Platform:   p.Provider,
		CampaignID: created.CampaignID,
		URL:        created.URL,
		Data:       map[string]any{"listId": list.ID, "listName": list.Name, "sent": false},
	}
	if !p.SendNow {
		return result, ""
	}

	sent, err := conn.SendCampaign(ctx, created.CampaignID)
	if failure := connectorFailure(p.Provider, sent.Success, sent.Error, err); failure != "" {
		return task.Result{}, failure
	}
	result.Data["sent"] = true
	return result, ""
}

func (d *Dispatcher) emailList(ctx context.Context, userID string, p task.EmailListParams) (task.Result, string) {
	conn, msg := d.email(ctx, userID, p.Provider)
	if conn == nil {
		return task.Result{}, msg
	}

	switch p.Action {
	case task.ListActionCreate:
		res, err := conn.CreateList(ctx, p.ListName)
		if failure := connectorFailure(p.Provider, res.Success, res.Error, err); failure != "" {
			return task.Result{}, failure
		}
		return task.Result{Platform: p.Provider, Data: map[string]any{"action": p.Action, "list": res.List}}, ""

	case task.ListActionSubscribe:
		lists, err := conn.GetLists(ctx)
		if err != nil {
			return task.Result{}, connectorFailure(p.Provider, false, "", err)
		}
		list, ok := matchList(lists, p.ListName)
		if !ok {
			return task.Result{}, fmt.Sprintf("No hay listas de correo disponibles en %s", displayName(p.Provider))
		}
		res, err := conn.AddSubscriber(ctx, list.ID, p.Email)
		if failure := connectorFailure(p.Provider, res.Success, res.Error, err); failure != "" {
			return task.Result{}, failure
		}
		return task.Result{Platform: p.Provider, Data: map[string]any{"action": p.Action, "list": list, "email": p.Email}}, ""

	default:
		lists, err := conn.GetLists(ctx)
		if err != nil {
			return task.Result{}, connectorFailure(p.Provider, false, "", err)
		}
		return task.Result{Platform: p.Provider, Data: map[string]any{"action": task.ListActionList, "lists": lists}}, ""
	}
}

func (d *Dispatcher) social(ctx context.Context, userID, platform string) (connector.SocialConnector, string) {
	conn, err := d.factory.Social(ctx, userID, platform)
	if err != nil || conn == nil {
		if err != nil {
			slog.WarnContext(ctx, "resolve social connector", "user_id", userID, "platform", platform, "error", err)
		}
		return nil, unresolvedConnector(platform)
	}
	return conn, ""
}

func (d *Dispatcher) email(ctx context.Context, userID, provider string) (connector.EmailConnector, string) {
	conn, err := d.factory.Email(ctx, userID, provider)
	if err != nil || conn == nil {
		if err != nil {
			slog.WarnContext(ctx, "resolve email connector", "user_id", userID, "provider", provider, "error", err)
		}
		return nil, unresolvedConnector(provider)
	}
	return conn, ""
}

func unresolvedConnector(platform string) string {
	return fmt.Sprintf("No se pudo obtener el conector para %s. Verifica que la cuenta esté conectada y sus credenciales sean válidas.", displayName(platform))
}

func socialContent(p task.SocialPostParams) connector.Content {
	return connector.Content{
		Type:     p.ContentType,
		Text:     p.Content,
		MediaURL: p.MediaURL,
		LinkURL:  p.LinkURL,
	}
}

func publishFailure(platform string, res connector.PublishResult, err error) string {
	return connectorFailure(platform, res.Success, res.Error, err)
}

// connectorFailure prefers the platform's own message over the Go error.
func connectorFailure(platform string, success bool, resultErr string, err error) string {
	switch {
	case resultErr != "" && (err != nil || !success):
		return resultErr
	case err != nil:
		return fmt.Sprintf("Error del conector de %s: %v", displayName(platform), err)
	case !success:
		return fmt.Sprintf("El conector de %s no pudo completar la operación", displayName(platform))
	}
	return ""
}

// matchList picks the list whose name contains the requested name, or is
// contained by it, ignoring case. Without a match the first list is used.
func matchList(lists []connector.List, name string) (connector.List, bool) {
	if len(lists) == 0 {
		return connector.List{}, false
	}
	want := strings.ToLower(strings.TrimSpace(name))
	if want != "" {
		for _, l := range lists {
			have := strings.ToLower(l.Name)
			if strings.Contains(have, want) || strings.Contains(want, have) {
				return l, true
			}
		}
	}
	return lists[0], true
}

var displayNames = map[string]string{
	"facebook":  "Facebook",
	"instagram": "Instagram",
	"linkedin":  "LinkedIn",
	"twitter":   "Twitter",
	"tiktok":    "TikTok",
	"slack":     "Slack",
	"mailchimp": "Mailchimp",
	"smtp":      "SMTP",
}

func displayName(platform string) string {
	if n, ok := displayNames[platform]; ok {
		return n
	}
	if platform == "" {
		return "la plataforma"
	}
	return strings.ToUpper(platform[:1]) + platform[1:]
}
