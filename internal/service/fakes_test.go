package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/intent"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/task"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/accounts"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/messagequeue"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/taskstore"
)

// --- classifier / completer ---

type fakeClassifier struct {
	result intent.Intent
	err    error
	prompt string
	calls  int
}

func (f *fakeClassifier) Name() string { return "fake" }

func (f *fakeClassifier) Classify(_ context.Context, prompt, _ string) (intent.Intent, error) {
	f.calls++
	f.prompt = prompt
	return f.result, f.err
}

type fakeCompleter struct {
	reply        string
	err          error
	systemPrompt string
	calls        int
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt, _ string) (string, error) {
	f.calls++
	f.systemPrompt = systemPrompt
	return f.reply, f.err
}

// --- connectors ---

type fakeSocial struct {
	platform  string
	result    connector.PublishResult
	analytics connector.AnalyticsResult
	err       error
	published []connector.Content
	scheduled []time.Time
}

func (f *fakeSocial) Platform() string             { return f.platform }
func (f *fakeSocial) Verify(context.Context) error { return nil }

func (f *fakeSocial) PublishContent(_ context.Context, c connector.Content) (connector.PublishResult, error) {
	f.published = append(f.published, c)
	return f.result, f.err
}

func (f *fakeSocial) SchedulePost(_ context.Context, c connector.Content, at time.Time) (connector.PublishResult, error) {
	f.published = append(f.published, c)
	f.scheduled = append(f.scheduled, at)
	return f.result, f.err
}

func (f *fakeSocial) GetAnalytics(context.Context, string) (connector.AnalyticsResult, error) {
	return f.analytics, f.err
}

type fakeEmail struct {
	lists      []connector.List
	listsErr   error
	create     connector.CampaignResult
	send       connector.CampaignResult
	listResult connector.ListResult
	report     connector.CampaignReport
	campaigns  []connector.Campaign
	sentIDs    []string
	subscribed []string
}

func (f *fakeEmail) Provider() string             { return "mailchimp" }
func (f *fakeEmail) Verify(context.Context) error { return nil }

func (f *fakeEmail) GetLists(context.Context) ([]connector.List, error) {
	return f.lists, f.listsErr
}

func (f *fakeEmail) CreateList(_ context.Context, name string) (connector.ListResult, error) {
	res := f.listResult
	if res.Success && res.List.Name == "" {
		res.List.Name = name
	}
	return res, nil
}

func (f *fakeEmail) AddSubscriber(_ context.Context, listID, email string) (connector.ListResult, error) {
	f.subscribed = append(f.subscribed, listID+":"+email)
	return f.listResult, nil
}

func (f *fakeEmail) CreateCampaign(_ context.Context, c connector.Campaign) (connector.CampaignResult, error) {
	f.campaigns = append(f.campaigns, c)
	return f.create, nil
}

func (f *fakeEmail) SendCampaign(_ context.Context, id string) (connector.CampaignResult, error) {
	f.sentIDs = append(f.sentIDs, id)
	return f.send, nil
}

func (f *fakeEmail) GetCampaignReport(context.Context, string) (connector.CampaignReport, error) {
	return f.report, nil
}

type fakeFactory struct {
	social    map[string]connector.SocialConnector
	email     map[string]connector.EmailConnector
	err       error
	requested []string
}

func (f *fakeFactory) Social(_ context.Context, userID, platform string) (connector.SocialConnector, error) {
	f.requested = append(f.requested, userID+"/"+platform)
	if f.err != nil {
		return nil, f.err
	}
	return f.social[platform], nil
}

func (f *fakeFactory) Email(_ context.Context, userID, provider string) (connector.EmailConnector, error) {
	f.requested = append(f.requested, userID+"/"+provider)
	if f.err != nil {
		return nil, f.err
	}
	return f.email[provider], nil
}

// --- task history ---

type fakeRecorder struct {
	statuses []task.Status
}

func (f *fakeRecorder) Record(_ context.Context, t *task.Task) {
	f.statuses = append(f.statuses, t.Status)
}

type fakeTaskStore struct {
	mu        sync.Mutex
	snapshots []task.Snapshot
	appendErr error
	lastLimit int
}

func (f *fakeTaskStore) Append(_ context.Context, snap task.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.snapshots = append(f.snapshots, snap)
	return nil
}

func (f *fakeTaskStore) ListByUser(_ context.Context, userID string, limit int) ([]task.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	var out []task.Snapshot
	for _, s := range f.snapshots {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) Latest(_ context.Context, taskID string) (*task.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.snapshots) - 1; i >= 0; i-- {
		if f.snapshots[i].ID == taskID {
			s := f.snapshots[i]
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTaskStore) StatsByUser(_ context.Context, _ string) ([]taskstore.Stat, error) {
	return []taskstore.Stat{{Type: task.TypeSocialPost, Status: task.StatusCompleted, Count: 1}}, nil
}

type published struct {
	subject string
	data    []byte
}

type fakeQueue struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakeQueue) Publish(_ context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, data: data})
	return nil
}

func (f *fakeQueue) Subscribe(context.Context, string, messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (f *fakeQueue) Close() error      { return nil }
func (f *fakeQueue) IsConnected() bool { return true }

type hubEvent struct {
	userID    string
	eventType string
	payload   any
}

type fakeHub struct {
	events []hubEvent
}

func (f *fakeHub) BroadcastEvent(_ context.Context, eventType string, payload any) {
	f.events = append(f.events, hubEvent{eventType: eventType, payload: payload})
}

func (f *fakeHub) BroadcastToUser(_ context.Context, userID, eventType string, payload any) {
	f.events = append(f.events, hubEvent{userID: userID, eventType: eventType, payload: payload})
}

// --- accounts / cache ---

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]accounts.Account
	gets     int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[string]accounts.Account)}
}

func (f *fakeAccounts) GetAccount(_ context.Context, userID, platform string) (*accounts.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	a, ok := f.accounts[userID+"/"+platform]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (f *fakeAccounts) UpsertAccount(_ context.Context, a *accounts.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[a.UserID+"/"+a.Platform] = *a
	return nil
}

func (f *fakeAccounts) DeleteAccount(_ context.Context, userID, platform string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userID + "/" + platform
	if _, ok := f.accounts[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.accounts, key)
	return nil
}

func (f *fakeAccounts) ListAccounts(_ context.Context, userID string) ([]accounts.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []accounts.Account
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

var errBoom = errors.New("boom")
