package task

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
)

func newPostTask() *Task {
	return New("user-1", IntentSocialMediaPost, SocialPostParams{
		Platform:    "facebook",
		Content:     "Hola mundo",
		ContentType: ContentText,
	})
}

func TestNewTaskIsPending(t *testing.T) {
	tk := newPostTask()
	if tk.Status != StatusPending {
		t.Fatalf("expected pending, got %q", tk.Status)
	}
	if tk.Type != TypeSocialPost {
		t.Fatalf("expected SOCIAL_POST, got %q", tk.Type)
	}
	if tk.ID == "" {
		t.Fatal("expected generated ID")
	}
	if tk.Target() != "facebook" {
		t.Fatalf("expected target facebook, got %q", tk.Target())
	}
}

func TestLifecycleForwardOnly(t *testing.T) {
	tk := newPostTask()

	if err := tk.Complete(Result{}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("complete from pending: expected ErrInvalidTransition, got %v", err)
	}
	if err := tk.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := tk.Start(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("second start: expected ErrInvalidTransition, got %v", err)
	}
	if err := tk.Complete(Result{Platform: "facebook", PostID: "p1"}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if tk.Status != StatusCompleted || tk.Result == nil || tk.Result.PostID != "p1" {
		t.Fatalf("unexpected final state: %+v", tk)
	}
	if err := tk.Fail("late"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("fail after complete: expected ErrInvalidTransition, got %v", err)
	}
	if tk.Status != StatusCompleted {
		t.Fatalf("terminal status changed to %q", tk.Status)
	}
}

func TestFailFromProcessing(t *testing.T) {
	tk := newPostTask()
	_ = tk.Start()
	if err := tk.Fail("connector down"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if tk.Status != StatusFailed || tk.Error != "connector down" {
		t.Fatalf("unexpected state: %q %q", tk.Status, tk.Error)
	}
	if err := tk.Start(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("failed task must not re-enter processing, got %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	tk := New("user-9", IntentSocialMediaSchedule, SocialScheduleParams{
		SocialPostParams: SocialPostParams{
			Platform:    "instagram",
			Content:     "Lanzamiento",
			ContentType: ContentImage,
			MediaURL:    "https://cdn.example.com/a.png",
		},
		ScheduledAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	})
	_ = tk.Start()
	_ = tk.Complete(Result{Platform: "instagram", PostID: "ig-1"})

	data, err := json.Marshal(tk)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Task
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Type != tk.Type || got.UserID != tk.UserID || got.Status != tk.Status {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, tk)
	}
	params, ok := got.Params.(SocialScheduleParams)
	if !ok {
		t.Fatalf("expected SocialScheduleParams, got %T", got.Params)
	}
	want := tk.Params.(SocialScheduleParams)
	if params.SocialPostParams != want.SocialPostParams || !params.ScheduledAt.Equal(want.ScheduledAt) {
		t.Fatalf("params mismatch: %+v vs %+v", params, want)
	}
}

func TestSnapshotUsesCamelCaseKeys(t *testing.T) {
	data, err := json.Marshal(newPostTask())
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	params, ok := raw["parameters"].(map[string]any)
	if !ok {
		t.Fatalf("expected parameters object, got %v", raw["parameters"])
	}
	if params["platform"] != "facebook" || params["content"] != "Hola mundo" || params["contentType"] != "text" {
		t.Fatalf("unexpected parameters: %v", params)
	}
	if raw["userId"] != "user-1" {
		t.Fatalf("expected userId key, got %v", raw)
	}
}

func TestDecodeParamsUnknownType(t *testing.T) {
	_, err := DecodeParams(Type("FAX"), json.RawMessage(`{}`))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestExecutableIntentAllowlist(t *testing.T) {
	if _, ok := ExecutableIntent("general_query").TaskType(); ok {
		t.Fatal("general_query must not be executable")
	}
	typ, ok := IntentEmailCampaignCreate.TaskType()
	if !ok || typ != TypeEmailCampaign {
		t.Fatalf("expected EMAIL_CAMPAIGN, got %q %v", typ, ok)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"post ok", SocialPostParams{Platform: "facebook", Content: "x", ContentType: ContentText}, false},
		{"post empty", SocialPostParams{Platform: "facebook"}, true},
		{"schedule no time", SocialScheduleParams{SocialPostParams: SocialPostParams{Platform: "facebook", Content: "x"}}, true},
		{"list create without name", EmailListParams{Provider: "mailchimp", Action: ListActionCreate}, true},
		{"list unknown action", EmailListParams{Provider: "mailchimp", Action: "purge"}, true},
		{"list subscribe ok", EmailListParams{Provider: "mailchimp", Action: ListActionSubscribe, Email: "a@b.co"}, false},
		{"campaign without content", EmailCampaignParams{Provider: "mailchimp"}, true},
		{"analytics ok", EmailAnalyticsParams{Provider: "mailchimp"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
