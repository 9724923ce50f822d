package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

type fakeRelay struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeRelay) send(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
	return nil
}

func newTestConnector(t *testing.T) (*Connector, *fakeRelay) {
	t.Helper()
	c, err := New(connector.Credentials{
		"host":  "smtp.example.com",
		"from":  "noticias@genia.ai",
		"lists": `{"clientes":["ana@example.com","luis@example.com"],"vacia":[]}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	relay := &fakeRelay{}
	c.sender.send = relay.send
	return c, relay
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name  string
		creds connector.Credentials
	}{
		{"missing host", connector.Credentials{"from": "a@b.c", "lists": "{}"}},
		{"bad port", connector.Credentials{"host": "h", "from": "a@b.c", "port": "x", "lists": "{}"}},
		{"bad lists", connector.Credentials{"host": "h", "from": "a@b.c", "lists": "[1,2]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.creds); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestGetListsSorted(t *testing.T) {
	c, _ := newTestConnector(t)
	lists, err := c.GetLists(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(lists) != 2 || lists[0].ID != "clientes" || lists[0].MemberCount != 2 || lists[1].ID != "vacia" {
		t.Errorf("unexpected lists %+v", lists)
	}
	if err := c.Verify(context.Background()); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestCampaignSend(t *testing.T) {
	c, relay := newTestConnector(t)

	res, err := c.CreateCampaign(context.Background(), connector.Campaign{
		ListID: "clientes", Subject: "Novedades", Content: "<p>Hola</p>", FromName: "Tienda",
	})
	if err != nil || !res.Success || res.CampaignID == "" {
		t.Fatalf("CreateCampaign: %+v %v", res, err)
	}

	sent, err := c.SendCampaign(context.Background(), res.CampaignID)
	if err != nil || !sent.Success {
		t.Fatalf("SendCampaign: %+v %v", sent, err)
	}
	if len(relay.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(relay.sent))
	}
	first := relay.sent[0]
	if first.addr != "smtp.example.com:587" || first.from != "noticias@genia.ai" || first.to[0] != "ana@example.com" {
		t.Errorf("unexpected envelope %+v", first)
	}
	if !strings.Contains(first.msg, "Subject: Novedades") || !strings.HasSuffix(first.msg, "<p>Hola</p>") {
		t.Errorf("unexpected message %q", first.msg)
	}

	again, err := c.SendCampaign(context.Background(), res.CampaignID)
	if err != nil || again.Success {
		t.Errorf("second send should be rejected, got %+v %v", again, err)
	}

	rep, err := c.GetCampaignReport(context.Background(), res.CampaignID)
	if err != nil || rep.Metrics["emails_sent"] != 2 {
		t.Errorf("unexpected report %+v %v", rep, err)
	}
}

func TestCampaignUnknownList(t *testing.T) {
	c, _ := newTestConnector(t)
	res, err := c.CreateCampaign(context.Background(), connector.Campaign{ListID: "otros"})
	if err != nil || res.Success || res.Error == "" {
		t.Errorf("expected rejection, got %+v %v", res, err)
	}
}

func TestRelayFailure(t *testing.T) {
	c, relay := newTestConnector(t)
	relay.err = errors.New("connection refused")

	res, _ := c.CreateCampaign(context.Background(), connector.Campaign{ListID: "clientes", Subject: "s", Content: "c"})
	if _, err := c.SendCampaign(context.Background(), res.CampaignID); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestUnsupportedOperations(t *testing.T) {
	c, _ := newTestConnector(t)
	if res, err := c.CreateList(context.Background(), "nueva"); !errors.Is(err, connector.ErrUnsupported) || res.Error == "" {
		t.Errorf("CreateList: %+v %v", res, err)
	}
	if _, err := c.AddSubscriber(context.Background(), "clientes", "x@y.z"); !errors.Is(err, connector.ErrUnsupported) {
		t.Errorf("AddSubscriber: %v", err)
	}
	if _, err := c.GetCampaignReport(context.Background(), "nope"); !errors.Is(err, connector.ErrUnsupported) {
		t.Errorf("GetCampaignReport: %v", err)
	}
}
