package email

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
)

const providerName = "smtp"

type campaign struct {
	connector.Campaign
	sent  bool
	count int
}

// Connector is an EmailConnector over SMTP.
type Connector struct {
	sender *Sender
	lists  map[string][]string

	mu        sync.Mutex
	campaigns map[string]*campaign
}

var _ connector.EmailConnector = (*Connector)(nil)

// New builds a connector from credentials host, port, from and lists, where
// lists is a JSON object mapping list name to recipient addresses. username
// and password are optional.
func New(creds connector.Credentials) (*Connector, error) {
	if err := creds.Require("host", "from", "lists"); err != nil {
		return nil, fmt.Errorf("smtp: %w", err)
	}
	port, err := strconv.Atoi(creds.GetOr("port", "587"))
	if err != nil || port <= 0 {
		return nil, fmt.Errorf("smtp: invalid port %q: %w", creds.Get("port"), domain.ErrValidation)
	}
	var lists map[string][]string
	if err := json.Unmarshal([]byte(creds.Get("lists")), &lists); err != nil {
		return nil, fmt.Errorf("smtp: invalid lists: %w", domain.ErrValidation)
	}

	return &Connector{
		sender: NewSender(SMTPConfig{
			Host:     creds.Get("host"),
			Port:     port,
			Username: creds.Get("username"),
			Password: creds.Get("password"),
			From:     creds.Get("from"),
		}),
		lists:     lists,
		campaigns: make(map[string]*campaign),
	}, nil
}

func (c *Connector) Provider() string { return providerName }

// Verify checks that at least one list has recipients. The relay itself is
// only contacted when a campaign is sent.
func (c *Connector) Verify(_ context.Context) error {
	for _, rcpts := range c.lists {
		if len(rcpts) > 0 {
			return nil
		}
	}
	return fmt.Errorf("smtp: no recipients configured: %w", domain.ErrValidation)
}

// GetLists returns the configured lists sorted by name. List IDs are the
// list names.
func (c *Connector) GetLists(_ context.Context) ([]connector.List, error) {
	out := make([]connector.List, 0, len(c.lists))
	for name, rcpts := range c.lists {
		out = append(out, connector.List{ID: name, Name: name, MemberCount: len(rcpts)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Connector) CreateList(_ context.Context, _ string) (connector.ListResult, error) {
	return connector.ListResult{Error: "El proveedor SMTP no permite crear listas; configúralas en la cuenta"}, connector.ErrUnsupported
}

func (c *Connector) AddSubscriber(_ context.Context, _, _ string) (connector.ListResult, error) {
	return connector.ListResult{Error: "El proveedor SMTP no permite añadir suscriptores; configúralos en la cuenta"}, connector.ErrUnsupported
}

// CreateCampaign stores the campaign until it is sent.
func (c *Connector) CreateCampaign(_ context.Context, camp connector.Campaign) (connector.CampaignResult, error) {
	if _, ok := c.lists[camp.ListID]; !ok {
		return connector.CampaignResult{Error: fmt.Sprintf("La lista %q no existe", camp.ListID)}, nil
	}
	id := uuid.New().String()
	c.mu.Lock()
	c.campaigns[id] = &campaign{Campaign: camp}
	c.mu.Unlock()
	return connector.CampaignResult{Success: true, CampaignID: id}, nil
}

// SendCampaign delivers a stored campaign to every address on its list.
func (c *Connector) SendCampaign(ctx context.Context, campaignID string) (connector.CampaignResult, error) {
	c.mu.Lock()
	camp, ok := c.campaigns[campaignID]
	c.mu.Unlock()
	if !ok {
		return connector.CampaignResult{CampaignID: campaignID, Error: "Campaña no encontrada"}, nil
	}
	if camp.sent {
		return connector.CampaignResult{CampaignID: campaignID, Error: "La campaña ya fue enviada"}, nil
	}

	rcpts := c.lists[camp.ListID]
	if err := c.sender.Send(ctx, camp.FromName, camp.ReplyTo, rcpts, camp.Subject, camp.Content); err != nil {
		return connector.CampaignResult{CampaignID: campaignID}, fmt.Errorf("smtp campaign %s: %w", campaignID, err)
	}

	c.mu.Lock()
	camp.sent = true
	camp.count = len(rcpts)
	c.mu.Unlock()
	return connector.CampaignResult{Success: true, CampaignID: campaignID}, nil
}

// GetCampaignReport only knows how many messages were handed to the relay.
func (c *Connector) GetCampaignReport(_ context.Context, campaignID string) (connector.CampaignReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	camp, ok := c.campaigns[campaignID]
	if !ok || !camp.sent {
		return connector.CampaignReport{CampaignID: campaignID, Error: "El proveedor SMTP no ofrece estadísticas de apertura"}, connector.ErrUnsupported
	}
	return connector.CampaignReport{
		Success:    true,
		CampaignID: campaignID,
		Metrics:    map[string]float64{"emails_sent": float64(camp.count)},
	}, nil
}
