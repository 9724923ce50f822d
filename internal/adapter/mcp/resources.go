package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/clone"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
)

type cloneSummary struct {
	Tag         clone.Tag `json:"tag"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// registerResources registers all MCP resources on the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"genia://clones",
			"Clones",
			mcplib.WithResourceDescription("The personas that answer user messages"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleClonesResource,
	)

	s.mcpServer.AddResource(
		mcplib.NewResource(
			"genia://connectors",
			"Connectors",
			mcplib.WithResourceDescription("Social platforms and email providers tasks can run against"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleConnectorsResource,
	)
}

func (s *Server) handleClonesResource(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	catalog := s.deps.Catalog
	if catalog == nil {
		catalog = clone.BuiltinPersonas()
	}
	out := make([]cloneSummary, 0, len(clone.Tags))
	for _, tag := range clone.Tags {
		if p, ok := catalog[tag]; ok {
			out = append(out, cloneSummary{Tag: p.Tag, Name: p.Name, Description: p.Description})
		}
	}
	return jsonResource(req.Params.URI, out)
}

func (s *Server) handleConnectorsResource(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	social, email := connector.Available()
	return jsonResource(req.Params.URI, map[string][]string{"social": social, "email": email})
}

func jsonResource(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
