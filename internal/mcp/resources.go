package mcp

import (
	"context"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

const policyTypeExample = `type EmailPolicy {
  priority: ["low", "medium", "high"] @ agreement = "low";
  flagged: bool @ highest wins = false;
  tags: [string];
}`

func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"policyai://policy-type/example",
			"Policy Type Example",
			mcplib.WithResourceDescription("An example policy type declaration in PolicyAI's DSL, showing field kinds, defaults, and conflict strategies"),
			mcplib.WithMIMEType("text/plain"),
		),
		s.handlePolicyTypeExample,
	)
}

func (s *Server) handlePolicyTypeExample(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      "policyai://policy-type/example",
			MIMEType: "text/plain",
			Text:     policyTypeExample,
		},
	}, nil
}
