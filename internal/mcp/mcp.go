// Package mcp implements the Model Context Protocol server for PolicyAI.
//
// The MCP server exposes the same apply/generate capabilities as the root
// package through MCP tools and a resource, so MCP-compatible AI agents can
// evaluate and author policies without a direct Go dependency on this
// module.
package mcp

import (
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/veritype-ai/policyai/internal/llmclient"
)

const serverInstructions = `You have access to PolicyAI, a natural-language policy engine.

TOOLS:
- policyai_apply: given a policy type, a set of rules (each an injected
  natural-language condition paired with a typed action), and an input
  text, ask the model which rules match and merge their actions into one
  typed result.
- policyai_generate_policy: given a policy type and a natural-language
  condition, have the model produce the typed action that condition
  should imply, ready to use as a policyai_apply rule.

Read the policyai://policy-type/example resource for the DSL format
policy types and actions are expressed in.`

// Server wraps the MCP server with PolicyAI's completion client.
type Server struct {
	mcpServer *mcpserver.MCPServer
	client    llmclient.CompletionClient
	logger    *slog.Logger
}

// New creates and configures a new MCP server backed by client.
func New(client llmclient.CompletionClient, logger *slog.Logger, version string) *Server {
	s := &Server{
		client: client,
		logger: logger,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"policyai",
		version,
		mcpserver.WithResourceCapabilities(true, false),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithInstructions(serverInstructions),
	)

	s.registerResources()
	s.registerTools()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
