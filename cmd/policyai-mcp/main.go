// Command policyai-mcp serves PolicyAI's apply/generate tools over MCP
// stdio transport.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	policyai "github.com/veritype-ai/policyai"
	"github.com/veritype-ai/policyai/internal/config"
	"github.com/veritype-ai/policyai/internal/mcp"
	"github.com/veritype-ai/policyai/internal/ratelimit"
	"github.com/veritype-ai/policyai/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, "0.1.0", cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer otelShutdown(context.Background())

	client := ratelimit.NewCompletionClient(
		policyai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, policyai.WithBaseURL(cfg.OpenAIBaseURL)),
		cfg.RateLimitPerMinute,
	)
	defer client.Close()

	srv := mcp.New(client, logger, "0.1.0")

	logger.Info("policyai-mcp starting", "transport", "stdio")
	return mcpserver.ServeStdio(srv.MCPServer())
}
