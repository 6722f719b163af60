// Command policyai applies a policy type and a set of rules to an input
// text and prints the merged Report as JSON.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	policyai "github.com/veritype-ai/policyai"
	"github.com/veritype-ai/policyai/internal/config"
	"github.com/veritype-ai/policyai/internal/ratelimit"
	"github.com/veritype-ai/policyai/internal/telemetry"
)

type ruleFile struct {
	Prompt string         `json:"prompt"`
	Action map[string]any `json:"action"`
}

func main() {
	level := slog.LevelInfo
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger, os.Args[1:]); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("policyai", flag.ContinueOnError)
	typePath := fs.String("type", "", "path to a policy type DSL file")
	rulesPath := fs.String("rules", "", "path to a JSON Lines file of {prompt, action} rules")
	inputPath := fs.String("input", "", "path to the input text file (defaults to stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *typePath == "" || *rulesPath == "" {
		return fmt.Errorf("usage: policyai -type TYPE.dsl -rules RULES.jsonl [-input INPUT.txt]")
	}

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

	typeText, err := os.ReadFile(*typePath)
	if err != nil {
		return fmt.Errorf("read policy type: %w", err)
	}
	pt, err := policyai.ParsePolicyType(string(typeText))
	if err != nil {
		return fmt.Errorf("parse policy type: %w", err)
	}

	mgr := policyai.NewManager(policyai.WithLogger(logger))
	if err := loadRules(mgr, pt, *rulesPath); err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	input, err := readInput(*inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	client := ratelimit.NewCompletionClient(
		policyai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, policyai.WithBaseURL(cfg.OpenAIBaseURL)),
		cfg.RateLimitPerMinute,
	)
	defer client.Close()

	report, err := mgr.Apply(ctx, client, pt, input, policyai.WithMaxRetries(cfg.MaxRetries), policyai.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func loadRules(mgr *policyai.Manager, pt *policyai.PolicyType, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		var rf ruleFile
		if err := json.Unmarshal([]byte(text), &rf); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		p, err := policyai.NewPolicy(pt, rf.Prompt, rf.Action)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		mgr.Add(p)
	}
	return scanner.Err()
}

func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
