package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/veritype-ai/policyai/internal/schema"
)

type stubClient struct {
	responses []string
	calls     int
}

func (s *stubClient) Complete(ctx context.Context, system, user string) (string, error) {
	r := s.responses[s.calls]
	s.calls++
	return r, nil
}

const dsl = `type EmailPolicy {
  priority: ["low", "medium", "high"] @ agreement = "low";
}`

func callToolRequest(t *testing.T, args map[string]any) mcplib.CallToolRequest {
	t.Helper()
	var req mcplib.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestHandleApplyMergesMatchedRule(t *testing.T) {
	rules := []ruleParam{
		{Prompt: "mentions urgent", Action: map[string]any{"priority": "high"}},
	}
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		t.Fatal(err)
	}

	s := New(&stubClient{responses: []string{
		`{"__rule_numbers__":[1],"__justification__":"matched","` + mustIdentifier(t, dsl, "priority") + `":"high"}`,
	}}, slog.Default(), "test")

	result, err := s.handleApply(context.Background(), callToolRequest(t, map[string]any{
		"policy_type": dsl,
		"rules":       string(rulesJSON),
		"input":       "this is urgent",
	}))
	if err != nil {
		t.Fatalf("handleApply error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result.Content)
	}
}

func TestHandleApplyRejectsInvalidRuleAction(t *testing.T) {
	rules := []ruleParam{
		{Prompt: "bad", Action: map[string]any{"priority": "not-a-valid-enum-value"}},
	}
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		t.Fatal(err)
	}

	s := New(&stubClient{responses: []string{`{}`}}, slog.Default(), "test")

	result, err := s.handleApply(context.Background(), callToolRequest(t, map[string]any{
		"policy_type": dsl,
		"rules":       string(rulesJSON),
		"input":       "text",
	}))
	if err != nil {
		t.Fatalf("handleApply error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error for an invalid enum value")
	}
}

func TestHandleGeneratePolicyProducesAction(t *testing.T) {
	s := New(&stubClient{responses: []string{
		`{"priority":"high"}`,
	}}, slog.Default(), "test")

	result, err := s.handleGeneratePolicy(context.Background(), callToolRequest(t, map[string]any{
		"policy_type": dsl,
		"injection":   "mentions urgent",
	}))
	if err != nil {
		t.Fatalf("handleGeneratePolicy error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result.Content)
	}
}

// mustIdentifier parses dsl and returns the opaque identifier for field
// name, so tests can build a response keyed correctly without hardcoding
// a UUID that would not match the freshly parsed schema.
func mustIdentifier(t *testing.T, dsl, name string) string {
	t.Helper()
	pt, err := schema.Parse(dsl)
	if err != nil {
		t.Fatal(err)
	}
	f, ok := pt.FieldByName(name)
	if !ok {
		t.Fatalf("field %q not found", name)
	}
	return f.ID.String()
}
