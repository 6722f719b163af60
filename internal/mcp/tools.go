package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/veritype-ai/policyai/internal/generate"
	"github.com/veritype-ai/policyai/internal/llmclient"
	"github.com/veritype-ai/policyai/internal/merge"
	"github.com/veritype-ai/policyai/internal/prompt"
	"github.com/veritype-ai/policyai/internal/schema"
)

// ruleParam is the wire shape for one rule in policyai_apply's "rules"
// argument: a natural-language condition paired with the typed action to
// assert when it matches, in user-facing field names.
type ruleParam struct {
	Prompt string         `json:"prompt"`
	Action map[string]any `json:"action"`
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcplib.NewTool("policyai_apply",
			mcplib.WithDescription(`Evaluate a set of natural-language policy rules against an input text
and return the merged typed result.

WHEN TO USE: you have a policy type (a small typed schema, see
policyai://policy-type/example) and a list of rules, each an injected
natural-language condition paired with the action to assert when it
holds, and you want to know what action a piece of text implies.

The policy_type argument is DSL text declaring the schema's fields.
The rules argument is a JSON array of {"prompt": "...", "action": {...}}
objects, in the order they should be numbered. The action in each rule
must use the policy type's field names and conform to each field's kind.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(false),
			mcplib.WithOpenWorldHintAnnotation(true),
			mcplib.WithString("policy_type",
				mcplib.Description("DSL text declaring the policy type's fields, e.g. `type Foo { bar: bool }`"),
				mcplib.Required(),
			),
			mcplib.WithString("rules",
				mcplib.Description(`JSON array of {"prompt": string, "action": object} rules, in rule-number order`),
				mcplib.Required(),
			),
			mcplib.WithString("input",
				mcplib.Description("The text to evaluate the rules against"),
				mcplib.Required(),
			),
			mcplib.WithNumber("max_retries",
				mcplib.Description("Maximum completion attempts on transport or parse failure"),
				mcplib.Min(1),
				mcplib.Max(10),
				mcplib.DefaultNumber(3),
			),
		),
		s.handleApply,
	)

	s.mcpServer.AddTool(
		mcplib.NewTool("policyai_generate_policy",
			mcplib.WithDescription(`Given a policy type and a natural-language condition, have the model
produce the typed action that condition should imply.

WHEN TO USE: you have a policy type and want to author a new rule from a
description ("emails mentioning invoices should be flagged high
priority") rather than writing the action JSON by hand. The result's
"action" can be passed straight into a policyai_apply rule alongside the
injection text you supplied.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(false),
			mcplib.WithOpenWorldHintAnnotation(true),
			mcplib.WithString("policy_type",
				mcplib.Description("DSL text declaring the policy type's fields"),
				mcplib.Required(),
			),
			mcplib.WithString("injection",
				mcplib.Description("The natural-language condition to generate an action for"),
				mcplib.Required(),
			),
			mcplib.WithNumber("max_retries",
				mcplib.Description("Maximum completion attempts on transport or parse failure"),
				mcplib.Min(1),
				mcplib.Max(10),
				mcplib.DefaultNumber(3),
			),
		),
		s.handleGeneratePolicy,
	)
}

func (s *Server) handleApply(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	dsl := request.GetString("policy_type", "")
	rulesJSON := request.GetString("rules", "")
	input := request.GetString("input", "")
	maxRetries := request.GetInt("max_retries", 3)

	if dsl == "" || rulesJSON == "" || input == "" {
		return errorResult("policy_type, rules, and input are all required"), nil
	}

	pt, err := schema.Parse(dsl)
	if err != nil {
		return errorResult(fmt.Sprintf("invalid policy_type: %v", err)), nil
	}

	var params []ruleParam
	if err := json.Unmarshal([]byte(rulesJSON), &params); err != nil {
		return errorResult(fmt.Sprintf("rules must be a JSON array: %v", err)), nil
	}

	activeRules := make([]prompt.ActiveRule, len(params))
	mergeRules := make([]merge.RuleInput, len(params))
	for i, p := range params {
		action, err := schema.ValidateAction(pt, p.Action)
		if err != nil {
			return errorResult(fmt.Sprintf("rule %d action invalid: %v", i+1, err)), nil
		}
		activeRules[i] = prompt.ActiveRule{Index: i + 1, Injection: p.Prompt, Action: action}
		mergeRules[i] = merge.RuleInput{Action: action}
	}

	system, user := prompt.BuildApplyPrompt(pt, activeRules, input)

	parsed, err := llmclient.CallWithRetry(ctx, s.client, system, user, maxRetries)
	if err != nil {
		return errorResult(fmt.Sprintf("apply failed: %v", err)), nil
	}

	report := merge.Merge(pt, mergeRules, parsed.RuleNumbers, parsed.Identifiers)
	if len(report.MissingRequired) > 0 {
		return errorResult(fmt.Sprintf("field(s) %v have no matched value and no declared default", report.MissingRequired)), nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"value":         report.Value,
		"matched_rules": report.MatchedRules,
		"conflicts":     report.Conflicts,
		"justification": parsed.Justification,
	}, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("marshal report: %v", err)), nil
	}

	return mcplib.NewToolResultText(string(data)), nil
}

func (s *Server) handleGeneratePolicy(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	dsl := request.GetString("policy_type", "")
	injection := request.GetString("injection", "")
	maxRetries := request.GetInt("max_retries", 3)

	if dsl == "" || injection == "" {
		return errorResult("policy_type and injection are both required"), nil
	}

	pt, err := schema.Parse(dsl)
	if err != nil {
		return errorResult(fmt.Sprintf("invalid policy_type: %v", err)), nil
	}

	action, err := generate.WithSemanticInjection(ctx, s.client, pt, injection, maxRetries)
	if err != nil {
		return errorResult(fmt.Sprintf("generate failed: %v", err)), nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"prompt": injection,
		"action": action,
	}, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("marshal action: %v", err)), nil
	}

	return mcplib.NewToolResultText(string(data)), nil
}
