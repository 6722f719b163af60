package policyai

import (
	"context"

	"github.com/veritype-ai/policyai/internal/generate"
)

// WithSemanticInjection elicits the action corresponding to injection
// (the natural-language condition under which the resulting Policy
// fires) and pairs it with injection to form a Policy.
func (pt *PolicyType) WithSemanticInjection(ctx context.Context, client CompletionClient, injection string, opts ...GenerateOption) (*Policy, error) {
	cfg := resolveGenerateOptions(opts)
	action, err := generate.WithSemanticInjection(ctx, client, pt.inner, injection, cfg.maxRetries)
	if err != nil {
		return nil, err
	}
	return &Policy{Type: pt, Prompt: injection, Action: action}, nil
}
