package policyai

import "github.com/veritype-ai/policyai/internal/llmclient"

// CompletionClient is the abstract completion service PolicyAI treats
// the LLM as: given a system prompt and a user turn, return the model's
// raw text response. Apply and WithSemanticInjection are the only two
// operations that call it.
type CompletionClient = llmclient.CompletionClient

// OpenAIClient is a concrete CompletionClient backed by the OpenAI chat
// completions endpoint.
type OpenAIClient = llmclient.OpenAIClient

// OpenAIOption configures an OpenAIClient at construction.
type OpenAIOption = llmclient.OpenAIOption

// WithBaseURL points the client at an OpenAI-compatible endpoint other
// than the public API, e.g. a proxy or a self-hosted gateway.
func WithBaseURL(url string) OpenAIOption {
	return llmclient.WithBaseURL(url)
}

// NewOpenAIClient constructs an OpenAIClient for the given API key and
// model name.
func NewOpenAIClient(apiKey, model string, opts ...OpenAIOption) *OpenAIClient {
	return llmclient.NewOpenAIClient(apiKey, model, opts...)
}
