// Package generate implements policy generation from a semantic
// injection: given a natural-language condition, elicit the structured
// action that, paired with the injection text, forms a reusable Policy.
package generate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/veritype-ai/policyai/internal/llmclient"
	"github.com/veritype-ai/policyai/internal/schema"
)

const repromptSuffix = "\n\nYour previous response was not valid JSON. Respond with a single JSON object only."

// WithSemanticInjection elicits the action a policy with the given
// injection should assert against pt. Transport and JSON-parse failures
// are retried, for at most maxRetries attempts in total (a JSON-parse
// failure re-prompts the model on the next attempt); a schema violation
// or an empty action fail immediately.
func WithSemanticInjection(ctx context.Context, client llmclient.CompletionClient, pt *schema.PolicyType, injection string, maxRetries int) (map[string]any, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	system, user := buildPrompt(pt, injection)
	currentUser := user
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		raw, err := client.Complete(ctx, system, currentUser)
		if err != nil {
			lastErr = &Error{Kind: Unparseable, Err: err}
			continue
		}

		obj, err := llmclient.ExtractJSONObject(raw)
		if err != nil {
			lastErr = &Error{Kind: Unparseable, Err: err}
			currentUser = user + repromptSuffix
			continue
		}

		var fields map[string]any
		if err := json.Unmarshal([]byte(obj), &fields); err != nil {
			lastErr = &Error{Kind: Unparseable, Err: err}
			currentUser = user + repromptSuffix
			continue
		}

		if len(fields) == 0 {
			return nil, &Error{Kind: NoFieldsMentioned, Err: fmt.Errorf("model emitted no fields for injection %q", injection)}
		}

		action, err := schema.ValidateAction(pt, fields)
		if err != nil {
			return nil, &Error{Kind: SchemaViolation, Err: err}
		}
		return action, nil
	}

	return nil, lastErr
}
