// Package llmclient abstracts the completion model as complete(system,
// user) -> text, and implements the bounded-retry, JSON-extraction, and
// structural-parse rules a caller needs before handing a response to the
// merge engine.
package llmclient

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

// CompletionClient is the abstract completion service: given a system
// prompt and a user turn, it returns the model's raw text response.
// Implementations are responsible for their own HTTP transport and
// per-call timeout.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const retryPrompt = "\n\nYour previous response was not valid JSON. Respond with a single JSON object only."

// CallWithRetry drives one logical Apply/WithSemanticInjection completion
// to a structurally parsed response. Transport failures are retried with
// bounded exponential backoff (via cenkalti/backoff); a response that
// fails JSON extraction or parsing triggers one re-prompt each, up to
// maxRetries total attempts. After maxRetries failures the call returns
// an *LlmError whose Kind is that of the last attempt's failure:
// Unparseable or Transport (Timeout as soon as ctx is done).
func CallWithRetry(ctx context.Context, client CompletionClient, system, user string, maxRetries int) (*ParsedResponse, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	currentUser := user
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		raw, err := completeWithBackoff(ctx, client, system, currentUser)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &LlmError{Kind: Timeout, Err: ctx.Err()}
			}
			lastErr = &LlmError{Kind: Transport, Err: err}
			continue
		}

		parsed, perr := ParseResponse(raw)
		if perr == nil {
			return parsed, nil
		}
		lastErr = &LlmError{Kind: Unparseable, Err: perr}
		currentUser = user + retryPrompt
	}

	return nil, lastErr
}

// completeWithBackoff retries a single Complete call against transport
// errors only, using a short exponential backoff bounded to three
// attempts; JSON-parse retries are handled one layer up, as a re-prompt
// rather than a bare resend.
func completeWithBackoff(ctx context.Context, client CompletionClient, system, user string) (string, error) {
	var result string
	op := func() error {
		text, err := client.Complete(ctx, system, user)
		if err != nil {
			return err
		}
		result = text
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return result, nil
}
