package ratelimit

import (
	"context"
	"fmt"

	"github.com/veritype-ai/policyai/internal/llmclient"
)

// completionKey is the single bucket key used for a rate-limited
// CompletionClient: all calls through one wrapper share one budget,
// regardless of which policy type or input triggered them.
const completionKey Key = "completion"

// CompletionClient wraps an llmclient.CompletionClient with a token-bucket
// limit on outbound completion calls, so a Manager backed by many policies
// and a high ApplyBatch concurrency cannot burst past a provider's rate
// limit.
type CompletionClient struct {
	inner   llmclient.CompletionClient
	limiter *MemoryLimiter
}

// NewCompletionClient wraps inner with a limiter allowing perMinute calls
// per minute, bursting up to perMinute requests.
func NewCompletionClient(inner llmclient.CompletionClient, perMinute int) *CompletionClient {
	if perMinute < 1 {
		perMinute = 1
	}
	return &CompletionClient{
		inner:   inner,
		limiter: NewMemoryLimiter(float64(perMinute)/60.0, perMinute),
	}
}

// Complete consumes one token from the bucket and delegates to inner.
// If the bucket is empty it returns an error immediately rather than
// waiting for the next refill.
func (c *CompletionClient) Complete(ctx context.Context, system, user string) (string, error) {
	ok, err := c.limiter.Allow(ctx, completionKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("ratelimit: completion rate limit exceeded")
	}
	return c.inner.Complete(ctx, system, user)
}

// Close releases the limiter's background eviction goroutine.
func (c *CompletionClient) Close() error {
	return c.limiter.Close()
}
