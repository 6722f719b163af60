package ratelimit

import "context"

// Key identifies what a rate limit is scoped to — an outbound
// completion provider, an MCP caller, or any other unit PolicyAI wants
// its own budget for. A bare string rather than a struct: callers
// compose it from whatever dimension they're budgeting on.
type Key string

// Limiter bounds how often a caller may proceed for a given key.
type Limiter interface {
	Allow(ctx context.Context, key Key) (bool, error)
	Close() error
}

// NoopLimiter never rate limits; it satisfies Limiter for callers that want
// rate limiting disableable without a nil check at every call site.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, Key) (bool, error) { return true, nil }
func (NoopLimiter) Close() error                             { return nil }
