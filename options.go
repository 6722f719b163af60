package policyai

import (
	"log/slog"
	"time"
)

const defaultMaxRetries = 3

// ManagerOption configures a Manager at construction, following the
// functional-options pattern used throughout this codebase.
type ManagerOption func(*managerOptions)

type managerOptions struct {
	logger *slog.Logger
}

// WithLogger sets the structured logger a Manager uses for its own
// diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(o *managerOptions) { o.logger = logger }
}

func resolveManagerOptions(opts []ManagerOption) managerOptions {
	o := managerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ApplyOption configures a single Apply call.
type ApplyOption func(*applyOptions)

type applyOptions struct {
	maxRetries     int
	timeout        time.Duration
	failOnConflict bool
}

// WithMaxRetries bounds the number of completion attempts for transport
// and JSON-parse failures. Default 3.
func WithMaxRetries(n int) ApplyOption {
	return func(o *applyOptions) { o.maxRetries = n }
}

// WithTimeout bounds the whole Apply call; exceeding it surfaces
// LlmError{Kind: LlmTimeout}.
func WithTimeout(d time.Duration) ApplyOption {
	return func(o *applyOptions) { o.timeout = d }
}

// WithFailOnConflict converts an otherwise-non-fatal Report.Conflicts
// into a fatal ApplyError{Kind: ApplyConflictKind}.
func WithFailOnConflict(fail bool) ApplyOption {
	return func(o *applyOptions) { o.failOnConflict = fail }
}

func resolveApplyOptions(opts []ApplyOption) applyOptions {
	o := applyOptions{maxRetries: defaultMaxRetries}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// GenerateOption configures a WithSemanticInjection call.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	maxRetries int
}

// WithGenerateMaxRetries bounds completion attempts for
// WithSemanticInjection, mirroring WithMaxRetries for Apply.
func WithGenerateMaxRetries(n int) GenerateOption {
	return func(o *generateOptions) { o.maxRetries = n }
}

func resolveGenerateOptions(opts []GenerateOption) generateOptions {
	o := generateOptions{maxRetries: defaultMaxRetries}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
