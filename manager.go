package policyai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/veritype-ai/policyai/internal/llmclient"
	"github.com/veritype-ai/policyai/internal/merge"
	"github.com/veritype-ai/policyai/internal/prompt"
)

var (
	tracer         = otel.Tracer("github.com/veritype-ai/policyai")
	meter          = otel.Meter("github.com/veritype-ai/policyai")
	matchedCounter metric.Int64Counter
	conflictCounter metric.Int64Counter
	meterOnce      sync.Once
)

func initMeters() {
	meterOnce.Do(func() {
		matchedCounter, _ = meter.Int64Counter("policyai.apply.matched_rules")
		conflictCounter, _ = meter.Int64Counter("policyai.apply.conflicts")
	})
}

// Manager holds an ordered sequence of Policy values and drives Apply
// against a CompletionClient. It supports concurrent Add/Apply under a
// "readers observe a consistent snapshot" discipline: an in-flight Apply
// sees the policy set as of call entry; concurrent Add calls take effect
// only on subsequent Apply calls.
type Manager struct {
	mu       sync.RWMutex
	policies []*Policy
	logger   *slog.Logger
}

// NewManager constructs an empty Manager.
func NewManager(opts ...ManagerOption) *Manager {
	o := resolveManagerOptions(opts)
	initMeters()
	return &Manager{logger: o.logger}
}

// Add appends a policy to the set Apply will consider on its next call.
func (m *Manager) Add(p *Policy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies = append(m.policies, p)
	m.logger.Debug("policy added", "policy_type", p.Type.Name(), "rule_count", len(m.policies))
}

// Policies returns a snapshot of the policies currently held.
func (m *Manager) Policies() []*Policy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make([]*Policy, len(m.policies))
	copy(snap, m.policies)
	return snap
}

// Apply issues one logical completion against client (re-issued on
// transport or JSON-parse failure, up to the WithMaxRetries bound),
// asking it which of the Manager's policies match input, then merges
// their actions into a single Report conforming to template. Every policy held at call entry
// participates in rule numbering, in Add order; additions racing with
// this call are not observed by it.
func (m *Manager) Apply(ctx context.Context, client CompletionClient, template *PolicyType, input string, opts ...ApplyOption) (*Report, error) {
	cfg := resolveApplyOptions(opts)

	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	ctx, span := tracer.Start(ctx, "policyai.Apply", trace.WithAttributes(
		attribute.String("policyai.policy_type", template.Name()),
	))
	defer span.End()

	policies := m.Policies()
	m.logger.Debug("apply starting", "policy_type", template.Name(), "rule_count", len(policies))

	rules := make([]prompt.ActiveRule, len(policies))
	mergeRules := make([]merge.RuleInput, len(policies))
	for i, p := range policies {
		rules[i] = prompt.ActiveRule{Index: i + 1, Injection: p.Prompt, Action: p.Action}
		mergeRules[i] = merge.RuleInput{Action: p.Action}
	}

	system, user := prompt.BuildApplyPrompt(template.inner, rules, input)

	parsed, err := llmclient.CallWithRetry(ctx, client, system, user, cfg.maxRetries)
	if err != nil {
		if ctx.Err() != nil {
			m.logger.Warn("apply timed out", "policy_type", template.Name(), "error", ctx.Err())
			return nil, &LlmError{Kind: LlmTimeout, Err: ctx.Err()}
		}
		m.logger.Error("apply failed", "policy_type", template.Name(), "error", err)
		span.RecordError(err)
		return nil, err
	}

	mergeReport := merge.Merge(template.inner, mergeRules, parsed.RuleNumbers, parsed.Identifiers)
	if len(mergeReport.MissingRequired) > 0 {
		err := fmt.Errorf("field(s) %v have no matched value and no declared default", mergeReport.MissingRequired)
		m.logger.Error("apply produced schema violation", "policy_type", template.Name(), "fields", mergeReport.MissingRequired)
		span.RecordError(err)
		return nil, &ApplyError{Kind: ApplySchemaViolation, Err: err}
	}
	report := toReport(mergeReport, parsed.Justification)

	span.SetAttributes(
		attribute.Int("policyai.matched_rules", len(report.MatchedRules)),
		attribute.Int("policyai.conflicts", len(report.Conflicts)),
	)
	matchedCounter.Add(ctx, int64(len(report.MatchedRules)))
	conflictCounter.Add(ctx, int64(len(report.Conflicts)))
	m.logger.Debug("apply finished", "policy_type", template.Name(),
		"matched_rules", len(report.MatchedRules), "conflicts", len(report.Conflicts))

	if cfg.failOnConflict && len(report.Conflicts) > 0 {
		return report, &ApplyError{Kind: ApplyConflictKind, Err: fmt.Errorf("%d field(s) conflicted", len(report.Conflicts))}
	}

	return report, nil
}

// ApplyBatch runs Apply once per input concurrently, bounding the number
// of in-flight completions to concurrency (grounded on the teacher's use
// of errgroup.SetLimit for bounded concurrent LLM-backed work). Results
// are returned in the same order as inputs; the first fatal error
// (everything except a non-fatal conflict report) cancels the remaining
// calls.
func (m *Manager) ApplyBatch(ctx context.Context, client CompletionClient, template *PolicyType, inputs []string, concurrency int, opts ...ApplyOption) ([]*Report, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	reports := make([]*Report, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			report, err := m.Apply(ctx, client, template, input, opts...)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
