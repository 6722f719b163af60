package policyai

import (
	"context"
	"errors"
	"strings"
	"testing"
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

const emailPolicyDSL = `type EmailPolicy {
  priority: ["low", "medium", "high"] @ agreement = "low";
  flagged: bool @ highest wins = false;
  tags: [string];
}`

func newTestManager(t *testing.T) (*Manager, *PolicyType) {
	t.Helper()
	pt, err := ParsePolicyType(emailPolicyDSL)
	if err != nil {
		t.Fatalf("parse policy type: %v", err)
	}
	return NewManager(), pt
}

func identifierFor(t *testing.T, pt *PolicyType, name string) string {
	t.Helper()
	for _, f := range pt.Fields() {
		if f.Name == name {
			return f.ID.String()
		}
	}
	t.Fatalf("field %q not found", name)
	return ""
}

func TestManagerApplySingleMatch(t *testing.T) {
	mgr, pt := newTestManager(t)

	p, err := NewPolicy(pt, "mentions invoice", map[string]any{"priority": "high", "flagged": true})
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	mgr.Add(p)

	priorityID := identifierFor(t, pt, "priority")
	flaggedID := identifierFor(t, pt, "flagged")

	client := &stubClient{responses: []string{
		`{"__rule_numbers__":[1],"__justification__":"mentions invoice","` +
			priorityID + `":"high","` + flaggedID + `":true}`,
	}}

	report, err := mgr.Apply(context.Background(), client, pt, "please pay this invoice")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(report.MatchedRules) != 1 || report.MatchedRules[0] != 1 {
		t.Fatalf("expected rule 1 matched, got %v", report.MatchedRules)
	}
	if report.Value["priority"] != "high" {
		t.Fatalf("expected priority=high, got %v", report.Value["priority"])
	}
	if report.Value["flagged"] != true {
		t.Fatalf("expected flagged=true, got %v", report.Value["flagged"])
	}
	if len(report.Conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %v", report.Conflicts)
	}
}

func TestManagerApplyNoMatchUsesDefaults(t *testing.T) {
	mgr, pt := newTestManager(t)

	p, err := NewPolicy(pt, "mentions invoice", map[string]any{"priority": "high"})
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	mgr.Add(p)

	client := &stubClient{responses: []string{
		`{"__rule_numbers__":[],"__justification__":"no match"}`,
	}}

	report, err := mgr.Apply(context.Background(), client, pt, "hello there")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(report.MatchedRules) != 0 {
		t.Fatalf("expected no matched rules, got %v", report.MatchedRules)
	}
	if report.Value["priority"] != "low" {
		t.Fatalf("expected default priority=low, got %v", report.Value["priority"])
	}
	if report.Value["flagged"] != false {
		t.Fatalf("expected default flagged=false, got %v", report.Value["flagged"])
	}
}

func TestManagerApplyAgreementConflict(t *testing.T) {
	mgr, pt := newTestManager(t)

	p1, err := NewPolicy(pt, "mentions invoice", map[string]any{"priority": "high"})
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	p2, err := NewPolicy(pt, "mentions newsletter", map[string]any{"priority": "low"})
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	mgr.Add(p1)
	mgr.Add(p2)

	priorityID := identifierFor(t, pt, "priority")

	client := &stubClient{responses: []string{
		`{"__rule_numbers__":[1,2],"__justification__":"both matched","` + priorityID + `":"high"}`,
	}}

	report, err := mgr.Apply(context.Background(), client, pt, "invoice newsletter")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(report.MatchedRules) != 2 {
		t.Fatalf("expected both rules matched, got %v", report.MatchedRules)
	}
	if len(report.Conflicts) != 1 {
		t.Fatalf("expected one conflict on priority, got %v", report.Conflicts)
	}
	if report.Value["priority"] != "low" {
		t.Fatalf("expected fallback to declared default on conflict, got %v", report.Value["priority"])
	}
}

func TestManagerApplyFailOnConflict(t *testing.T) {
	mgr, pt := newTestManager(t)

	p1, err := NewPolicy(pt, "a", map[string]any{"priority": "high"})
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	p2, err := NewPolicy(pt, "b", map[string]any{"priority": "low"})
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	mgr.Add(p1)
	mgr.Add(p2)

	priorityID := identifierFor(t, pt, "priority")
	client := &stubClient{responses: []string{
		`{"__rule_numbers__":[1,2],"__justification__":"both","` + priorityID + `":"high"}`,
	}}

	_, err = mgr.Apply(context.Background(), client, pt, "text", WithFailOnConflict(true))
	if err == nil {
		t.Fatal("expected an error with WithFailOnConflict(true)")
	}
	var applyErr *ApplyError
	if !errors.As(err, &applyErr) {
		t.Fatalf("expected *ApplyError, got %T: %v", err, err)
	}
	if applyErr.Kind != ApplyConflictKind {
		t.Fatalf("expected ApplyConflictKind, got %v", applyErr.Kind)
	}
}

func TestManagerApplySchemaViolationOnMissingRequiredField(t *testing.T) {
	pt, err := ParsePolicyType(`type TicketPolicy {
  owner: string;
  priority: ["low", "high"] @ agreement = "low";
}`)
	if err != nil {
		t.Fatalf("parse policy type: %v", err)
	}
	mgr := NewManager()

	p, err := NewPolicy(pt, "mentions invoice", map[string]any{"priority": "high"})
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	mgr.Add(p)

	priorityID := identifierFor(t, pt, "priority")
	client := &stubClient{responses: []string{
		`{"__rule_numbers__":[1],"__justification__":"m","` + priorityID + `":"high"}`,
	}}

	_, err = mgr.Apply(context.Background(), client, pt, "please pay this invoice")
	if err == nil {
		t.Fatal("expected an error when a required field has no matched value and no default")
	}
	var applyErr *ApplyError
	if !errors.As(err, &applyErr) {
		t.Fatalf("expected *ApplyError, got %T: %v", err, err)
	}
	if applyErr.Kind != ApplySchemaViolation {
		t.Fatalf("expected ApplySchemaViolation, got %v", applyErr.Kind)
	}
}

// keywordClient answers based on whether the user turn's <text> mentions
// "invoice", so results stay correct regardless of the order ApplyBatch's
// concurrent goroutines happen to issue calls in.
type keywordClient struct {
	priorityID string
}

func (c *keywordClient) Complete(ctx context.Context, system, user string) (string, error) {
	if strings.Contains(user, "invoice") {
		return `{"__rule_numbers__":[1],"__justification__":"m","` + c.priorityID + `":"high"}`, nil
	}
	return `{"__rule_numbers__":[],"__justification__":"no match"}`, nil
}

func TestManagerApplyBatchRunsAllInputs(t *testing.T) {
	mgr, pt := newTestManager(t)

	p, err := NewPolicy(pt, "mentions invoice", map[string]any{"priority": "high"})
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	mgr.Add(p)

	client := &keywordClient{priorityID: identifierFor(t, pt, "priority")}

	reports, err := mgr.ApplyBatch(context.Background(), client, pt,
		[]string{"invoice one", "hello", "invoice two"}, 2)
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	if reports[0].Value["priority"] != "high" {
		t.Fatalf("report 0: expected priority=high, got %v", reports[0].Value["priority"])
	}
	if reports[1].Value["priority"] != "low" {
		t.Fatalf("report 1: expected default priority=low, got %v", reports[1].Value["priority"])
	}
	if reports[2].Value["priority"] != "high" {
		t.Fatalf("report 2: expected priority=high, got %v", reports[2].Value["priority"])
	}
}
