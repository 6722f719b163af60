package policyai

import (
	"fmt"

	"github.com/veritype-ai/policyai/internal/merge"
)

// Conflict records every contribution to a field whose Agreement
// strategy was violated: at least two matched policies supplied
// differing values.
type Conflict struct {
	Field         string `json:"field"`
	Contributions []any  `json:"contributions"`
}

// Report is the result of one Apply call: the merged typed value, the
// 1-based indices of the policies treated as matched (a claimed rule
// whose action keys the model never emitted is left out and noted in
// Diagnostics), any detected conflicts, and
// the model's free-form justification. Reports are produced fresh per
// call and not retained by the Manager.
type Report struct {
	Value         map[string]any `json:"value"`
	MatchedRules  []int          `json:"matched_rules"`
	Conflicts     []Conflict     `json:"conflicts"`
	Justification string         `json:"justification"`
	// Diagnostics records non-fatal irregularities: malformed
	// contributions dropped during merge, and rule numbers the model
	// claimed matched but whose action keys never appeared in its
	// response. Not part of the stable wire format; additive.
	Diagnostics []string `json:"diagnostics,omitempty"`
}

func toReport(mr *merge.Report, justification string) *Report {
	conflicts := make([]Conflict, len(mr.Conflicts))
	for i, c := range mr.Conflicts {
		conflicts[i] = Conflict{Field: c.Field, Contributions: c.Contributions}
	}
	diagnostics := make([]string, len(mr.Diagnostics))
	for i, d := range mr.Diagnostics {
		diagnostics[i] = formatDiagnostic(d)
	}
	return &Report{
		Value:         mr.Value,
		MatchedRules:  mr.MatchedRules,
		Conflicts:     conflicts,
		Justification: justification,
		Diagnostics:   diagnostics,
	}
}

func formatDiagnostic(d merge.Diagnostic) string {
	switch d.Kind {
	case merge.MalformedContribution:
		return fmt.Sprintf("malformed_contribution: field %q (rule %d) value %v does not conform, dropped", d.Field, d.RuleIndex, d.Value)
	case merge.RuleNumberMismatch:
		return fmt.Sprintf("rule_number_mismatch: rule %d claimed matched but emitted none of its action's keys", d.RuleIndex)
	default:
		return string(d.Kind)
	}
}
