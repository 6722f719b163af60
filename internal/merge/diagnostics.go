package merge

// DiagnosticKind classifies a non-fatal irregularity recorded during
// merge: these never abort Merge, they only annotate the Report.
type DiagnosticKind string

const (
	// MalformedContribution: a matched policy's value for a field could
	// not be validated against the field's declared kind (most commonly
	// an enum value outside the declared Values) and was dropped.
	MalformedContribution DiagnosticKind = "malformed_contribution"
	// RuleNumberMismatch: the model's __rule_numbers__ claimed a rule
	// matched, but none of that rule's action keys appeared in the
	// response; the rule was treated as not matched (rule-number-sanity
	// trusts action content over the claimed list).
	RuleNumberMismatch DiagnosticKind = "rule_number_mismatch"
)

// Diagnostic is one non-fatal irregularity surfaced alongside the Report.
type Diagnostic struct {
	Kind      DiagnosticKind
	Field     string `json:",omitempty"`
	RuleIndex int    `json:",omitempty"`
	Value     any    `json:",omitempty"`
}
