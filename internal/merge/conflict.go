package merge

// Contribution is one matched policy's value for a single field, tagged
// with the 1-based rule index (its position in Manager.Add order) the
// value is attributed to.
type Contribution struct {
	RuleIndex int
	Value     any
}

// FieldConflict records every contribution to a field whose Agreement
// strategy was violated.
type FieldConflict struct {
	Field         string
	Contributions []any
}

// Report is the result of one Merge call.
type Report struct {
	Value        map[string]any
	MatchedRules []int
	Conflicts    []FieldConflict
	Diagnostics  []Diagnostic
	// MissingRequired lists scalar fields that, after merge, have neither
	// a resolved value nor a declared default — a field with no
	// contribution and no fallback the caller can use. Array fields with
	// no contribution are omitted from Value and never listed here.
	MissingRequired []string
}
