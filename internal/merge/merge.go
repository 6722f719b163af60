// Package merge folds the completion model's partial assignments into a
// single typed value according to each field's declared conflict
// resolution strategy, producing a Report.
package merge

import (
	"encoding/json"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/veritype-ai/policyai/internal/schema"
)

// RuleInput is one policy as known to the Manager at the time of an
// Apply call: its action (already valid against the policy type, per
// the Policy construction invariant) at its 1-based position in
// Manager.Add order.
type RuleInput struct {
	Action map[string]any
}

// Merge reconciles claimedRuleNumbers (the model's advisory
// __rule_numbers__) and identifiers (the set of field-identifier keys
// the model's response actually included) against rules, then resolves
// each declared field per its strategy.
//
// A rule is considered matched only if at least one of its action's
// field identifiers appears in identifiers — the rule-number-sanity
// check trusts action content over the claimed list. A rule absent from
// the claimed list is matched only through an identifier that no
// claimed rule's action also carries, so a key shared with a claimed
// rule is attributed to the claimed rule alone. The contributed
// value for a matched rule's field is the rule's own (already-valid)
// action value; MalformedContribution exists to guard contributions
// from policies assembled without going through schema.ValidateAction.
func Merge(pt *schema.PolicyType, rules []RuleInput, claimedRuleNumbers []int, identifiers map[string]json.RawMessage) *Report {
	claimed := make(map[int]bool, len(claimedRuleNumbers))
	for _, n := range claimedRuleNumbers {
		claimed[n] = true
	}

	claimedIDs := make(map[string]bool)
	for i, r := range rules {
		if !claimed[i+1] {
			continue
		}
		for name := range r.Action {
			if f, ok := pt.FieldByName(name); ok {
				claimedIDs[f.ID.String()] = true
			}
		}
	}

	matched := make([]bool, len(rules))
	for i, r := range rules {
		for name := range r.Action {
			f, ok := pt.FieldByName(name)
			if !ok {
				continue
			}
			id := f.ID.String()
			if _, present := identifiers[id]; present && (claimed[i+1] || !claimedIDs[id]) {
				matched[i] = true
				break
			}
		}
	}

	report := &Report{Value: make(map[string]any)}
	for i := range rules {
		ruleIndex := i + 1
		if matched[i] {
			report.MatchedRules = append(report.MatchedRules, ruleIndex)
		} else if claimed[ruleIndex] {
			report.Diagnostics = append(report.Diagnostics, Diagnostic{Kind: RuleNumberMismatch, RuleIndex: ruleIndex})
		}
	}
	sort.Ints(report.MatchedRules)

	for _, f := range pt.Fields {
		var contributions []Contribution
		for i, r := range rules {
			if !matched[i] {
				continue
			}
			v, ok := r.Action[f.Name]
			if !ok {
				continue
			}
			normalized, err := schema.ValidateValue(f, v)
			if err != nil {
				report.Diagnostics = append(report.Diagnostics, Diagnostic{
					Kind: MalformedContribution, Field: f.Name, RuleIndex: i + 1, Value: v,
				})
				continue
			}
			contributions = append(contributions, Contribution{RuleIndex: i + 1, Value: normalized})
		}

		if len(contributions) == 0 {
			if f.HasDefault() {
				report.Value[f.Name] = f.Default
			} else if !f.Kind.IsArray() {
				// Array fields cannot declare a default; with no
				// contribution they are omitted rather than required.
				report.MissingRequired = append(report.MissingRequired, f.Name)
			}
			continue
		}

		if f.Kind.IsArray() {
			report.Value[f.Name] = unionArray(contributions)
			continue
		}

		switch f.OnConflict {
		case schema.Agreement:
			if allEqual(contributions) {
				report.Value[f.Name] = contributions[0].Value
			} else {
				report.Conflicts = append(report.Conflicts, FieldConflict{
					Field:         f.Name,
					Contributions: rawValues(contributions),
				})
				if f.HasDefault() {
					report.Value[f.Name] = f.Default
				} else {
					report.MissingRequired = append(report.MissingRequired, f.Name)
				}
			}
		case schema.LargestValue:
			report.Value[f.Name] = maxContribution(f, contributions)
		default: // schema.Default: last-writer-wins, highest rule index
			report.Value[f.Name] = contributions[len(contributions)-1].Value
		}
	}

	return report
}

func allEqual(contributions []Contribution) bool {
	for _, c := range contributions[1:] {
		if c.Value != contributions[0].Value {
			return false
		}
	}
	return true
}

func rawValues(contributions []Contribution) []any {
	out := make([]any, len(contributions))
	for i, c := range contributions {
		out[i] = c.Value
	}
	return out
}

// unionArray concatenates contributions in ascending rule-index order
// (contributions is already built that way), then within each rule's
// slice in its own element order, deduplicating by first occurrence.
// go-ordered-map preserves that encounter order without a second pass.
func unionArray(contributions []Contribution) []any {
	seen := orderedmap.New[any, struct{}]()
	for _, c := range contributions {
		switch vs := c.Value.(type) {
		case []string:
			for _, v := range vs {
				seen.Set(v, struct{}{})
			}
		case []float64:
			for _, v := range vs {
				seen.Set(v, struct{}{})
			}
		}
	}
	out := make([]any, 0, seen.Len())
	for pair := seen.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
