package merge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritype-ai/policyai/internal/schema"
)

const emailPolicyDSL = `type EmailPolicy {
    unread: bool = true,
    priority: ["low","medium","high"] @ highest wins,
    category: ["ai","distributed systems","other"] @ agreement = "other",
    labels: [string],
}`

func mustParse(t *testing.T) *schema.PolicyType {
	t.Helper()
	pt, err := schema.Parse(emailPolicyDSL)
	require.NoError(t, err)
	return pt
}

// identifiersFor builds the "model response identifiers" map for the
// given field names, simulating an LLM response that echoed those
// fields' identifiers (content doesn't matter for matching purposes,
// only presence).
func identifiersFor(pt *schema.PolicyType, names ...string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(names))
	for _, n := range names {
		f, ok := pt.FieldByName(n)
		require.True(t, ok, n)
		out[f.ID.String()] = json.RawMessage(`true`)
	}
	return out
}

func TestMergeFieldWithZeroValueDefaultIsEmittedWhenUncontested(t *testing.T) {
	dsl := `type Flags {
		archived: bool = false,
		count: number = 0,
		label: string = "",
	}`
	pt, err := schema.Parse(dsl)
	require.NoError(t, err)

	report := Merge(pt, nil, nil, map[string]json.RawMessage{})
	assert.Equal(t, false, report.Value["archived"])
	assert.Equal(t, float64(0), report.Value["count"])
	assert.Equal(t, "", report.Value["label"])
}

func TestMergeAllMatchedRulesContributeDistinctFields(t *testing.T) {
	pt := mustParse(t)
	rules := []RuleInput{
		{Action: map[string]any{"unread": false, "priority": "low"}},
		{Action: map[string]any{"priority": "high", "labels": []any{"Family"}}},
		{Action: map[string]any{"labels": []any{"Shopping"}}},
	}
	identifiers := identifiersFor(pt, "unread", "priority", "labels")

	report := Merge(pt, rules, []int{1, 2, 3}, identifiers)
	assert.Equal(t, []int{1, 2, 3}, report.MatchedRules)
	assert.Equal(t, false, report.Value["unread"])
	assert.Equal(t, "high", report.Value["priority"])
	assert.Equal(t, "other", report.Value["category"])
	assert.Equal(t, []any{"Family", "Shopping"}, report.Value["labels"])
	assert.Empty(t, report.Conflicts)
}

func TestMergeNoRulesMatchFallsBackToDefaults(t *testing.T) {
	pt := mustParse(t)
	rules := []RuleInput{
		{Action: map[string]any{"unread": false, "priority": "low"}},
		{Action: map[string]any{"priority": "high", "labels": []any{"Family"}}},
		{Action: map[string]any{"labels": []any{"Shopping"}}},
	}
	report := Merge(pt, rules, nil, map[string]json.RawMessage{})
	assert.Empty(t, report.MatchedRules)
	assert.Equal(t, true, report.Value["unread"])
	assert.Equal(t, "other", report.Value["category"])
	assert.NotContains(t, report.Value, "priority")
	assert.NotContains(t, report.Value, "labels")
}

func TestMergeOnlyFirstRuleMatches(t *testing.T) {
	pt := mustParse(t)
	rules := []RuleInput{
		{Action: map[string]any{"unread": false, "priority": "low"}},
		{Action: map[string]any{"priority": "high", "labels": []any{"Family"}}},
		{Action: map[string]any{"labels": []any{"Shopping"}}},
	}
	identifiers := identifiersFor(pt, "unread", "priority")

	report := Merge(pt, rules, []int{1}, identifiers)
	assert.Equal(t, []int{1}, report.MatchedRules)
	assert.Equal(t, false, report.Value["unread"])
	assert.Equal(t, "low", report.Value["priority"])
	assert.Equal(t, "other", report.Value["category"])
}

func TestMergeAgreementStrategyConflictsFallBackToDefault(t *testing.T) {
	pt := mustParse(t)
	rules := []RuleInput{
		{Action: map[string]any{"category": "ai"}},
		{Action: map[string]any{"category": "distributed systems"}},
	}
	identifiers := identifiersFor(pt, "category")

	report := Merge(pt, rules, []int{1, 2}, identifiers)
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, "category", report.Conflicts[0].Field)
	assert.ElementsMatch(t, []any{"ai", "distributed systems"}, report.Conflicts[0].Contributions)
	assert.Equal(t, "other", report.Value["category"])
}

func TestMergeArrayFieldsUnionAndDedup(t *testing.T) {
	pt := mustParse(t)
	rules := []RuleInput{
		{Action: map[string]any{"labels": []any{"A", "B"}}},
		{Action: map[string]any{"labels": []any{"B", "C"}}},
	}
	identifiers := identifiersFor(pt, "labels")

	report := Merge(pt, rules, []int{1, 2}, identifiers)
	assert.Equal(t, []any{"A", "B", "C"}, report.Value["labels"])
}

func TestMergeMalformedContributionDropped(t *testing.T) {
	pt := mustParse(t)
	rules := []RuleInput{
		{Action: map[string]any{"priority": "urgent"}}, // not a declared enum value
		{Action: map[string]any{"priority": "medium"}},
	}
	identifiers := identifiersFor(pt, "priority")

	report := Merge(pt, rules, []int{1, 2}, identifiers)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, MalformedContribution, report.Diagnostics[0].Kind)
	assert.Equal(t, "priority", report.Diagnostics[0].Field)
	assert.Equal(t, "medium", report.Value["priority"])
}

func TestMergeFieldWithNoDefaultAndNoContributionIsMissingRequired(t *testing.T) {
	dsl := `type Required {
		owner: string,
	}`
	pt, err := schema.Parse(dsl)
	require.NoError(t, err)

	report := Merge(pt, nil, nil, map[string]json.RawMessage{})
	assert.NotContains(t, report.Value, "owner")
	assert.Equal(t, []string{"owner"}, report.MissingRequired)
}

func TestMergeAgreementConflictWithNoDefaultIsMissingRequired(t *testing.T) {
	dsl := `type Required {
		owner: ["alice","bob"] @ agreement,
	}`
	pt, err := schema.Parse(dsl)
	require.NoError(t, err)
	rules := []RuleInput{
		{Action: map[string]any{"owner": "alice"}},
		{Action: map[string]any{"owner": "bob"}},
	}
	identifiers := identifiersFor(pt, "owner")

	report := Merge(pt, rules, []int{1, 2}, identifiers)
	require.Len(t, report.Conflicts, 1)
	assert.NotContains(t, report.Value, "owner")
	assert.Equal(t, []string{"owner"}, report.MissingRequired)
}

func TestMergeRuleNumberSanityUntrustedClaim(t *testing.T) {
	pt := mustParse(t)
	rules := []RuleInput{
		{Action: map[string]any{"unread": false}},
	}
	// the model claims rule 1 matched but the response carries none of
	// its identifiers.
	report := Merge(pt, rules, []int{1}, map[string]json.RawMessage{})

	assert.Empty(t, report.MatchedRules)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, RuleNumberMismatch, report.Diagnostics[0].Kind)
	assert.Equal(t, true, report.Value["unread"]) // declared default, not P0's false
}
