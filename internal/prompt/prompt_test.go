package prompt

import (
	"strings"
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

func TestBuildApplyPromptOrdersFieldsByDeclaration(t *testing.T) {
	pt, err := schema.Parse(emailPolicyDSL)
	require.NoError(t, err)

	rules := []ActiveRule{
		{Index: 1, Injection: "about football", Action: map[string]any{"priority": "low", "unread": false}},
	}

	system, user := BuildApplyPrompt(pt, rules, "Football tonight")
	assert.Contains(t, user, "<text>Football tonight</text>")
	assert.Contains(t, system, "__rule_numbers__")
	assert.Contains(t, system, "<rule index=\"1\">")

	// Look only at the live rule: the defaults section earlier in the
	// prompt also carries unread's identifier.
	ruleStart := strings.Index(system, "<match>about football</match>")
	require.NotEqual(t, -1, ruleStart)
	rule := system[ruleStart:]

	unread, _ := pt.FieldByName("unread")
	priority, _ := pt.FieldByName("priority")
	idxUnread := strings.Index(rule, unread.ID.String())
	idxPriority := strings.Index(rule, priority.ID.String())
	require.NotEqual(t, -1, idxUnread)
	require.NotEqual(t, -1, idxPriority)
	assert.Less(t, idxUnread, idxPriority, "unread is declared before priority")
}

func TestDefaultsSectionListsOnlyFieldsWithDefaults(t *testing.T) {
	pt, err := schema.Parse(emailPolicyDSL)
	require.NoError(t, err)

	got := defaultsSection(pt)
	unread, _ := pt.FieldByName("unread")
	labels, _ := pt.FieldByName("labels")
	assert.Contains(t, got, unread.ID.String())
	assert.NotContains(t, got, labels.ID.String())
}
