// Package prompt assembles the system+user prompt pair that elicits a
// rule-matched JSON object from the completion model, per the policy-type
// schema's opaque per-field identifiers.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/veritype-ai/policyai/internal/schema"
)

// ActiveRule is one matched-at-construction-time policy as seen by the
// assembler: its 1-based rule index (the order Manager.Add received it),
// its semantic injection text, and its action in user-facing field names.
type ActiveRule struct {
	Index     int
	Injection string
	Action    map[string]any
}

const instructionHeader = `You are evaluating a set of numbered rules against a piece of text.

Respond with JSON only. No prose, no markdown fences, nothing before or
after the JSON object.

The JSON object must include:
  - "__rule_numbers__": an array of the integer indices of every rule
    below whose <match> condition holds for the text.
  - "__justification__": a short string explaining your reasoning.
  - one key per field identifier your matched rules assert a value for.

Each rule below lists a <match> condition and an <action>. When a rule's
condition holds, emit the JSON object given in its <action>, using the
exact identifier keys shown (these are opaque tokens, not field names).
Omit a field entirely if no matched rule asserts it and it has no
declared default.`

// BuildApplyPrompt renders the system and user prompt halves for one
// Apply call. Fields are emitted, within each rule's action, in the
// policy type's declaration order; rules are emitted in ascending Index
// order, i.e. the order Manager.Add originally received them.
func BuildApplyPrompt(pt *schema.PolicyType, rules []ActiveRule, input string) (system, user string) {
	var b strings.Builder
	b.WriteString(instructionHeader)
	b.WriteString("\n\n")

	if defaults := defaultsSection(pt); defaults != "" {
		b.WriteString("Declared defaults (used only if no matched rule asserts the field):\n")
		b.WriteString(defaults)
		b.WriteString("\n\n")
	}

	b.WriteString(fewShotExamples())
	b.WriteString("\n")

	for _, r := range rules {
		fmt.Fprintf(&b, "<rule index=\"%d\"><match>%s</match>\n", r.Index, r.Injection)
		fmt.Fprintf(&b, "<action>When this rule matches, output JSON %s.</action></rule>\n", identifierAction(pt, r.Action))
	}

	userText := fmt.Sprintf("<text>%s</text>", input)
	return b.String(), userText
}

// defaultsSection renders `{identifier: default}` for every field that
// carries a declared default, in the policy type's declaration order.
func defaultsSection(pt *schema.PolicyType) string {
	om := orderedmap.New[string, any]()
	for _, f := range pt.Fields {
		if f.HasDefault() {
			om.Set(f.ID.String(), f.Default)
		}
	}
	if om.Len() == 0 {
		return ""
	}
	data, err := json.Marshal(om)
	if err != nil {
		return ""
	}
	return string(data)
}

// identifierAction rewrites action's user-facing field names to their
// opaque identifiers, emitting keys in the policy type's declaration
// order regardless of the order the action's own keys were supplied in.
func identifierAction(pt *schema.PolicyType, action map[string]any) string {
	om := orderedmap.New[string, any]()
	for _, f := range pt.Fields {
		if v, ok := action[f.Name]; ok {
			om.Set(f.ID.String(), v)
		}
	}
	data, err := json.Marshal(om)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// fewShotExamples is a static canonical example using identifiers that
// cannot collide with any live field identifier: UUIDs are 122 bits of
// randomness, so a fixed, hard-coded pair used only here will never equal
// one minted by PolicyType construction.
func fewShotExamples() string {
	return `Example (identifiers below are illustrative only, unrelated to the
identifiers used in the rules that follow):

<rule index="1"><match>the text mentions a cat</match>
<action>When this rule matches, output JSON {"4d1fd9b2-2222-4b0e-9a10-000000000001":"feline"}.</action></rule>
Text: "I adopted a cat yesterday."
Response: {"__rule_numbers__":[1],"__justification__":"text mentions a cat","4d1fd9b2-2222-4b0e-9a10-000000000001":"feline"}

Text: "I adopted a dog yesterday."
Response: {"__rule_numbers__":[],"__justification__":"no rule's condition holds"}
`
}
