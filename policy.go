package policyai

import (
	"encoding/json"

	"github.com/veritype-ai/policyai/internal/schema"
)

// Policy pairs a natural-language semantic injection with the structured
// action it asserts whenever the injection matches, bound to a
// PolicyType. Policies are immutable once constructed.
type Policy struct {
	Type   *PolicyType
	Prompt string
	Action map[string]any
}

// NewPolicy validates action against pt's declared fields and, if valid,
// constructs a Policy. This is the non-LLM counterpart to
// PolicyType.WithSemanticInjection, for callers that already know the
// action they want a policy to assert.
func NewPolicy(pt *PolicyType, prompt string, action map[string]any) (*Policy, error) {
	validated, err := schema.ValidateAction(pt.inner, action)
	if err != nil {
		return nil, err
	}
	return &Policy{Type: pt, Prompt: prompt, Action: validated}, nil
}

type policyWire struct {
	Type   *PolicyType    `json:"type"`
	Prompt string         `json:"prompt"`
	Action map[string]any `json:"action"`
}

// MarshalJSON serializes the Policy to its wire format.
func (p *Policy) MarshalJSON() ([]byte, error) {
	return json.Marshal(policyWire{Type: p.Type, Prompt: p.Prompt, Action: p.Action})
}

// UnmarshalJSON reconstructs a Policy, re-validating Action against the
// embedded PolicyType.
func (p *Policy) UnmarshalJSON(data []byte) error {
	var wire policyWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	validated, err := schema.ValidateAction(wire.Type.inner, wire.Action)
	if err != nil {
		return err
	}
	*p = Policy{Type: wire.Type, Prompt: wire.Prompt, Action: validated}
	return nil
}
