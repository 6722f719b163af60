package policyai

import (
	"github.com/veritype-ai/policyai/internal/schema"
)

// Field, FieldKind and OnConflict carry no behavior beyond the values
// they hold, so the public API re-exports the internal/schema types
// directly rather than wrapping them.
type (
	Field      = schema.Field
	FieldKind  = schema.FieldKind
	OnConflict = schema.OnConflict
)

const (
	KindBool        = schema.KindBool
	KindNumber      = schema.KindNumber
	KindString      = schema.KindString
	KindStringEnum  = schema.KindStringEnum
	KindStringArray = schema.KindStringArray
	KindNumberArray = schema.KindNumberArray
)

const (
	Agreement    = schema.Agreement
	LargestValue = schema.LargestValue
	Default      = schema.Default
)

// InvalidSchema reports a DSL parse or semantic error raised at
// PolicyType construction.
type InvalidSchema = schema.InvalidSchema

// PolicyType is a named, ordered, immutable list of fields. It wraps the
// internal schema representation so that WithSemanticInjection (which
// needs internal/generate) can be defined as a method here without
// internal/schema importing back up to the root package.
type PolicyType struct {
	inner *schema.PolicyType
}

// ParsePolicyType parses DSL text into a PolicyType, running the
// grammar and the semantic checks (duplicate field names, bad
// defaults, malformed enum/array declarations) that a syntactically
// valid document can still fail.
func ParsePolicyType(text string) (*PolicyType, error) {
	inner, err := schema.Parse(text)
	if err != nil {
		return nil, err
	}
	return &PolicyType{inner: inner}, nil
}

// Name returns the policy type's declared name.
func (pt *PolicyType) Name() string { return pt.inner.Name }

// Fields returns the policy type's declared fields, in declaration order.
func (pt *PolicyType) Fields() []Field { return pt.inner.Fields }

// Render renders the PolicyType back to DSL text; Parse(pt.Render())
// reproduces an equivalent PolicyType.
func (pt *PolicyType) Render() string { return pt.inner.Render() }

func (pt *PolicyType) String() string { return pt.Render() }

// MarshalJSON serializes the PolicyType to its wire format.
func (pt *PolicyType) MarshalJSON() ([]byte, error) { return pt.inner.MarshalJSON() }

// UnmarshalJSON reconstructs a PolicyType, re-running the DSL's
// semantic checks and minting fresh per-field identifiers.
func (pt *PolicyType) UnmarshalJSON(data []byte) error {
	inner := &schema.PolicyType{}
	if err := inner.UnmarshalJSON(data); err != nil {
		return err
	}
	pt.inner = inner
	return nil
}
