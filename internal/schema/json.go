package schema

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type fieldJSON struct {
	Kind       FieldKind  `json:"kind"`
	Name       string     `json:"name"`
	Default    any        `json:"default,omitempty"`
	OnConflict OnConflict `json:"on_conflict,omitempty"`
	Values     []string   `json:"values,omitempty"`
}

type policyTypeJSON struct {
	Name   string      `json:"name"`
	Fields []fieldJSON `json:"fields"`
}

// MarshalJSON serializes the PolicyType to its wire format. The
// per-field opaque ID is never serialized: it need not persist across
// calls, only across a single prompt/response pair.
func (pt *PolicyType) MarshalJSON() ([]byte, error) {
	doc := policyTypeJSON{Name: pt.Name}
	for _, f := range pt.Fields {
		fj := fieldJSON{
			Kind:    f.Kind,
			Name:    f.Name,
			Default: f.Default,
			Values:  f.Values,
		}
		if !f.Kind.IsArray() {
			fj.OnConflict = f.OnConflict
		}
		doc.Fields = append(doc.Fields, fj)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reconstructs a PolicyType, re-running the same semantic
// checks Parse performs and assigning fresh per-field identifiers.
func (pt *PolicyType) UnmarshalJSON(data []byte) error {
	var doc policyTypeJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return &InvalidSchema{Kind: ParseError, Err: err}
	}

	built := &PolicyType{Name: doc.Name}
	seen := make(map[string]bool, len(doc.Fields))

	for _, fj := range doc.Fields {
		if seen[fj.Name] {
			return newInvalidSchema(DuplicateField, fj.Name, "field %q declared more than once", fj.Name)
		}
		seen[fj.Name] = true

		if fj.OnConflict != "" && fj.Kind.IsArray() {
			return newInvalidSchema(StrategyOnArray, fj.Name, "on_conflict may not be declared on array field %q", fj.Name)
		}

		field := Field{
			Name:       fj.Name,
			Kind:       fj.Kind,
			Values:     fj.Values,
			OnConflict: fj.OnConflict,
			ID:         uuid.New(),
		}
		if field.OnConflict == "" && !field.Kind.IsArray() {
			field.OnConflict = Default
		}

		if fj.Default != nil {
			if field.Kind.IsArray() {
				return newInvalidSchema(DefaultTypeMismatch, fj.Name, "%w", errDefaultMismatch(field.Kind))
			}
			if s, ok := fj.Default.(string); ok && field.Kind == KindStringEnum && field.EnumPosition(s) < 0 {
				return newInvalidSchema(EnumDefaultNotMember, fj.Name, "default %q is not a declared enum value", s)
			}
			normalized, err := ValidateValue(field, fj.Default)
			if err != nil {
				return newInvalidSchema(DefaultTypeMismatch, fj.Name, "%w", err)
			}
			field.Default = normalized
		}

		built.Fields = append(built.Fields, field)
	}

	built.buildIndex()
	*pt = *built
	return nil
}

var _ fmt.Stringer = (*PolicyType)(nil)

// String renders the PolicyType as DSL text, matching Render.
func (pt *PolicyType) String() string { return pt.Render() }
