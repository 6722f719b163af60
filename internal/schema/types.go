// Package schema implements the policy-type DSL: its grammar, parser,
// renderer, and the semantic validation performed at PolicyType
// construction.
package schema

import "github.com/google/uuid"

// FieldKind identifies the shape of value a Field accepts.
type FieldKind string

const (
	KindBool         FieldKind = "bool"
	KindNumber       FieldKind = "number"
	KindString       FieldKind = "string"
	KindStringEnum   FieldKind = "string_enum"
	KindStringArray  FieldKind = "string_array"
	KindNumberArray  FieldKind = "number_array"
)

// IsArray reports whether the kind merges by set union rather than by a
// scalar OnConflict strategy.
func (k FieldKind) IsArray() bool {
	return k == KindStringArray || k == KindNumberArray
}

// OnConflict is the per-scalar-field strategy used to resolve multiple
// contributions during merge.
type OnConflict string

const (
	Agreement    OnConflict = "agreement"
	LargestValue OnConflict = "largest_value"
	Default      OnConflict = "default"
)

// Field is one declared field of a PolicyType.
//
// ID is assigned once, at construction, and is never serialized: the
// prompt assembler uses it as the opaque key the LLM sees in place of
// Name; callers never need it to persist across calls.
type Field struct {
	Name       string
	Kind       FieldKind
	Values     []string // enum members, in declared order; nil otherwise
	Default    any      // bool, float64, string, or nil; never set for arrays
	OnConflict OnConflict
	ID         uuid.UUID
}

// HasDefault reports whether the field carries a declared default.
func (f Field) HasDefault() bool {
	return f.Default != nil
}

// EnumPosition returns the index of v within Values, or -1 if v is not a
// declared member. Used by LargestValue ordering for string_enum fields.
func (f Field) EnumPosition(v string) int {
	for i, candidate := range f.Values {
		if candidate == v {
			return i
		}
	}
	return -1
}

// PolicyType is a named, ordered, immutable list of fields. Field names
// are unique within a type; field identity for merging uses the opaque
// per-field ID, not the name.
type PolicyType struct {
	Name   string
	Fields []Field

	byName map[string]int
}

// FieldByName returns the field with the given name and true, or the zero
// Field and false if no such field is declared.
func (pt *PolicyType) FieldByName(name string) (Field, bool) {
	i, ok := pt.byName[name]
	if !ok {
		return Field{}, false
	}
	return pt.Fields[i], true
}

// FieldByID returns the field with the given opaque ID and true, or the
// zero Field and false.
func (pt *PolicyType) FieldByID(id uuid.UUID) (Field, bool) {
	for _, f := range pt.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

func (pt *PolicyType) buildIndex() {
	pt.byName = make(map[string]int, len(pt.Fields))
	for i, f := range pt.Fields {
		pt.byName[f.Name] = i
	}
}
