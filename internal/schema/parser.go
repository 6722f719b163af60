package schema

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/google/uuid"
)

var dslParser = participle.MustBuild[typeDeclAST](
	participle.Lexer(dslLexer),
	participle.Unquote("String"),
	participle.UseLookahead(participle.MaxLookahead),
)

// Parse parses DSL text into a PolicyType, running the semantic checks
// a syntactically valid document can still fail: duplicate field
// names, strategies declared on array fields, default-value type
// mismatches, and enum defaults that are not themselves declared enum
// members.
func Parse(text string) (*PolicyType, error) {
	ast, err := dslParser.ParseString("", text)
	if err != nil {
		return nil, &InvalidSchema{Kind: ParseError, Err: err}
	}

	pt := &PolicyType{Name: strings.Join(ast.Name, ".")}
	seen := make(map[string]bool, len(ast.Fields))

	for _, fa := range ast.Fields {
		if seen[fa.Name] {
			return nil, newInvalidSchema(DuplicateField, fa.Name, "field %q declared more than once", fa.Name)
		}
		seen[fa.Name] = true

		field, err := convertField(fa)
		if err != nil {
			return nil, err
		}
		field.ID = uuid.New()
		pt.Fields = append(pt.Fields, field)
	}

	pt.buildIndex()
	return pt, nil
}

func convertField(fa *fieldAST) (Field, error) {
	kind, values := fieldKind(fa.Type)

	field := Field{
		Name:   fa.Name,
		Kind:   kind,
		Values: values,
	}

	if fa.Strategy != nil {
		if kind.IsArray() {
			return Field{}, newInvalidSchema(StrategyOnArray, fa.Name, "on_conflict may not be declared on array field %q", fa.Name)
		}
		field.OnConflict = strategyFromText(*fa.Strategy)
	} else {
		field.OnConflict = Default
	}

	if fa.Default != nil {
		def, err := defaultValue(kind, values, fa.Default)
		if err != nil {
			return Field{}, newInvalidSchema(DefaultTypeMismatch, fa.Name, "%w", err)
		}
		field.Default = def

		if kind == KindStringEnum {
			s := def.(string)
			found := false
			for _, v := range values {
				if v == s {
					found = true
					break
				}
			}
			if !found {
				return Field{}, newInvalidSchema(EnumDefaultNotMember, fa.Name, "default %q is not a declared enum value", s)
			}
		}
	}

	return field, nil
}

func fieldKind(t *fieldTypeAST) (FieldKind, []string) {
	switch {
	case t.Scalar != nil:
		switch *t.Scalar {
		case "bool":
			return KindBool, nil
		case "number":
			return KindNumber, nil
		default:
			return KindString, nil
		}
	case t.Enum != nil:
		return KindStringEnum, t.Enum
	default: // t.Array != nil
		if *t.Array == "string" {
			return KindStringArray, nil
		}
		return KindNumberArray, nil
	}
}

// strategyFromText maps the captured strategy text to an OnConflict. The
// "highest" "wins" branch is captured as a single concatenated token
// ("highestwins") by participle's group-level capture, so it is matched
// by prefix rather than exact equality.
func strategyFromText(text string) OnConflict {
	switch {
	case strings.HasPrefix(text, "highest"):
		return LargestValue
	case text == "agreement":
		return Agreement
	default:
		return Default
	}
}

func defaultValue(kind FieldKind, values []string, lit *literalAST) (any, error) {
	switch kind {
	case KindBool:
		if lit.Bool == nil {
			return nil, errDefaultMismatch(kind)
		}
		// Bool captures the literal's text: participle would set a plain
		// bool to true on any match, turning "false" into true.
		return *lit.Bool == "true", nil
	case KindNumber:
		if lit.Number == nil {
			return nil, errDefaultMismatch(kind)
		}
		return *lit.Number, nil
	case KindString, KindStringEnum:
		if lit.Str == nil {
			return nil, errDefaultMismatch(kind)
		}
		return *lit.Str, nil
	default:
		return nil, errDefaultMismatch(kind)
	}
}

func errDefaultMismatch(kind FieldKind) error {
	return &mismatchError{kind: kind}
}

type mismatchError struct{ kind FieldKind }

func (e *mismatchError) Error() string {
	return "default value does not match field kind " + string(e.kind)
}
