package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Render renders the PolicyType back to DSL text. Parse(pt.Render()) is
// equivalent to pt (modulo whitespace and field-ordering of enum values,
// which Render preserves).
func (pt *PolicyType) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "type %s {\n", pt.Name)
	for i, f := range pt.Fields {
		b.WriteString("    ")
		b.WriteString(renderField(f))
		if i < len(pt.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func renderField(f Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", f.Name, renderFieldType(f))

	if !f.Kind.IsArray() {
		switch f.OnConflict {
		case Agreement:
			b.WriteString(" @ agreement")
		case LargestValue:
			b.WriteString(" @ highest wins")
		case Default:
			// omitted: Default is the implicit strategy
		}
	}

	if f.HasDefault() {
		fmt.Fprintf(&b, " = %s", renderLiteral(f.Default))
	}
	return b.String()
}

func renderFieldType(f Field) string {
	switch f.Kind {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindStringEnum:
		quoted := make([]string, len(f.Values))
		for i, v := range f.Values {
			quoted[i] = strconv.Quote(v)
		}
		return "[" + strings.Join(quoted, ",") + "]"
	case KindStringArray:
		return "[string]"
	default: // KindNumberArray
		return "[number]"
	}
}

func renderLiteral(v any) string {
	switch t := v.(type) {
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return strconv.Quote(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
