package merge

import "github.com/veritype-ai/policyai/internal/schema"

// largest reports whether b is strictly greater than a under f's kind
// order, used by the LargestValue conflict strategy:
//   - bool: true > false
//   - number: natural numeric order
//   - string (free): longer strings win; ties broken lexicographically
//   - enum: position in the declared Values list, later is greater
func largest(f schema.Field, a, b any) bool {
	switch f.Kind {
	case schema.KindBool:
		return b.(bool) && !a.(bool)
	case schema.KindNumber:
		return b.(float64) > a.(float64)
	case schema.KindStringEnum:
		return f.EnumPosition(b.(string)) > f.EnumPosition(a.(string))
	default: // free string
		as, bs := a.(string), b.(string)
		if len(as) != len(bs) {
			return len(bs) > len(as)
		}
		return bs > as
	}
}

func maxContribution(f schema.Field, contributions []Contribution) any {
	best := contributions[0].Value
	for _, c := range contributions[1:] {
		if largest(f, best, c.Value) {
			best = c.Value
		}
	}
	return best
}
