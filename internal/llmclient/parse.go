package llmclient

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
)

// ParsedResponse is the structural parse of one completion response:
// the advisory rule-number list, the free-form justification, and every
// other top-level key (the identifier keys the prompt assembler
// emitted), still as raw JSON values for the merge engine to interpret
// against declared field kinds.
type ParsedResponse struct {
	RuleNumbers   []int
	Justification string
	Identifiers   map[string]json.RawMessage
}

// ParseResponse extracts the JSON object embedded in raw (see
// ExtractJSONObject) and performs a single fast pass over its top-level
// keys with jsonparser, rather than unmarshaling into a typed struct:
// the set of identifier keys is not known until the policy type is
// consulted, so enumerating keys cheaply here and resolving them against
// declared fields is left to the merge engine.
func ParseResponse(raw string) (*ParsedResponse, error) {
	obj, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	resp := &ParsedResponse{Identifiers: make(map[string]json.RawMessage)}
	var walkErr error

	err = jsonparser.ObjectEach([]byte(obj), func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		switch string(key) {
		case "__rule_numbers__":
			var nums []int
			if e := json.Unmarshal(value, &nums); e != nil {
				walkErr = fmt.Errorf("__rule_numbers__: %w", e)
				return nil
			}
			resp.RuleNumbers = nums
		case "__justification__":
			resp.Justification = string(value)
		default:
			cp := make(json.RawMessage, len(value))
			copy(cp, value)
			if dataType == jsonparser.String {
				quoted, _ := json.Marshal(string(value))
				cp = quoted
			}
			resp.Identifiers[string(key)] = cp
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("llmclient: %w", err)
	}
	if walkErr != nil {
		return nil, walkErr
	}
	return resp, nil
}
