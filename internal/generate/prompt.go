package generate

import (
	"fmt"

	"github.com/veritype-ai/policyai/internal/schema"
)

func buildPrompt(pt *schema.PolicyType, injection string) (system, user string) {
	system = fmt.Sprintf(`You mint structured policy actions from natural-language conditions.

The target policy type, in its declaration language:

%s

Assume the condition below holds for some hypothetical input text. Emit a
JSON object containing only the fields that condition affects, using the
field names shown above (not identifiers). Respond with JSON only: no
prose, no markdown fences. Omit any field the condition says nothing
about.`, pt.Render())

	user = fmt.Sprintf("Condition: %s", injection)
	return system, user
}
