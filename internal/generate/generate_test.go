package generate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritype-ai/policyai/internal/schema"
)

const emailPolicyDSL = `type EmailPolicy {
    unread: bool = true,
    priority: ["low","medium","high"] @ highest wins,
    category: ["ai","distributed systems","other"] @ agreement = "other",
    labels: [string],
}`

type stubClient struct {
	responses []string
	calls     int
}

func (s *stubClient) Complete(_ context.Context, _, _ string) (string, error) {
	r := s.responses[s.calls]
	s.calls++
	return r, nil
}

func TestWithSemanticInjectionHappyPath(t *testing.T) {
	pt, err := schema.Parse(emailPolicyDSL)
	require.NoError(t, err)

	client := &stubClient{responses: []string{`{"priority":"high","labels":["Family"]}`}}
	action, err := WithSemanticInjection(context.Background(), client, pt, "from mom@example.org", 3)
	require.NoError(t, err)
	assert.Equal(t, "high", action["priority"])
	assert.Equal(t, []string{"Family"}, action["labels"])
}

func TestWithSemanticInjectionNoFieldsMentioned(t *testing.T) {
	pt, err := schema.Parse(emailPolicyDSL)
	require.NoError(t, err)

	client := &stubClient{responses: []string{`{}`}}
	_, err = WithSemanticInjection(context.Background(), client, pt, "irrelevant", 3)
	require.Error(t, err)
	var genErr *Error
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, NoFieldsMentioned, genErr.Kind)
}

func TestWithSemanticInjectionSchemaViolation(t *testing.T) {
	pt, err := schema.Parse(emailPolicyDSL)
	require.NoError(t, err)

	client := &stubClient{responses: []string{`{"priority":"urgent"}`}}
	_, err = WithSemanticInjection(context.Background(), client, pt, "irrelevant", 3)
	require.Error(t, err)
	var genErr *Error
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, SchemaViolation, genErr.Kind)
}

func TestWithSemanticInjectionRepromptsOnMalformedJSON(t *testing.T) {
	pt, err := schema.Parse(emailPolicyDSL)
	require.NoError(t, err)

	client := &stubClient{responses: []string{"not json", `{"unread":false}`}}
	action, err := WithSemanticInjection(context.Background(), client, pt, "about football", 3)
	require.NoError(t, err)
	assert.Equal(t, false, action["unread"])
	assert.Equal(t, 2, client.calls)
}
