package policyai

import (
	"fmt"

	"github.com/veritype-ai/policyai/internal/generate"
	"github.com/veritype-ai/policyai/internal/llmclient"
)

// GenerationError reports a failure to mint a Policy from a semantic
// injection: unparseable model output, a schema violation, or an action
// that mentions no fields at all. See internal/generate.
type GenerationError = generate.Error

const (
	GenerationUnparseable       = generate.Unparseable
	GenerationSchemaViolation   = generate.SchemaViolation
	GenerationNoFieldsMentioned = generate.NoFieldsMentioned
)

// LlmError reports a transport failure, a caller timeout, or an
// unparseable completion after retries are exhausted.
type LlmError = llmclient.LlmError

const (
	LlmTransport   = llmclient.Transport
	LlmTimeout     = llmclient.Timeout
	LlmUnparseable = llmclient.Unparseable
)

// ApplyErrorKind classifies a fatal Apply failure. Conflicts are not
// fatal by default (see Report.Conflicts); ApplySchemaViolation is raised
// only when the merge would leave a required field with neither a
// resolved value nor a declared default.
type ApplyErrorKind string

const (
	ApplySchemaViolation ApplyErrorKind = "schema_violation"
	ApplyConflictKind    ApplyErrorKind = "conflict"
)

// ApplyError reports a fatal Apply failure.
type ApplyError struct {
	Kind ApplyErrorKind
	Err  error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply failed (%s): %v", e.Kind, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }
