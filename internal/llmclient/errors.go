package llmclient

import "fmt"

// LlmErrorKind classifies why a completion call ultimately failed.
type LlmErrorKind string

const (
	Transport    LlmErrorKind = "transport"
	Timeout      LlmErrorKind = "timeout"
	Unparseable  LlmErrorKind = "unparseable"
)

// LlmError reports a transport failure, a caller-supplied timeout, or an
// unparseable completion after retries are exhausted.
type LlmError struct {
	Kind LlmErrorKind
	Err  error
}

func (e *LlmError) Error() string {
	return fmt.Sprintf("llm error (%s): %v", e.Kind, e.Err)
}

func (e *LlmError) Unwrap() error { return e.Err }
