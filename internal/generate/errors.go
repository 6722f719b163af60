package generate

import "fmt"

// ErrorKind classifies why WithSemanticInjection failed to mint a Policy.
type ErrorKind string

const (
	Unparseable      ErrorKind = "unparseable"
	SchemaViolation  ErrorKind = "schema_violation"
	NoFieldsMentioned ErrorKind = "no_fields_mentioned"
)

// Error reports a policy-generation failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("policy generation failed (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
