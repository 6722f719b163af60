// Package policyai converts unstructured text into typed, structured
// values by applying a set of composable policies.
//
// Each Policy pairs a natural-language semantic injection (a condition
// describing when the policy fires) with a typed Action (a partial field
// assignment). A Manager holds a set of policies and, per Apply call, asks
// an LLM which policies match the given input, then merges the matching
// policies' actions into a single value conforming to a declared
// PolicyType, detecting and resolving conflicts deterministically.
//
// The package has no persistence and no retrieval layer: the caller
// supplies policies and a CompletionClient, and Apply returns a Report.
package policyai
