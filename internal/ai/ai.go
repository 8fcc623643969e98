// Package ai defines the interface to the external model that actually
// produces component code. The rest of the system treats it as an opaque
// collaborator: the worker hands it a prompt and gets back code plus a token
// count, or an error.
package ai

import "context"

// Result is what a successful generation returns.
type Result struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	TokensUsed  int    `json:"tokensUsed"`
}

// Generator produces a component from a prompt. Implementations must honor
// ctx cancellation — the worker bounds every call with a timeout and treats
// expiry as a failure.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Result, error)
}
