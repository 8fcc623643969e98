package ai

import (
	"context"
	"fmt"
	"strings"
)

// Stub is the generator used when no backend URL is configured (local
// development). It returns a deterministic placeholder component so the rest
// of the pipeline — queue, worker, stats — can be exercised end to end.
type Stub struct{}

var _ Generator = (*Stub)(nil)

func (Stub) Generate(ctx context.Context, prompt string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Truncate on a rune boundary so multi-byte prompts stay valid UTF-8.
	summary := prompt
	if runes := []rune(summary); len(runes) > 40 {
		summary = string(runes[:40])
	}
	code := fmt.Sprintf("// generated placeholder\n// prompt: %s\nexport default function Component() {\n  return null;\n}\n",
		strings.ReplaceAll(summary, "\n", " "))

	return &Result{
		Code:       code,
		TokensUsed: len(strings.Fields(prompt)) + 16,
	}, nil
}
